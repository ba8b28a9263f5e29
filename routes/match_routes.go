package routes

import (
	"vidmatch_server/controllers"
	"vidmatch_server/services"

	"github.com/gorilla/mux"
)

// RegisterMatchRoutes sets up the reporting routes under /api/matches
func RegisterMatchRoutes(r *mux.Router, recordService *services.RecordService, matchService *services.MatchService, presence *services.PresenceService) {
	controller := controllers.NewMatchController(recordService, matchService, presence)

	matchRouter := r.PathPrefix("/api/matches").Subrouter()

	matchRouter.HandleFunc("", controller.GetMatchRecords).Methods("GET")
	matchRouter.HandleFunc("/stats", controller.GetLiveStats).Methods("GET")
}
