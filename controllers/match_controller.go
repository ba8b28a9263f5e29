package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"vidmatch_server/services"
)

// MatchController handles HTTP requests for the match reporting surface
type MatchController struct {
	RecordService *services.RecordService
	MatchService  *services.MatchService
	Presence      *services.PresenceService
}

// NewMatchController creates a new MatchController instance
func NewMatchController(recordService *services.RecordService, matchService *services.MatchService, presence *services.PresenceService) *MatchController {
	return &MatchController{
		RecordService: recordService,
		MatchService:  matchService,
		Presence:      presence,
	}
}

// GetMatchRecords handles listing the durable match history
func (mc *MatchController) GetMatchRecords(w http.ResponseWriter, r *http.Request) {
	records, err := mc.RecordService.ListMatchRecords(r.Context())
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to fetch match records: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"matches": records,
	})
}

// GetLiveStats handles fetching the live presence and matching counters
func (mc *MatchController) GetLiveStats(w http.ResponseWriter, r *http.Request) {
	waiting, active := mc.MatchService.Stats()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"connected": mc.Presence.Count(),
		"waiting":   waiting,
		"active":    active,
	})
}
