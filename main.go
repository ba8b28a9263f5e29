package main

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"vidmatch_server/models"
	"vidmatch_server/routes"
	"vidmatch_server/services"
	"vidmatch_server/socket"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize Services
	presenceService := services.NewPresenceService()
	recordService := &services.RecordService{Dynamo: dynamoService}
	signalService := services.NewSignalService(presenceService)
	fakeUserService := services.NewFakeUserService(models.FakeUsers)
	matchService := services.NewMatchService(presenceService, signalService, recordService, fakeUserService)
	presenceService.SetTeardown(matchService.HandleDisconnect)

	// Fallback tuning from the environment
	if secs := os.Getenv("MATCH_FALLBACK_SECONDS"); secs != "" {
		if parsed, err := strconv.Atoi(secs); err == nil && parsed > 0 {
			matchService.FallbackDelay = time.Duration(parsed) * time.Second
			matchService.SecondChance = time.Duration(parsed) * time.Second
		} else {
			log.Printf("Ignoring invalid MATCH_FALLBACK_SECONDS: %q", secs)
		}
	}
	if chance := os.Getenv("FAKE_MATCH_CHANCE"); chance != "" {
		if parsed, err := strconv.ParseFloat(chance, 64); err == nil && parsed >= 0 && parsed <= 1 {
			matchService.FakeMatchChance = parsed
		} else {
			log.Printf("Ignoring invalid FAKE_MATCH_CHANCE: %q", chance)
		}
	}

	// Initialize the Socket.IO server
	socketServer := socket.NewSocketServer(presenceService, matchService, signalService)
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()

	// Register a welcome route
	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Vidmatch")
	}).Methods("GET")

	// Register a health check endpoint
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		response := map[string]string{"status": "healthy"}
		json.NewEncoder(w).Encode(response)
	}).Methods("GET")

	// Mount the socket transport
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterMatchRoutes(r, recordService, matchService, presenceService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"}, // Adjust for specific domains if needed
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	// Start the HTTP server
	log.Printf("Starting server on port %s...\n", port)
	log.Fatal(http.ListenAndServe(":"+port, corsHandler))
}
