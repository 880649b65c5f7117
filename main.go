package main

import (
	"log"
	"net/http"
	"os"

	"roomly_server/routes"
	"roomly_server/services"
	"roomly_server/socket"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env if present; real deployments rely on the environment.
	if err := godotenv.Load(); err != nil {
		log.Println("ℹ️ No .env file found, using environment variables")
	}

	// Initialize DynamoDB client and service
	log.Println("Initializing DynamoDB client...")
	dynamoClient := services.InitializeDynamoDBClient()
	dynamoService := &services.DynamoService{Client: dynamoClient}
	log.Println("DynamoDB client initialized.")

	// Initialize the Socket.IO server and the realtime notifier
	socketServer := socket.NewSocketServer()
	go func() {
		if err := socketServer.Serve(); err != nil {
			log.Fatalf("❌ Socket server error: %v", err)
		}
	}()
	defer socketServer.Close()
	notifier := &socket.Notifier{Server: socketServer}

	// Initialize stores
	profileStore := &services.DynamoProfileStore{Dynamo: dynamoService}
	matchStore := &services.DynamoMatchStore{Dynamo: dynamoService}
	chatStore := &services.DynamoChatStore{Dynamo: dynamoService}
	geoQuery := &services.DynamoGeoQuery{Dynamo: dynamoService}
	notifications := &services.DynamoNotificationService{Dynamo: dynamoService}
	reports := &services.DynamoAuditReporter{Dynamo: dynamoService}

	// Initialize services
	scorer := services.NewCompatibilityService()
	roomService := &services.RoomService{Chat: chatStore}
	profileService := &services.UserProfileService{Profiles: profileStore}
	candidateService := &services.CandidateService{
		Profiles: profileStore,
		Matches:  matchStore,
		Geo:      geoQuery,
		Scorer:   scorer,
	}
	matchService := &services.MatchService{
		Profiles:      profileStore,
		Matches:       matchStore,
		Rooms:         roomService,
		Scorer:        scorer,
		Realtime:      notifier,
		Notifications: notifications,
		Reports:       reports,
	}
	chatService := &services.ChatService{
		Chat:          chatStore,
		Realtime:      notifier,
		Notifications: notifications,
	}

	// Set up the server port
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Using server port: %s\n", port)

	// Initialize the router
	r := mux.NewRouter()
	r.Handle("/socket.io/", socketServer)

	// Register routes
	routes.RegisterRoutes(r)
	routes.RegisterUserProfileRoutes(r, profileService, candidateService)
	routes.RegisterMatchRoutes(r, matchService)
	routes.RegisterChatRoutes(r, chatService)

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
