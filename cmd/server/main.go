package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/exambank/backend/internal/banks"
	"github.com/exambank/backend/internal/database"
)

func main() {
	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize handlers
	bankStore := banks.NewStore(db)
	bankService := banks.NewService(bankStore)
	bankHandler := banks.NewHandler(bankService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/banks", bankHandler.ImportBank).Methods("POST")
	api.HandleFunc("/banks", bankHandler.ListBanks).Methods("GET")
	api.HandleFunc("/banks/merge", bankHandler.MergeBanks).Methods("POST")
	api.HandleFunc("/banks/{bank_id}", bankHandler.GetBank).Methods("GET")
	api.HandleFunc("/banks/{bank_id}/collection", bankHandler.GetCollection).Methods("GET")
	api.HandleFunc("/banks/{bank_id}/merge-records", bankHandler.GetMergeRecords).Methods("GET")
	api.HandleFunc("/banks/{bank_id}/export", bankHandler.ExportBank).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
