package main

import (
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/nippoworks/api-nippo/internal/auth"
	"github.com/nippoworks/api-nippo/internal/comment"
	"github.com/nippoworks/api-nippo/internal/customer"
	"github.com/nippoworks/api-nippo/internal/dashboard"
	"github.com/nippoworks/api-nippo/internal/models"
	"github.com/nippoworks/api-nippo/internal/report"
	"github.com/nippoworks/api-nippo/internal/salesperson"
	"github.com/nippoworks/api-nippo/internal/utils/db"
	"github.com/nippoworks/api-nippo/internal/visit"

	"github.com/gorilla/mux"
)

func main() {
	_ = godotenv.Load()

	if err := auth.Init(); err != nil {
		log.Fatal().Err(err).Msg("auth init failed")
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	if err := database.AutoMigrate(
		&models.SalesPerson{},
		&models.Customer{},
		&models.DailyReport{},
		&models.VisitRecord{},
		&models.Comment{},
	); err != nil {
		log.Fatal().Err(err).Msg("auto migration failed")
	}

	salesPersonHandler := salesperson.NewHandler(database)
	customerHandler := customer.NewHandler(database)
	reportHandler := report.NewHandler(database)
	visitHandler := visit.NewHandler(database)
	commentHandler := comment.NewHandler(database)
	dashboardHandler := dashboard.NewHandler(database)

	r := mux.NewRouter()

	// login is the only route outside the session boundary
	r.HandleFunc("/api/v1/auth/login", salesPersonHandler.Login).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(auth.Middleware)

	// sales-person master (mutations are manager-gated)
	api.Handle("/sales-persons", auth.RequireManager(http.HandlerFunc(salesPersonHandler.Create))).Methods("POST")
	api.HandleFunc("/sales-persons", salesPersonHandler.List).Methods("GET")
	api.HandleFunc("/sales-persons/{id}", salesPersonHandler.Get).Methods("GET")
	api.Handle("/sales-persons/{id}", auth.RequireManager(http.HandlerFunc(salesPersonHandler.Update))).Methods("PUT")
	api.Handle("/sales-persons/{id}", auth.RequireManager(http.HandlerFunc(salesPersonHandler.Delete))).Methods("DELETE")

	// customer master
	api.HandleFunc("/customers", customerHandler.List).Methods("GET")
	api.HandleFunc("/customers", customerHandler.Create).Methods("POST")
	api.HandleFunc("/customers/{id}", customerHandler.Get).Methods("GET")
	api.HandleFunc("/customers/{id}", customerHandler.Update).Methods("PUT")
	api.HandleFunc("/customers/{id}", customerHandler.Delete).Methods("DELETE")

	// daily reports
	api.HandleFunc("/reports", reportHandler.Create).Methods("POST")
	api.HandleFunc("/reports", reportHandler.List).Methods("GET")
	api.HandleFunc("/reports/{id}", reportHandler.Get).Methods("GET")
	api.HandleFunc("/reports/{id}", reportHandler.Update).Methods("PUT")
	api.HandleFunc("/reports/{id}", reportHandler.Delete).Methods("DELETE")
	api.HandleFunc("/reports/{id}/status", reportHandler.UpdateStatus).Methods("PATCH")

	// visit records
	api.HandleFunc("/reports/{id}/visits", visitHandler.List).Methods("GET")
	api.HandleFunc("/reports/{id}/visits", visitHandler.Create).Methods("POST")
	api.HandleFunc("/visits/{id}", visitHandler.Update).Methods("PUT")
	api.HandleFunc("/visits/{id}", visitHandler.Delete).Methods("DELETE")

	// comments
	api.HandleFunc("/reports/{id}/comments", commentHandler.ListByReport).Methods("GET")
	api.HandleFunc("/reports/{id}/comments", commentHandler.Create).Methods("POST")
	api.HandleFunc("/comments/{id}", commentHandler.Delete).Methods("DELETE")

	// dashboard
	api.HandleFunc("/dashboard", dashboardHandler.Get).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Info().Str("port", port).Msg("server listening")
	if err := http.ListenAndServe(":"+port, c.Handler(r)); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
