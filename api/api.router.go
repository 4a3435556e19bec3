package api

import (
	"net/http"
	"os"

	"agrosense-backend/api/middleware"
	"agrosense-backend/api/resources"
	"agrosense-backend/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type Router struct {
	router    *mux.Router
	resources *resources.Resources
}

func NewRouter(svc *service.Service) *Router {
	r := &Router{
		router:    mux.NewRouter().StrictSlash(true),
		resources: resources.NewResources(svc),
	}

	r.setupRoutes()
	return r
}

func (r *Router) setupRoutes() {
	api := r.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", r.resources.HealthCheck).Methods(http.MethodGet)

	// Auth
	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login-user", r.resources.Auth.Login).Methods(http.MethodPost)
	auth.HandleFunc("/getTime/{userId}", r.resources.Auth.GetSessionExpiry).Methods(http.MethodGet)
	auth.HandleFunc("/update/{userId}", r.resources.Auth.ExtendSession).Methods(http.MethodPatch)
	auth.HandleFunc("/users", r.resources.Auth.ListUsers).Methods(http.MethodGet)
	auth.HandleFunc("/user", r.resources.Auth.CreateUser).Methods(http.MethodPost)
	auth.HandleFunc("/username/{userName}", r.resources.Auth.GetUserByUsername).Methods(http.MethodGet)
	auth.HandleFunc("/updateUser/{userId}", r.resources.Auth.UpdateUser).Methods(http.MethodPatch)
	auth.HandleFunc("/deleteUser/{userId}", r.resources.Auth.DeleteUser).Methods(http.MethodPatch)

	// Sensors
	sensor := api.PathPrefix("/sensor").Subrouter()
	sensor.HandleFunc("/", r.resources.Sensors.ListReadings).Methods(http.MethodGet)
	sensor.HandleFunc("/device/{deviceId}", r.resources.Sensors.ListReadingsByDevice).Methods(http.MethodGet)
	sensor.HandleFunc("/readings", r.resources.Sensors.ListReadingsBySensorType).Methods(http.MethodGet)
	sensor.HandleFunc("/save", r.resources.Sensors.SaveReading).Methods(http.MethodPost)

	// Reports
	reports := api.PathPrefix("/reports").Subrouter()
	reports.HandleFunc("/", r.resources.Reports.ListReports).Methods(http.MethodGet)
	reports.HandleFunc("/", r.resources.Reports.CreateReport).Methods(http.MethodPost)
	reports.HandleFunc("/user/{userId}", r.resources.Reports.ListReportsByUser).Methods(http.MethodGet)
	reports.HandleFunc("/near", r.resources.Reports.ListReportsNear).Methods(http.MethodGet)
	reports.HandleFunc("/date", r.resources.Reports.ListReportsByDateRange).Methods(http.MethodGet)
	reports.HandleFunc("/{id}", r.resources.Reports.UpdateReportStatus).Methods(http.MethodPatch)

	// Login history
	history := api.PathPrefix("/loginHistory").Subrouter()
	history.HandleFunc("/", r.resources.LoginHistory.List).Methods(http.MethodGet)
	history.HandleFunc("/user/{userId}", r.resources.LoginHistory.ListByUser).Methods(http.MethodGet)
}

// Handler wraps the router with request logging and CORS, mirroring the
// morgan/cors middleware the clients already expect.
func (r *Router) Handler() http.Handler {
	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	return handlers.LoggingHandler(os.Stdout, middleware.RequestID(cors(r.router)))
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}
