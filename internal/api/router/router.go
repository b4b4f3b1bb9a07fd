package router

import (
	"encoding/json"
	"net/http"

	"zxtrack/internal/api/handler"
	"zxtrack/internal/api/middleware"
	"zxtrack/internal/bus"
	"zxtrack/internal/cache"
	"zxtrack/internal/core/service"
)

func NewRouter(
	eventService service.EventService,
	reportService service.ReportService,
	sessions *cache.Sessions,
	b *bus.Bus,
	jwtSecret string,
) http.Handler {
	// Initialize handlers
	eventHandler := handler.NewEventHandler(eventService)
	reportHandler := handler.NewReportHandler(reportService)
	deviceHandler := handler.NewDeviceHandler(sessions)
	kindHandler := handler.NewKindHandler()
	downlinkHandler := handler.NewDownlinkHandler(b)
	authMiddleware := middleware.NewAuthMiddleware(jwtSecret)

	// Create router
	mux := http.NewServeMux()

	// Add middleware chain
	withMiddleware := func(handler http.Handler) http.Handler {
		return middleware.CORSMiddleware(
			middleware.LoggingMiddleware(
				authMiddleware.Authenticate(handler),
			),
		)
	}

	// Health check endpoint
	mux.Handle("/health", middleware.CORSMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"status": "ok",
		})
	})))

	// Catalogue routes
	mux.Handle("/api/kinds", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		kindHandler.GetKinds(w, r)
	})))

	mux.Handle("/api/kinds/get", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		kindHandler.GetKind(w, r)
	})))

	// Live session lookup
	mux.Handle("/api/devices/get", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		deviceHandler.GetDevice(w, r)
	})))

	// Stored wire exchanges
	mux.Handle("/api/events/backlog", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		eventHandler.GetBacklog(w, r)
	})))

	// Rectified positions
	mux.Handle("/api/reports/list", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reportHandler.GetReports(w, r)
	})))

	mux.Handle("/api/reports/latest", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		reportHandler.GetLatestReport(w, r)
	})))

	// Outbound command queueing
	mux.Handle("/api/downlink", withMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost:
			downlinkHandler.Send(w, r)
		case http.MethodOptions:
			w.WriteHeader(http.StatusOK)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})))

	return mux
}
