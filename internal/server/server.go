package server

import (
	"log/slog"
	"net/http"

	"sales-dashboard/internal/handlers"
	"sales-dashboard/internal/services"
	"sales-dashboard/internal/store"
)

type Server struct {
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

func NewServer(analytics *services.Analytics, catalog *services.Catalog, st *store.Store, logger *slog.Logger, templateHandlers *TemplateHandlers) *Server {
	s := &Server{
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, catalog, st, logger),
		sseHandlers: handlers.NewSSEHandlers(analytics, catalog, logger),
	}
	s.setupRoutes(templateHandlers)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)

	// REST API endpoints
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /api/products", s.apiHandlers.HandleListProducts)
	s.mux.HandleFunc("POST /api/products", s.apiHandlers.HandleCreateProduct)
	s.mux.HandleFunc("PUT /api/products/{id}", s.apiHandlers.HandleUpdateProduct)
	s.mux.HandleFunc("DELETE /api/products/{id}", s.apiHandlers.HandleDeleteProduct)
	s.mux.HandleFunc("GET /api/clients", s.apiHandlers.HandleListClients)
	s.mux.HandleFunc("POST /api/clients", s.apiHandlers.HandleCreateClient)
	s.mux.HandleFunc("PUT /api/clients/{id}", s.apiHandlers.HandleUpdateClient)
	s.mux.HandleFunc("DELETE /api/clients/{id}", s.apiHandlers.HandleDeleteClient)

	// Exports
	s.mux.HandleFunc("GET /export/sales.csv", s.apiHandlers.HandleExportCSV)
	s.mux.HandleFunc("GET /export/sales.xlsx", s.apiHandlers.HandleExportXLSX)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/refresh", s.sseHandlers.HandleRefresh)
	s.mux.HandleFunc("GET /sse/table", s.sseHandlers.HandleTable)
	s.mux.HandleFunc("POST /sse/theme", s.sseHandlers.HandleToggleTheme)

	s.mux.HandleFunc("POST /sse/products", s.sseHandlers.HandleCreateProduct)
	s.mux.HandleFunc("PUT /sse/products", s.sseHandlers.HandleUpdateProduct)
	s.mux.HandleFunc("GET /sse/products/cancel", s.sseHandlers.HandleCancelProduct)
	s.mux.HandleFunc("GET /sse/products/{id}/edit", s.sseHandlers.HandleEditProduct)
	s.mux.HandleFunc("DELETE /sse/products/{id}", s.sseHandlers.HandleDeleteProduct)

	s.mux.HandleFunc("POST /sse/clients", s.sseHandlers.HandleCreateClient)
	s.mux.HandleFunc("PUT /sse/clients", s.sseHandlers.HandleUpdateClient)
	s.mux.HandleFunc("GET /sse/clients/cancel", s.sseHandlers.HandleCancelClient)
	s.mux.HandleFunc("GET /sse/clients/{id}/edit", s.sseHandlers.HandleEditClient)
	s.mux.HandleFunc("DELETE /sse/clients/{id}", s.sseHandlers.HandleDeleteClient)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
