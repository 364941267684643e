package api

import (
	"net/http"
)

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", s.HandleHealth)
	mux.HandleFunc("GET /api/search", s.HandleSearch)
	mux.HandleFunc("GET /api/search/live", s.HandleLiveSearch)
	mux.HandleFunc("GET /api/entries", s.HandleListEntries)
	mux.HandleFunc("GET /api/entries/{date}", s.HandleGetEntry)
	mux.HandleFunc("PUT /api/entries/{date}", s.HandlePutEntry)
	mux.HandleFunc("DELETE /api/entries/{date}", s.HandleDeleteEntry)
	mux.HandleFunc("GET /api/settings", s.HandleGetSettings)
	mux.HandleFunc("PUT /api/settings", s.HandlePutSettings)
}
