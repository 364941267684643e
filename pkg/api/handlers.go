package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
	"github.com/rubiojr/pocketdiary/pkg/search"
	"github.com/rubiojr/pocketdiary/pkg/settings"
	"github.com/rubiojr/pocketdiary/pkg/storage"
	"github.com/rubiojr/pocketdiary/pkg/version"
)

// maxEntryBody bounds PUT bodies; images travel inline as base64.
const maxEntryBody = 16 << 20

func (s *Server) HandleHealth(w http.ResponseWriter, r *http.Request) {
	n, err := s.store.CountEntries(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Store unavailable", err.Error())
		return
	}

	health := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   version.APIVersion(),
		Entries:   n,
	}

	s.writeJSON(w, http.StatusOK, health)
}

func (s *Server) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q, err := s.parseQuery(r.Context(), r.URL.Query())
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid search parameters", err.Error())
		return
	}

	entries, err := s.searcher.Search(r.Context(), q)
	if err != nil {
		status, title := searchErrorStatus(err)
		s.writeError(w, status, title, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, SearchResponse{
		Query:   newQueryResponse(q),
		Count:   len(entries),
		Entries: s.scoredEntries(entries, q),
	})
}

func (s *Server) HandleListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.store.FetchAllEntries(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to list entries", err.Error())
		return
	}

	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = newEntryResponse(e)
	}
	s.writeJSON(w, http.StatusOK, ListEntriesResponse{Entries: responses, Count: len(responses)})
}

func (s *Server) HandleGetEntry(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDay(w, r)
	if !ok {
		return
	}

	e, err := s.store.GetEntry(r.Context(), day)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Entry not found", fmt.Sprintf("No entry for %s", day.Format(core.DayLayout)))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to read entry", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, newEntryResponse(e))
}

func (s *Server) HandlePutEntry(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDay(w, r)
	if !ok {
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxEntryBody)).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid entry", err.Error())
		return
	}

	e := core.NewEntry(day, req.Title, req.Content)
	e.BackgroundColor = req.BackgroundColor
	e.Image = req.Image
	e.ImagePositionTop = req.ImagePositionTop

	if err := s.store.PutEntry(r.Context(), e); err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to store entry", err.Error())
		return
	}
	s.publish(realtime.EntryPut, e.Key())

	s.writeJSON(w, http.StatusOK, newEntryResponse(e))
}

func (s *Server) HandleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	day, ok := s.pathDay(w, r)
	if !ok {
		return
	}

	err := s.store.DeleteEntry(r.Context(), day)
	if errors.Is(err, storage.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Entry not found", fmt.Sprintf("No entry for %s", day.Format(core.DayLayout)))
		return
	}
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to delete entry", err.Error())
		return
	}
	s.publish(realtime.EntryDeleted, day.Format(core.DayLayout))

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) HandleGetSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.settings.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to read settings", err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// HandlePutSettings replaces the persisted settings. Fields missing from the
// body keep their current value.
func (s *Server) HandlePutSettings(w http.ResponseWriter, r *http.Request) {
	snap, err := s.settings.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, http.StatusServiceUnavailable, "Failed to read settings", err.Error())
		return
	}

	if err := json.NewDecoder(r.Body).Decode(&snap); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
		return
	}

	if err := s.settings.Apply(r.Context(), snap); err != nil {
		if errors.Is(err, settings.ErrCustomRangeNotStored) {
			s.writeError(w, http.StatusBadRequest, "Invalid settings", err.Error())
			return
		}
		s.writeError(w, http.StatusServiceUnavailable, "Failed to store settings", err.Error())
		return
	}
	s.publish(realtime.SettingsChanged, "")

	s.writeJSON(w, http.StatusOK, snap)
}

// parseQuery reads search parameters on top of the persisted settings.
func (s *Server) parseQuery(ctx context.Context, values url.Values) (core.SearchQuery, error) {
	defaults, err := s.settings.Snapshot(ctx)
	if err != nil {
		s.logger.Warnf("reading settings, using defaults: %v", err)
		defaults = settings.Snapshot{}
	}
	return search.ParseQueryParams(values, defaults, s.loc)
}

func (s *Server) pathDay(w http.ResponseWriter, r *http.Request) (time.Time, bool) {
	raw := r.PathValue("date")
	day, err := core.ParseDay(raw, s.loc)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid date", fmt.Sprintf("Expected YYYY-MM-DD, got %q", raw))
		return time.Time{}, false
	}
	return day, true
}

func searchErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, search.ErrMissingCustomRange):
		return http.StatusBadRequest, "Missing custom range"
	case errors.Is(err, search.ErrStoreUnavailable):
		return http.StatusServiceUnavailable, "Store unavailable"
	default:
		return http.StatusInternalServerError, "Search failed"
	}
}

func (s *Server) scoredEntries(entries []*core.Entry, q core.SearchQuery) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i, e := range entries {
		responses[i] = newEntryResponse(e)
		responses[i].Score = s.searcher.Score(e, q)
	}
	return responses
}
