package api

import (
	"time"

	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
)

type EntryResponse struct {
	ID               string `json:"id"`
	Date             string `json:"date"`
	Title            string `json:"title"`
	Content          string `json:"content"`
	BackgroundColor  string `json:"background_color,omitempty"`
	Image            []byte `json:"image,omitempty"`
	ImagePositionTop bool   `json:"image_position_top,omitempty"`
	Score            int    `json:"score,omitempty"`
}

// EntryRequest is the body of PUT /api/entries/{date}. Image is base64.
type EntryRequest struct {
	Title            string `json:"title"`
	Content          string `json:"content"`
	BackgroundColor  string `json:"background_color,omitempty"`
	Image            []byte `json:"image,omitempty"`
	ImagePositionTop bool   `json:"image_position_top,omitempty"`
}

type QueryResponse struct {
	Text       string           `json:"text"`
	ExactMatch bool             `json:"exact_match"`
	Scope      core.SearchScope `json:"scope"`
	TimeRange  core.TimeRange   `json:"time_range"`
	SortMode   core.SortMode    `json:"sort_mode"`
	From       string           `json:"from,omitempty"`
	To         string           `json:"to,omitempty"`
}

type SearchResponse struct {
	Query   QueryResponse   `json:"query"`
	Count   int             `json:"count"`
	Entries []EntryResponse `json:"entries"`
}

type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
	Count   int             `json:"count"`
}

// LiveMessage is sent over the live search websocket. Type is "init" for the
// first result set, "results" after a change or a new query, and "error".
type LiveMessage struct {
	Type    string                `json:"type"`
	Query   *QueryResponse        `json:"query,omitempty"`
	Count   int                   `json:"count"`
	Entries []EntryResponse       `json:"entries"`
	Event   *realtime.ChangeEvent `json:"event,omitempty"`
	Error   string                `json:"error,omitempty"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Version   string    `json:"version"`
	Entries   int       `json:"entries"`
}

func newEntryResponse(e *core.Entry) EntryResponse {
	return EntryResponse{
		ID:               e.ID,
		Date:             e.Key(),
		Title:            e.Title,
		Content:          e.Content,
		BackgroundColor:  e.BackgroundColor,
		Image:            e.Image,
		ImagePositionTop: e.ImagePositionTop,
	}
}

func newQueryResponse(q core.SearchQuery) QueryResponse {
	qr := QueryResponse{
		Text:       q.Text,
		ExactMatch: q.ExactMatch,
		Scope:      q.Scope,
		TimeRange:  q.TimeRange,
		SortMode:   q.SortMode,
	}
	if q.CustomRange != nil {
		qr.From = q.CustomRange.Start.Format(core.DayLayout)
		qr.To = q.CustomRange.End.Format(core.DayLayout)
	}
	return qr
}
