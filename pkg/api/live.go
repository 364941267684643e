package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rubiojr/pocketdiary/pkg/core"
	"github.com/rubiojr/pocketdiary/pkg/realtime"
)

const (
	liveWriteTimeout = 10 * time.Second
	livePingInterval = 30 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// The API already answers cross-origin requests; the socket follows suit.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleLiveSearch upgrades to a websocket that keeps a search open.
//
// The connection's URL query carries the same parameters as /api/search. The
// server answers with an "init" message and then pushes a "results" message
// whenever the diary or the settings change. A client may replace its query
// at any time by sending a JSON object of parameters, e.g. {"q":"beach"};
// parameters omitted from it fall back to the persisted settings.
func (s *Server) HandleLiveSearch(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warnf("live search upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	id, events := s.hub.Register()
	defer s.hub.Unregister(id)
	s.logger.Debugf("live search %d connected (%d listeners)", id, s.hub.Size())

	queries := make(chan liveQuery)
	go s.readLiveQueries(ctx, cancel, conn, queries)

	params := r.URL.Query()
	if !s.sendLiveResults(ctx, conn, "init", params, nil) {
		return
	}

	ping := time.NewTicker(livePingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Debugf("live search %d closed", id)
			return
		case lq := <-queries:
			if lq.err != nil {
				if !s.writeLive(conn, LiveMessage{Type: "error", Error: lq.err.Error(), Entries: []EntryResponse{}}) {
					return
				}
				continue
			}
			params = lq.values
			if !s.sendLiveResults(ctx, conn, "results", params, nil) {
				return
			}
		case ev, ok := <-events:
			if !ok {
				return
			}
			if !s.sendLiveResults(ctx, conn, "results", params, &ev) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(liveWriteTimeout)); err != nil {
				return
			}
		}
	}
}

// liveQuery is a query message from the client, or the reason it was rejected.
type liveQuery struct {
	values url.Values
	err    error
}

// readLiveQueries owns all reads on conn. It ends the session on any read
// error, including a normal close from the client.
func (s *Server) readLiveQueries(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, out chan<- liveQuery) {
	defer cancel()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		values, err := decodeLiveQuery(data)
		if err != nil {
			s.logger.Debugf("rejecting live query: %v", err)
		}

		select {
		case out <- liveQuery{values: values, err: err}:
		case <-ctx.Done():
			return
		}
	}
}

// decodeLiveQuery turns a JSON object such as {"q":"beach","exact":true}
// into search parameters. Strings, booleans and numbers are accepted; null
// leaves the parameter unset.
func decodeLiveQuery(data []byte) (url.Values, error) {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid live query: %w", err)
	}
	values := url.Values{}
	for k, v := range raw {
		switch v := v.(type) {
		case nil:
		case string:
			values.Set(k, v)
		case bool:
			values.Set(k, strconv.FormatBool(v))
		case float64:
			values.Set(k, strconv.FormatFloat(v, 'f', -1, 64))
		default:
			return nil, fmt.Errorf("invalid live query: parameter %q must be a string, boolean or number", k)
		}
	}
	return values, nil
}

// sendLiveResults runs the search and writes one message. It returns false
// when the connection is no longer usable.
func (s *Server) sendLiveResults(ctx context.Context, conn *websocket.Conn, kind string, params url.Values, ev *realtime.ChangeEvent) bool {
	msg := LiveMessage{Type: kind, Event: ev, Entries: []EntryResponse{}}

	q, err := s.parseQuery(ctx, params)
	if err == nil {
		var entries []*core.Entry
		entries, err = s.searcher.Search(ctx, q)
		if err == nil {
			qr := newQueryResponse(q)
			msg.Query = &qr
			msg.Count = len(entries)
			msg.Entries = s.scoredEntries(entries, q)
		}
	}
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		msg.Type = "error"
		msg.Error = err.Error()
	}

	return s.writeLive(conn, msg)
}

func (s *Server) writeLive(conn *websocket.Conn, msg LiveMessage) bool {
	if err := conn.SetWriteDeadline(time.Now().Add(liveWriteTimeout)); err != nil {
		return false
	}
	if err := conn.WriteJSON(msg); err != nil {
		s.logger.Debugf("live search write failed: %v", err)
		return false
	}
	return true
}
