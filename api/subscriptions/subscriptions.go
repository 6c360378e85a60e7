// Copyright (c) 2020 The Meter.io developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/meterio/meter-auction/api/utils"
	"github.com/meterio/meter-auction/meter"
)

const (
	subBufferSize = 256
	writeWait     = 10 * time.Second
	pingPeriod    = 30 * time.Second
)

type subscriber struct {
	filter *EventFilter
	ch     chan *meter.AuctionEvent
}

// Subscriptions pushes committed auction events to websocket clients. It is
// an event sink for the engine.
type Subscriptions struct {
	upgrader *websocket.Upgrader
	mu       sync.Mutex
	subs     map[string]*subscriber
	done     chan struct{}
	closed   bool
	wg       sync.WaitGroup
	logger   *slog.Logger
}

func New(allowedOrigins []string) *Subscriptions {
	return &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin || allowedOrigin == "*" {
						return true
					}
				}
				return false
			},
		},
		subs:   make(map[string]*subscriber),
		done:   make(chan struct{}),
		logger: slog.Default().With("api", "subscriptions"),
	}
}

// Emit hands ev to every matching subscriber. Slow subscribers lose events
// instead of blocking the engine.
func (s *Subscriptions) Emit(ev *meter.AuctionEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sub := range s.subs {
		if !sub.filter.Match(ev) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			s.logger.Warn("subscriber lagging, event dropped", "id", id, "event", ev.Type)
		}
	}
}

// Subscribers returns the number of connected clients.
func (s *Subscriptions) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *Subscriptions) add(sub *subscriber) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return "", false
	}
	id := uuid.NewString()
	s.subs[id] = sub
	s.wg.Add(1)
	return id, true
}

func (s *Subscriptions) remove(id string) {
	s.mu.Lock()
	delete(s.subs, id)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Subscriptions) handleEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseEventFilter(req.URL.Query())
	if err != nil {
		return utils.BadRequest(err)
	}
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already replied
		s.logger.Debug("upgrade failed", "err", err)
		return nil
	}
	defer conn.Close()

	sub := &subscriber{filter: filter, ch: make(chan *meter.AuctionEvent, subBufferSize)}
	id, ok := s.add(sub)
	if !ok {
		return nil
	}
	defer s.remove(id)
	s.logger.Debug("subscriber joined", "id", id, "remote", req.RemoteAddr)

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case ev := <-sub.ch:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(convertEvent(ev)); err != nil {
				s.logger.Debug("write failed", "id", id, "err", err)
				return nil
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return nil
			}
		case <-closed:
			s.logger.Debug("subscriber left", "id", id)
			return nil
		case <-s.done:
			msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
			return nil
		}
	}
}

// Close disconnects every subscriber and waits for their handlers to return.
func (s *Subscriptions) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	close(s.done)
	s.mu.Unlock()
	s.wg.Wait()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").Methods(http.MethodGet).HandlerFunc(utils.WrapHandlerFunc(s.handleEvents))
}
