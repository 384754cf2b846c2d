package notify

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/calvinalkan/progress-table/internal/logging"
)

// NewHandler exposes bus over HTTP:
//
//	GET /data    latest dataset as JSON (204 before the first commit)
//	GET /events  text/event-stream of "data" events, starting with the latest
func NewHandler(bus *Bus, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = logging.Discard()
	}

	h := &sseHandler{bus: bus, logger: logger.With("component", "sse")}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/data", h.handleData)
	r.Get("/events", h.handleEvents)

	return r
}

type sseHandler struct {
	bus    *Bus
	logger *slog.Logger
}

func (h *sseHandler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		logging.FromContext(r.Context(), h.logger).Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

func (h *sseHandler) handleData(w http.ResponseWriter, _ *http.Request) {
	ev, ok := h.bus.Latest()
	if !ok {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	data, err := json.Marshal(ev.Data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (h *sseHandler) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)

		return
	}

	id, events, cancel := h.bus.Subscribe()
	defer cancel()

	logger := logging.FromContext(r.Context(), h.logger).With("subscriber", id)
	logger.Debug("subscribed")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if ev, ok := h.bus.Latest(); ok {
		if err := writeEvent(w, ev); err != nil {
			return
		}

		flusher.Flush()
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}

			if err := writeEvent(w, ev); err != nil {
				logger.Debug("write failed", "error", err)

				return
			}

			flusher.Flush()
		case <-r.Context().Done():
			logger.Debug("client disconnected")

			return
		}
	}
}

func writeEvent(w http.ResponseWriter, ev Event) error {
	data, err := json.Marshal(ev.Data)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, data)

	return err
}

// Server serves a handler on a TCP address in the background.
type Server struct {
	srv  *http.Server
	addr string
	errc chan error
}

// Serve listens on addr and serves h until [Server.Close]. Use port 0 to
// pick a free port; [Server.Addr] reports the bound address.
func Serve(addr string, h http.Handler) (*Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen %s: %w", addr, err)
	}

	s := &Server{
		srv:  &http.Server{Handler: h, ReadHeaderTimeout: 10 * time.Second},
		addr: ln.Addr().String(),
		errc: make(chan error, 1),
	}

	go func() {
		err := s.srv.Serve(ln)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}

		s.errc <- err
	}()

	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// Close stops the server and drops open event streams.
func (s *Server) Close() error {
	return errors.Join(s.srv.Close(), <-s.errc)
}
