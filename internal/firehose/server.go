package firehose

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/roach88/microlog/internal/engine"
	"github.com/roach88/microlog/internal/monitoring"
	"github.com/roach88/microlog/internal/store"
	"github.com/roach88/microlog/internal/tweet"
)

// DefaultSubscriberBuffer is the per-subscriber frame buffer when no
// size is configured.
const DefaultSubscriberBuffer = 256

// Options configures the firehose server.
type Options struct {
	// SubscriberBuffer is the per-subscriber frame buffer. A subscriber
	// whose buffer fills is dropped. Defaults to DefaultSubscriberBuffer.
	SubscriberBuffer int

	// Metrics exposes Prometheus metrics on /metrics when true.
	Metrics bool
}

// Server serves the firehose WebSocket and the JSON API.
type Server struct {
	engine *engine.Engine
	store  *store.Store
	opts   Options

	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	mu          sync.Mutex
	subscribers map[uint64]chan []byte
}

// NewServer creates a firehose server over the engine and store.
// Register the returned server as the engine's notifier so accepted
// operations reach subscribers.
func NewServer(eng *engine.Engine, st *store.Store, opts Options) *Server {
	if opts.SubscriberBuffer <= 0 {
		opts.SubscriberBuffer = DefaultSubscriberBuffer
	}
	return &Server{
		engine: eng,
		store:  st,
		opts:   opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		subscribers: make(map[uint64]chan []byte),
	}
}

// TweetAccepted implements engine.Notifier. Called on the engine's
// writer goroutine, so delivery is non-blocking: a subscriber whose
// buffer is full is dropped on the spot.
func (s *Server) TweetAccepted(n engine.Notification) {
	frame, err := marshalFrame(n)
	if err != nil {
		slog.Error("firehose: marshal frame", "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.subscribers {
		select {
		case ch <- frame:
		default:
			slog.Warn("firehose: dropping slow subscriber", "subscriber", id)
			delete(s.subscribers, id)
			close(ch)
			monitoring.FirehoseDropsTotal.Inc()
			monitoring.FirehoseSubscribers.Dec()
		}
	}
}

// SubscriberCount returns the number of connected subscribers.
func (s *Server) SubscriberCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// Handler assembles the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /ops", s.handleOp)
	mux.HandleFunc("GET /tweets/{id}", s.handleGetTweet)
	mux.HandleFunc("GET /accounts/{author}/tweets", s.handleTimeline)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	if s.opts.Metrics {
		mux.Handle("GET /metrics", promhttp.Handler())
	}
	return monitoring.NewPrometheusMiddleware(mux)
}

// subscribeMsg is the required first message on a firehose connection.
type subscribeMsg struct {
	Type string `json:"type"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	// Handshake: must send SUBSCRIBE first.
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		return
	}
	var sub subscribeMsg
	if err := json.Unmarshal(msg, &sub); err != nil || sub.Type != "SUBSCRIBE" {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, "expected SUBSCRIBE"),
			time.Now().Add(time.Second))
		return
	}

	id, frames := s.register()
	defer s.unregister(id)

	slog.Info("firehose: subscriber connected", "subscriber", id)

	// Writer goroutine.
	writeErr := make(chan error, 1)
	go func() {
		for frame := range frames {
			_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				writeErr <- err
				return
			}
		}
		writeErr <- nil
	}()

	// Reader loop: only exists to detect the peer going away.
	readErr := make(chan error, 1)
	go func() {
		for {
			_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
			if _, _, err := conn.ReadMessage(); err != nil {
				readErr <- err
				return
			}
		}
	}()

	select {
	case <-writeErr:
	case <-readErr:
	case <-r.Context().Done():
	}

	_ = conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "bye"),
		time.Now().Add(time.Second))

	slog.Info("firehose: subscriber disconnected", "subscriber", id)
}

func (s *Server) register() (uint64, chan []byte) {
	id := s.nextID.Add(1)
	ch := make(chan []byte, s.opts.SubscriberBuffer)

	s.mu.Lock()
	s.subscribers[id] = ch
	s.mu.Unlock()

	monitoring.FirehoseSubscribers.Inc()
	return id, ch
}

func (s *Server) unregister(id uint64) {
	s.mu.Lock()
	ch, ok := s.subscribers[id]
	if ok {
		delete(s.subscribers, id)
		close(ch)
	}
	s.mu.Unlock()

	if ok {
		monitoring.FirehoseSubscribers.Dec()
	}
}

// opRequest is the POST /ops body.
type opRequest struct {
	Op     string `json:"op"`
	Author string `json:"author"`
	Text   string `json:"text"`
	Target string `json:"target,omitempty"`
}

func (s *Server) handleOp(w http.ResponseWriter, r *http.Request) {
	var req opRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	if req.Author == "" {
		writeError(w, http.StatusBadRequest, "author is required")
		return
	}

	var target tweet.ID
	if req.Op == "retweet" || req.Op == "comment" {
		if req.Target == "" {
			writeError(w, http.StatusBadRequest, "target is required")
			return
		}
		var err error
		target, err = tweet.ParseID(req.Target)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	var (
		tw  tweet.Tweet
		err error
	)
	switch req.Op {
	case "post":
		tw, err = s.engine.PostTweet(r.Context(), req.Author, req.Text)
	case "retweet":
		tw, err = s.engine.Retweet(r.Context(), req.Author, target, req.Text)
	case "comment":
		tw, err = s.engine.Comment(r.Context(), req.Author, req.Text, target)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown op %q", req.Op))
		return
	}
	if err != nil {
		writeRejection(w, err)
		return
	}

	writeCanonical(w, http.StatusCreated, tw.CanonicalMap())
}

func (s *Server) handleGetTweet(w http.ResponseWriter, r *http.Request) {
	id, err := tweet.ParseID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tw, err := s.store.GetTweet(r.Context(), id)
	if err != nil {
		writeRejection(w, err)
		return
	}

	writeCanonical(w, http.StatusOK, tw.CanonicalMap())
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := s.store.AccountTimeline(r.Context(), r.PathValue("author"))
	if err != nil {
		writeRejection(w, err)
		return
	}

	tweets := make([]any, len(timeline))
	for i, tw := range timeline {
		tweets[i] = tw.CanonicalMap()
	}
	writeCanonical(w, http.StatusOK, map[string]any{"tweets": tweets})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, `{"status":"ok"}`)
}

// marshalFrame produces the canonical notification frame.
func marshalFrame(n engine.Notification) ([]byte, error) {
	return tweet.MarshalCanonical(map[string]any{
		"token": n.Token,
		"kind":  string(n.Kind),
		"tweet": n.Tweet.CanonicalMap(),
	})
}

// writeRejection maps the rejection taxonomy onto HTTP status codes.
// Anything outside the taxonomy is a storage fault, reported as 500.
func writeRejection(w http.ResponseWriter, err error) {
	code := tweet.RejectCodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case tweet.CodeTweetTooLong:
		status = http.StatusBadRequest
	case tweet.CodeTweetNotFound:
		status = http.StatusNotFound
	case tweet.CodeNoAvailableTweetID:
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{"error": err.Error()}
	if code != "" {
		body["code"] = string(code)
	}
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func writeCanonical(w http.ResponseWriter, status int, v any) {
	data, err := tweet.MarshalCanonical(v)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
