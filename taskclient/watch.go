package taskclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/cyp0633/tasklens/internal/httpclient"
	"github.com/cyp0633/tasklens/task"
)

// Event types on the task update socket.
const (
	EventTaskUpdate = "task_update"
	EventPing       = "ping"
	EventPong       = "pong"
)

// Event is a message pushed by the service after a task is created, updated
// or deleted.
type Event struct {
	Type   string
	Action string
	// Task is the serialized task, nil when absent or undecodable.
	Task *task.Task
}

type wireEvent struct {
	Type   string          `json:"type"`
	Action string          `json:"action,omitempty"`
	Task   json.RawMessage `json:"task,omitempty"`
}

const defaultPingInterval = 30 * time.Second

// WatchOptions configures NewWatcher.
type WatchOptions struct {
	// URL is the ws:// or wss:// endpoint. Empty derives it from BaseURL.
	URL     string
	BaseURL string
	Token   string
	// PingInterval is how often a keepalive ping is sent. Zero means 30s.
	PingInterval time.Duration
	Dialer       *websocket.Dialer
	Logger       *slog.Logger
}

// Watcher subscribes to the service's task update socket.
type Watcher struct {
	url          string
	token        string
	pingInterval time.Duration
	dialer       *websocket.Dialer
	logger       *slog.Logger
}

// NewWatcher validates opts and creates a watcher. It does not connect.
func NewWatcher(opts WatchOptions) (*Watcher, error) {
	endpoint := opts.URL
	if endpoint == "" {
		var err error
		if endpoint, err = EventsURL(opts.BaseURL); err != nil {
			return nil, err
		}
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid events URL: %w", err)
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		return nil, fmt.Errorf("events URL must use ws or wss, got %q", u.Scheme)
	}

	w := &Watcher{
		url:          endpoint,
		token:        opts.Token,
		pingInterval: opts.PingInterval,
		dialer:       opts.Dialer,
		logger:       opts.Logger,
	}
	if w.pingInterval <= 0 {
		w.pingInterval = defaultPingInterval
	}
	if w.dialer == nil {
		w.dialer = websocket.DefaultDialer
	}
	if w.logger == nil {
		w.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return w, nil
}

// EventsURL derives the task update socket from the REST base URL: the
// scheme becomes ws or wss and the path is /ws/tasks/ on the same host.
func EventsURL(baseURL string) (string, error) {
	if baseURL == "" {
		return "", errors.New("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return "", fmt.Errorf("unsupported base URL scheme %q", u.Scheme)
	}
	u.Path = "/ws/tasks/"
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// Watch connects and calls handle for every task_update event until ctx is
// done, the service closes the socket normally, or handle returns an error.
// A keepalive ping is sent every PingInterval.
func (w *Watcher) Watch(ctx context.Context, handle func(Event) error) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+w.token)
	header.Set("X-Request-ID", uuid.New().String())

	conn, resp, err := w.dialer.DialContext(ctx, w.url, header)
	if err != nil {
		if resp != nil {
			err = &httpclient.StatusError{Code: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return wrap("watch tasks", err)
	}
	defer conn.Close()
	w.logger.Debug("watching task updates", "url", w.url)

	done := make(chan struct{})
	defer close(done)
	go w.keepalive(ctx, conn, done)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return wrap("watch tasks", err)
		}

		ev, ok := w.decodeEvent(data)
		if !ok || ev.Type != EventTaskUpdate {
			continue
		}
		if err := handle(ev); err != nil {
			return err
		}
	}
}

// keepalive pings until done, and closes the socket when ctx ends so the
// blocked read returns.
func (w *Watcher) keepalive(ctx context.Context, conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(w.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
			return
		case <-ticker.C:
			if err := conn.WriteJSON(wireEvent{Type: EventPing}); err != nil {
				w.logger.Debug("ping failed", "error", err)
				return
			}
		}
	}
}

func (w *Watcher) decodeEvent(data []byte) (Event, bool) {
	var raw wireEvent
	if err := json.Unmarshal(data, &raw); err != nil {
		w.logger.Warn("skipping malformed task event", "error", err)
		return Event{}, false
	}
	ev := Event{Type: raw.Type, Action: raw.Action}
	if len(raw.Task) > 0 && string(raw.Task) != "null" {
		var t task.Task
		if err := json.Unmarshal(raw.Task, &t); err != nil {
			w.logger.Warn("task event carries an undecodable task", "action", raw.Action, "error", err)
		} else {
			ev.Task = &t
		}
	}
	return ev, true
}
