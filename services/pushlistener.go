package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// pushEvent mirrors the backend's websocket feed event shape.
type pushEvent struct {
	Event string `json:"event"`
}

const eventFeedPosted = "feed_posted"

// PushListener keeps a websocket subscription to the backend's feed events
// and pokes the feed freshness check when new content is announced. Polling
// remains the source of truth; the push channel only makes the check fire
// sooner. The listener reconnects with backoff until stopped.
type PushListener struct {
	url     string
	token   string
	onEvent func()

	mu      sync.Mutex
	cancel  context.CancelFunc
	running bool
}

func NewPushListener(url, token string, onEvent func()) *PushListener {
	return &PushListener{url: url, token: token, onEvent: onEvent}
}

func (l *PushListener) Start() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	l.cancel = cancel
	l.running = true
	go l.run(ctx)
}

func (l *PushListener) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.running {
		return
	}
	l.running = false
	l.cancel()
}

func (l *PushListener) run(ctx context.Context) {
	backoff := time.Second
	for {
		if ctx.Err() != nil {
			return
		}
		if err := l.listen(ctx); err != nil && ctx.Err() == nil {
			logrus.Debugf("push listener disconnected: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		if backoff < 30*time.Second {
			backoff *= 2
		}
	}
}

func (l *PushListener) listen(ctx context.Context) error {
	header := http.Header{}
	if l.token != "" {
		header.Set("Authorization", "Bearer "+l.token)
	}
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, l.url, header)
	if err != nil {
		return err
	}
	defer conn.Close()

	go func() {
		<-ctx.Done()
		conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var event pushEvent
		if err := json.Unmarshal(data, &event); err != nil {
			logrus.Debugf("push listener: unparseable event: %v", err)
			continue
		}
		if event.Event == eventFeedPosted && l.onEvent != nil {
			l.onEvent()
		}
	}
}
