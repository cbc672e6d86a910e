// Package notify carries typed notices from the generation core to whatever
// surface displays them. The core emits notices as data and never renders
// anything; fallback notices expire on their own so a one-shot degraded-path
// message does not linger.
package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// DefaultTTL is how long a self-expiring notice stays active.
const DefaultTTL = 5 * time.Second

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a single message for the caller's display surface.
type Notice struct {
	ID        string
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Notifier fans notices out to subscribers and tracks the active set.
type Notifier struct {
	mu     sync.Mutex
	ttl    time.Duration
	active map[string]Notice
	subs   []func(Notice)
}

func New() *Notifier {
	return &Notifier{ttl: DefaultTTL, active: map[string]Notice{}}
}

// WithTTL overrides the expiry window; used by tests.
func (n *Notifier) WithTTL(ttl time.Duration) *Notifier {
	n.ttl = ttl
	return n
}

// Subscribe registers fn for every subsequently published notice.
func (n *Notifier) Subscribe(fn func(Notice)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.subs = append(n.subs, fn)
}

// Publish emits a notice and schedules its expiry.
func (n *Notifier) Publish(level Level, message string) Notice {
	notice := Notice{
		ID:        uuid.NewString(),
		Level:     level,
		Message:   message,
		CreatedAt: time.Now(),
	}

	n.mu.Lock()
	n.active[notice.ID] = notice
	subs := make([]func(Notice), len(n.subs))
	copy(subs, n.subs)
	n.mu.Unlock()

	log.Debug().Str("noticeId", notice.ID).Str("level", string(level)).Str("message", message).Msg("Notice published")
	for _, fn := range subs {
		fn(notice)
	}

	time.AfterFunc(n.ttl, func() {
		n.mu.Lock()
		delete(n.active, notice.ID)
		n.mu.Unlock()
	})
	return notice
}

// Active returns the notices that have not yet expired.
func (n *Notifier) Active() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notice, 0, len(n.active))
	for _, notice := range n.active {
		out = append(out, notice)
	}
	return out
}
