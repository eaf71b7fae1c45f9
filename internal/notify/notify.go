// Package notify holds the transient message shown at the bottom of the
// screen. A message replaces whatever was showing and disappears on its
// own once it has been visible for its TTL.
package notify

import (
	"sync"
	"time"
)

// Level classifies a message for styling.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

// DefaultTTL is how long a message stays visible.
const DefaultTTL = 3 * time.Second

// Message is one notification. Expires is zero until the message is first
// read through Current.
type Message struct {
	Level   Level
	Text    string
	Expires time.Time
}

// Presenter stores the current message. Safe for concurrent use.
type Presenter struct {
	mu  sync.Mutex
	ttl time.Duration
	now func() time.Time
	msg *Message
	seq int
}

// New returns a presenter whose messages last ttl (DefaultTTL when zero).
func New(ttl time.Duration) *Presenter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Presenter{ttl: ttl, now: time.Now}
}

// Info shows a neutral message.
func (p *Presenter) Info(text string) { p.show(LevelInfo, text) }

// Success shows a confirmation.
func (p *Presenter) Success(text string) { p.show(LevelSuccess, text) }

// Error shows a failure.
func (p *Presenter) Error(text string) { p.show(LevelError, text) }

// Current returns the visible message, if any. The TTL starts on the first
// call that sees a message, so a message raised before anything is drawn
// still gets its full display time. Expired messages are dismissed here.
func (p *Presenter) Current() (Message, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.msg == nil {
		return Message{}, false
	}
	if p.msg.Expires.IsZero() {
		p.msg.Expires = p.now().Add(p.ttl)
	}
	if !p.now().Before(p.msg.Expires) {
		p.msg = nil
		return Message{}, false
	}
	return *p.msg, true
}

// Seq increments with every message shown; the UI uses it to notice new
// messages between ticks.
func (p *Presenter) Seq() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seq
}

// Dismiss clears the current message early.
func (p *Presenter) Dismiss() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msg = nil
}

func (p *Presenter) show(level Level, text string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.seq++
	p.msg = &Message{Level: level, Text: text}
}
