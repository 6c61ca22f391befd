// internal/dashboard/notify.go
// Notifikasi sementara (toast) per sesi + fan-out ke subscriber SSE.
package dashboard

import (
	"sync"
	"time"

	"smart-farming/internal/util"
)

const (
	VariantDefault     = "default"
	VariantDestructive = "destructive"

	maxNotifications = 50
	subscriberBuffer = 16
)

type Notification struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     string    `json:"variant"`
	At          time.Time `json:"at"`
}

// Event is what subscribers receive: either a notification or a state change.
type Event struct {
	Type         string        `json:"type"` // "notification" | "state"
	Notification *Notification `json:"notification,omitempty"`
	Busy         *bool         `json:"busy,omitempty"`
	WeatherBusy  *bool         `json:"weather_busy,omitempty"`
}

type Notifier struct {
	clock util.Clock

	mu    sync.Mutex
	items []Notification
	subs  map[chan Event]struct{}
}

func NewNotifier(clock util.Clock) *Notifier {
	if clock == nil {
		clock = util.RealClock{}
	}
	return &Notifier{clock: clock, subs: make(map[chan Event]struct{})}
}

// Notify appends a notification and fans it out. Slow subscribers miss events
// rather than block the publisher.
func (n *Notifier) Notify(title, description, variant string) Notification {
	note := Notification{
		ID:          util.NewID(),
		Title:       title,
		Description: description,
		Variant:     variant,
		At:          n.clock.Now(),
	}

	n.mu.Lock()
	n.items = append(n.items, note)
	if len(n.items) > maxNotifications {
		n.items = n.items[len(n.items)-maxNotifications:]
	}
	n.broadcastLocked(Event{Type: "notification", Notification: &note})
	n.mu.Unlock()
	return note
}

func (n *Notifier) State(busy, weatherBusy bool) {
	n.mu.Lock()
	n.broadcastLocked(Event{Type: "state", Busy: &busy, WeatherBusy: &weatherBusy})
	n.mu.Unlock()
}

func (n *Notifier) broadcastLocked(ev Event) {
	for ch := range n.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// List returns notifications newer than since (zero time = all), oldest first.
func (n *Notifier) List(since time.Time) []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Notification, 0, len(n.items))
	for _, it := range n.items {
		if it.At.After(since) {
			out = append(out, it)
		}
	}
	return out
}

// Subscribe returns a channel of events and a cancel func that must be called.
func (n *Notifier) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)
	n.mu.Lock()
	n.subs[ch] = struct{}{}
	n.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.subs, ch)
			n.mu.Unlock()
			close(ch)
		})
	}
}

func (n *Notifier) Subscribers() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}
