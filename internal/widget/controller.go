package widget

import (
	"context"
	"errors"
	"sync"
	"time"
)

type EventType string

const (
	EventOpened    EventType = "opened"
	EventSurfaced  EventType = "surfaced"
	EventClosed    EventType = "closed"
	EventMinimized EventType = "minimized"
	EventMaximized EventType = "maximized"

	EventBound      EventType = "bound"
	EventBindFailed EventType = "bind_failed"

	EventMessageAppended EventType = "message_appended"
	EventSendFailed      EventType = "send_failed"
)

// Event tells the renderer that the session under Key changed. Err is set on
// the *_failed events so hosts can show a retry affordance.
type Event struct {
	Type EventType
	Key  Key
	Err  error
}

type Config struct {
	BootstrapTimeout time.Duration
	SendTimeout      time.Duration
	EventBuffer      int
}

func (c Config) withDefaults() Config {
	if c.BootstrapTimeout <= 0 {
		c.BootstrapTimeout = 15 * time.Second
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = 10 * time.Second
	}
	if c.EventBuffer <= 0 {
		c.EventBuffer = 64
	}
	return c
}

// Controller is the host surface of the chat widget. It composes the session
// registry, the conversation binder and the message channel, runs bootstraps
// in the background, and reports changes on an event channel.
type Controller struct {
	cfg     Config
	reg     *Registry
	binder  *Binder
	channel *Channel
	auth    Auth

	events chan Event
	wg     sync.WaitGroup
}

func New(api ConversationAPI, auth Auth, cfg Config) *Controller {
	cfg = cfg.withDefaults()
	reg := NewRegistry()
	return &Controller{
		cfg:     cfg,
		reg:     reg,
		binder:  NewBinder(reg, api, auth),
		channel: NewChannel(reg, api),
		auth:    auth,
		events:  make(chan Event, cfg.EventBuffer),
	}
}

// Events delivers change notifications. The channel is buffered; if the host
// stops draining it, further events are dropped rather than blocking state
// transitions.
func (c *Controller) Events() <-chan Event { return c.events }

// Open creates or surfaces the chat window for (seller, product) and, when
// the session is not yet bound, kicks off the conversation bootstrap in the
// background. Repeated opens of the same pair are idempotent.
func (c *Controller) Open(ctx context.Context, seller SellerSnapshot, product ProductSnapshot) (Key, error) {
	if c.auth == nil || !c.auth.IsAuthenticated() {
		return Key{}, ErrAuthenticationRequired
	}

	key, created := c.reg.Open(seller, product)
	if created {
		c.emit(Event{Type: EventOpened, Key: key})
	} else {
		c.emit(Event{Type: EventSurfaced, Key: key})
	}

	c.maybeBootstrap(ctx, key)
	return key, nil
}

// Retry re-runs the bootstrap for an unbound session after a failure.
func (c *Controller) Retry(ctx context.Context, key Key) error {
	if c.auth == nil || !c.auth.IsAuthenticated() {
		return ErrAuthenticationRequired
	}
	view, ok := c.reg.View(key)
	if !ok {
		return ErrSessionNotFound
	}
	if view.Bound {
		return nil
	}
	c.maybeBootstrap(ctx, key)
	return nil
}

func (c *Controller) maybeBootstrap(ctx context.Context, key Key) {
	view, ok := c.reg.View(key)
	if !ok || view.Bound || view.Loading {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		bctx, cancel := context.WithTimeout(ctx, c.cfg.BootstrapTimeout)
		defer cancel()

		err := c.binder.Bind(bctx, key)
		switch {
		case err == nil:
			if v, ok := c.reg.View(key); ok && v.Bound {
				c.emit(Event{Type: EventBound, Key: key})
			}
		case errors.Is(err, ErrSessionNotFound),
			errors.Is(err, ErrAlreadyBound),
			errors.Is(err, ErrBootstrapInFlight):
			// lost an admission race; nothing to report
		default:
			if _, ok := c.reg.View(key); !ok {
				return // closed mid-flight
			}
			c.emit(Event{Type: EventBindFailed, Key: key, Err: err})
		}
	}()
}

// Send transmits text on the session's conversation and blocks until the
// acknowledgement. Admission errors (empty text, unbound session, send
// already in flight) return immediately without touching any state.
func (c *Controller) Send(ctx context.Context, key Key, text string) error {
	sctx, cancel := context.WithTimeout(ctx, c.cfg.SendTimeout)
	defer cancel()

	msg, err := c.channel.Send(sctx, key, text)
	if err != nil {
		switch {
		case errors.Is(err, ErrEmptyMessage),
			errors.Is(err, ErrSessionNotFound),
			errors.Is(err, ErrNotBound),
			errors.Is(err, ErrSendInFlight):
			return err
		}
		c.emit(Event{Type: EventSendFailed, Key: key, Err: err})
		return err
	}
	if msg != nil {
		c.emit(Event{Type: EventMessageAppended, Key: key})
	}
	return nil
}

func (c *Controller) Close(key Key) bool {
	if !c.reg.Close(key) {
		return false
	}
	c.emit(Event{Type: EventClosed, Key: key})
	return true
}

func (c *Controller) Minimize(key Key) bool {
	if !c.reg.Minimize(key) {
		return false
	}
	c.emit(Event{Type: EventMinimized, Key: key})
	return true
}

func (c *Controller) Maximize(key Key) bool {
	if !c.reg.Maximize(key) {
		return false
	}
	c.emit(Event{Type: EventMaximized, Key: key})
	return true
}

func (c *Controller) ToggleMinimize(key Key) bool {
	view, ok := c.reg.View(key)
	if !ok || !c.reg.ToggleMinimize(key) {
		return false
	}
	if view.Minimized {
		c.emit(Event{Type: EventMaximized, Key: key})
	} else {
		c.emit(Event{Type: EventMinimized, Key: key})
	}
	return true
}

func (c *Controller) SetDraft(key Key, text string) bool {
	return c.reg.SetDraft(key, text)
}

// Visible returns the open sessions in stacking order, ready for Layout.
func (c *Controller) Visible() []SessionView { return c.reg.Visible() }

func (c *Controller) View(key Key) (SessionView, bool) { return c.reg.View(key) }

// Wait blocks until every background bootstrap has finished. Test hook.
func (c *Controller) Wait() { c.wg.Wait() }

func (c *Controller) emit(ev Event) {
	select {
	case c.events <- ev:
	default:
	}
}
