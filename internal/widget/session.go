package widget

import (
	"context"
	"sync"
	"time"
)

// Key identifies a chat window: one window per (seller, product) pair.
type Key struct {
	SellerID  uint64
	ProductID uint64
}

// SellerSnapshot and ProductSnapshot are read-only display data handed in by
// the host page at Open time. The widget never refetches them.
type SellerSnapshot struct {
	ID        uint64
	Name      string
	AvatarURL string
	Rating    float64
}

type ProductSnapshot struct {
	ID       uint64
	Name     string
	ImageURL string
	Price    float64
}

// Message is a server-acknowledged message. The widget never fabricates one;
// every entry came back from the messaging API.
type Message struct {
	MessageID      string    `json:"message_id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       uint64    `json:"sender_id"`
	SenderType     string    `json:"sender_type"` // customer|seller
	MessageText    string    `json:"message_text"`
	MessageType    string    `json:"message_type"`
	SentAt         time.Time `json:"sent_at"`
	IsRead         bool      `json:"is_read"`
}

const MessageTypeText = "text"

type session struct {
	key   Key
	epoch uint64

	seller  SellerSnapshot
	product ProductSnapshot

	open      bool
	minimized bool

	loading    bool
	bindFailed bool

	conversationID string
	messages       []Message
	draft          string

	bootstrapping bool
	sending       bool

	// aborts the in-flight bootstrap or send when the window closes
	cancel context.CancelFunc
}

// SessionView is the read-only snapshot handed to renderers. Mutating a view
// has no effect on the registry.
type SessionView struct {
	Key     Key
	Seller  SellerSnapshot
	Product ProductSnapshot

	Minimized  bool
	Loading    bool
	BindFailed bool

	Bound          bool
	ConversationID string
	Messages       []Message
	Draft          string
}

// Registry owns every live chat session, keyed by (seller, product). All
// mutation goes through its methods; asynchronous results are committed only
// after an epoch check, so a window closed or reopened mid-flight can never
// receive a stale result.
type Registry struct {
	mu        sync.Mutex
	sessions  map[Key]*session
	order     []Key // the order sessions became visible
	nextEpoch uint64
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[Key]*session)}
}

// Open inserts a new session for (seller, product), or surfaces the existing
// one (un-minimized, brought forward). Opening an existing session never
// duplicates it and never discards its binding.
func (r *Registry) Open(seller SellerSnapshot, product ProductSnapshot) (Key, bool) {
	key := Key{SellerID: seller.ID, ProductID: product.ID}

	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.sessions[key]; ok {
		s.open = true
		s.minimized = false
		return key, false
	}

	r.nextEpoch++
	r.sessions[key] = &session{
		key:     key,
		epoch:   r.nextEpoch,
		seller:  seller,
		product: product,
		open:    true,
	}
	r.order = append(r.order, key)
	return key, true
}

// Close removes the session entirely and aborts its in-flight work. A later
// Open with the same key starts a fresh bootstrap; nothing is cached across
// close/reopen.
func (r *Registry) Close(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	if s.cancel != nil {
		s.cancel()
	}
	delete(r.sessions, key)
	for i, k := range r.order {
		if k == key {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

func (r *Registry) Minimize(key Key) bool {
	return r.setMinimized(key, true)
}

func (r *Registry) Maximize(key Key) bool {
	return r.setMinimized(key, false)
}

func (r *Registry) ToggleMinimize(key Key) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	s.minimized = !s.minimized
	return true
}

func (r *Registry) setMinimized(key Key, minimized bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	s.minimized = minimized
	return true
}

// SetDraft stores the text currently in the session's input box.
func (r *Registry) SetDraft(key Key, text string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return false
	}
	s.draft = text
	return true
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Visible returns the open sessions in the order they became visible, which
// is the stacking order the LayoutEngine consumes.
func (r *Registry) Visible() []SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]SessionView, 0, len(r.order))
	for _, key := range r.order {
		s, ok := r.sessions[key]
		if !ok || !s.open {
			continue
		}
		out = append(out, viewOf(s))
	}
	return out
}

func (r *Registry) View(key Key) (SessionView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[key]
	if !ok {
		return SessionView{}, false
	}
	return viewOf(s), true
}

func viewOf(s *session) SessionView {
	msgs := make([]Message, len(s.messages))
	copy(msgs, s.messages)
	return SessionView{
		Key:            s.key,
		Seller:         s.seller,
		Product:        s.product,
		Minimized:      s.minimized,
		Loading:        s.loading,
		BindFailed:     s.bindFailed,
		Bound:          s.conversationID != "",
		ConversationID: s.conversationID,
		Messages:       msgs,
		Draft:          s.draft,
	}
}

// beginBootstrap admits a conversation bootstrap for the session and records
// the cancel hook. At most one bootstrap runs per unbound session.
func (r *Registry) beginBootstrap(key Key, cancel context.CancelFunc) (uint64, ProductSnapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return 0, ProductSnapshot{}, ErrSessionNotFound
	}
	if s.conversationID != "" {
		return 0, ProductSnapshot{}, ErrAlreadyBound
	}
	if s.bootstrapping {
		return 0, ProductSnapshot{}, ErrBootstrapInFlight
	}

	s.bootstrapping = true
	s.loading = true
	s.bindFailed = false
	s.cancel = cancel
	return s.epoch, s.product, nil
}

// commitBinding writes the bootstrap result, unless the session vanished or
// was replaced while the network call was out. Stale results are dropped.
func (r *Registry) commitBinding(key Key, epoch uint64, conversationID string, history []Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok || s.epoch != epoch {
		return false
	}
	s.conversationID = conversationID
	s.messages = history
	s.loading = false
	s.bootstrapping = false
	s.bindFailed = false
	s.cancel = nil
	return true
}

func (r *Registry) failBootstrap(key Key, epoch uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok || s.epoch != epoch {
		return false
	}
	s.loading = false
	s.bootstrapping = false
	s.bindFailed = true
	s.cancel = nil
	return true
}

// beginSend admits a send (single-flight per session) and clears the draft.
// The clear is the only optimistic effect a send has.
func (r *Registry) beginSend(key Key, cancel context.CancelFunc) (string, uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok {
		return "", 0, ErrSessionNotFound
	}
	if s.conversationID == "" {
		return "", 0, ErrNotBound
	}
	if s.sending {
		return "", 0, ErrSendInFlight
	}

	s.sending = true
	s.draft = ""
	s.cancel = cancel
	return s.conversationID, s.epoch, nil
}

// commitMessage appends the acknowledged message. Because sends are
// single-flight, append order equals acknowledgement order.
func (r *Registry) commitMessage(key Key, epoch uint64, m Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok || s.epoch != epoch {
		return false
	}
	s.messages = append(s.messages, m)
	s.sending = false
	s.cancel = nil
	return true
}

// failSend restores the typed text into the draft; the message list is left
// untouched.
func (r *Registry) failSend(key Key, epoch uint64, original string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[key]
	if !ok || s.epoch != epoch {
		return false
	}
	s.sending = false
	s.draft = original
	s.cancel = nil
	return true
}
