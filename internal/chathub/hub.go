package chathub

import (
	"sync"

	"github.com/shoplane/storefront-chat/internal/conversation"
)

// Hub fans appended messages out to live websocket subscribers, grouped by
// conversation. It holds no history; late subscribers fetch history over the
// REST endpoint first.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscriber]struct{}
}

type Subscriber struct {
	ch chan conversation.Message
}

func (s *Subscriber) C() <-chan conversation.Message { return s.ch }

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[*Subscriber]struct{})}
}

func (h *Hub) Subscribe(conversationID string) *Subscriber {
	sub := &Subscriber{ch: make(chan conversation.Message, 16)}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[*Subscriber]struct{})
	}
	h.subs[conversationID][sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(conversationID string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.subs[conversationID]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	close(sub.ch)
	if len(set) == 0 {
		delete(h.subs, conversationID)
	}
}

// BroadcastMessage delivers m to every subscriber of the conversation.
// Slow subscribers are skipped rather than blocking the append path.
func (h *Hub) BroadcastMessage(conversationID string, m conversation.Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[conversationID] {
		select {
		case sub.ch <- m:
		default:
		}
	}
}
