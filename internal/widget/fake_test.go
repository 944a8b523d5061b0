package widget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

const (
	waitFor = 2 * time.Second
	tick    = 5 * time.Millisecond
)

// fakeAPI scripts the messaging backend. Gates, when set, block the network
// call until closed, which is how the tests create in-flight windows.
type fakeAPI struct {
	mu sync.Mutex

	findCalls   int
	listCalls   int
	appendCalls int

	conversationID string
	history        []Message
	lastSubject    string
	sent           []string
	nextID         int

	failFind   bool
	failAppend bool

	findGate   chan struct{}
	appendGate chan struct{}
}

func newFakeAPI(conversationID string, history []Message) *fakeAPI {
	return &fakeAPI{conversationID: conversationID, history: history}
}

func (f *fakeAPI) FindOrCreateConversation(ctx context.Context, productID uint64, subject string) (ConversationInfo, error) {
	_ = ctx
	f.mu.Lock()
	f.findCalls++
	f.lastSubject = subject
	gate := f.findGate
	fail := f.failFind
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return ConversationInfo{}, errors.New("conversation endpoint unavailable")
	}
	return ConversationInfo{
		ConversationID: f.conversationID,
		ProductID:      productID,
		Subject:        subject,
	}, nil
}

func (f *fakeAPI) ListMessages(ctx context.Context, conversationID string) ([]Message, error) {
	_ = ctx
	_ = conversationID
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	out := make([]Message, len(f.history))
	copy(out, f.history)
	return out, nil
}

func (f *fakeAPI) AppendMessage(ctx context.Context, conversationID, text, messageType string) (Message, error) {
	_ = ctx
	f.mu.Lock()
	f.appendCalls++
	gate := f.appendGate
	fail := f.failAppend
	f.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if fail {
		return Message{}, errors.New("network down")
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, text)
	return Message{
		MessageID:      fmt.Sprintf("m-%d", f.nextID),
		ConversationID: conversationID,
		SenderID:       42,
		SenderType:     "customer",
		MessageText:    text,
		MessageType:    messageType,
		SentAt:         time.Now(),
	}, nil
}

func (f *fakeAPI) counts() (find, list, appended int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.findCalls, f.listCalls, f.appendCalls
}

func (f *fakeAPI) transmitted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

type fakeAuth struct {
	authenticated bool
	userID        uint64
}

func (a fakeAuth) IsAuthenticated() bool { return a.authenticated }
func (a fakeAuth) UserID() uint64        { return a.userID }

func sampleSeller() SellerSnapshot {
	return SellerSnapshot{ID: 7, Name: "Oak & Co", Rating: 4.8}
}

func sampleProduct() ProductSnapshot {
	return ProductSnapshot{ID: 101, Name: "Walnut Desk", Price: 349.99}
}

func sampleHistory() []Message {
	base := time.Date(2025, 11, 3, 10, 0, 0, 0, time.UTC)
	return []Message{
		{MessageID: "h-1", ConversationID: "55", SenderID: 42, SenderType: "customer", MessageText: "Hi, is this in stock?", MessageType: MessageTypeText, SentAt: base},
		{MessageID: "h-2", ConversationID: "55", SenderID: 7, SenderType: "seller", MessageText: "Yes, two left.", MessageType: MessageTypeText, SentAt: base.Add(time.Minute), IsRead: true},
	}
}
