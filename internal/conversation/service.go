package conversation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/shoplane/storefront-chat/internal/catalog"
	"gorm.io/gorm"
)

var ErrEmptyMessage = errors.New("message text is empty")

// Catalog resolves the product a conversation is about. Implemented by
// catalog.Client; faked in tests.
type Catalog interface {
	Product(ctx context.Context, productID uint64) (*catalog.Product, error)
}

// Cache is the (customer, product) -> conversation_id fast path. A miss is
// ("", nil); errors are treated as misses too.
type Cache interface {
	GetConversationID(ctx context.Context, customerID, productID uint64) (string, error)
	SetConversationID(ctx context.Context, customerID, productID uint64, conversationID string) error
}

// MessagePostedEvent is published to the notifier queue after every append.
type MessagePostedEvent struct {
	ConversationID string `json:"conversation_id"`
	MessageID      string `json:"message_id"`
	SenderID       uint64 `json:"sender_id"`
	RecipientID    uint64 `json:"recipient_id"`
}

type EventPublisher interface {
	PublishMessagePosted(ctx context.Context, ev MessagePostedEvent) error
}

// Broadcaster pushes an appended message to live websocket subscribers.
type Broadcaster interface {
	BroadcastMessage(conversationID string, m Message)
}

type Service struct {
	repo    *Repo
	catalog Catalog
	cache   Cache
	events  EventPublisher
	live    Broadcaster
}

// NewService wires the conversation domain. cache, events and live may be nil
// (tests, degraded deployments); the service works without them.
func NewService(repo *Repo, cat Catalog, cache Cache, events EventPublisher, live Broadcaster) *Service {
	return &Service{repo: repo, catalog: cat, cache: cache, events: events, live: live}
}

// FindOrCreate returns the conversation between customerID and the seller of
// productID, creating it on first contact. Repeated calls for the same
// (customer, product) pair return the same conversation.
func (s *Service) FindOrCreate(ctx context.Context, customerID, productID uint64, subject string) (*Conversation, bool, error) {
	if s.cache != nil {
		if id, err := s.cache.GetConversationID(ctx, customerID, productID); err == nil && id != "" {
			if conv, err := s.repo.GetByConversationID(ctx, id); err == nil {
				return conv, false, nil
			}
			// stale cache entry; fall through to the DB path
		}
	}

	product, err := s.catalog.Product(ctx, productID)
	if err != nil {
		return nil, false, fmt.Errorf("resolve product %d: %w", productID, err)
	}

	cid, err := NewConversationID()
	if err != nil {
		return nil, false, err
	}

	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "Inquiry about " + product.Name
	}

	conv := &Conversation{
		ConversationID:  cid,
		CustomerID:      customerID,
		SellerID:        product.SellerID,
		ProductID:       productID,
		Subject:         subject,
		SellerName:      product.SellerName,
		SellerAvatarURL: product.SellerAvatarURL,
	}

	conv, created, err := s.repo.CreateOrGetExisting(ctx, conv)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.SetConversationID(ctx, customerID, productID, conv.ConversationID); err != nil {
			log.Printf("conversation cache set failed conv=%s err=%v", conv.ConversationID, err)
		}
	}
	return conv, created, nil
}

// ListMessages returns the full history ASC for a conversation the user is a
// participant of. Non-participants get record-not-found, same as a missing
// conversation.
func (s *Service) ListMessages(ctx context.Context, userID uint64, conversationID string) ([]Message, error) {
	conv, err := s.repo.GetByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if _, err := senderType(conv, userID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, conversationID)
}

// Append stores a new message and returns the canonical row (server id,
// sent_at, is_read). Fanout (queue event, live broadcast) is best-effort and
// never fails the append.
func (s *Service) Append(ctx context.Context, senderID uint64, conversationID, text, msgType string) (*Message, error) {
	conv, err := s.repo.GetByConversationID(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	st, err := senderType(conv, senderID)
	if err != nil {
		return nil, err
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}
	if msgType == "" {
		msgType = MessageTypeText
	}

	mid, err := NewMessageID()
	if err != nil {
		return nil, err
	}

	m := &Message{
		MessageID:      mid,
		ConversationID: conversationID,
		SenderID:       senderID,
		SenderType:     st,
		MessageText:    text,
		MessageType:    msgType,
		SentAt:         time.Now().UTC(),
	}
	if err := s.repo.InsertMessage(ctx, m); err != nil {
		return nil, err
	}

	if s.events != nil {
		ev := MessagePostedEvent{
			ConversationID: conversationID,
			MessageID:      m.MessageID,
			SenderID:       senderID,
			RecipientID:    counterpart(conv, senderID),
		}
		if err := s.events.PublishMessagePosted(ctx, ev); err != nil {
			log.Printf("message event publish failed conv=%s msg=%s err=%v", conversationID, m.MessageID, err)
		}
	}
	if s.live != nil {
		s.live.BroadcastMessage(conversationID, *m)
	}
	return m, nil
}

// MarkRead flips is_read on the counterpart's messages. The reader never
// marks its own messages.
func (s *Service) MarkRead(ctx context.Context, readerID uint64, conversationID string) error {
	conv, err := s.repo.GetByConversationID(ctx, conversationID)
	if err != nil {
		return err
	}
	st, err := senderType(conv, readerID)
	if err != nil {
		return err
	}
	from := SenderSeller
	if st == SenderSeller {
		from = SenderCustomer
	}
	return s.repo.MarkReadFrom(ctx, conversationID, from)
}

// EnsureParticipant reports whether userID may read the conversation.
// Non-participants get record-not-found, same as a missing conversation.
func (s *Service) EnsureParticipant(ctx context.Context, userID uint64, conversationID string) error {
	conv, err := s.repo.GetByConversationID(ctx, conversationID)
	if err != nil {
		return err
	}
	_, err = senderType(conv, userID)
	return err
}

func senderType(conv *Conversation, userID uint64) (string, error) {
	switch userID {
	case conv.CustomerID:
		return SenderCustomer, nil
	case conv.SellerID:
		return SenderSeller, nil
	default:
		// hide existence from non-participants
		return "", gorm.ErrRecordNotFound
	}
}

func counterpart(conv *Conversation, senderID uint64) uint64 {
	if senderID == conv.CustomerID {
		return conv.SellerID
	}
	return conv.CustomerID
}
