package conversation

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

type Repo struct {
	db *gorm.DB
}

func NewRepo(db *gorm.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) GetByConversationID(ctx context.Context, conversationID string) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *Repo) GetByCustomerAndProduct(ctx context.Context, customerID, productID uint64) (*Conversation, error) {
	var c Conversation
	if err := r.db.WithContext(ctx).
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateOrGetExisting tries to create a conversation, but if
// (customer_id, product_id) already exists, it returns the existing row
// instead. This is what makes find-or-create idempotent under concurrent
// opens of the same product.
func (r *Repo) CreateOrGetExisting(ctx context.Context, conv *Conversation) (*Conversation, bool, error) {
	err := r.db.WithContext(ctx).Create(conv).Error
	if err == nil {
		return conv, true, nil
	}

	existing, getErr := r.GetByCustomerAndProduct(ctx, conv.CustomerID, conv.ProductID)
	if getErr == nil {
		return existing, false, nil
	}

	if errors.Is(getErr, gorm.ErrRecordNotFound) {
		return nil, false, err
	}
	return nil, false, getErr
}

func (r *Repo) InsertMessage(ctx context.Context, m *Message) error {
	return r.db.WithContext(ctx).Create(m).Error
}

// ListMessagesAsc returns the full history in ASC order (oldest -> newest),
// which is the order the widget renders.
func (r *Repo) ListMessagesAsc(ctx context.Context, conversationID string) ([]Message, error) {
	var msgs []Message
	if err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("sent_at ASC, id ASC").
		Find(&msgs).Error; err != nil {
		return nil, err
	}
	return msgs, nil
}

// MarkReadFrom flips is_read on every message authored by senderType in the
// conversation. Read-state only ever changes here, server-side.
func (r *Repo) MarkReadFrom(ctx context.Context, conversationID, senderType string) error {
	return r.db.WithContext(ctx).Model(&Message{}).
		Where("conversation_id = ? AND sender_type = ? AND is_read = ?", conversationID, senderType, false).
		Update("is_read", true).Error
}
