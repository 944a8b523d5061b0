package conversation

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	SenderCustomer = "customer"
	SenderSeller   = "seller"
)

const MessageTypeText = "text"

type Conversation struct {
	ID             uint64 `gorm:"primaryKey;autoIncrement" json:"-"`
	ConversationID string `gorm:"type:varchar(26);uniqueIndex;not null" json:"conversation_id"`

	CustomerID uint64 `gorm:"not null;index:uniq_conv_customer_product,unique,priority:1" json:"-"`
	SellerID   uint64 `gorm:"index;not null" json:"seller_id"`
	ProductID  uint64 `gorm:"not null;index:uniq_conv_customer_product,unique,priority:2" json:"product_id"`

	Subject string `gorm:"type:varchar(255);not null" json:"subject"`

	// Seller display snapshot, resolved from the catalog at creation time.
	SellerName      string `gorm:"type:varchar(128)" json:"seller_name"`
	SellerAvatarURL string `gorm:"type:varchar(255)" json:"seller_avatar_url"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Conversation) TableName() string { return "chat_conversations" }

type Message struct {
	ID uint64 `gorm:"primaryKey;autoIncrement" json:"-"`

	MessageID      string `gorm:"type:varchar(26);uniqueIndex;not null" json:"message_id"`
	ConversationID string `gorm:"type:varchar(26);index;not null" json:"conversation_id"`

	SenderID   uint64 `gorm:"not null" json:"sender_id"`
	SenderType string `gorm:"type:varchar(16);not null" json:"sender_type"` // customer|seller

	MessageText string `gorm:"type:text;not null" json:"message_text"`
	MessageType string `gorm:"type:varchar(16);not null" json:"message_type"`

	SentAt time.Time `gorm:"index;not null" json:"sent_at"`
	IsRead bool      `gorm:"not null;default:false" json:"is_read"`
}

func (Message) TableName() string { return "chat_messages" }

func newULID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

func NewConversationID() (string, error) { return newULID() }

func NewMessageID() (string, error) { return newULID() }
