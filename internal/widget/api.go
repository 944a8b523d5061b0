package widget

import "context"

// ConversationInfo is what find-or-create returns about a conversation.
type ConversationInfo struct {
	ConversationID  string
	SellerID        uint64
	ProductID       uint64
	Subject         string
	SellerName      string
	SellerAvatarURL string
}

// ConversationAPI is the messaging backend the widget talks to. Implemented
// by chatclient.Client against the storefront chat service; faked in tests.
type ConversationAPI interface {
	// FindOrCreateConversation is idempotent per (customer, product): repeated
	// calls return the same conversation id.
	FindOrCreateConversation(ctx context.Context, productID uint64, subject string) (ConversationInfo, error)

	// ListMessages returns the conversation history, oldest first.
	ListMessages(ctx context.Context, conversationID string) ([]Message, error)

	// AppendMessage stores text and returns the canonical acknowledged message.
	AppendMessage(ctx context.Context, conversationID, text, messageType string) (Message, error)
}

// Auth reports the signed-in customer. The widget never signs users in; an
// unauthenticated host must redirect to login instead of opening chats.
type Auth interface {
	IsAuthenticated() bool
	UserID() uint64
}
