package widget

import (
	"context"
	"fmt"
	"strings"
)

// Channel sends messages for bound sessions with single-flight discipline:
// at most one outstanding send per session, so append order equals
// acknowledgement order and double-clicks never double-submit.
type Channel struct {
	reg *Registry
	api ConversationAPI
}

func NewChannel(reg *Registry, api ConversationAPI) *Channel {
	return &Channel{reg: reg, api: api}
}

// Send transmits text and blocks until the server acknowledges or ctx
// expires. The draft clears as soon as the send is admitted; on failure the
// original text is restored and the message list is untouched. The returned
// message is nil when the session closed before the acknowledgement arrived
// (the ack is discarded, not replayed).
func (ch *Channel) Send(ctx context.Context, key Key, text string) (*Message, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyMessage
	}

	sctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conversationID, epoch, err := ch.reg.beginSend(key, cancel)
	if err != nil {
		return nil, err
	}

	msg, err := ch.api.AppendMessage(sctx, conversationID, text, MessageTypeText)
	if err != nil {
		ch.reg.failSend(key, epoch, text)
		return nil, fmt.Errorf("message send: %w", err)
	}

	if !ch.reg.commitMessage(key, epoch, msg) {
		return nil, nil
	}
	return &msg, nil
}
