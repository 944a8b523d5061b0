package widget

import (
	"context"
	"fmt"
)

// Binder performs the conversation bootstrap for a freshly opened session:
// find-or-create the server conversation, fetch its history, and bind both
// onto the session. The commit is epoch-guarded, so a result arriving after
// the window closed (or was reopened) is dropped on the floor.
type Binder struct {
	reg  *Registry
	api  ConversationAPI
	auth Auth
}

func NewBinder(reg *Registry, api ConversationAPI, auth Auth) *Binder {
	return &Binder{reg: reg, api: api, auth: auth}
}

// Bind blocks until the bootstrap finishes, fails, or ctx expires. Callers
// run it off the UI path. Closing the session cancels the in-flight calls.
func (b *Binder) Bind(ctx context.Context, key Key) error {
	if b.auth == nil || !b.auth.IsAuthenticated() {
		return ErrAuthenticationRequired
	}

	bctx, cancel := context.WithCancel(ctx)
	defer cancel()

	epoch, product, err := b.reg.beginBootstrap(key, cancel)
	if err != nil {
		return err
	}

	subject := "Inquiry about " + product.Name

	info, err := b.api.FindOrCreateConversation(bctx, product.ID, subject)
	if err != nil {
		b.reg.failBootstrap(key, epoch)
		return fmt.Errorf("conversation bootstrap: %w", err)
	}

	history, err := b.api.ListMessages(bctx, info.ConversationID)
	if err != nil {
		b.reg.failBootstrap(key, epoch)
		return fmt.Errorf("history fetch: %w", err)
	}

	// a false return means the session closed mid-flight; discard silently
	b.reg.commitBinding(key, epoch, info.ConversationID, history)
	return nil
}
