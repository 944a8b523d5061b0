package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shoplane/storefront-chat/internal/common"
	"gorm.io/gorm"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// storefront pages are served from another origin in development
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ConversationFeed upgrades to a websocket and streams messages appended to
// the conversation after connect. History comes from the REST endpoint; the
// feed carries only new messages.
func (h *Handler) ConversationFeed(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}
	if h.Hub == nil {
		common.Fail(c, http.StatusServiceUnavailable, "live feed disabled")
		return
	}

	conversationID := c.Param("conversation_id")
	if err := h.ConvSvc.EnsureParticipant(c.Request.Context(), uid, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to open feed")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade failed conv=%s err=%v", conversationID, err)
		return
	}

	sub := h.Hub.Subscribe(conversationID)
	defer h.Hub.Unsubscribe(conversationID, sub)

	// read pump: the feed is one-way, the reader only services control frames
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	defer conn.Close()

	for {
		select {
		case m, open := <-sub.C():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(m); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
