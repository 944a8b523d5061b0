package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoplane/storefront-chat/internal/common"
	"github.com/shoplane/storefront-chat/internal/conversation"
	"gorm.io/gorm"
)

type createConversationReq struct {
	ProductID uint64 `json:"productId" binding:"required"`
	Subject   string `json:"subject"`
}

// CreateConversation is the widget's find-or-create bootstrap call. Repeated
// posts for the same (customer, product) return the same conversation.
func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createConversationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	conv, created, err := h.ConvSvc.FindOrCreate(c.Request.Context(), uid, req.ProductID, req.Subject)
	if err != nil {
		log.Printf("find-or-create failed customer=%d product=%d err=%v", uid, req.ProductID, err)
		common.Fail(c, http.StatusInternalServerError, "failed to open conversation")
		return
	}
	_ = created

	common.OK(c, gin.H{"conversation": conv})
}

// ListConversationMessages returns the full history, oldest first.
func (h *Handler) ListConversationMessages(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := c.Param("conversation_id")

	msgs, err := h.ConvSvc.ListMessages(c.Request.Context(), uid, conversationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to list messages")
		return
	}

	// empty history still serializes as []
	if msgs == nil {
		msgs = []conversation.Message{}
	}

	common.OK(c, gin.H{"messages": msgs})
}

type appendMessageReq struct {
	MessageText string `json:"messageText" binding:"required"`
	MessageType string `json:"messageType"`
}

// AppendConversationMessage stores a message and returns the canonical row.
// The widget appends exactly this acknowledged message, nothing optimistic.
func (h *Handler) AppendConversationMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := c.Param("conversation_id")

	var req appendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, "invalid json")
		return
	}

	msg, err := h.ConvSvc.Append(c.Request.Context(), uid, conversationID, req.MessageText, req.MessageType)
	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			common.Fail(c, http.StatusNotFound, "conversation not found")
		case errors.Is(err, conversation.ErrEmptyMessage):
			common.Fail(c, http.StatusBadRequest, "message text is empty")
		default:
			common.Fail(c, http.StatusInternalServerError, "failed to send message")
		}
		return
	}

	common.OK(c, gin.H{"message": msg})
}

// MarkConversationRead flips is_read on the counterpart's messages and clears
// the reader's unread counter. Read-state never changes client-side.
func (h *Handler) MarkConversationRead(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	conversationID := c.Param("conversation_id")

	if err := h.ConvSvc.MarkRead(c.Request.Context(), uid, conversationID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			common.Fail(c, http.StatusNotFound, "conversation not found")
			return
		}
		common.Fail(c, http.StatusInternalServerError, "failed to mark read")
		return
	}

	if h.Redis != nil {
		if err := h.Redis.ResetUnread(c.Request.Context(), conversationID, uid); err != nil {
			log.Printf("reset unread failed conv=%s user=%d err=%v", conversationID, uid, err)
		}
	}

	common.OK(c, gin.H{})
}
