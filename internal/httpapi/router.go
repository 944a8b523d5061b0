package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shoplane/storefront-chat/internal/chathub"
	"github.com/shoplane/storefront-chat/internal/common"
	"github.com/shoplane/storefront-chat/internal/config"
	"github.com/shoplane/storefront-chat/internal/conversation"
	"github.com/shoplane/storefront-chat/internal/httpapi/handlers"
	"github.com/shoplane/storefront-chat/internal/httpapi/middleware"
	"github.com/shoplane/storefront-chat/internal/store/redisstore"
	"gorm.io/gorm"
)

func NewRouter(db *gorm.DB, cfg config.Config, rds *redisstore.Store, events conversation.EventPublisher, hub *chathub.Hub) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Use(middleware.RequestID())

	h := handlers.NewHandler(db, cfg, rds, events, hub)

	r.GET("/ping", h.Ping)

	// Chat (JWT required): the wire contract the widget client speaks
	authGroup := r.Group("/")
	authGroup.Use(middleware.AuthRequired(cfg.JWTSecret))
	authGroup.POST("/chat/conversations", h.CreateConversation)
	authGroup.GET("/chat/conversations/:conversation_id/messages", h.ListConversationMessages)
	authGroup.POST("/chat/conversations/:conversation_id/messages", h.AppendConversationMessage)
	authGroup.POST("/chat/conversations/:conversation_id/read", h.MarkConversationRead)
	authGroup.GET("/chat/conversations/:conversation_id/ws", h.ConversationFeed)

	return r
}
