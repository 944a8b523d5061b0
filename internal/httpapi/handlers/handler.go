package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/shoplane/storefront-chat/internal/catalog"
	"github.com/shoplane/storefront-chat/internal/chathub"
	"github.com/shoplane/storefront-chat/internal/config"
	"github.com/shoplane/storefront-chat/internal/conversation"
	"github.com/shoplane/storefront-chat/internal/httpapi/middleware"
	"github.com/shoplane/storefront-chat/internal/store/redisstore"
	"gorm.io/gorm"
)

type Handler struct {
	Cfg     config.Config
	ConvSvc *conversation.Service
	Hub     *chathub.Hub
	Redis   *redisstore.Store
}

func NewHandler(db *gorm.DB, cfg config.Config, rds *redisstore.Store, events conversation.EventPublisher, hub *chathub.Hub) *Handler {
	repo := conversation.NewRepo(db)
	cat := catalog.NewClient(cfg.CatalogBaseURL)

	// typed-nil guards: a nil *Store must become a nil interface
	var cache conversation.Cache
	if rds != nil {
		cache = rds
	}
	var live conversation.Broadcaster
	if hub != nil {
		live = hub
	}

	svc := conversation.NewService(repo, cat, cache, events, live)
	return &Handler{Cfg: cfg, ConvSvc: svc, Hub: hub, Redis: rds}
}

func (h *Handler) Ping(c *gin.Context) {
	c.JSON(200, gin.H{"message": "pong"})
}

func userIDFromContext(c *gin.Context) (uint64, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint64)
	return id, ok
}
