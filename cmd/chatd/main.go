package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/shoplane/storefront-chat/internal/chathub"
	"github.com/shoplane/storefront-chat/internal/config"
	"github.com/shoplane/storefront-chat/internal/conversation"
	"github.com/shoplane/storefront-chat/internal/db"
	"github.com/shoplane/storefront-chat/internal/httpapi"
	"github.com/shoplane/storefront-chat/internal/store/rabbitmq"
	"github.com/shoplane/storefront-chat/internal/store/redisstore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file, using environment")
	}

	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)

	rds := redisstore.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	pingCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	if err := rds.Ping(pingCtx); err != nil {
		log.Printf("redis unavailable, conversation cache and unread counters disabled: %v", err)
		_ = rds.Close()
		rds = nil
	}
	cancel()

	var events conversation.EventPublisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbitmq unavailable, message events disabled: %v", err)
	} else {
		defer pub.Close()
		events = pub
	}

	hub := chathub.NewHub()

	r := httpapi.NewRouter(gdb, cfg, rds, events, hub)

	log.Printf("chatd listening on %s", cfg.HTTPAddr)
	if err := r.Run(cfg.HTTPAddr); err != nil {
		log.Fatalf("http server: %v", err)
	}
}
