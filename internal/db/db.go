package db

import (
	"log"

	"github.com/shoplane/storefront-chat/internal/conversation"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func Connect(dsn string) *gorm.DB {
	gdb, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("db connect: %v", err)
	}
	if err := gdb.AutoMigrate(&conversation.Conversation{}, &conversation.Message{}); err != nil {
		log.Fatalf("db automigrate: %v", err)
	}
	return gdb
}
