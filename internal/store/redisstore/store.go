package redisstore

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const convCacheTTL = 24 * time.Hour

type Store struct {
	rdb *redis.Client
}

func New(addr, password string, db int) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{rdb: rdb}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

func convKey(customerID, productID uint64) string {
	return fmt.Sprintf("chat:conv:%d:%d", customerID, productID)
}

func unreadKey(conversationID string, userID uint64) string {
	return fmt.Sprintf("chat:unread:%s:%d", conversationID, userID)
}

// GetConversationID returns "" with a nil error on a cache miss.
func (s *Store) GetConversationID(ctx context.Context, customerID, productID uint64) (string, error) {
	v, err := s.rdb.Get(ctx, convKey(customerID, productID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

func (s *Store) SetConversationID(ctx context.Context, customerID, productID uint64, conversationID string) error {
	return s.rdb.Set(ctx, convKey(customerID, productID), conversationID, convCacheTTL).Err()
}

// IncrUnread bumps the recipient's unread counter for a conversation.
func (s *Store) IncrUnread(ctx context.Context, conversationID string, userID uint64) (int64, error) {
	return s.rdb.Incr(ctx, unreadKey(conversationID, userID)).Result()
}

func (s *Store) ResetUnread(ctx context.Context, conversationID string, userID uint64) error {
	return s.rdb.Del(ctx, unreadKey(conversationID, userID)).Err()
}

func (s *Store) Unread(ctx context.Context, conversationID string, userID uint64) (int64, error) {
	v, err := s.rdb.Get(ctx, unreadKey(conversationID, userID)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return v, err
}

func (s *Store) Close() error {
	return s.rdb.Close()
}
