package cache

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const (
	TagNamesKey            = "tags:names"
	UsersKey               = "users:all"
	LatestQuestionsPrefix  = "questions:latest:"
	latestQuestionsPattern = LatestQuestionsPrefix + "%d"
	BlacklistPrefix        = "blacklist:"
)

const (
	TagNamesTTL        = 10 * time.Minute
	UsersTTL           = 5 * time.Minute
	LatestQuestionsTTL = time.Minute
)

// LatestQuestionsKey caches the n most recent questions.
func LatestQuestionsKey(n int) string {
	return fmt.Sprintf(latestQuestionsPattern, n)
}

// BlacklistKey marks a revoked token id.
func BlacklistKey(jti string) string {
	return BlacklistPrefix + jti
}

func keyFamily(key string) string {
	family, _, _ := strings.Cut(key, ":")
	return family
}

// Invalidate deletes key. Errors are ignored: a stale entry expires with its TTL.
func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

// InvalidatePrefix deletes every key starting with prefix.
func InvalidatePrefix(ctx context.Context, prefix string) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}

// InvalidateQuestions drops every cached "latest questions" page.
func InvalidateQuestions(ctx context.Context) {
	InvalidatePrefix(ctx, LatestQuestionsPrefix)
}

func InvalidateTags(ctx context.Context) {
	Invalidate(ctx, TagNamesKey)
}

func InvalidateUsers(ctx context.Context) {
	Invalidate(ctx, UsersKey)
}

// Blacklist records jti as revoked until ttl elapses.
func Blacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if client == nil {
		return nil
	}
	return client.Set(ctx, BlacklistKey(jti), "1", ttl).Err()
}

// IsBlacklisted reports whether jti was revoked. Without Redis nothing is revoked.
func IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	if client == nil {
		return false, nil
	}
	n, err := client.Exists(ctx, BlacklistKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
