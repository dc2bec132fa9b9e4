package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *[]string) func() error {
		return func() error {
			calls++
			*dest = []string{"go", "sql"}
			return nil
		}
	}

	var first []string
	require.NoError(t, Aside(ctx, TagNamesKey, &first, TagNamesTTL, fetch(&first)))
	var second []string
	require.NoError(t, Aside(ctx, TagNamesKey, &second, TagNamesTTL, fetch(&second)))

	assert.Equal(t, 1, calls)
	assert.Equal(t, []string{"go", "sql"}, second)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var dest []string
	err := Aside(ctx, UsersKey, &dest, UsersTTL, func() error { return errors.New("db down") })
	assert.Error(t, err)
	assert.False(t, mr.Exists(UsersKey))
}

func TestAside_WithoutRedisCallsFetch(t *testing.T) {
	SetClient(nil)

	var dest int
	err := Aside(context.Background(), LatestQuestionsKey(5), &dest, LatestQuestionsTTL, func() error {
		dest = 42
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, dest)
}

func TestInvalidateQuestions_RemovesEveryPage(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, LatestQuestionsKey(5), []int{1}, time.Minute))
	require.NoError(t, SetJSON(ctx, LatestQuestionsKey(10), []int{1}, time.Minute))
	require.NoError(t, SetJSON(ctx, TagNamesKey, []string{"go"}, time.Minute))

	InvalidateQuestions(ctx)

	assert.False(t, mr.Exists(LatestQuestionsKey(5)))
	assert.False(t, mr.Exists(LatestQuestionsKey(10)))
	assert.True(t, mr.Exists(TagNamesKey))
}

func TestBlacklist(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	revoked, err := IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, Blacklist(ctx, "jti-1", time.Hour))
	revoked, err = IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)

	mr.FastForward(2 * time.Hour)
	revoked, err = IsBlacklisted(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestKeyFamily(t *testing.T) {
	assert.Equal(t, "questions", keyFamily(LatestQuestionsKey(5)))
	assert.Equal(t, "tags", keyFamily(TagNamesKey))
}
