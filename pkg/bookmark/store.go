package bookmark

import (
	"context"

	"github.com/go-redis/redis/v8"
)

// Stream names the bookmark slots: the ticket-history stream and the
// shared OMS stream (both OMS topics replay from the same position).
const (
	StreamTicket = "ticket"
	StreamOms    = "oms"
)

// Key is the redis key holding a stream's bookmark.
func Key(stream string) string {
	return "bookmark:" + stream
}

// Store supplies the raw bookmark string per stream.
type Store interface {
	Bookmark(ctx context.Context, stream string) (string, error)
}

// RedisStore reads bookmarks from redis. A missing key is not an error,
// it is simply an empty bookmark.
type RedisStore struct {
	Rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{Rdb: rdb}
}

func (s *RedisStore) Bookmark(ctx context.Context, stream string) (v string, err error) {
	v, err = s.Rdb.Get(ctx, Key(stream)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	return
}

// SaveBookmark writes a stream's bookmark, used by tooling and tests.
func (s *RedisStore) SaveBookmark(ctx context.Context, stream, v string) (err error) {
	err = s.Rdb.Set(ctx, Key(stream), v, 0).Err()
	return
}
