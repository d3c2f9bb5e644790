package quiz

import (
	"context"
	"errors"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const sessionKeyPrefix = "quiz:session:"

// Each script keeps one transition atomic on the server.
var (
	activateScript = goredis.NewScript(`
local active = redis.call('HGET', KEYS[1], 'active')
local answered = redis.call('HGET', KEYS[1], 'answered')
if active and active ~= '0' and answered ~= '1' then
  return 0
end
redis.call('HSET', KEYS[1], 'active', ARGV[1], 'answered', '0')
redis.call('SADD', KEYS[2], ARGV[1])
redis.call('PEXPIRE', KEYS[1], ARGV[2])
redis.call('PEXPIRE', KEYS[2], ARGV[2])
return 1
`)
	claimScript = goredis.NewScript(`
local active = redis.call('HGET', KEYS[1], 'active')
local answered = redis.call('HGET', KEYS[1], 'answered')
if active and active ~= '0' and answered == '1' then
  return 1
end
if active ~= ARGV[1] then
  return 2
end
redis.call('HSET', KEYS[1], 'answered', '1')
redis.call('PEXPIRE', KEYS[1], ARGV[2])
return 0
`)
	releaseScript = goredis.NewScript(`
if redis.call('HGET', KEYS[1], 'active') == ARGV[1] then
  redis.call('HSET', KEYS[1], 'answered', '0')
end
return 1
`)
)

// RedisSessionStore keeps sessions in Redis so several bot processes share them.
type RedisSessionStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisSessionStore(rdb *goredis.Client, ttl time.Duration) *RedisSessionStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisSessionStore{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionStore) keys(userID int64) []string {
	base := sessionKeyPrefix + strconv.FormatInt(userID, 10)
	return []string{base, base + ":asked"}
}

func (r *RedisSessionStore) Get(ctx context.Context, userID int64) (Session, error) {
	keys := r.keys(userID)
	out := Session{Asked: map[int64]struct{}{}}

	fields, err := r.rdb.HGetAll(ctx, keys[0]).Result()
	if err != nil {
		return out, err
	}
	if v, ok := fields["active"]; ok {
		out.ActiveID, _ = strconv.ParseInt(v, 10, 64)
	}
	out.Answered = fields["answered"] == "1"

	members, err := r.rdb.SMembers(ctx, keys[1]).Result()
	if err != nil {
		return out, err
	}
	for _, m := range members {
		if id, err := strconv.ParseInt(m, 10, 64); err == nil {
			out.Asked[id] = struct{}{}
		}
	}
	return out, nil
}

func (r *RedisSessionStore) Reset(ctx context.Context, userID int64) error {
	return r.rdb.Del(ctx, r.keys(userID)...).Err()
}

func (r *RedisSessionStore) Activate(ctx context.Context, userID, questionID int64) error {
	n, err := activateScript.Run(ctx, r.rdb, r.keys(userID), questionID, r.ttl.Milliseconds()).Int()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrAnswerPending
	}
	return nil
}

func (r *RedisSessionStore) Claim(ctx context.Context, userID, questionID int64) (ClaimResult, error) {
	n, err := claimScript.Run(ctx, r.rdb, r.keys(userID), questionID, r.ttl.Milliseconds()).Int()
	if err != nil {
		return ClaimStale, err
	}
	switch n {
	case 0:
		return ClaimOK, nil
	case 1:
		return ClaimAlreadyAnswered, nil
	case 2:
		return ClaimStale, nil
	}
	return ClaimStale, errors.New("unexpected claim script result")
}

func (r *RedisSessionStore) Release(ctx context.Context, userID, questionID int64) error {
	return releaseScript.Run(ctx, r.rdb, r.keys(userID), questionID).Err()
}
