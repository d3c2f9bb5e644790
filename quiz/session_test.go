package quiz_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"quizbot/quiz"
)

func exerciseSessionStore(t *testing.T, s quiz.SessionStore) {
	t.Helper()
	ctx := context.Background()
	const uid = int64(42)

	if err := s.Reset(ctx, uid); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if res, _ := s.Claim(ctx, uid, 1); res != quiz.ClaimStale {
		t.Fatalf("Claim on idle session: expected stale, got %v", res)
	}
	if err := s.Activate(ctx, uid, 1); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if err := s.Activate(ctx, uid, 2); !errors.Is(err, quiz.ErrAnswerPending) {
		t.Fatalf("Activate while pending: expected ErrAnswerPending, got %v", err)
	}
	if res, _ := s.Claim(ctx, uid, 2); res != quiz.ClaimStale {
		t.Fatalf("Claim wrong id: expected stale, got %v", res)
	}
	if res, _ := s.Claim(ctx, uid, 1); res != quiz.ClaimOK {
		t.Fatalf("Claim active id: expected ok, got %v", res)
	}
	if res, _ := s.Claim(ctx, uid, 1); res != quiz.ClaimAlreadyAnswered {
		t.Fatalf("Claim twice: expected already answered, got %v", res)
	}
	if err := s.Release(ctx, uid, 1); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if res, _ := s.Claim(ctx, uid, 1); res != quiz.ClaimOK {
		t.Fatalf("Claim after release: expected ok, got %v", res)
	}
	if err := s.Activate(ctx, uid, 2); err != nil {
		t.Fatalf("Activate after answer: %v", err)
	}

	sess, err := s.Get(ctx, uid)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.ActiveID != 2 || sess.Answered || len(sess.Asked) != 2 {
		t.Fatalf("Get: unexpected session %+v", sess)
	}

	if err := s.Reset(ctx, uid); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	sess, _ = s.Get(ctx, uid)
	if !sess.Idle() || len(sess.Asked) != 0 {
		t.Fatalf("Get after reset: expected idle, got %+v", sess)
	}
}

func TestMemorySessionStore(t *testing.T) {
	exerciseSessionStore(t, quiz.NewMemorySessionStore(nil))
}

func TestMemorySessionStoreSweep(t *testing.T) {
	clk := &clock{t: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	s := quiz.NewMemorySessionStore(clk.Now)
	ctx := context.Background()
	_ = s.Activate(ctx, 1, 10)
	clk.Advance(time.Hour)
	_ = s.Activate(ctx, 2, 10)

	if n := s.Sweep(30 * time.Minute); n != 1 {
		t.Fatalf("Sweep: expected 1 removed, got %d", n)
	}
	if sess, _ := s.Get(ctx, 2); sess.ActiveID != 10 {
		t.Fatalf("Sweep removed a fresh session")
	}
	if sess, _ := s.Get(ctx, 1); !sess.Idle() {
		t.Fatalf("Sweep kept an idle session")
	}
}

func TestRedisSessionStore(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr})
	t.Cleanup(func() { _ = rdb.Close() })
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	exerciseSessionStore(t, quiz.NewRedisSessionStore(rdb, time.Minute))
}
