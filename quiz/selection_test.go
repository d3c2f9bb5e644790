package quiz_test

import (
	"errors"
	"testing"

	"quizbot/quiz"
	"quizbot/store/storetest"
)

func TestPickAvoidsRepeatsUntilPoolExhausted(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, 1)
	qs := f.questions(t, 5)
	pool := make(map[int64]bool, len(qs))
	for _, q := range qs {
		pool[q.ID] = true
	}

	seen := make(map[int64]bool)
	for i := 0; i < len(qs); i++ {
		q := f.pick(t, 1)
		if seen[q.ID] {
			t.Fatalf("Pick %d: question %d repeated while unseen ones remain", i, q.ID)
		}
		seen[q.ID] = true
		if res, err := f.sessions.Claim(f.ctx, 1, q.ID); err != nil || res != quiz.ClaimOK {
			t.Fatalf("Claim: %v %v", res, err)
		}
	}

	// every question was shown, so repeats come from the full pool
	q := f.pick(t, 1)
	if !pool[q.ID] {
		t.Fatalf("Pick after exhaustion: got id %d outside the pool", q.ID)
	}
}

func TestPickRequiresAnsweredQuestion(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, 1)
	f.questions(t, 3)

	f.pick(t, 1)
	if _, err := f.engine.Pick(f.ctx, 1); !errors.Is(err, quiz.ErrAnswerPending) {
		t.Fatalf("Pick with pending answer: expected ErrAnswerPending, got %v", err)
	}
	if err := f.engine.ResetSession(f.ctx, 1); err != nil {
		t.Fatalf("ResetSession: %v", err)
	}
	f.pick(t, 1)
}

func TestPickHonoursModeFilter(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, 1)
	topic := storetest.SeedTopic(t, f.repos.DB, "History", true)
	inTopic := storetest.SeedQuestion(t, f.repos.DB, "topic question", &topic.ID, nil)
	hard := storetest.SeedQuestion(t, f.repos.DB, "hard question", nil, storetest.Int(5))
	storetest.SeedQuestion(t, f.repos.DB, "plain question", nil, nil)

	if err := f.engine.SetModeTopic(f.ctx, 1, topic.ID); err != nil {
		t.Fatalf("SetModeTopic: %v", err)
	}
	for i := 0; i < 3; i++ {
		if q := f.pick(t, 1); q.ID != inTopic.ID {
			t.Fatalf("Pick in topic mode: got question %d", q.ID)
		}
		_ = f.engine.ResetSession(f.ctx, 1)
	}

	if err := f.engine.SetModeDifficulty(f.ctx, 1, 5); err != nil {
		t.Fatalf("SetModeDifficulty: %v", err)
	}
	if q := f.pick(t, 1); q.ID != hard.ID {
		t.Fatalf("Pick in difficulty mode: got question %d", q.ID)
	}
	_ = f.engine.ResetSession(f.ctx, 1)

	if err := f.engine.SetModeDifficulty(f.ctx, 1, 2); err != nil {
		t.Fatalf("SetModeDifficulty: %v", err)
	}
	q, err := f.engine.Pick(f.ctx, 1)
	if err != nil || q != nil {
		t.Fatalf("Pick with empty pool: expected nil, got %v %v", q, err)
	}
}
