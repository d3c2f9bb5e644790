package quiz_test

import (
	"errors"
	"testing"

	"quizbot/model"
	"quizbot/quiz"
)

func seedScores(tb testing.TB, f *fixture) {
	tb.Helper()
	users := []model.User{
		{ID: 30, Username: "carol", TotalCorrect: 7, BestStreak: 2},
		{ID: 10, Username: "alice", TotalCorrect: 7, BestStreak: 5},
		{ID: 20, Username: "bob", TotalCorrect: 9, BestStreak: 1},
		{ID: 40, FirstName: "Dan", TotalCorrect: 0},
	}
	for i := range users {
		if err := f.repos.DB.Create(&users[i]).Error; err != nil {
			tb.Fatalf("seed user: %v", err)
		}
	}
}

func TestTopNOrdersWithIDTieBreak(t *testing.T) {
	f := newFixture(t, nil)
	seedScores(t, f)

	top, err := f.engine.TopN(f.ctx, quiz.MetricTotalCorrect, 3)
	if err != nil {
		t.Fatalf("TopN: %v", err)
	}
	want := []int64{20, 10, 30}
	if len(top) != len(want) {
		t.Fatalf("TopN: expected %d entries, got %d", len(want), len(top))
	}
	for i, id := range want {
		if top[i].UserID != id || top[i].Rank != i+1 {
			t.Fatalf("TopN[%d]: expected user %d, got %+v", i, id, top[i])
		}
	}
	if top[1].Name != "alice" {
		t.Fatalf("TopN: expected display name alice, got %q", top[1].Name)
	}
}

func TestRankMatchesTopN(t *testing.T) {
	f := newFixture(t, nil)
	seedScores(t, f)

	cases := []struct {
		user   int64
		metric quiz.Metric
		rank   int
	}{
		{20, quiz.MetricTotalCorrect, 1},
		{10, quiz.MetricTotalCorrect, 2},
		{30, quiz.MetricTotalCorrect, 3},
		{40, quiz.MetricTotalCorrect, 4},
		{10, quiz.MetricBestStreak, 1},
		{30, quiz.MetricBestStreak, 2},
	}
	for _, tc := range cases {
		got, err := f.engine.Rank(f.ctx, tc.user, tc.metric)
		if err != nil {
			t.Fatalf("Rank(%d, %s): %v", tc.user, tc.metric, err)
		}
		if got.Rank != tc.rank {
			t.Fatalf("Rank(%d, %s): expected %d, got %d", tc.user, tc.metric, tc.rank, got.Rank)
		}
	}
}

func TestRankErrors(t *testing.T) {
	f := newFixture(t, nil)
	if _, err := f.engine.Rank(f.ctx, 99, quiz.MetricTotalCorrect); !errors.Is(err, quiz.ErrUserNotFound) {
		t.Fatalf("Rank unknown user: expected ErrUserNotFound, got %v", err)
	}
	if _, err := f.engine.TopN(f.ctx, quiz.Metric("total_wrong"), 5); !errors.Is(err, quiz.ErrUnknownMetric) {
		t.Fatalf("TopN unknown metric: expected ErrUnknownMetric, got %v", err)
	}
	if m, err := quiz.ParseMetric("streak"); err != nil || m != quiz.MetricBestStreak {
		t.Fatalf("ParseMetric(streak): %v %v", m, err)
	}
}
