package quiz

import (
	"context"
	"fmt"
	"strings"

	"quizbot/dbctx"
	"quizbot/model"
)

type Metric string

const (
	MetricTotalCorrect Metric = "total_correct"
	MetricBestStreak   Metric = "best_streak"
)

func ParseMetric(s string) (Metric, error) {
	switch Metric(strings.ToLower(strings.TrimSpace(s))) {
	case MetricTotalCorrect, "correct":
		return MetricTotalCorrect, nil
	case MetricBestStreak, "streak":
		return MetricBestStreak, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

func (m Metric) valueOf(u model.User) int {
	if m == MetricBestStreak {
		return u.BestStreak
	}
	return u.TotalCorrect
}

type LeaderboardEntry struct {
	Rank   int    `json:"rank"`
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
	Value  int    `json:"value"`
}

// TopN orders users by the metric descending, ties broken by smaller id first.
func (e *Engine) TopN(ctx context.Context, m Metric, n int) ([]LeaderboardEntry, error) {
	if _, err := ParseMetric(string(m)); err != nil {
		return nil, err
	}
	if n <= 0 {
		n = 10
	}
	users, err := e.repos.Users.TopBy(dbctx.New(ctx), string(m), n)
	if err != nil {
		return nil, err
	}
	out := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		out = append(out, LeaderboardEntry{Rank: i + 1, UserID: u.ID, Name: u.DisplayName(), Value: m.valueOf(u)})
	}
	return out, nil
}

// Rank places a user in the same order TopN uses without loading the board:
// users strictly above plus tied users with a smaller id, plus one.
func (e *Engine) Rank(ctx context.Context, userID int64, m Metric) (LeaderboardEntry, error) {
	if _, err := ParseMetric(string(m)); err != nil {
		return LeaderboardEntry{}, err
	}
	dbc := dbctx.New(ctx)
	u, err := e.repos.Users.Get(dbc, userID)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	if u == nil {
		return LeaderboardEntry{}, ErrUserNotFound
	}
	value := m.valueOf(*u)
	above, err := e.repos.Users.CountAbove(dbc, string(m), value)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	tied, err := e.repos.Users.CountTiedBefore(dbc, string(m), value, userID)
	if err != nil {
		return LeaderboardEntry{}, err
	}
	return LeaderboardEntry{
		Rank:   int(above+tied) + 1,
		UserID: u.ID,
		Name:   u.DisplayName(),
		Value:  value,
	}, nil
}
