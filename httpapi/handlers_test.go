package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"quizbot/logger"
	"quizbot/model"
	"quizbot/quiz"
	"quizbot/store/storetest"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repos := storetest.Repos(t)
	for _, u := range []model.User{
		{ID: 1, Username: "ann", TotalCorrect: 5, BestStreak: 2},
		{ID: 2, Username: "bob", TotalCorrect: 8, BestStreak: 1},
	} {
		if err := repos.DB.Create(&u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	eng := quiz.New(repos, quiz.NewMemorySessionStore(nil), logger.Nop(), quiz.Options{})
	if err := eng.EnsureUser(context.Background(), 1, "", "ann"); err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	return NewRouter(NewQuizHandler(eng, logger.Nop()))
}

func get(t *testing.T, r *gin.Engine, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	r := newTestRouter(t)
	rec := get(t, r, "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthz: got=%d %q", rec.Code, rec.Body.String())
	}
}

func TestLeaderboard(t *testing.T) {
	r := newTestRouter(t)
	rec := get(t, r, "/v1/leaderboard/total_correct?limit=1")
	if rec.Code != http.StatusOK {
		t.Fatalf("leaderboard: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var body leaderboardResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("leaderboard: decode: %v", err)
	}
	if len(body.Entries) != 1 || body.Entries[0].UserID != 2 {
		t.Fatalf("leaderboard: unexpected entries %+v", body.Entries)
	}

	if rec := get(t, r, "/v1/leaderboard/total_wrong"); rec.Code != http.StatusBadRequest {
		t.Fatalf("leaderboard unknown metric: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
	if rec := get(t, r, "/v1/leaderboard/best_streak?limit=zero"); rec.Code != http.StatusBadRequest {
		t.Fatalf("leaderboard bad limit: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserRank(t *testing.T) {
	r := newTestRouter(t)
	rec := get(t, r, "/v1/users/1/rank/best_streak")
	if rec.Code != http.StatusOK {
		t.Fatalf("rank: unexpected status %d", rec.Code)
	}
	var entry quiz.LeaderboardEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("rank: decode: %v", err)
	}
	if entry.Rank != 1 || entry.Value != 2 {
		t.Fatalf("rank: unexpected %+v", entry)
	}
	if rec := get(t, r, "/v1/users/99/rank/best_streak"); rec.Code != http.StatusNotFound {
		t.Fatalf("rank unknown user: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
	if rec := get(t, r, "/v1/users/abc/rank/best_streak"); rec.Code != http.StatusBadRequest {
		t.Fatalf("rank bad id: got=%d want=%d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserStats(t *testing.T) {
	r := newTestRouter(t)
	rec := get(t, r, "/v1/users/1/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: unexpected status %d: %s", rec.Code, rec.Body.String())
	}
	var body statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("stats: decode: %v", err)
	}
	if body.TotalCorrect != 5 || body.DailyCap != quiz.DefaultDailyCap || body.Unlimited {
		t.Fatalf("stats: unexpected %+v", body)
	}
	if rec := get(t, r, "/v1/users/404/stats"); rec.Code != http.StatusNotFound {
		t.Fatalf("stats unknown user: got=%d want=%d", rec.Code, http.StatusNotFound)
	}
}
