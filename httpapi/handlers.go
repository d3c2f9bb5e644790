package httpapi

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"quizbot/logger"
	"quizbot/quiz"
)

const (
	defaultBoardLimit = 10
	maxBoardLimit     = 100
)

type QuizHandler struct {
	engine *quiz.Engine
	log    *logger.Logger
}

func NewQuizHandler(engine *quiz.Engine, baseLog *logger.Logger) *QuizHandler {
	return &QuizHandler{engine: engine, log: baseLog.With("handler", "QuizHandler")}
}

func (h *QuizHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type leaderboardResponse struct {
	Metric  quiz.Metric             `json:"metric"`
	Entries []quiz.LeaderboardEntry `json:"entries"`
}

// GET /v1/leaderboard/:metric?limit=N
func (h *QuizHandler) Leaderboard(c *gin.Context) {
	metric, err := quiz.ParseMetric(c.Param("metric"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unknown_metric", err)
		return
	}
	limit := defaultBoardLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			RespondError(c, http.StatusBadRequest, "invalid_limit", errors.New("limit must be a positive integer"))
			return
		}
		limit = min(n, maxBoardLimit)
	}
	entries, err := h.engine.TopN(c.Request.Context(), metric, limit)
	if err != nil {
		h.internal(c, err)
		return
	}
	RespondOK(c, leaderboardResponse{Metric: metric, Entries: entries})
}

// GET /v1/users/:id/rank/:metric
func (h *QuizHandler) UserRank(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	metric, err := quiz.ParseMetric(c.Param("metric"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "unknown_metric", err)
		return
	}
	entry, err := h.engine.Rank(c.Request.Context(), userID, metric)
	if errors.Is(err, quiz.ErrUserNotFound) {
		RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	if err != nil {
		h.internal(c, err)
		return
	}
	RespondOK(c, entry)
}

type statsResponse struct {
	UserID         int64      `json:"user_id"`
	Name           string     `json:"name"`
	TotalAnswers   int        `json:"total_answers"`
	TotalCorrect   int        `json:"total_correct"`
	TotalWrong     int        `json:"total_wrong"`
	BestStreak     int        `json:"best_streak"`
	CurrentStreak  int        `json:"current_streak"`
	Day            string     `json:"day"`
	CorrectToday   int        `json:"correct_today"`
	StreakToday    int        `json:"streak_today"`
	DailyCap       int        `json:"daily_cap"`
	BlockedToday   bool       `json:"blocked_today"`
	Unlimited      bool       `json:"unlimited"`
	UnlimitedUntil *time.Time `json:"unlimited_until,omitempty"`
}

// GET /v1/users/:id/stats
func (h *QuizHandler) UserStats(c *gin.Context) {
	userID, ok := userIDParam(c)
	if !ok {
		return
	}
	st, err := h.engine.Stats(c.Request.Context(), userID)
	if errors.Is(err, quiz.ErrUserNotFound) {
		RespondError(c, http.StatusNotFound, "user_not_found", err)
		return
	}
	if err != nil {
		h.internal(c, err)
		return
	}
	RespondOK(c, statsResponse{
		UserID:         st.User.ID,
		Name:           st.User.DisplayName(),
		TotalAnswers:   st.User.TotalAnswers,
		TotalCorrect:   st.User.TotalCorrect,
		TotalWrong:     st.User.TotalWrong,
		BestStreak:     st.User.BestStreak,
		CurrentStreak:  st.User.CurrentStreak,
		Day:            st.Today.Day,
		CorrectToday:   st.Today.CorrectCount,
		StreakToday:    st.Today.StreakToday,
		DailyCap:       st.DailyCap,
		BlockedToday:   st.Today.IsBlocked,
		Unlimited:      st.Unlimited,
		UnlimitedUntil: st.UnlimitedUntil,
	})
}

func (h *QuizHandler) internal(c *gin.Context, err error) {
	h.log.Error("Request failed", "path", c.FullPath(), "error", err)
	RespondError(c, http.StatusInternalServerError, "internal", errors.New("internal error"))
}

func userIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_user_id", errors.New("user id must be an integer"))
		return 0, false
	}
	return id, true
}
