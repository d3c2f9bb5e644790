package quiz

import (
	"context"
	"math/rand"

	"quizbot/dbctx"
	"quizbot/model"
	"quizbot/store"
)

// ResetSession starts a fresh visit: nothing asked, nothing active.
func (e *Engine) ResetSession(ctx context.Context, userID int64) error {
	return e.sessions.Reset(ctx, userID)
}

// filterFor resolves the eligible-question filter from the user's settings.
func filterFor(s *model.UserSettings) store.QuestionFilter {
	var f store.QuestionFilter
	if s == nil {
		return f
	}
	switch s.Mode {
	case model.ModeTopic:
		f.TopicID = s.TopicID
	case model.ModeDifficulty:
		f.Difficulty = s.Difficulty
	}
	return f
}

// Pick draws a question the user has not seen this visit, falling back to the
// whole eligible pool once every one has been shown. It returns nil, nil when
// no active question matches the user's filter.
func (e *Engine) Pick(ctx context.Context, userID int64) (*model.Question, error) {
	dbc := dbctx.New(ctx)
	settings, err := e.repos.Settings.Ensure(dbc, userID)
	if err != nil {
		return nil, err
	}
	pool, err := e.repos.Questions.ListActive(dbc, filterFor(settings), questionPoolLimit)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, nil
	}

	sess, err := e.sessions.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !sess.Idle() && !sess.Answered {
		return nil, ErrAnswerPending
	}

	candidates := make([]model.Question, 0, len(pool))
	for _, q := range pool {
		if _, seen := sess.Asked[q.ID]; !seen {
			candidates = append(candidates, q)
		}
	}
	if len(candidates) == 0 {
		candidates = pool
	}

	q := candidates[rand.Intn(len(candidates))]
	if err := e.sessions.Activate(ctx, userID, q.ID); err != nil {
		return nil, err
	}
	e.log.Debug("Question picked", "user_id", userID, "question_id", q.ID, "unseen", len(candidates))
	return &q, nil
}
