package quiz

import (
	"context"

	"quizbot/dbctx"
	"quizbot/model"
	"quizbot/store"
)

const topicListLimit = 50

// EnsureUser registers the user on first contact and refreshes display fields
// afterwards. It also creates the settings row and today's day row.
func (e *Engine) EnsureUser(ctx context.Context, userID int64, firstName, username string) error {
	return store.Transact(dbctx.New(ctx), e.repos.DB, func(tx dbctx.Context) error {
		if err := e.repos.Users.Upsert(tx, &model.User{ID: userID, FirstName: firstName, Username: username}); err != nil {
			return err
		}
		if _, err := e.repos.Settings.Ensure(tx, userID); err != nil {
			return err
		}
		_, err := e.repos.Days.Ensure(tx, userID, e.Today())
		return err
	})
}

func (e *Engine) Settings(ctx context.Context, userID int64) (*model.UserSettings, error) {
	return e.repos.Settings.Ensure(dbctx.New(ctx), userID)
}

func (e *Engine) SetModeRandom(ctx context.Context, userID int64) error {
	return e.repos.Settings.SetMode(dbctx.New(ctx), userID, model.ModeRandom, nil, nil)
}

func (e *Engine) SetModeTopic(ctx context.Context, userID, topicID int64) error {
	dbc := dbctx.New(ctx)
	t, err := e.repos.Topics.Get(dbc, topicID)
	if err != nil {
		return err
	}
	if t == nil || !t.IsActive {
		return ErrTopicNotFound
	}
	return e.repos.Settings.SetMode(dbc, userID, model.ModeTopic, &topicID, nil)
}

func (e *Engine) SetModeDifficulty(ctx context.Context, userID int64, difficulty int) error {
	if difficulty < 1 || difficulty > 5 {
		return ErrInvalidDifficulty
	}
	return e.repos.Settings.SetMode(dbctx.New(ctx), userID, model.ModeDifficulty, nil, &difficulty)
}

func (e *Engine) ActiveTopics(ctx context.Context) ([]model.Topic, error) {
	return e.repos.Topics.ListActive(dbctx.New(ctx), topicListLimit)
}
