package quiz

import (
	"context"
	"time"

	"quizbot/dbctx"
)

// UnlimitedUntil returns nil when the user never bought unlimited access.
func (e *Engine) UnlimitedUntil(ctx context.Context, userID int64) (*time.Time, error) {
	return e.unlimitedUntil(dbctx.New(ctx), userID)
}

func (e *Engine) unlimitedUntil(dbc dbctx.Context, userID int64) (*time.Time, error) {
	sub, err := e.repos.Subscriptions.Get(dbc, userID)
	if err != nil || sub == nil || sub.UnlimitedUntil.IsZero() {
		return nil, err
	}
	until := sub.UnlimitedUntil.UTC()
	return &until, nil
}

// HasUnlimitedNow is true iff the stored expiry is strictly in the future.
func (e *Engine) HasUnlimitedNow(ctx context.Context, userID int64) (bool, error) {
	return e.hasUnlimited(dbctx.New(ctx), userID)
}

func (e *Engine) hasUnlimited(dbc dbctx.Context, userID int64) (bool, error) {
	until, err := e.unlimitedUntil(dbc, userID)
	if err != nil || until == nil {
		return false, err
	}
	return until.After(e.now().UTC()), nil
}

func (e *Engine) PacksAvailable(ctx context.Context, userID int64) (int, error) {
	s, err := e.repos.Settings.Ensure(dbctx.New(ctx), userID)
	if err != nil {
		return 0, err
	}
	return s.PacksAvailable, nil
}

// ConsumePack takes one pack if any is left. Callers should only use it when a
// free attempt is otherwise denied; CanStartNow does so under the packs policy.
func (e *Engine) ConsumePack(ctx context.Context, userID int64) (bool, error) {
	return e.repos.Settings.ConsumePack(dbctx.New(ctx), userID)
}
