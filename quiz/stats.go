package quiz

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"quizbot/dbctx"
	"quizbot/model"
)

type UserStats struct {
	User           model.User
	Today          model.DailyRecord
	DailyCap       int // cap for today including pack bonuses
	UnlimitedUntil *time.Time
	Unlimited      bool
}

// Stats gathers a user's profile, today's progress and entitlement in parallel.
func (e *Engine) Stats(ctx context.Context, userID int64) (UserStats, error) {
	var (
		user  *model.User
		day   *model.DailyRecord
		until *time.Time
	)
	today := e.Today()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = e.repos.Users.Get(dbctx.New(gctx), userID)
		return err
	})
	g.Go(func() error {
		var err error
		day, err = e.repos.Days.Get(dbctx.New(gctx), userID, today)
		return err
	})
	g.Go(func() error {
		var err error
		until, err = e.unlimitedUntil(dbctx.New(gctx), userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return UserStats{}, err
	}
	if user == nil {
		return UserStats{}, ErrUserNotFound
	}

	out := UserStats{User: *user, UnlimitedUntil: until, DailyCap: e.dailyCap}
	if day != nil {
		out.Today = *day
		out.DailyCap += day.BonusAllowance
	} else {
		out.Today = model.DailyRecord{UserID: userID, Day: today}
	}
	out.Unlimited = until != nil && until.After(e.now().UTC())
	return out, nil
}
