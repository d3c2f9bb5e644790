package quiz

import (
	"context"
	"fmt"

	"quizbot/dbctx"
	"quizbot/model"
	"quizbot/store"
)

// Denial says why a free attempt is refused.
type Denial int

const (
	DenyNone Denial = iota
	DenyBlocked
	DenyDailyDone
)

// QuotaPolicy decides when a day is closed and whether a pack can reopen it.
type QuotaPolicy interface {
	Name() string
	Check(day model.DailyRecord, dailyCap int) Denial
	Redeemable(d Denial) bool
}

func checkDay(day model.DailyRecord, dailyCap int) Denial {
	if day.IsBlocked {
		return DenyBlocked
	}
	if day.CorrectCount >= dailyCap+day.BonusAllowance {
		return DenyDailyDone
	}
	return DenyNone
}

// HardBlockPolicy ends the day on the first wrong answer or at the cap; packs do not help.
type HardBlockPolicy struct{}

func (HardBlockPolicy) Name() string { return "hard" }

func (HardBlockPolicy) Check(day model.DailyRecord, dailyCap int) Denial { return checkDay(day, dailyCap) }

func (HardBlockPolicy) Redeemable(Denial) bool { return false }

// PackUnlockPolicy closes the day the same way but lets one pack reopen it.
type PackUnlockPolicy struct{}

func (PackUnlockPolicy) Name() string { return "packs" }

func (PackUnlockPolicy) Check(day model.DailyRecord, dailyCap int) Denial { return checkDay(day, dailyCap) }

func (PackUnlockPolicy) Redeemable(d Denial) bool { return d != DenyNone }

// PolicyByName maps the configured policy name to a strategy.
func PolicyByName(name string) (QuotaPolicy, error) {
	switch name {
	case "hard":
		return HardBlockPolicy{}, nil
	case "packs", "":
		return PackUnlockPolicy{}, nil
	}
	return nil, fmt.Errorf("unknown quota policy %q", name)
}

// StartDecision is the answer to "may this user get a question now".
type StartDecision struct {
	Allowed      bool
	Reason       string // user-facing, set when not allowed
	Denial       Denial
	Unlimited    bool
	PackConsumed bool
}

const ReasonBlocked = "Enough for today. Rest until tomorrow 😴"

func (e *Engine) reasonFor(d Denial) string {
	if d == DenyBlocked {
		return ReasonBlocked
	}
	return fmt.Sprintf("%d/%d done for today. Come back tomorrow ✅", e.dailyCap, e.dailyCap)
}

// EnsureDayRow creates today's record if needed and returns it.
func (e *Engine) EnsureDayRow(ctx context.Context, userID int64) (*model.DailyRecord, error) {
	return e.repos.Days.Ensure(dbctx.New(ctx), userID, e.Today())
}

// CanStartNow gates a quiz start. The day row is re-read on every call so a
// purchase made in between is always seen.
func (e *Engine) CanStartNow(ctx context.Context, userID int64) (StartDecision, error) {
	dbc := dbctx.New(ctx)
	unlimited, err := e.hasUnlimited(dbc, userID)
	if err != nil {
		return StartDecision{}, err
	}
	if unlimited {
		return StartDecision{Allowed: true, Unlimited: true}, nil
	}

	today := e.Today()
	day, err := e.repos.Days.Ensure(dbc, userID, today)
	if err != nil {
		return StartDecision{}, err
	}
	denial := e.policy.Check(*day, e.dailyCap)
	if denial == DenyNone {
		return StartDecision{Allowed: true}, nil
	}
	if e.policy.Redeemable(denial) {
		redeemed, err := e.redeemPack(dbc, userID, today)
		if err != nil {
			return StartDecision{}, err
		}
		if redeemed {
			e.log.Info("Pack redeemed", "user_id", userID, "day", today)
			return StartDecision{Allowed: true, PackConsumed: true}, nil
		}
	}
	return StartDecision{Allowed: false, Reason: e.reasonFor(denial), Denial: denial}, nil
}

// redeemPack consumes one pack and reopens today with PackSize more correct
// answers available than the user already has.
func (e *Engine) redeemPack(dbc dbctx.Context, userID int64, today string) (bool, error) {
	redeemed := false
	err := store.Transact(dbc, e.repos.DB, func(tx dbctx.Context) error {
		day, err := e.repos.Days.Ensure(tx, userID, today)
		if err != nil {
			return err
		}
		// another update may have redeemed already
		if e.policy.Check(*day, e.dailyCap) == DenyNone {
			redeemed = true
			return nil
		}
		ok, err := e.repos.Settings.ConsumePack(tx, userID)
		if err != nil || !ok {
			return err
		}
		bonus := day.CorrectCount + e.packSize - (e.dailyCap + day.BonusAllowance)
		if bonus < 0 {
			bonus = 0
		}
		if err := e.repos.Days.Unlock(tx, userID, today, bonus); err != nil {
			return err
		}
		redeemed = true
		return nil
	})
	return redeemed, err
}
