package quiz

import (
	"context"
	"errors"

	"quizbot/dbctx"
	"quizbot/model"
	"quizbot/store"
)

// Status drives the next message the front end shows after an answer.
type Status string

const (
	StatusCorrect         Status = "correct"
	StatusWrong           Status = "wrong"
	StatusBlocked         Status = "blocked"
	StatusDailyDone       Status = "daily_done"
	StatusAlreadyAnswered Status = "already_answered"
	StatusStaleQuestion   Status = "stale_question"
	StatusUnknownQuestion Status = "unknown_question"
	StatusUnknownUser     Status = "unknown_user"
)

// Accepted reports whether the answer was scored and persisted.
func (s Status) Accepted() bool {
	switch s {
	case StatusCorrect, StatusWrong, StatusBlocked, StatusDailyDone:
		return true
	}
	return false
}

type SubmitResult struct {
	Status        Status
	CorrectOption int
	Unlimited     bool
	Day           model.DailyRecord // today's record after the answer; zero when rejected
}

// errRejected rolls the submission transaction back without surfacing an error.
var errRejected = errors.New("submission rejected")

// Submit scores one answer. Duplicate taps and answers to a question that is no
// longer on screen are rejected before anything is written. Every write of an
// accepted answer happens in one transaction; on failure the session claim is
// released so the same answer can be retried.
func (e *Engine) Submit(ctx context.Context, userID, questionID int64, option int) (SubmitResult, error) {
	if option < 1 || option > 4 {
		return SubmitResult{}, ErrInvalidOption
	}

	claim, err := e.sessions.Claim(ctx, userID, questionID)
	if err != nil {
		return SubmitResult{}, err
	}
	switch claim {
	case ClaimAlreadyAnswered:
		return SubmitResult{Status: StatusAlreadyAnswered}, nil
	case ClaimStale:
		return SubmitResult{Status: StatusStaleQuestion}, nil
	}

	var res SubmitResult
	today := e.Today()
	err = store.Transact(dbctx.New(ctx), e.repos.DB, func(tx dbctx.Context) error {
		q, err := e.repos.Questions.Get(tx, questionID)
		if err != nil {
			return err
		}
		if q == nil {
			res.Status = StatusUnknownQuestion
			return errRejected
		}
		u, err := e.repos.Users.Get(tx, userID)
		if err != nil {
			return err
		}
		if u == nil {
			res.Status = StatusUnknownUser
			return errRejected
		}
		settings, err := e.repos.Settings.Ensure(tx, userID)
		if err != nil {
			return err
		}
		unlimited, err := e.hasUnlimited(tx, userID)
		if err != nil {
			return err
		}

		correct := option == q.CorrectOption
		if err := e.repos.Answers.Insert(tx, &model.Answer{
			UserID:         userID,
			QuestionID:     questionID,
			SelectedOption: option,
			IsCorrect:      correct,
			Mode:           settings.Mode,
		}); err != nil {
			return err
		}
		day, err := e.repos.Days.ApplyAnswer(tx, userID, today, correct, !correct && !unlimited)
		if err != nil {
			return err
		}
		if err := e.repos.Users.ApplyAnswer(tx, userID, correct, day.StreakToday); err != nil {
			return err
		}

		res.CorrectOption = q.CorrectOption
		res.Unlimited = unlimited
		res.Day = *day
		res.Status = e.statusFor(correct, unlimited, *day)
		return nil
	})
	if err != nil {
		if relErr := e.sessions.Release(ctx, userID, questionID); relErr != nil {
			e.log.Warn("Release session claim failed", "user_id", userID, "question_id", questionID, "error", relErr)
		}
		if errors.Is(err, errRejected) {
			return SubmitResult{Status: res.Status}, nil
		}
		e.log.Error("Submit answer failed", "user_id", userID, "question_id", questionID, "error", err)
		return SubmitResult{}, err
	}
	e.log.Debug("Answer scored", "user_id", userID, "question_id", questionID, "status", res.Status)
	return res, nil
}

func (e *Engine) statusFor(correct, unlimited bool, day model.DailyRecord) Status {
	switch {
	case correct && !unlimited && day.CorrectCount >= e.dailyCap+day.BonusAllowance:
		return StatusDailyDone
	case !correct && !unlimited:
		return StatusBlocked
	case correct:
		return StatusCorrect
	default:
		return StatusWrong
	}
}
