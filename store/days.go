package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type DayRepo interface {
	Ensure(dbc dbctx.Context, userID int64, day string) (*model.DailyRecord, error)
	Get(dbc dbctx.Context, userID int64, day string) (*model.DailyRecord, error)
	ApplyAnswer(dbc dbctx.Context, userID int64, day string, correct, block bool) (*model.DailyRecord, error)
	Unlock(dbc dbctx.Context, userID int64, day string, bonus int) error
}

type dayRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDayRepo(db *gorm.DB, baseLog *logger.Logger) DayRepo {
	return &dayRepo{db: db, log: baseLog.With("repo", "DayRepo")}
}

// Ensure creates the (user, day) row with zero counters if it does not exist yet.
func (r *dayRepo) Ensure(dbc dbctx.Context, userID int64, day string) (*model.DailyRecord, error) {
	row := &model.DailyRecord{UserID: userID, Day: day}
	if err := dbc.DB(r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, day)
}

func (r *dayRepo) Get(dbc dbctx.Context, userID int64, day string) (*model.DailyRecord, error) {
	var out model.DailyRecord
	if err := dbc.DB(r.db).Where("user_id = ? AND day = ?", userID, day).First(&out).Error; err != nil {
		return nil, notFoundToNil(err)
	}
	return &out, nil
}

// ApplyAnswer bumps the day counters in place and returns the updated row.
// A wrong answer always zeroes streak_today; block additionally closes the day.
func (r *dayRepo) ApplyAnswer(dbc dbctx.Context, userID int64, day string, correct, block bool) (*model.DailyRecord, error) {
	if _, err := r.Ensure(dbc, userID, day); err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if correct {
		updates["correct_count"] = gorm.Expr("correct_count + 1")
		updates["streak_today"] = gorm.Expr("streak_today + 1")
	} else {
		updates["wrong_count"] = gorm.Expr("wrong_count + 1")
		updates["streak_today"] = 0
		if block {
			updates["is_blocked"] = true
		}
	}
	if err := dbc.DB(r.db).Model(&model.DailyRecord{}).
		Where("user_id = ? AND day = ?", userID, day).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return r.Get(dbc, userID, day)
}

// Unlock reopens a day and raises its allowance, used when a pack is redeemed.
func (r *dayRepo) Unlock(dbc dbctx.Context, userID int64, day string, bonus int) error {
	if _, err := r.Ensure(dbc, userID, day); err != nil {
		return err
	}
	return dbc.DB(r.db).Model(&model.DailyRecord{}).
		Where("user_id = ? AND day = ?", userID, day).
		Updates(map[string]interface{}{
			"is_blocked":      false,
			"bonus_allowance": gorm.Expr("bonus_allowance + ?", bonus),
		}).Error
}
