package store

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

// Leaderboard columns accepted by the ranking queries.
var rankColumns = map[string]bool{
	"total_correct":  true,
	"best_streak":    true,
	"total_answers":  true,
	"current_streak": true,
}

type UserRepo interface {
	Upsert(dbc dbctx.Context, u *model.User) error
	Get(dbc dbctx.Context, id int64) (*model.User, error)
	ApplyAnswer(dbc dbctx.Context, id int64, correct bool, streakToday int) error
	Count(dbc dbctx.Context) (int64, error)
	TopBy(dbc dbctx.Context, column string, limit int) ([]model.User, error)
	CountAbove(dbc dbctx.Context, column string, value int) (int64, error)
	CountTiedBefore(dbc dbctx.Context, column string, value int, id int64) (int64, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

// Upsert creates the user or refreshes the display fields; counters are never touched.
func (r *userRepo) Upsert(dbc dbctx.Context, u *model.User) error {
	if u == nil {
		return nil
	}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"first_name", "username", "updated_at"}),
		}).
		Create(u).Error
}

func (r *userRepo) Get(dbc dbctx.Context, id int64) (*model.User, error) {
	var u model.User
	if err := dbc.DB(r.db).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, notFoundToNil(err)
	}
	return &u, nil
}

// ApplyAnswer increments the aggregates server-side so concurrent answers never lose an update.
func (r *userRepo) ApplyAnswer(dbc dbctx.Context, id int64, correct bool, streakToday int) error {
	updates := map[string]interface{}{
		"total_answers": gorm.Expr("total_answers + 1"),
	}
	if correct {
		updates["total_correct"] = gorm.Expr("total_correct + 1")
		updates["current_streak"] = gorm.Expr("current_streak + 1")
		updates["best_streak"] = gorm.Expr("CASE WHEN best_streak < ? THEN ? ELSE best_streak END", streakToday, streakToday)
	} else {
		updates["total_wrong"] = gorm.Expr("total_wrong + 1")
		updates["current_streak"] = 0
	}
	res := dbc.DB(r.db).Model(&model.User{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *userRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&model.User{}).Count(&n).Error
	return n, err
}

func (r *userRepo) TopBy(dbc dbctx.Context, column string, limit int) ([]model.User, error) {
	if !rankColumns[column] {
		return nil, fmt.Errorf("unsupported rank column %q", column)
	}
	var users []model.User
	err := dbc.DB(r.db).
		Order(clause.OrderByColumn{Column: clause.Column{Name: column}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}}).
		Limit(limit).
		Find(&users).Error
	return users, err
}

func (r *userRepo) CountAbove(dbc dbctx.Context, column string, value int) (int64, error) {
	if !rankColumns[column] {
		return 0, fmt.Errorf("unsupported rank column %q", column)
	}
	var n int64
	err := dbc.DB(r.db).Model(&model.User{}).
		Where(clause.Gt{Column: clause.Column{Name: column}, Value: value}).
		Count(&n).Error
	return n, err
}

func (r *userRepo) CountTiedBefore(dbc dbctx.Context, column string, value int, id int64) (int64, error) {
	if !rankColumns[column] {
		return 0, fmt.Errorf("unsupported rank column %q", column)
	}
	var n int64
	err := dbc.DB(r.db).Model(&model.User{}).
		Where(clause.Eq{Column: clause.Column{Name: column}, Value: value}).
		Where("id < ?", id).
		Count(&n).Error
	return n, err
}
