package store

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type SubscriptionRepo interface {
	Get(dbc dbctx.Context, userID int64) (*model.Subscription, error)
	Upsert(dbc dbctx.Context, userID int64, until time.Time) error
	CountActive(dbc dbctx.Context, now time.Time) (int64, error)
}

type subscriptionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubscriptionRepo(db *gorm.DB, baseLog *logger.Logger) SubscriptionRepo {
	return &subscriptionRepo{db: db, log: baseLog.With("repo", "SubscriptionRepo")}
}

// Get returns the row with the latest expiry, or nil when the user never bought unlimited.
func (r *subscriptionRepo) Get(dbc dbctx.Context, userID int64) (*model.Subscription, error) {
	var out model.Subscription
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("unlimited_until DESC").
		First(&out).Error
	if err != nil {
		return nil, notFoundToNil(err)
	}
	return &out, nil
}

// Upsert stores until in UTC so string-typed columns (sqlite) still compare chronologically.
func (r *subscriptionRepo) Upsert(dbc dbctx.Context, userID int64, until time.Time) error {
	row := &model.Subscription{UserID: userID, UnlimitedUntil: until.UTC()}
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"unlimited_until", "updated_at"}),
		}).
		Create(row).Error
}

func (r *subscriptionRepo) CountActive(dbc dbctx.Context, now time.Time) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&model.Subscription{}).
		Where("unlimited_until > ?", now.UTC()).
		Count(&n).Error
	return n, err
}
