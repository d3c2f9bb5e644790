package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type PaymentRepo interface {
	InsertIfAbsent(dbc dbctx.Context, p *model.Payment) (bool, error)
	Recent(dbc dbctx.Context, userID int64, limit int) ([]model.Payment, error)
}

type paymentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPaymentRepo(db *gorm.DB, baseLog *logger.Logger) PaymentRepo {
	return &paymentRepo{db: db, log: baseLog.With("repo", "PaymentRepo")}
}

// InsertIfAbsent appends p unless its charge id is already recorded.
// It reports false, nil for a duplicate.
func (r *paymentRepo) InsertIfAbsent(dbc dbctx.Context, p *model.Payment) (bool, error) {
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "charge_id"}}, DoNothing: true}).
		Create(p)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		r.log.Debug("Duplicate payment ignored", "charge_id", p.ChargeID)
		return false, nil
	}
	return true, nil
}

func (r *paymentRepo) Recent(dbc dbctx.Context, userID int64, limit int) ([]model.Payment, error) {
	var out []model.Payment
	err := dbc.DB(r.db).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}
