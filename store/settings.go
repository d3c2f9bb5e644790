package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type SettingsRepo interface {
	Ensure(dbc dbctx.Context, userID int64) (*model.UserSettings, error)
	SetMode(dbc dbctx.Context, userID int64, mode model.Mode, topicID *int64, difficulty *int) error
	AddPacks(dbc dbctx.Context, userID int64, n int) error
	ConsumePack(dbc dbctx.Context, userID int64) (bool, error)
}

type settingsRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSettingsRepo(db *gorm.DB, baseLog *logger.Logger) SettingsRepo {
	return &settingsRepo{db: db, log: baseLog.With("repo", "SettingsRepo")}
}

// Ensure lazily creates the settings row and returns its current state.
func (r *settingsRepo) Ensure(dbc dbctx.Context, userID int64) (*model.UserSettings, error) {
	t := dbc.DB(r.db)
	row := &model.UserSettings{UserID: userID, Mode: model.ModeRandom}
	if err := t.Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error; err != nil {
		return nil, err
	}
	var out model.UserSettings
	if err := dbc.DB(r.db).Where("user_id = ?", userID).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *settingsRepo) SetMode(dbc dbctx.Context, userID int64, mode model.Mode, topicID *int64, difficulty *int) error {
	if _, err := r.Ensure(dbc, userID); err != nil {
		return err
	}
	return dbc.DB(r.db).Model(&model.UserSettings{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"mode":       mode,
			"topic_id":   topicID,
			"difficulty": difficulty,
		}).Error
}

func (r *settingsRepo) AddPacks(dbc dbctx.Context, userID int64, n int) error {
	if _, err := r.Ensure(dbc, userID); err != nil {
		return err
	}
	return dbc.DB(r.db).Model(&model.UserSettings{}).
		Where("user_id = ?", userID).
		Update("packs_available", gorm.Expr("packs_available + ?", n)).Error
}

// ConsumePack decrements the pack counter only when it is positive.
func (r *settingsRepo) ConsumePack(dbc dbctx.Context, userID int64) (bool, error) {
	res := dbc.DB(r.db).Model(&model.UserSettings{}).
		Where("user_id = ? AND packs_available > 0", userID).
		Update("packs_available", gorm.Expr("packs_available - 1"))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
