package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type AdminRepo interface {
	Role(dbc dbctx.Context, userID int64) (string, error)
	Upsert(dbc dbctx.Context, userID int64, role string) error
	Delete(dbc dbctx.Context, userID int64) error
}

type adminRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAdminRepo(db *gorm.DB, baseLog *logger.Logger) AdminRepo {
	return &adminRepo{db: db, log: baseLog.With("repo", "AdminRepo")}
}

// Role returns "" for users without an admin role.
func (r *adminRepo) Role(dbc dbctx.Context, userID int64) (string, error) {
	var a model.Admin
	if err := dbc.DB(r.db).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return "", notFoundToNil(err)
	}
	return a.Role, nil
}

func (r *adminRepo) Upsert(dbc dbctx.Context, userID int64, role string) error {
	return dbc.DB(r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role"}),
		}).
		Create(&model.Admin{UserID: userID, Role: role}).Error
}

func (r *adminRepo) Delete(dbc dbctx.Context, userID int64) error {
	return dbc.DB(r.db).Where("user_id = ?", userID).Delete(&model.Admin{}).Error
}
