package store

import (
	"gorm.io/gorm"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type AnswerRepo interface {
	Insert(dbc dbctx.Context, a *model.Answer) error
	Count(dbc dbctx.Context) (int64, error)
	CountByUser(dbc dbctx.Context, userID int64) (int64, error)
}

type answerRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAnswerRepo(db *gorm.DB, baseLog *logger.Logger) AnswerRepo {
	return &answerRepo{db: db, log: baseLog.With("repo", "AnswerRepo")}
}

func (r *answerRepo) Insert(dbc dbctx.Context, a *model.Answer) error {
	return dbc.DB(r.db).Create(a).Error
}

func (r *answerRepo) Count(dbc dbctx.Context) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&model.Answer{}).Count(&n).Error
	return n, err
}

func (r *answerRepo) CountByUser(dbc dbctx.Context, userID int64) (int64, error) {
	var n int64
	err := dbc.DB(r.db).Model(&model.Answer{}).Where("user_id = ?", userID).Count(&n).Error
	return n, err
}
