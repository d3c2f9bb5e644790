package store

import (
	"gorm.io/gorm"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

type TopicRepo interface {
	Create(dbc dbctx.Context, t *model.Topic) error
	Get(dbc dbctx.Context, id int64) (*model.Topic, error)
	ListActive(dbc dbctx.Context, limit int) ([]model.Topic, error)
}

type topicRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewTopicRepo(db *gorm.DB, baseLog *logger.Logger) TopicRepo {
	return &topicRepo{db: db, log: baseLog.With("repo", "TopicRepo")}
}

func (r *topicRepo) Create(dbc dbctx.Context, t *model.Topic) error {
	return dbc.DB(r.db).Create(t).Error
}

func (r *topicRepo) Get(dbc dbctx.Context, id int64) (*model.Topic, error) {
	var t model.Topic
	if err := dbc.DB(r.db).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, notFoundToNil(err)
	}
	return &t, nil
}

func (r *topicRepo) ListActive(dbc dbctx.Context, limit int) ([]model.Topic, error) {
	var out []model.Topic
	err := dbc.DB(r.db).Where("is_active = ?", true).Order("id").Limit(limit).Find(&out).Error
	return out, err
}
