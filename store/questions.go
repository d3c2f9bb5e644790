package store

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

// QuestionFilter narrows the eligible pool; nil fields are ignored.
type QuestionFilter struct {
	TopicID    *int64
	Difficulty *int
}

type QuestionRepo interface {
	Get(dbc dbctx.Context, id int64) (*model.Question, error)
	ListActive(dbc dbctx.Context, f QuestionFilter, limit int) ([]model.Question, error)
	InsertIfAbsent(dbc dbctx.Context, q *model.Question) error
	SetActive(dbc dbctx.Context, id int64, active bool) error
}

type questionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuestionRepo(db *gorm.DB, baseLog *logger.Logger) QuestionRepo {
	return &questionRepo{db: db, log: baseLog.With("repo", "QuestionRepo")}
}

func (r *questionRepo) Get(dbc dbctx.Context, id int64) (*model.Question, error) {
	var q model.Question
	if err := dbc.DB(r.db).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, notFoundToNil(err)
	}
	return &q, nil
}

func (r *questionRepo) ListActive(dbc dbctx.Context, f QuestionFilter, limit int) ([]model.Question, error) {
	t := dbc.DB(r.db).Where("is_active = ?", true)
	if f.TopicID != nil {
		t = t.Where("topic_id = ?", *f.TopicID)
	}
	if f.Difficulty != nil {
		t = t.Where("difficulty = ?", *f.Difficulty)
	}
	var out []model.Question
	err := t.Order("id").Limit(limit).Find(&out).Error
	return out, err
}

// InsertIfAbsent inserts q keyed by its content hash and returns ErrDuplicate
// when the same question is already stored.
func (r *questionRepo) InsertIfAbsent(dbc dbctx.Context, q *model.Question) error {
	res := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "q_hash"}}, DoNothing: true}).
		Create(q)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

func (r *questionRepo) SetActive(dbc dbctx.Context, id int64, active bool) error {
	res := dbc.DB(r.db).Model(&model.Question{}).Where("id = ?", id).Update("is_active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
