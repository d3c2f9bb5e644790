package storetest

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"quizbot/logger"
	"quizbot/model"
	"quizbot/store"
)

// Open returns a migrated, private in-memory sqlite database.
func Open(tb testing.TB) *gorm.DB {
	tb.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("test db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := store.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	tb.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Repos(tb testing.TB) *store.Repos {
	tb.Helper()
	return store.NewRepos(Open(tb), logger.Nop())
}

func SeedUser(tb testing.TB, db *gorm.DB, id int64, name string) *model.User {
	tb.Helper()
	u := &model.User{ID: id, Username: name}
	if err := db.Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTopic(tb testing.TB, db *gorm.DB, title string, active bool) *model.Topic {
	tb.Helper()
	t := &model.Topic{Title: title, IsActive: active}
	if err := db.Create(t).Error; err != nil {
		tb.Fatalf("seed topic: %v", err)
	}
	return t
}

// SeedQuestion creates an active question whose correct option is 1.
func SeedQuestion(tb testing.TB, db *gorm.DB, text string, topicID *int64, difficulty *int) *model.Question {
	tb.Helper()
	q := &model.Question{
		Text:          text,
		Option1:       "right",
		Option2:       "wrong-b",
		Option3:       "wrong-c",
		Option4:       "wrong-d",
		CorrectOption: 1,
		TopicID:       topicID,
		Difficulty:    difficulty,
		IsActive:      true,
	}
	if err := db.Create(q).Error; err != nil {
		tb.Fatalf("seed question: %v", err)
	}
	return q
}

func Int(v int) *int       { return &v }
func Int64(v int64) *int64 { return &v }
