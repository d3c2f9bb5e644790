package store

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/model"
)

// ErrDuplicate reports an insert-if-absent that found an existing row.
var ErrDuplicate = errors.New("duplicate row")

// Open connects to sqlite (default) or postgres and migrates every table.
func Open(driver, dsn string, log *logger.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	if driver != "postgres" {
		// sqlite has a single writer; one connection keeps transactions from failing with SQLITE_BUSY.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Info("Database ready", "driver", driver)
	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(model.All()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// Transact runs fn inside a transaction, reusing dbc.Tx when one is already open.
func Transact(dbc dbctx.Context, db *gorm.DB, fn func(dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return dbc.DB(db).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: dbc.Ctx, Tx: tx})
	})
}

// Repos bundles every repository over one database handle.
type Repos struct {
	DB            *gorm.DB
	Users         UserRepo
	Settings      SettingsRepo
	Days          DayRepo
	Subscriptions SubscriptionRepo
	Payments      PaymentRepo
	Questions     QuestionRepo
	Topics        TopicRepo
	Answers       AnswerRepo
	Admins        AdminRepo
}

func NewRepos(db *gorm.DB, log *logger.Logger) *Repos {
	return &Repos{
		DB:            db,
		Users:         NewUserRepo(db, log),
		Settings:      NewSettingsRepo(db, log),
		Days:          NewDayRepo(db, log),
		Subscriptions: NewSubscriptionRepo(db, log),
		Payments:      NewPaymentRepo(db, log),
		Questions:     NewQuestionRepo(db, log),
		Topics:        NewTopicRepo(db, log),
		Answers:       NewAnswerRepo(db, log),
		Admins:        NewAdminRepo(db, log),
	}
}

func notFoundToNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
