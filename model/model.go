package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"gorm.io/gorm"
)

// Mode selects which questions are eligible for a user.
type Mode string

const (
	ModeRandom     Mode = "random"
	ModeTopic      Mode = "topic"
	ModeDifficulty Mode = "difficulty"
)

type User struct {
	ID        int64 `gorm:"primaryKey;autoIncrement:false"` // Telegram User ID
	CreatedAt time.Time
	UpdatedAt time.Time

	FirstName string
	Username  string

	// Aggregates, mutated on every answer
	TotalAnswers  int `gorm:"not null;default:0"`
	TotalCorrect  int `gorm:"not null;default:0;index"`
	TotalWrong    int `gorm:"not null;default:0"`
	BestStreak    int `gorm:"not null;default:0;index"`
	CurrentStreak int `gorm:"not null;default:0"`
}

// DisplayName prefers the username, then the first name; empty if neither is set.
func (u User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return ""
}

type UserSettings struct {
	UserID    int64 `gorm:"primaryKey;autoIncrement:false"`
	UpdatedAt time.Time

	Mode       Mode   `gorm:"type:varchar(16);not null;default:random"`
	TopicID    *int64 // set only in topic mode
	Difficulty *int   // 1..5, set only in difficulty mode

	PacksAvailable int `gorm:"not null;default:0"` // unredeemed one-shot packs
}

func (UserSettings) TableName() string { return "user_settings" }

// DailyRecord is keyed by (user, calendar day in the configured timezone).
type DailyRecord struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Day       string `gorm:"primaryKey;type:varchar(10)"` // 2006-01-02
	CreatedAt time.Time
	UpdatedAt time.Time

	CorrectCount   int  `gorm:"not null;default:0"`
	WrongCount     int  `gorm:"not null;default:0"`
	StreakToday    int  `gorm:"not null;default:0"`
	BonusAllowance int  `gorm:"not null;default:0"` // extra correct answers unlocked by packs
	IsBlocked      bool `gorm:"not null;default:false"`
}

func (DailyRecord) TableName() string { return "user_day" }

type Subscription struct {
	UserID         int64 `gorm:"primaryKey;autoIncrement:false"`
	UnlimitedUntil time.Time
	UpdatedAt      time.Time
}

// Payment is append-only; ChargeID is the idempotency key.
type Payment struct {
	ID             uint  `gorm:"primaryKey"`
	UserID         int64 `gorm:"index"`
	Provider       string
	Currency       string
	TotalAmount    int
	InvoicePayload string
	ChargeID       string `gorm:"uniqueIndex;not null"`
	IsTest         bool
	CreatedAt      time.Time
}

type Topic struct {
	ID        int64 `gorm:"primaryKey"`
	Title     string
	IsActive  bool
	CreatedAt time.Time
}

type Question struct {
	ID        int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	Text          string
	Option1       string
	Option2       string
	Option3       string
	Option4       string
	CorrectOption int    // 1..4
	TopicID       *int64 `gorm:"index"`
	Difficulty    *int   `gorm:"index"`
	IsActive      bool   `gorm:"index"`

	QHash string `gorm:"type:varchar(64);uniqueIndex"` // content hash for idempotent imports
}

func (q Question) Options() [4]string {
	return [4]string{q.Option1, q.Option2, q.Option3, q.Option4}
}

// ContentHash identifies a question by its normalized prompt and options.
func (q Question) ContentHash() string {
	parts := []string{q.Text, q.Option1, q.Option2, q.Option3, q.Option4}
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.Join(strings.Fields(p), " "))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func (q *Question) BeforeCreate(tx *gorm.DB) error {
	if q.QHash == "" {
		q.QHash = q.ContentHash()
	}
	return nil
}

// Answer is the append-only attempt ledger.
type Answer struct {
	ID             uint  `gorm:"primaryKey"`
	UserID         int64 `gorm:"index"`
	QuestionID     int64 `gorm:"index"`
	SelectedOption int
	IsCorrect      bool
	Mode           Mode `gorm:"type:varchar(16)"`
	CreatedAt      time.Time
}

type Admin struct {
	UserID    int64  `gorm:"primaryKey;autoIncrement:false"`
	Role      string `gorm:"type:varchar(16);not null"`
	CreatedAt time.Time
}

// All lists every table for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{}, &UserSettings{}, &DailyRecord{}, &Subscription{}, &Payment{},
		&Topic{}, &Question{}, &Answer{}, &Admin{},
	}
}
