// Package quiz decides who may get a question, which one, how answers are scored
// and how purchased entitlements override the free daily quota.
package quiz

import (
	"time"

	"quizbot/logger"
	"quizbot/store"
)

const (
	DefaultDailyCap      = 10
	DefaultPackSize      = 10
	DefaultUnlimitedDays = 30

	// questionPoolLimit caps how many eligible questions are loaded per pick.
	questionPoolLimit = 2000
)

type Options struct {
	Location      *time.Location // day boundary for quotas
	DailyCap      int
	PackSize      int
	UnlimitedDays int
	Policy        QuotaPolicy
	Now           func() time.Time
}

type Engine struct {
	repos    *store.Repos
	sessions SessionStore
	policy   QuotaPolicy
	log      *logger.Logger

	loc           *time.Location
	dailyCap      int
	packSize      int
	unlimitedDays int
	now           func() time.Time
}

func New(repos *store.Repos, sessions SessionStore, baseLog *logger.Logger, opts Options) *Engine {
	e := &Engine{
		repos:         repos,
		sessions:      sessions,
		policy:        opts.Policy,
		log:           baseLog.With("service", "QuizEngine"),
		loc:           opts.Location,
		dailyCap:      opts.DailyCap,
		packSize:      opts.PackSize,
		unlimitedDays: opts.UnlimitedDays,
		now:           opts.Now,
	}
	if e.loc == nil {
		e.loc = time.UTC
	}
	if e.dailyCap <= 0 {
		e.dailyCap = DefaultDailyCap
	}
	if e.packSize <= 0 {
		e.packSize = DefaultPackSize
	}
	if e.unlimitedDays <= 0 {
		e.unlimitedDays = DefaultUnlimitedDays
	}
	if e.policy == nil {
		e.policy = PackUnlockPolicy{}
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

func (e *Engine) DailyCap() int { return e.dailyCap }

func (e *Engine) Sessions() SessionStore { return e.sessions }

// Today is the quota day key of the current instant in the configured timezone.
func (e *Engine) Today() string {
	return e.now().In(e.loc).Format("2006-01-02")
}

// NextReset is the next local midnight, when today's quota rolls over.
func (e *Engine) NextReset() time.Time {
	local := e.now().In(e.loc)
	return time.Date(local.Year(), local.Month(), local.Day()+1, 0, 0, 0, 0, e.loc)
}
