package quiz

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"quizbot/dbctx"
)

type Role string

const (
	RoleOwner  Role = "owner"
	RoleAdmin  Role = "admin"
	RoleEditor Role = "editor"
)

var roleRank = map[Role]int{RoleEditor: 1, RoleAdmin: 2, RoleOwner: 3}

func ParseRole(s string) (Role, error) {
	r := Role(s)
	if _, ok := roleRank[r]; !ok {
		return "", ErrUnknownRole
	}
	return r, nil
}

// RoleOf returns "" for ordinary users.
func (e *Engine) RoleOf(ctx context.Context, userID int64) (Role, error) {
	r, err := e.repos.Admins.Role(dbctx.New(ctx), userID)
	return Role(r), err
}

func (e *Engine) HasAdminAccess(ctx context.Context, userID int64) (bool, error) {
	r, err := e.RoleOf(ctx, userID)
	return roleRank[r] > 0, err
}

// GrantRole lets an actor hand out roles strictly below their own.
func (e *Engine) GrantRole(ctx context.Context, actorID, targetID int64, role Role) error {
	if _, ok := roleRank[role]; !ok {
		return ErrUnknownRole
	}
	actor, err := e.RoleOf(ctx, actorID)
	if err != nil {
		return err
	}
	if roleRank[actor] <= roleRank[role] {
		return ErrForbidden
	}
	current, err := e.RoleOf(ctx, targetID)
	if err != nil {
		return err
	}
	if roleRank[current] >= roleRank[actor] {
		return ErrForbidden
	}
	if err := e.repos.Admins.Upsert(dbctx.New(ctx), targetID, string(role)); err != nil {
		return err
	}
	e.log.Info("Role granted", "actor_id", actorID, "target_id", targetID, "role", role)
	return nil
}

// RevokeRole requires the actor to outrank the target.
func (e *Engine) RevokeRole(ctx context.Context, actorID, targetID int64) error {
	actor, err := e.RoleOf(ctx, actorID)
	if err != nil {
		return err
	}
	target, err := e.RoleOf(ctx, targetID)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}
	if roleRank[actor] <= roleRank[target] {
		return ErrForbidden
	}
	if err := e.repos.Admins.Delete(dbctx.New(ctx), targetID); err != nil {
		return err
	}
	e.log.Info("Role revoked", "actor_id", actorID, "target_id", targetID, "role", target)
	return nil
}

// SeedOwners makes every configured id an owner.
func (e *Engine) SeedOwners(ctx context.Context, ids []int64) error {
	for _, id := range ids {
		if err := e.repos.Admins.Upsert(dbctx.New(ctx), id, string(RoleOwner)); err != nil {
			return err
		}
	}
	return nil
}

type AdminStats struct {
	Users           int64
	Answers         int64
	ActiveUnlimited int64
}

func (e *Engine) AdminStats(ctx context.Context) (AdminStats, error) {
	var out AdminStats
	now := e.now()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		out.Users, err = e.repos.Users.Count(dbctx.New(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		out.Answers, err = e.repos.Answers.Count(dbctx.New(gctx))
		return err
	})
	g.Go(func() error {
		var err error
		out.ActiveUnlimited, err = e.repos.Subscriptions.CountActive(dbctx.New(gctx), now)
		return err
	})
	if err := g.Wait(); err != nil {
		return AdminStats{}, err
	}
	return out, nil
}

// SetQuestionActive shows or hides a question from selection.
func (e *Engine) SetQuestionActive(ctx context.Context, questionID int64, active bool) error {
	err := e.repos.Questions.SetActive(dbctx.New(ctx), questionID, active)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrQuestionNotFound
	}
	return err
}
