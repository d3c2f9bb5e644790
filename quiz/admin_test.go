package quiz_test

import (
	"errors"
	"testing"

	"quizbot/quiz"
)

func TestRoleHierarchy(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.engine.SeedOwners(f.ctx, []int64{1}); err != nil {
		t.Fatalf("SeedOwners: %v", err)
	}

	if err := f.engine.GrantRole(f.ctx, 1, 2, quiz.RoleAdmin); err != nil {
		t.Fatalf("owner grants admin: %v", err)
	}
	if err := f.engine.GrantRole(f.ctx, 2, 3, quiz.RoleEditor); err != nil {
		t.Fatalf("admin grants editor: %v", err)
	}
	if err := f.engine.GrantRole(f.ctx, 2, 4, quiz.RoleAdmin); !errors.Is(err, quiz.ErrForbidden) {
		t.Fatalf("admin grants admin: expected ErrForbidden, got %v", err)
	}
	if err := f.engine.GrantRole(f.ctx, 3, 4, quiz.RoleEditor); !errors.Is(err, quiz.ErrForbidden) {
		t.Fatalf("editor grants editor: expected ErrForbidden, got %v", err)
	}
	if err := f.engine.GrantRole(f.ctx, 1, 4, quiz.Role("root")); !errors.Is(err, quiz.ErrUnknownRole) {
		t.Fatalf("unknown role: expected ErrUnknownRole, got %v", err)
	}

	if err := f.engine.RevokeRole(f.ctx, 3, 2); !errors.Is(err, quiz.ErrForbidden) {
		t.Fatalf("editor revokes admin: expected ErrForbidden, got %v", err)
	}
	if err := f.engine.RevokeRole(f.ctx, 2, 3); err != nil {
		t.Fatalf("admin revokes editor: %v", err)
	}
	if ok, _ := f.engine.HasAdminAccess(f.ctx, 3); ok {
		t.Fatalf("HasAdminAccess: revoked editor still has access")
	}
	if ok, _ := f.engine.HasAdminAccess(f.ctx, 2); !ok {
		t.Fatalf("HasAdminAccess: admin lost access")
	}
}

func TestAdminStats(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, 1)
	f.user(t, 2)
	f.questions(t, 2)
	f.answer(t, 1, true)
	if _, err := f.engine.Grant(f.ctx, quiz.Purchase{UserID: 2, Payload: quiz.PayloadUnlimited30, ChargeID: "u"}); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	st, err := f.engine.AdminStats(f.ctx)
	if err != nil {
		t.Fatalf("AdminStats: %v", err)
	}
	if st.Users != 2 || st.Answers != 1 || st.ActiveUnlimited != 1 {
		t.Fatalf("AdminStats: unexpected %+v", st)
	}
}
