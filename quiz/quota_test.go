package quiz_test

import (
	"strings"
	"testing"
	"time"

	"quizbot/quiz"
)

func TestDailyCapReachedUntilRollover(t *testing.T) {
	f := newFixture(t, quiz.HardBlockPolicy{})
	f.user(t, 1)
	f.questions(t, 12)

	for i := 1; i <= 10; i++ {
		if d := f.canStart(t, 1); !d.Allowed {
			t.Fatalf("CanStartNow before answer %d: expected allowed, got %q", i, d.Reason)
		}
		res := f.answer(t, 1, true)
		want := quiz.StatusCorrect
		if i == 10 {
			want = quiz.StatusDailyDone
		}
		if res.Status != want {
			t.Fatalf("Submit %d: expected %s, got %s", i, want, res.Status)
		}
	}

	d := f.canStart(t, 1)
	if d.Allowed || d.Denial != quiz.DenyDailyDone {
		t.Fatalf("CanStartNow after cap: expected daily-done denial, got %+v", d)
	}
	if !strings.Contains(d.Reason, "10/10") {
		t.Fatalf("CanStartNow after cap: unexpected reason %q", d.Reason)
	}
	// selection itself is not gated
	f.pick(t, 1)

	f.clock.Advance(24 * time.Hour)
	if d := f.canStart(t, 1); !d.Allowed {
		t.Fatalf("CanStartNow next day: expected allowed, got %q", d.Reason)
	}
}

func TestWrongAnswerBlocksDay(t *testing.T) {
	f := newFixture(t, quiz.HardBlockPolicy{})
	f.user(t, 1)
	f.questions(t, 3)

	f.answer(t, 1, true)
	if res := f.answer(t, 1, false); res.Status != quiz.StatusBlocked {
		t.Fatalf("Submit wrong: expected blocked, got %s", res.Status)
	}
	if !f.today(t, 1).IsBlocked {
		t.Fatalf("day record: expected blocked")
	}
	d := f.canStart(t, 1)
	if d.Allowed || d.Reason != quiz.ReasonBlocked {
		t.Fatalf("CanStartNow: expected blocked denial, got %+v", d)
	}

	// the hard policy ignores packs
	if _, err := f.engine.Grant(f.ctx, quiz.Purchase{UserID: 1, Payload: quiz.PayloadPack10, Amount: 300, Currency: quiz.CurrencyStars, ChargeID: "c-1"}); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	if d := f.canStart(t, 1); d.Allowed {
		t.Fatalf("CanStartNow with pack under hard policy: expected denial")
	}
	if n, _ := f.engine.PacksAvailable(f.ctx, 1); n != 1 {
		t.Fatalf("PacksAvailable: expected 1 untouched, got %d", n)
	}

	f.clock.Advance(24 * time.Hour)
	if d := f.canStart(t, 1); !d.Allowed {
		t.Fatalf("CanStartNow next day: expected allowed, got %q", d.Reason)
	}
}

func TestPackRedemptionUnblocksOnce(t *testing.T) {
	f := newFixture(t, quiz.PackUnlockPolicy{})
	f.user(t, 1)
	f.questions(t, 20)

	for i := 0; i < 3; i++ {
		f.answer(t, 1, true)
	}
	f.answer(t, 1, false)

	if d := f.canStart(t, 1); d.Allowed {
		t.Fatalf("CanStartNow without packs: expected denial")
	}
	if _, err := f.engine.Grant(f.ctx, quiz.Purchase{UserID: 1, Payload: quiz.PayloadPack10, Amount: 300, Currency: quiz.CurrencyStars, ChargeID: "c-1"}); err != nil {
		t.Fatalf("Grant: %v", err)
	}

	d := f.canStart(t, 1)
	if !d.Allowed || !d.PackConsumed {
		t.Fatalf("CanStartNow with pack: expected redemption, got %+v", d)
	}
	if d := f.canStart(t, 1); !d.Allowed || d.PackConsumed {
		t.Fatalf("CanStartNow after redemption: expected allowed without a second pack, got %+v", d)
	}
	if n, _ := f.engine.PacksAvailable(f.ctx, 1); n != 0 {
		t.Fatalf("PacksAvailable: expected 0, got %d", n)
	}

	// a pack is worth exactly ten more correct answers today
	for i := 1; i <= 10; i++ {
		res := f.answer(t, 1, true)
		if i < 10 && res.Status != quiz.StatusCorrect {
			t.Fatalf("Submit %d after redemption: expected correct, got %s", i, res.Status)
		}
		if i == 10 && res.Status != quiz.StatusDailyDone {
			t.Fatalf("Submit %d after redemption: expected daily_done, got %s", i, res.Status)
		}
	}
	if d := f.canStart(t, 1); d.Allowed || d.Denial != quiz.DenyDailyDone {
		t.Fatalf("CanStartNow after pack used up: expected daily-done denial, got %+v", d)
	}
}

func TestUnlimitedBypassesQuota(t *testing.T) {
	f := newFixture(t, quiz.HardBlockPolicy{})
	f.user(t, 1)
	f.questions(t, 3)

	if _, err := f.engine.Grant(f.ctx, quiz.Purchase{UserID: 1, Payload: quiz.PayloadUnlimited30, Amount: 1500, Currency: quiz.CurrencyStars, ChargeID: "u-1"}); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	res := f.answer(t, 1, false)
	if res.Status != quiz.StatusWrong || !res.Unlimited {
		t.Fatalf("Submit wrong with unlimited: expected wrong, got %+v", res)
	}
	if res.Day.IsBlocked {
		t.Fatalf("Submit wrong with unlimited: day must stay open")
	}
	if d := f.canStart(t, 1); !d.Allowed || !d.Unlimited {
		t.Fatalf("CanStartNow with unlimited: expected allowed, got %+v", d)
	}

	f.clock.Advance(31 * 24 * time.Hour)
	ok, err := f.engine.HasUnlimitedNow(f.ctx, 1)
	if err != nil || ok {
		t.Fatalf("HasUnlimitedNow after expiry: expected false, got %v %v", ok, err)
	}
}

func TestCanStartNowCreatesDayRow(t *testing.T) {
	f := newFixture(t, nil)
	f.user(t, 1)
	f.clock.Advance(48 * time.Hour)
	if d := f.canStart(t, 1); !d.Allowed {
		t.Fatalf("CanStartNow: expected allowed")
	}
	if day := f.today(t, 1); day.CorrectCount != 0 || day.IsBlocked {
		t.Fatalf("Days.Get: expected fresh row, got %+v", day)
	}
}
