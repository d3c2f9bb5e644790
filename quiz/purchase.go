package quiz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"quizbot/dbctx"
	"quizbot/model"
	"quizbot/store"
)

// Kind identifies a product independent of how it was paid for.
type Kind string

const (
	KindPack10      Kind = "pack10"
	KindUnlimited30 Kind = "unlimited30"

	PayloadPack10      = "PACK10"
	PayloadUnlimited30 = "UNLIMITED30"

	// CurrencyStars is Telegram Stars, the only currency digital goods are sold in.
	CurrencyStars = "XTR"

	recentPaymentsShown = 3
)

// KindFromPayload maps an invoice payload back to the product it sold.
func KindFromPayload(payload string) (Kind, error) {
	switch strings.TrimSpace(payload) {
	case PayloadPack10:
		return KindPack10, nil
	case PayloadUnlimited30:
		return KindUnlimited30, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPurchase, payload)
}

func PayloadForKind(k Kind) (string, error) {
	switch k {
	case KindPack10:
		return PayloadPack10, nil
	case KindUnlimited30:
		return PayloadUnlimited30, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedPurchase, k)
}

// Products holds the configured price of each product in Stars.
type Products struct {
	Pack10      int
	Unlimited30 int
}

func (p Products) Expected(k Kind) (int, error) {
	switch k {
	case KindPack10:
		return p.Pack10, nil
	case KindUnlimited30:
		return p.Unlimited30, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedPurchase, k)
}

// Purchase is one confirmed payment event.
type Purchase struct {
	UserID   int64
	Payload  string
	Amount   int
	Currency string
	ChargeID string
	Provider string
	IsTest   bool
}

type GrantResult struct {
	Kind           Kind
	Duplicate      bool
	PacksAvailable int
	UnlimitedUntil *time.Time
}

// Grant credits a confirmed payment exactly once per charge id. The amount is
// recorded for audit only; callers validate it against Products beforehand.
func (e *Engine) Grant(ctx context.Context, p Purchase) (GrantResult, error) {
	kind, err := KindFromPayload(p.Payload)
	if err != nil {
		return GrantResult{}, err
	}
	if strings.TrimSpace(p.ChargeID) == "" {
		return GrantResult{}, ErrMissingChargeID
	}
	if p.Provider == "" {
		p.Provider = "telegram"
	}

	res := GrantResult{Kind: kind}
	err = store.Transact(dbctx.New(ctx), e.repos.DB, func(tx dbctx.Context) error {
		inserted, err := e.repos.Payments.InsertIfAbsent(tx, &model.Payment{
			UserID:         p.UserID,
			Provider:       p.Provider,
			Currency:       p.Currency,
			TotalAmount:    p.Amount,
			InvoicePayload: p.Payload,
			ChargeID:       p.ChargeID,
			IsTest:         p.IsTest,
		})
		if err != nil {
			return err
		}
		if !inserted {
			res.Duplicate = true
			return nil
		}

		switch kind {
		case KindPack10:
			if err := e.repos.Settings.AddPacks(tx, p.UserID, 1); err != nil {
				return err
			}
		case KindUnlimited30:
			until, err := e.extendUnlimited(tx, p.UserID)
			if err != nil {
				return err
			}
			res.UnlimitedUntil = &until
		}
		return nil
	})
	if err != nil {
		e.log.Error("Grant purchase failed", "user_id", p.UserID, "charge_id", p.ChargeID, "error", err)
		return GrantResult{}, err
	}
	if res.Duplicate {
		e.log.Info("Duplicate payment ignored", "user_id", p.UserID, "charge_id", p.ChargeID)
		return res, nil
	}

	if kind == KindPack10 {
		if res.PacksAvailable, err = e.PacksAvailable(ctx, p.UserID); err != nil {
			return res, err
		}
	}
	e.log.Info("Purchase granted", "user_id", p.UserID, "kind", kind, "charge_id", p.ChargeID, "test", p.IsTest)
	return res, nil
}

// extendUnlimited pushes the expiry to max(current, now) + UnlimitedDays.
func (e *Engine) extendUnlimited(tx dbctx.Context, userID int64) (time.Time, error) {
	base := e.now().UTC()
	current, err := e.unlimitedUntil(tx, userID)
	if err != nil {
		return time.Time{}, err
	}
	if current != nil && current.After(base) {
		base = *current
	}
	until := base.AddDate(0, 0, e.unlimitedDays)
	if err := e.repos.Subscriptions.Upsert(tx, userID, until); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

type PurchasesSummary struct {
	PacksAvailable int
	UnlimitedUntil *time.Time
	Recent         []model.Payment // newest first
}

func (e *Engine) PurchasesSummary(ctx context.Context, userID int64) (PurchasesSummary, error) {
	dbc := dbctx.New(ctx)
	var out PurchasesSummary
	var err error
	if out.PacksAvailable, err = e.PacksAvailable(ctx, userID); err != nil {
		return out, err
	}
	if out.UnlimitedUntil, err = e.unlimitedUntil(dbc, userID); err != nil {
		return out, err
	}
	out.Recent, err = e.repos.Payments.Recent(dbc, userID, recentPaymentsShown)
	return out, err
}
