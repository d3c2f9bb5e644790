package bot

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/telebot.v3"

	"quizbot/quiz"
)

var (
	errShopClosed     = errors.New("monetization disabled")
	errAmountMismatch = errors.New("payment amount mismatch")
	errWrongCurrency  = errors.New("unexpected payment currency")
)

var productTitles = map[quiz.Kind][2]string{
	quiz.KindPack10:      {"Pack +10 questions", "Unlocks 10 more questions right now"},
	quiz.KindUnlimited30: {"Unlimited for 30 days", "Endless questions and flexible modes"},
}

// validatePayment checks a payment against the catalogue before anything is granted.
func validatePayment(opts Options, payload string, amount int, currency string) (quiz.Kind, error) {
	if !opts.MonetizationEnabled {
		return "", errShopClosed
	}
	kind, err := quiz.KindFromPayload(payload)
	if err != nil {
		return "", err
	}
	if currency != quiz.CurrencyStars {
		return kind, fmt.Errorf("%w: %s", errWrongCurrency, currency)
	}
	expected, err := opts.Products.Expected(kind)
	if err != nil {
		return kind, err
	}
	if amount != expected {
		return kind, fmt.Errorf("%w: expected %d, got %d", errAmountMismatch, expected, amount)
	}
	return kind, nil
}

func (bot *Bot) handleBuy(c telebot.Context) error {
	if !bot.opts.MonetizationEnabled {
		return c.Respond(&telebot.CallbackResponse{Text: textShopClosed, ShowAlert: true})
	}
	kind := quiz.Kind(c.Callback().Data)
	payload, err := quiz.PayloadForKind(kind)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown product", ShowAlert: true})
	}
	amount, _ := bot.opts.Products.Expected(kind)
	title := productTitles[kind]

	_ = c.Respond()
	// Stars invoices carry no provider token.
	return c.Send(&telebot.Invoice{
		Title:       title[0],
		Description: title[1],
		Payload:     payload,
		Currency:    quiz.CurrencyStars,
		Prices:      []telebot.Price{{Label: title[0], Amount: amount}},
	})
}

func (bot *Bot) handleCheckout(c telebot.Context) error {
	q := c.PreCheckoutQuery()
	if _, err := validatePayment(bot.opts, q.Payload, q.Total, q.Currency); err != nil {
		bot.log.Warn("Checkout rejected", "user_id", q.Sender.ID, "payload", q.Payload, "error", err)
		return c.Accept("This purchase is not available right now")
	}
	return c.Accept()
}

func (bot *Bot) handlePayment(c telebot.Context) error {
	p := c.Message().Payment
	userID := c.Sender().ID
	kind, err := validatePayment(bot.opts, p.Payload, p.Total, p.Currency)
	switch {
	case errors.Is(err, errShopClosed):
		bot.log.Info("Ignoring payment while monetization is disabled", "user_id", userID, "payload", p.Payload)
		return nil
	case errors.Is(err, quiz.ErrUnsupportedPurchase):
		bot.log.Error("Unknown payment payload", "user_id", userID, "payload", p.Payload, "charge_id", p.TelegramChargeID)
		return c.Send("Could not tell what was bought\\. Please contact an admin\\.")
	case err != nil:
		bot.log.Error("Payment rejected", "user_id", userID, "payload", p.Payload, "charge_id", p.TelegramChargeID, "error", err)
		return c.Send(textPaymentIssue)
	}

	return bot.grant(c, quiz.Purchase{
		UserID:   userID,
		Payload:  p.Payload,
		Amount:   p.Total,
		Currency: p.Currency,
		ChargeID: p.TelegramChargeID,
		Provider: "telegram",
	}, kind, "")
}

func (bot *Bot) handleTestPay(kind quiz.Kind) telebot.HandlerFunc {
	return func(c telebot.Context) error {
		ctx, cancel := requestContext()
		defer cancel()
		userID := c.Sender().ID
		if !bot.opts.TestMode {
			return nil
		}
		if ok, err := bot.engine.HasAdminAccess(ctx, userID); err != nil || !ok {
			return nil
		}
		payload, _ := quiz.PayloadForKind(kind)
		amount, _ := bot.opts.Products.Expected(kind)
		return bot.grant(c, quiz.Purchase{
			UserID:   userID,
			Payload:  payload,
			Amount:   amount,
			Currency: quiz.CurrencyStars,
			ChargeID: "TEST-" + uuid.NewString(),
			Provider: "test",
			IsTest:   true,
		}, kind, "🧪 TEST MODE: ")
	}
}

func (bot *Bot) grant(c telebot.Context, p quiz.Purchase, kind quiz.Kind, prefix string) error {
	ctx, cancel := requestContext()
	defer cancel()
	res, err := bot.engine.Grant(ctx, p)
	if err != nil {
		return c.Send(textPaymentIssue)
	}
	if res.Duplicate {
		return c.Send(prefix + "Payment already counted ✅")
	}
	if p.IsTest {
		prefix += "charge `" + escapeMarkdownV2Code(p.ChargeID) + "`\n"
	}
	if kind == quiz.KindPack10 {
		if err := c.Send(prefix+"✅ Payment accepted\\. \\+10 questions added\\.", bot.menuFor(ctx, p.UserID)); err != nil {
			return err
		}
		return c.Send("Ready when you are", nextMarkup())
	}
	return c.Send(prefix+escapef("✅ Unlimited active until %s\\.", res.UnlimitedUntil.UTC().Format(timeLayout)), mainMenu(true))
}
