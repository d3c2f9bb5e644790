package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"time"

	"gopkg.in/telebot.v3"

	"quizbot/catalog"
	"quizbot/logger"
	"quizbot/quiz"
)

// User States
const (
	StateNone = iota
	StateUnlimited_WaitTopic
	StateUnlimited_WaitDifficulty
	StateAdmin_WaitImport
)

const handlerTimeout = 15 * time.Second

type Options struct {
	Token               string
	MonetizationEnabled bool
	TestMode            bool
	Products            quiz.Products
	// Offline builds the bot without contacting Telegram.
	Offline bool
}

type Bot struct {
	B        *telebot.Bot
	engine   *quiz.Engine
	importer *catalog.Importer
	opts     Options
	log      *logger.Logger

	// State management
	states    map[int64]int
	stateLock sync.RWMutex
}

func NewBot(engine *quiz.Engine, importer *catalog.Importer, opts Options, baseLog *logger.Logger) (*Bot, error) {
	log := baseLog.With("component", "Bot")
	pref := telebot.Settings{
		Token:     opts.Token,
		Poller:    &telebot.LongPoller{Timeout: 10 * time.Second},
		ParseMode: telebot.ModeMarkdownV2,
		Offline:   opts.Offline,
		OnError: func(err error, c telebot.Context) {
			if c != nil && c.Sender() != nil {
				log.Error("Handler failed", "user_id", c.Sender().ID, "error", err)
				return
			}
			log.Error("Handler failed", "error", err)
		},
	}

	b, err := telebot.NewBot(pref)
	if err != nil {
		return nil, err
	}

	bot := &Bot{
		B:        b,
		engine:   engine,
		importer: importer,
		opts:     opts,
		log:      log,
		states:   make(map[int64]int),
	}
	bot.registerHandlers()
	return bot, nil
}

func (bot *Bot) Start() {
	bot.B.Start()
}

func (bot *Bot) Stop() {
	bot.B.Stop()
}

func (bot *Bot) registerHandlers() {
	// Commands
	bot.B.Handle("/start", bot.handleStart)
	bot.B.Handle("/rating", bot.handleRating)
	bot.B.Handle("/stats", bot.handleStats)
	bot.B.Handle("/my_payments", bot.handlePurchases)
	bot.B.Handle("/admin_stats", bot.handleAdminStats)
	bot.B.Handle("/grant_admin", bot.handleGrantAdmin)
	bot.B.Handle("/revoke_admin", bot.handleRevokeAdmin)
	bot.B.Handle("/import", bot.handleImportCmd)
	bot.B.Handle("/toggle_question", bot.handleToggleQuestion)
	bot.B.Handle("/test_pay_pack10", bot.handleTestPay(quiz.KindPack10))
	bot.B.Handle("/test_pay_unlimited30", bot.handleTestPay(quiz.KindUnlimited30))

	// Menu Buttons
	bot.B.Handle(&menuBtnStart, bot.handleBegin)
	bot.B.Handle(&menuBtnMenu, bot.handleMenu)
	bot.B.Handle(&menuBtnStats, bot.handleStats)
	bot.B.Handle(&menuBtnPurchases, bot.handlePurchases)
	bot.B.Handle(&menuBtnRating, bot.handleRating)
	bot.B.Handle(&menuBtnUnlimited, bot.handleUnlimitedSettings)

	// Inline Buttons
	bot.B.Handle(&btnAnswer, bot.handleAnswer)
	bot.B.Handle(&btnNext, bot.handleNext)
	bot.B.Handle(&btnMenu, bot.handleMenuCallback)
	bot.B.Handle(&btnBuy, bot.handleBuy)
	bot.B.Handle(&btnRating, bot.handleRatingChoice)
	bot.B.Handle(&btnSetMode, bot.handleSetMode)

	// Payments
	bot.B.Handle(telebot.OnCheckout, bot.handleCheckout)
	bot.B.Handle(telebot.OnPayment, bot.handlePayment)

	// Generic Text Handler (for inputs)
	bot.B.Handle(telebot.OnText, bot.handleText)
}

// Helper to manage state
func (bot *Bot) setState(userID int64, state int) {
	bot.stateLock.Lock()
	defer bot.stateLock.Unlock()
	if state == StateNone {
		delete(bot.states, userID)
		return
	}
	bot.states[userID] = state
}

func (bot *Bot) getState(userID int64) int {
	bot.stateLock.RLock()
	defer bot.stateLock.RUnlock()
	return bot.states[userID]
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), handlerTimeout)
}

func (bot *Bot) hasUnlimited(ctx context.Context, userID int64) bool {
	ok, err := bot.engine.HasUnlimitedNow(ctx, userID)
	if err != nil {
		bot.log.Warn("Unlimited lookup failed", "user_id", userID, "error", err)
	}
	return ok
}

func (bot *Bot) menuFor(ctx context.Context, userID int64) *telebot.ReplyMarkup {
	return mainMenu(bot.hasUnlimited(ctx, userID))
}

func (bot *Bot) fail(c telebot.Context, err error) error {
	bot.log.Error("Request failed", "user_id", c.Sender().ID, "error", err)
	if c.Callback() != nil {
		_ = c.Respond(&telebot.CallbackResponse{Text: "Something went wrong, try again", ShowAlert: true})
	}
	return c.Send(textTryAgain)
}

// --- Quiz flow ---

func (bot *Bot) handleStart(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	u := c.Sender()
	bot.setState(u.ID, StateNone)
	if err := bot.engine.EnsureUser(ctx, u.ID, u.FirstName, u.Username); err != nil {
		return bot.fail(c, err)
	}
	return bot.beginQuiz(ctx, c, textWelcome)
}

func (bot *Bot) handleBegin(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	u := c.Sender()
	bot.setState(u.ID, StateNone)
	if err := bot.engine.EnsureUser(ctx, u.ID, u.FirstName, u.Username); err != nil {
		return bot.fail(c, err)
	}
	return bot.beginQuiz(ctx, c, "")
}

// beginQuiz gates a fresh visit and serves its first question.
func (bot *Bot) beginQuiz(ctx context.Context, c telebot.Context, greeting string) error {
	userID := c.Sender().ID
	d, err := bot.engine.CanStartNow(ctx, userID)
	if err != nil {
		return bot.fail(c, err)
	}
	if !d.Allowed {
		msg := escapeMarkdownV2(d.Reason)
		if greeting != "" {
			msg = greeting + "\n\n" + msg
		}
		if err := c.Send(msg, bot.menuFor(ctx, userID)); err != nil {
			return err
		}
		return bot.offerPurchase(c)
	}
	if d.PackConsumed {
		greeting = strings.TrimSpace(greeting + "\n\nA pack was used: \\+10 questions for today\\.")
	}
	if err := bot.engine.ResetSession(ctx, userID); err != nil {
		return bot.fail(c, err)
	}
	if greeting != "" {
		if err := c.Send(greeting, mainMenu(d.Unlimited || bot.hasUnlimited(ctx, userID))); err != nil {
			return err
		}
	}
	return bot.sendNextQuestion(ctx, c)
}

func (bot *Bot) offerPurchase(c telebot.Context) error {
	m := buyMarkup(bot.opts.MonetizationEnabled)
	if m == nil {
		return nil
	}
	return c.Send("Want to keep going?", m)
}

func (bot *Bot) sendNextQuestion(ctx context.Context, c telebot.Context) error {
	q, err := bot.engine.Pick(ctx, c.Sender().ID)
	switch {
	case errors.Is(err, quiz.ErrAnswerPending):
		return c.Send(textPending)
	case err != nil:
		return bot.fail(c, err)
	case q == nil:
		return c.Send(textNoQuestions)
	}
	return c.Send(questionText(q), answersMarkup(q.ID))
}

func (bot *Bot) handleAnswer(c telebot.Context) error {
	userID := c.Sender().ID
	qid, option, err := parseAnswerArgs(c.Args())
	if err != nil {
		bot.log.Warn("Malformed answer callback", "user_id", userID, "data", c.Callback().Data)
		return c.Respond(&telebot.CallbackResponse{Text: "Invalid answer", ShowAlert: true})
	}

	ctx, cancel := requestContext()
	defer cancel()
	res, err := bot.engine.Submit(ctx, userID, qid, option)
	if err != nil {
		_ = c.Respond(&telebot.CallbackResponse{Text: "Could not save the answer", ShowAlert: true})
		bot.log.Error("Submit failed", "user_id", userID, "question_id", qid, "error", err)
		return nil
	}

	switch res.Status {
	case quiz.StatusAlreadyAnswered:
		return c.Respond(&telebot.CallbackResponse{Text: "Answer already accepted"})
	case quiz.StatusStaleQuestion, quiz.StatusUnknownQuestion:
		return c.Respond(&telebot.CallbackResponse{Text: "This question is no longer active"})
	case quiz.StatusUnknownUser:
		return c.Respond(&telebot.CallbackResponse{Text: "Press /start first", ShowAlert: true})
	}
	_ = c.Respond(&telebot.CallbackResponse{Text: "Accepted"})

	switch res.Status {
	case quiz.StatusBlocked:
		if err := c.Send(verdictText(res)+"\n"+textWrongStop, bot.menuFor(ctx, userID)); err != nil {
			return err
		}
		return bot.offerPurchase(c)
	case quiz.StatusDailyDone:
		limit := bot.engine.DailyCap() + res.Day.BonusAllowance
		msg := escapef("%s/%s done for today\\. Come back tomorrow ✅", res.Day.CorrectCount, limit)
		if err := c.Send(msg, bot.menuFor(ctx, userID)); err != nil {
			return err
		}
		return bot.offerPurchase(c)
	}
	if err := c.Send(verdictText(res)); err != nil {
		return err
	}
	return bot.sendNextQuestion(ctx, c)
}

func (bot *Bot) handleNext(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	_ = c.Respond()
	d, err := bot.engine.CanStartNow(ctx, c.Sender().ID)
	if err != nil {
		return bot.fail(c, err)
	}
	if !d.Allowed {
		return c.Send(escapeMarkdownV2(d.Reason), bot.menuFor(ctx, c.Sender().ID))
	}
	return bot.sendNextQuestion(ctx, c)
}

func (bot *Bot) handleMenu(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	bot.setState(c.Sender().ID, StateNone)
	return c.Send(textChooseAction, bot.menuFor(ctx, c.Sender().ID))
}

func (bot *Bot) handleMenuCallback(c telebot.Context) error {
	_ = c.Respond()
	return bot.handleMenu(c)
}

// --- Rating and stats ---

func (bot *Bot) handleRating(c telebot.Context) error {
	return c.Send(textChooseRating, ratingMarkup())
}

func (bot *Bot) handleRatingChoice(c telebot.Context) error {
	metric, err := quiz.ParseMetric(c.Callback().Data)
	if err != nil {
		return c.Respond(&telebot.CallbackResponse{Text: "Unknown leaderboard", ShowAlert: true})
	}
	ctx, cancel := requestContext()
	defer cancel()
	top, err := bot.engine.TopN(ctx, metric, 10)
	if err != nil {
		return bot.fail(c, err)
	}
	var self *quiz.LeaderboardEntry
	if r, err := bot.engine.Rank(ctx, c.Sender().ID, metric); err == nil {
		self = &r
	} else if !errors.Is(err, quiz.ErrUserNotFound) {
		return bot.fail(c, err)
	}
	_ = c.Respond()
	return c.Send(leaderboardText(metric, top, self))
}

func (bot *Bot) handleStats(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	st, err := bot.engine.Stats(ctx, c.Sender().ID)
	if errors.Is(err, quiz.ErrUserNotFound) {
		return c.Send("Press /start first\\.")
	}
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send(statsText(st))
}

func (bot *Bot) handlePurchases(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	sum, err := bot.engine.PurchasesSummary(ctx, c.Sender().ID)
	if err != nil {
		return bot.fail(c, err)
	}
	now := time.Now()
	unlimited := sum.UnlimitedUntil != nil && sum.UnlimitedUntil.After(now)
	return c.Send(purchasesText(sum, now), mainMenu(unlimited))
}

// --- Unlimited settings ---

func (bot *Bot) handleUnlimitedSettings(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	if !bot.hasUnlimited(ctx, c.Sender().ID) {
		return c.Send(textUnlimitedOnly, buyMarkup(bot.opts.MonetizationEnabled))
	}
	return c.Send("Choose how questions are picked:", modeMarkup())
}

func (bot *Bot) handleSetMode(c telebot.Context) error {
	ctx, cancel := requestContext()
	defer cancel()
	userID := c.Sender().ID
	_ = c.Respond()
	if !bot.hasUnlimited(ctx, userID) {
		return c.Send(textUnlimitedOnly, buyMarkup(bot.opts.MonetizationEnabled))
	}

	switch c.Callback().Data {
	case "random":
		if err := bot.engine.SetModeRandom(ctx, userID); err != nil {
			return bot.fail(c, err)
		}
		return c.Send("Random mode on")
	case "topic":
		topics, err := bot.engine.ActiveTopics(ctx)
		if err != nil {
			return bot.fail(c, err)
		}
		if len(topics) == 0 {
			return c.Send("No active topics")
		}
		lines := []string{"Send the topic ID:"}
		for _, t := range topics {
			lines = append(lines, escapef("%s: %s", t.ID, t.Title))
		}
		bot.setState(userID, StateUnlimited_WaitTopic)
		return c.Send(strings.Join(lines, "\n"))
	case "difficulty":
		bot.setState(userID, StateUnlimited_WaitDifficulty)
		return c.Send("Send a difficulty from 1 to 5")
	}
	return nil
}

// Global Text Handler (State Machine)
func (bot *Bot) handleText(c telebot.Context) error {
	userID := c.Sender().ID
	ctx, cancel := requestContext()
	defer cancel()

	switch bot.getState(userID) {
	case StateUnlimited_WaitTopic:
		topicID, err := strconv.ParseInt(strings.TrimSpace(c.Text()), 10, 64)
		if err != nil {
			return c.Send("Send a numeric topic ID")
		}
		err = bot.engine.SetModeTopic(ctx, userID, topicID)
		if errors.Is(err, quiz.ErrTopicNotFound) {
			return c.Send("No such active topic, try another ID")
		}
		if err != nil {
			return bot.fail(c, err)
		}
		bot.setState(userID, StateNone)
		return c.Send("Topic mode on")

	case StateUnlimited_WaitDifficulty:
		d, err := strconv.Atoi(strings.TrimSpace(c.Text()))
		if err != nil {
			return c.Send("Send a number from 1 to 5")
		}
		err = bot.engine.SetModeDifficulty(ctx, userID, d)
		if errors.Is(err, quiz.ErrInvalidDifficulty) {
			return c.Send("Send a number from 1 to 5")
		}
		if err != nil {
			return bot.fail(c, err)
		}
		bot.setState(userID, StateNone)
		return c.Send("Difficulty mode on")

	case StateAdmin_WaitImport:
		bot.setState(userID, StateNone)
		rep := bot.importer.ImportText(ctx, c.Text())
		bot.log.Info("Bulk import", "user_id", userID, "inserted", rep.Inserted, "duplicates", rep.Duplicates, "errors", rep.Errors)
		return c.Send(importReportText(rep))
	}
	return nil
}
