package bot

import (
	"errors"
	"strconv"
	"strings"

	"gopkg.in/telebot.v3"

	"quizbot/quiz"
)

const importPrompt = "Send questions in one message, blocks separated by a line with \\-\\-\\-:\n\n" +
	"`Q: Question text\nA) option\nB) option\nC) option\nD) option\nANS: B\nTOPIC_ID: 1\nDIFF: 2\nACTIVE: true`"

// requireAdmin answers nothing to users without a role.
func (bot *Bot) requireAdmin(c telebot.Context) bool {
	ctx, cancel := requestContext()
	defer cancel()
	ok, err := bot.engine.HasAdminAccess(ctx, c.Sender().ID)
	if err != nil {
		bot.log.Error("Admin lookup failed", "user_id", c.Sender().ID, "error", err)
	}
	return ok
}

func (bot *Bot) handleAdminStats(c telebot.Context) error {
	if !bot.requireAdmin(c) {
		return nil
	}
	ctx, cancel := requestContext()
	defer cancel()
	st, err := bot.engine.AdminStats(ctx)
	if err != nil {
		return bot.fail(c, err)
	}
	return c.Send(adminStatsText(st))
}

// /grant_admin TG_ID admin|editor
func (bot *Bot) handleGrantAdmin(c telebot.Context) error {
	if !bot.requireAdmin(c) {
		return nil
	}
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Usage: /grant\\_admin TG\\_ID admin\\|editor")
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("tg\\_id must be a number")
	}
	role, err := quiz.ParseRole(strings.ToLower(args[1]))
	if err != nil {
		return c.Send("Unknown role")
	}
	ctx, cancel := requestContext()
	defer cancel()
	switch err := bot.engine.GrantRole(ctx, c.Sender().ID, target, role); {
	case errors.Is(err, quiz.ErrForbidden):
		return c.Send("Not enough rights")
	case err != nil:
		return bot.fail(c, err)
	}
	return c.Send(escapef("Role %s granted to %s", role, target))
}

// /revoke_admin TG_ID
func (bot *Bot) handleRevokeAdmin(c telebot.Context) error {
	if !bot.requireAdmin(c) {
		return nil
	}
	args := c.Args()
	if len(args) != 1 {
		return c.Send("Usage: /revoke\\_admin TG\\_ID")
	}
	target, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("tg\\_id must be a number")
	}
	ctx, cancel := requestContext()
	defer cancel()
	switch err := bot.engine.RevokeRole(ctx, c.Sender().ID, target); {
	case errors.Is(err, quiz.ErrForbidden):
		return c.Send("Not enough rights")
	case err != nil:
		return bot.fail(c, err)
	}
	return c.Send(escapef("Role revoked from %s", target))
}

func (bot *Bot) handleImportCmd(c telebot.Context) error {
	if !bot.requireAdmin(c) {
		return nil
	}
	bot.setState(c.Sender().ID, StateAdmin_WaitImport)
	return c.Send(importPrompt)
}

// /toggle_question ID on|off
func (bot *Bot) handleToggleQuestion(c telebot.Context) error {
	if !bot.requireAdmin(c) {
		return nil
	}
	args := c.Args()
	if len(args) != 2 {
		return c.Send("Usage: /toggle\\_question ID on\\|off")
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return c.Send("Question id must be a number")
	}
	var active bool
	switch strings.ToLower(args[1]) {
	case "on", "true", "1":
		active = true
	case "off", "false", "0":
	default:
		return c.Send("Use on or off")
	}
	ctx, cancel := requestContext()
	defer cancel()
	switch err := bot.engine.SetQuestionActive(ctx, qid, active); {
	case errors.Is(err, quiz.ErrQuestionNotFound):
		return c.Send("No such question")
	case err != nil:
		return bot.fail(c, err)
	}
	return c.Send(escapef("Question %s is now %s", qid, map[bool]string{true: "active", false: "hidden"}[active]))
}
