package bot

import (
	"strconv"

	"gopkg.in/telebot.v3"

	"quizbot/quiz"
)

// Reply keyboard buttons are routed by their text, inline ones by Unique.
var (
	menuBtnStart     = telebot.Btn{Text: "▶️ Start"}
	menuBtnMenu      = telebot.Btn{Text: "📋 Menu"}
	menuBtnStats     = telebot.Btn{Text: "📊 My stats"}
	menuBtnPurchases = telebot.Btn{Text: "🛒 My purchases"}
	menuBtnRating    = telebot.Btn{Text: "🏆 Rating"}
	menuBtnUnlimited = telebot.Btn{Text: "⚙️ Unlimited settings"}

	btnAnswer  = telebot.Btn{Unique: "ans"}
	btnNext    = telebot.Btn{Text: "Next ➡️", Unique: "next"}
	btnMenu    = telebot.Btn{Text: "Menu", Unique: "menu"}
	btnBuy     = telebot.Btn{Unique: "buy"}
	btnRating  = telebot.Btn{Unique: "rating"}
	btnSetMode = telebot.Btn{Unique: "setmode"}
)

func mainMenu(hasUnlimited bool) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{ResizeKeyboard: true}
	rows := []telebot.Row{
		menu.Row(menuBtnStart),
		menu.Row(menuBtnMenu, menuBtnRating),
		menu.Row(menuBtnStats, menuBtnPurchases),
	}
	if hasUnlimited {
		rows = append(rows, menu.Row(menuBtnUnlimited))
	}
	menu.Reply(rows...)
	return menu
}

// answersMarkup carries "<question id>|<option>" on each answer button.
func answersMarkup(questionID int64) *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	qid := strconv.FormatInt(questionID, 10)
	var rows []telebot.Row
	for n := 1; n <= 4; n++ {
		opt := strconv.Itoa(n)
		rows = append(rows, menu.Row(menu.Data("Answer "+opt, btnAnswer.Unique, qid, opt)))
	}
	rows = append(rows, menu.Row(btnMenu))
	menu.Inline(rows...)
	return menu
}

func nextMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(menu.Row(btnNext), menu.Row(btnMenu))
	return menu
}

// buyMarkup is nil when purchases are switched off.
func buyMarkup(enabled bool) *telebot.ReplyMarkup {
	if !enabled {
		return nil
	}
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("Buy +10 questions", btnBuy.Unique, string(quiz.KindPack10))),
		menu.Row(menu.Data("Buy unlimited for 30 days", btnBuy.Unique, string(quiz.KindUnlimited30))),
	)
	return menu
}

func ratingMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("✅ Total correct", btnRating.Unique, string(quiz.MetricTotalCorrect))),
		menu.Row(menu.Data("🔥 Best streak", btnRating.Unique, string(quiz.MetricBestStreak))),
	)
	return menu
}

func modeMarkup() *telebot.ReplyMarkup {
	menu := &telebot.ReplyMarkup{}
	menu.Inline(
		menu.Row(menu.Data("random", btnSetMode.Unique, "random")),
		menu.Row(menu.Data("topic", btnSetMode.Unique, "topic")),
		menu.Row(menu.Data("difficulty", btnSetMode.Unique, "difficulty")),
	)
	return menu
}
