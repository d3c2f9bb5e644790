package bot

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"quizbot/catalog"
	"quizbot/model"
	"quizbot/quiz"
)

const (
	textWelcome       = "Hi\\! This bot trains you for the olympiad\\. Press *Start* to get a question\\."
	textWrongStop     = "That was a mistake\\. Rest until tomorrow 😴"
	textNoQuestions   = "No matching questions yet\\."
	textPending       = "Answer the current question first\\."
	textTryAgain      = "Something went wrong\\. Please try again\\."
	textChooseAction  = "Choose an action"
	textChooseRating  = "Choose a leaderboard:"
	textUnlimitedOnly = "This option needs active unlimited access\\."
	textPaymentIssue  = "We could not process the payment, but we can see it\\. Please contact an admin\\."
	textShopClosed    = "Purchases are temporarily unavailable"
	timeLayout        = "2006-01-02 15:04 UTC"
)

func escapeMarkdownV2(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '_', '*', '[', ']', '(', ')', '~', '`', '>', '#', '+', '-', '=', '|', '{', '}', '.', '!', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func escapeMarkdownV2Code(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '`', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// escapef formats with every argument escaped for MarkdownV2.
func escapef(format string, args ...interface{}) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		escaped[i] = escapeMarkdownV2(fmt.Sprint(a))
	}
	return fmt.Sprintf(format, escaped...)
}

func questionText(q *model.Question) string {
	var b strings.Builder
	b.WriteString("*" + escapeMarkdownV2(q.Text) + "*\n\n")
	for i, opt := range q.Options() {
		b.WriteString(escapef("%s\\) %s\n", i+1, opt))
	}
	return strings.TrimRight(b.String(), "\n")
}

func verdictText(res quiz.SubmitResult) string {
	if res.Status == quiz.StatusCorrect {
		return "✅ Correct"
	}
	return escapef("❌ Wrong, the answer was %s", res.CorrectOption)
}

func metricTitle(m quiz.Metric) (string, string) {
	if m == quiz.MetricBestStreak {
		return "Best streak", "🔥"
	}
	return "Total correct", "✅"
}

func leaderboardText(m quiz.Metric, rows []quiz.LeaderboardEntry, self *quiz.LeaderboardEntry) string {
	title, emoji := metricTitle(m)
	lines := []string{"*Leaderboard: " + escapeMarkdownV2(title) + "*"}
	if len(rows) == 0 {
		lines = append(lines, "No data yet")
	}
	for _, r := range rows {
		name := r.Name
		if name == "" {
			name = strconv.FormatInt(r.UserID, 10)
		}
		lines = append(lines, escapef("%s\\. %s: ", r.Rank, name)+emoji+escapef(" %s", r.Value))
	}
	lines = append(lines, "")
	if self != nil {
		lines = append(lines, escapef("Your place: %s", self.Rank))
	} else {
		lines = append(lines, "Your place: not ranked yet")
	}
	return strings.Join(lines, "\n")
}

func statsText(st quiz.UserStats) string {
	lines := []string{
		"*My stats*",
		escapef("Answers: %s", st.User.TotalAnswers),
		escapef("Correct: %s", st.User.TotalCorrect),
		escapef("Wrong: %s", st.User.TotalWrong),
		escapef("Best streak: %s", st.User.BestStreak),
		escapef("Current streak: %s", st.User.CurrentStreak),
		"",
	}
	if st.Unlimited {
		lines = append(lines, escapef("Today: %s correct, streak %s", st.Today.CorrectCount, st.Today.StreakToday))
		lines = append(lines, escapef("Unlimited until %s", st.UnlimitedUntil.UTC().Format(timeLayout)))
	} else {
		lines = append(lines, escapef("Today: %s/%s correct, streak %s", st.Today.CorrectCount, st.DailyCap, st.Today.StreakToday))
	}
	return strings.Join(lines, "\n")
}

func purchasesText(sum quiz.PurchasesSummary, now time.Time) string {
	unlimited := "not active"
	if sum.UnlimitedUntil != nil && sum.UnlimitedUntil.After(now) {
		unlimited = "active until " + sum.UnlimitedUntil.UTC().Format(timeLayout)
	}
	lines := []string{
		"*My purchases*",
		escapef("Packs \\+10: %s", sum.PacksAvailable),
		escapef("Unlimited: %s", unlimited),
		"",
		"Recent payments:",
	}
	if len(sum.Recent) == 0 {
		lines = append(lines, escapeMarkdownV2("- none yet"))
	}
	for _, p := range sum.Recent {
		lines = append(lines, escapef("\\- %s \\| %s \\| %s %s", p.CreatedAt.UTC().Format("2006-01-02 15:04"), p.InvoicePayload, p.TotalAmount, p.Currency))
	}
	return strings.Join(lines, "\n")
}

func importReportText(rep catalog.Report) string {
	lines := []string{escapef("Import: %s added, %s duplicates, %s errors", rep.Inserted, rep.Duplicates, rep.Errors)}
	shown := 0
	for _, it := range rep.Items {
		if it.Status != catalog.ItemError || shown == 5 {
			continue
		}
		if shown == 0 {
			lines = append(lines, "", "First errors:")
		}
		lines = append(lines, escapef("\\#%s: %s", it.Index, it.Err))
		shown++
	}
	return strings.Join(lines, "\n")
}

func adminStatsText(st quiz.AdminStats) string {
	return strings.Join([]string{
		"*Admin stats*",
		escapef("Users: %s", st.Users),
		escapef("Answers: %s", st.Answers),
		escapef("Active unlimited: %s", st.ActiveUnlimited),
	}, "\n")
}

var errBadAnswerData = errors.New("malformed answer data")

// parseAnswerArgs reads the "<question id>|<option>" callback payload.
func parseAnswerArgs(args []string) (int64, int, error) {
	if len(args) != 2 {
		return 0, 0, errBadAnswerData
	}
	qid, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || qid <= 0 {
		return 0, 0, errBadAnswerData
	}
	option, err := strconv.Atoi(args[1])
	if err != nil || option < 1 || option > 4 {
		return 0, 0, errBadAnswerData
	}
	return qid, option, nil
}
