package catalog

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"quizbot/model"
)

var (
	questionStartRe = regexp.MustCompile(`(?i)^\s*(?:Q|В)\s*:\s*`)
	optionRe        = regexp.MustCompile(`(?i)^([ABCD])\s*[):]\s*(.+)$`)
	fieldRe         = regexp.MustCompile(`(?i)^([A-ZА-Я_]+)\s*:\s*(.*)$`)
	separatorRe     = regexp.MustCompile(`^\s*---\s*$`)
)

// SplitBlocks cuts a bulk text into one block per question. Explicit "---"
// separator lines win; without them every Q:/В: line starts a new block.
func SplitBlocks(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")

	hasSeparator := false
	for _, l := range lines {
		if separatorRe.MatchString(l) {
			hasSeparator = true
			break
		}
	}

	var blocks, current []string
	flush := func() {
		if b := strings.TrimSpace(strings.Join(current, "\n")); b != "" {
			blocks = append(blocks, b)
		}
		current = current[:0]
	}
	for _, l := range lines {
		switch {
		case hasSeparator && separatorRe.MatchString(l):
			flush()
			continue
		case !hasSeparator && questionStartRe.MatchString(l) && len(current) > 0:
			flush()
		}
		current = append(current, l)
	}
	flush()
	return blocks
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "y", "да":
		return true, true
	case "false", "0", "no", "n", "нет":
		return false, true
	}
	return false, false
}

// ParseBlock turns one block into an unsaved question. Active defaults to true.
func ParseBlock(block string) (*model.Question, error) {
	q := &model.Question{IsActive: true}
	options := map[string]string{}

	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}
		if m := optionRe.FindStringSubmatch(line); m != nil {
			options[strings.ToUpper(m[1])] = strings.TrimSpace(m[2])
			continue
		}
		if loc := questionStartRe.FindStringIndex(line); loc != nil {
			q.Text = strings.TrimSpace(line[loc[1]:])
			continue
		}
		m := fieldRe.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("unrecognized line: %s", line)
		}
		key, value := strings.ToUpper(m[1]), strings.TrimSpace(m[2])
		switch key {
		case "ANS":
			idx := strings.Index("ABCD", strings.ToUpper(value))
			if len(value) != 1 || idx < 0 {
				return nil, errors.New("ANS must be one of A/B/C/D")
			}
			q.CorrectOption = idx + 1
		case "TOPIC_ID":
			if value == "" {
				continue
			}
			id, err := strconv.ParseInt(value, 10, 64)
			if err != nil || id <= 0 {
				return nil, errors.New("TOPIC_ID must be a number")
			}
			q.TopicID = &id
		case "DIFF":
			if value == "" {
				continue
			}
			d, err := strconv.Atoi(value)
			if err != nil || d < 1 || d > 5 {
				return nil, errors.New("DIFF must be a number 1..5")
			}
			q.Difficulty = &d
		case "ACTIVE":
			if value == "" {
				continue
			}
			b, ok := parseBool(value)
			if !ok {
				return nil, errors.New("ACTIVE must be true/false")
			}
			q.IsActive = b
		default:
			return nil, fmt.Errorf("unknown field %s", key)
		}
	}

	if q.Text == "" {
		return nil, errors.New("Q is empty")
	}
	for _, letter := range []string{"A", "B", "C", "D"} {
		if options[letter] == "" {
			return nil, fmt.Errorf("option %s is missing", letter)
		}
	}
	if q.CorrectOption == 0 {
		return nil, errors.New("ANS is missing")
	}
	q.Option1, q.Option2, q.Option3, q.Option4 = options["A"], options["B"], options["C"], options["D"]
	return q, nil
}
