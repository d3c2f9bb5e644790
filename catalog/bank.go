package catalog

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"quizbot/model"
)

// A remote question bank is either the bulk text format or a YAML/JSON list of
// records. Records may use either column naming: text/option1..4/correct_option
// or q/a1..a4/correct.

func firstNonEmpty(rec map[string]interface{}, keys ...string) string {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || v == nil {
			continue
		}
		if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
			return s
		}
	}
	return ""
}

// NormalizeRecord maps one bank record onto a question.
func NormalizeRecord(rec map[string]interface{}) (*model.Question, error) {
	q := &model.Question{
		Text:    firstNonEmpty(rec, "text", "q"),
		Option1: firstNonEmpty(rec, "option1", "a1"),
		Option2: firstNonEmpty(rec, "option2", "a2"),
		Option3: firstNonEmpty(rec, "option3", "a3"),
		Option4: firstNonEmpty(rec, "option4", "a4"),

		IsActive: true,
	}
	correct := firstNonEmpty(rec, "correct_option", "correct")

	var missing []string
	for _, f := range []struct{ name, v string }{
		{"text", q.Text}, {"a1", q.Option1}, {"a2", q.Option2}, {"a3", q.Option3}, {"a4", q.Option4}, {"correct", correct},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing fields %s", strings.Join(missing, ","))
	}

	n, err := strconv.Atoi(correct)
	if err != nil || n < 1 || n > 4 {
		return nil, fmt.Errorf("invalid correct option %q", correct)
	}
	q.CorrectOption = n

	if v := firstNonEmpty(rec, "topic_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid topic_id %q", v)
		}
		q.TopicID = &id
	}
	if v := firstNonEmpty(rec, "difficulty"); v != "" {
		d, err := strconv.Atoi(v)
		if err != nil || d < 1 || d > 5 {
			return nil, fmt.Errorf("invalid difficulty %q", v)
		}
		q.Difficulty = &d
	}
	if v := firstNonEmpty(rec, "is_active"); v != "" {
		b, ok := parseBool(v)
		if !ok {
			return nil, fmt.Errorf("invalid is_active %q", v)
		}
		q.IsActive = b
	}
	return q, nil
}

// Entry is one parsed item of a bank, or the reason it could not be parsed.
type Entry struct {
	Question *model.Question
	Err      error
}

// ParseBank detects the bank format and parses every item independently.
func ParseBank(raw []byte) ([]Entry, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '[' || bytes.HasPrefix(trimmed, []byte("- "))) {
		var records []map[string]interface{}
		if err := yaml.Unmarshal(trimmed, &records); err != nil {
			return nil, fmt.Errorf("decode question bank: %w", err)
		}
		out := make([]Entry, 0, len(records))
		for _, rec := range records {
			q, err := NormalizeRecord(rec)
			out = append(out, Entry{Question: q, Err: err})
		}
		return out, nil
	}

	blocks := SplitBlocks(string(raw))
	out := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		q, err := ParseBlock(b)
		out = append(out, Entry{Question: q, Err: err})
	}
	return out, nil
}
