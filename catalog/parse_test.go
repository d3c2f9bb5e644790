package catalog

import (
	"strings"
	"testing"
)

func TestSplitBlocksBySeparatorWithoutTrailingSeparator(t *testing.T) {
	raw := "Q: First?\nA) 1\nB) 2\nC) 3\nD) 4\nANS: B\n---\nQ: Second?\nA) aa\nB) bb\nC) cc\nD) dd\nANS: D"
	blocks := SplitBlocks(raw)
	if len(blocks) != 2 {
		t.Fatalf("SplitBlocks: expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[0], "Q: First?") || !strings.HasPrefix(blocks[1], "Q: Second?") {
		t.Fatalf("SplitBlocks: unexpected blocks %q", blocks)
	}
}

func TestSplitBlocksOnQuestionBoundary(t *testing.T) {
	raw := "Q: First?\nA: 1\nB: 2\nC: 3\nD: 4\nANS: B\nВ: Второй?\nA) да\nB) нет\nC) может\nD) позже\nANS: A"
	blocks := SplitBlocks(raw)
	if len(blocks) != 2 {
		t.Fatalf("SplitBlocks: expected 2 blocks, got %d", len(blocks))
	}
	if !strings.HasPrefix(blocks[1], "В: Второй?") {
		t.Fatalf("SplitBlocks: second block starts with %q", blocks[1])
	}
}

func TestParseBlockColonOptionsAndOptionalFields(t *testing.T) {
	block := "В: Столица Франции?\nA: Париж\nB: Лион\nC: Марсель\nD: Ницца\nANS: A\nTOPIC_ID: 3\nDIFF: 2\nACTIVE: false"
	q, err := ParseBlock(block)
	if err != nil {
		t.Fatalf("ParseBlock: %v", err)
	}
	if q.Text != "Столица Франции?" || q.CorrectOption != 1 || q.Option4 != "Ницца" {
		t.Fatalf("ParseBlock: unexpected %+v", q)
	}
	if q.TopicID == nil || *q.TopicID != 3 || q.Difficulty == nil || *q.Difficulty != 2 || q.IsActive {
		t.Fatalf("ParseBlock: optional fields not applied: %+v", q)
	}
}

func TestParseBlockErrors(t *testing.T) {
	base := "Q: Q?\nA) a\nB) b\nC) c\nD) d\n"
	cases := map[string]string{
		"missing answer":  base,
		"bad answer":      base + "ANS: E",
		"missing option":  "Q: Q?\nA) a\nB) b\nC) c\nANS: A",
		"bad difficulty":  base + "ANS: A\nDIFF: 9",
		"bad topic":       base + "ANS: A\nTOPIC_ID: history",
		"bad active flag": base + "ANS: A\nACTIVE: maybe",
		"unknown field":   base + "ANS: A\nCOLOR: red",
		"garbage line":    base + "ANS: A\nhello there",
		"missing text":    "A) a\nB) b\nC) c\nD) d\nANS: A",
	}
	for name, block := range cases {
		if _, err := ParseBlock(block); err == nil {
			t.Fatalf("ParseBlock(%s): expected error", name)
		}
	}
}

func TestNormalizeRecordSchemas(t *testing.T) {
	q, err := NormalizeRecord(map[string]interface{}{"q": "Q?", "a1": "A", "a2": "B", "a3": "C", "a4": "D", "correct": 2})
	if err != nil || q.Text != "Q?" || q.Option2 != "B" || q.CorrectOption != 2 {
		t.Fatalf("NormalizeRecord short schema: %+v %v", q, err)
	}
	q, err = NormalizeRecord(map[string]interface{}{
		"text": "Legacy Q", "option1": "A", "option2": "B", "option3": "C", "option4": "D", "correct_option": "3",
	})
	if err != nil || q.Option3 != "C" || q.CorrectOption != 3 {
		t.Fatalf("NormalizeRecord long schema: %+v %v", q, err)
	}
	if _, err := NormalizeRecord(map[string]interface{}{"q": "Q only"}); err == nil {
		t.Fatalf("NormalizeRecord incomplete: expected error")
	}
}

func TestParseBankDetectsFormat(t *testing.T) {
	entries, err := ParseBank([]byte(`[{"q":"Q1","a1":"a","a2":"b","a3":"c","a4":"d","correct":1},{"q":"bad"}]`))
	if err != nil {
		t.Fatalf("ParseBank json: %v", err)
	}
	if len(entries) != 2 || entries[0].Err != nil || entries[1].Err == nil {
		t.Fatalf("ParseBank json: unexpected %+v", entries)
	}

	entries, err = ParseBank([]byte("- q: Q1\n  a1: a\n  a2: b\n  a3: c\n  a4: d\n  correct: 4\n  difficulty: 3\n"))
	if err != nil || len(entries) != 1 || entries[0].Err != nil {
		t.Fatalf("ParseBank yaml: %+v %v", entries, err)
	}
	if q := entries[0].Question; q.CorrectOption != 4 || *q.Difficulty != 3 {
		t.Fatalf("ParseBank yaml: unexpected %+v", q)
	}

	entries, err = ParseBank([]byte("Q: Text?\nA) 1\nB) 2\nC) 3\nD) 4\nANS: C"))
	if err != nil || len(entries) != 1 || entries[0].Question.CorrectOption != 3 {
		t.Fatalf("ParseBank text: %+v %v", entries, err)
	}
}
