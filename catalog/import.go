// Package catalog loads questions into the bank: the bulk text format admins
// paste, and remote banks fetched on a schedule.
package catalog

import (
	"context"
	"errors"

	"quizbot/dbctx"
	"quizbot/logger"
	"quizbot/store"
)

type ItemStatus string

const (
	ItemInserted  ItemStatus = "inserted"
	ItemDuplicate ItemStatus = "duplicate"
	ItemError     ItemStatus = "error"
)

type Item struct {
	Index      int // 1-based position in the input
	Status     ItemStatus
	QuestionID int64
	Err        error
}

type Report struct {
	Items      []Item
	Inserted   int
	Duplicates int
	Errors     int
}

func (r *Report) add(it Item) {
	r.Items = append(r.Items, it)
	switch it.Status {
	case ItemInserted:
		r.Inserted++
	case ItemDuplicate:
		r.Duplicates++
	default:
		r.Errors++
	}
}

type Importer struct {
	questions store.QuestionRepo
	client    *Client
	log       *logger.Logger
}

func NewImporter(questions store.QuestionRepo, client *Client, baseLog *logger.Logger) *Importer {
	if client == nil {
		client = NewClient()
	}
	return &Importer{questions: questions, client: client, log: baseLog.With("service", "CatalogImporter")}
}

// Import stores every parsed entry that is not already in the bank. One bad
// entry never stops the rest.
func (im *Importer) Import(ctx context.Context, entries []Entry) Report {
	var rep Report
	dbc := dbctx.New(ctx)
	for i, e := range entries {
		it := Item{Index: i + 1}
		switch {
		case e.Err != nil:
			it.Status, it.Err = ItemError, e.Err
		case e.Question == nil:
			it.Status, it.Err = ItemError, errors.New("empty entry")
		default:
			err := im.questions.InsertIfAbsent(dbc, e.Question)
			switch {
			case err == nil:
				it.Status, it.QuestionID = ItemInserted, e.Question.ID
			case errors.Is(err, store.ErrDuplicate):
				it.Status = ItemDuplicate
			default:
				it.Status, it.Err = ItemError, err
			}
		}
		rep.add(it)
	}
	return rep
}

// ImportText parses and imports the bulk text format.
func (im *Importer) ImportText(ctx context.Context, raw string) Report {
	blocks := SplitBlocks(raw)
	entries := make([]Entry, 0, len(blocks))
	for _, b := range blocks {
		q, err := ParseBlock(b)
		entries = append(entries, Entry{Question: q, Err: err})
	}
	return im.Import(ctx, entries)
}

// Sync fetches a remote bank and imports it.
func (im *Importer) Sync(ctx context.Context, url string) (Report, error) {
	raw, err := im.client.Fetch(ctx, url)
	if err != nil {
		return Report{}, err
	}
	entries, err := ParseBank(raw)
	if err != nil {
		return Report{}, err
	}
	rep := im.Import(ctx, entries)
	im.log.Info("Question bank synced", "url", url, "inserted", rep.Inserted, "duplicates", rep.Duplicates, "errors", rep.Errors)
	return rep, nil
}
