package catalog_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"quizbot/catalog"
	"quizbot/logger"
	"quizbot/store/storetest"
)

const bulk = `Q: 2+2?
A) 3
B) 4
C) 5
D) 22
ANS: B
---
Q:   2+2?
A) 3
B) 4
C) 5
D) 22
ANS: B
---
Q: broken
A) only one
`

func TestImportTextReportsPerItem(t *testing.T) {
	repos := storetest.Repos(t)
	im := catalog.NewImporter(repos.Questions, nil, logger.Nop())

	rep := im.ImportText(context.Background(), bulk)
	if rep.Inserted != 1 || rep.Duplicates != 1 || rep.Errors != 1 {
		t.Fatalf("ImportText: unexpected report %+v", rep)
	}
	if rep.Items[0].Status != catalog.ItemInserted || rep.Items[0].QuestionID == 0 {
		t.Fatalf("ImportText: first item %+v", rep.Items[0])
	}
	if rep.Items[2].Status != catalog.ItemError || rep.Items[2].Err == nil {
		t.Fatalf("ImportText: third item %+v", rep.Items[2])
	}

	// running the same import again inserts nothing
	rep = im.ImportText(context.Background(), bulk)
	if rep.Inserted != 0 || rep.Duplicates != 2 {
		t.Fatalf("ImportText again: unexpected report %+v", rep)
	}
}

func TestSyncFetchesAndImports(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bank.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"text":"Capital of Italy?","option1":"Rome","option2":"Milan","option3":"Turin","option4":"Naples","correct_option":1}]`))
	}))
	t.Cleanup(srv.Close)

	repos := storetest.Repos(t)
	im := catalog.NewImporter(repos.Questions, catalog.NewClient(), logger.Nop())

	rep, err := im.Sync(context.Background(), srv.URL+"/bank.json")
	if err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if rep.Inserted != 1 {
		t.Fatalf("Sync: expected 1 inserted, got %+v", rep)
	}
	if _, err := im.Sync(context.Background(), srv.URL+"/missing"); err == nil {
		t.Fatalf("Sync missing bank: expected error")
	}
}
