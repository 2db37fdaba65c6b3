package sqlite

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"PaperScope/db"
	"PaperScope/internal/models"
)

func newTestDB(t *testing.T) *SQLiteDB {
	t.Helper()
	store, err := NewSQLiteDB(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLiteDB() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func makeRecord(id, recordType string, ts time.Time) *models.HistoryRecord {
	return &models.HistoryRecord{
		ID:        id,
		Type:      recordType,
		Timestamp: ts,
		Params:    map[string]interface{}{"query": "test query"},
		ResultSummary: map[string]interface{}{
			"total": float64(42),
		},
		Papers: []*models.Paper{
			{Source: "arxiv", SourceID: "2408.12345", Title: "Some Paper"},
		},
	}
}

func TestSaveAndGet(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()

	record := makeRecord("rec-1", models.HistoryMultiEngine, time.Now())
	if err := store.Save(ctx, record); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	got, err := store.Get(ctx, "rec-1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if got.ID != "rec-1" || got.Type != models.HistoryMultiEngine {
		t.Errorf("got ID=%q Type=%q", got.ID, got.Type)
	}
	if got.Params["query"] != "test query" {
		t.Errorf("Params = %v", got.Params)
	}
	if len(got.Papers) != 1 || got.Papers[0].SourceID != "2408.12345" {
		t.Errorf("Papers = %v", got.Papers)
	}
}

func TestGetNotFound(t *testing.T) {
	store := newTestDB(t)

	_, err := store.Get(context.Background(), "no-such-id")
	if !errors.Is(err, db.ErrNotFound) {
		t.Errorf("err = %v, expected ErrNotFound", err)
	}
}

func TestSaveRejectsInvalidType(t *testing.T) {
	store := newTestDB(t)

	record := makeRecord("rec-x", "bogus_type", time.Now())
	if err := store.Save(context.Background(), record); err == nil {
		t.Error("expected error for invalid history type")
	}
}

func TestListNewestFirst(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		r := makeRecord(fmt.Sprintf("rec-%d", i), models.HistoryMultiEngine, base.Add(time.Duration(i)*time.Minute))
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}

	records, err := store.List(ctx, models.HistoryMultiEngine, 3)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, expected 3", len(records))
	}
	// 最新的排最前
	for i, want := range []string{"rec-4", "rec-3", "rec-2"} {
		if records[i].ID != want {
			t.Errorf("records[%d].ID = %q, expected %q", i, records[i].ID, want)
		}
	}
}

func TestListFiltersByType(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	now := time.Now()

	store.Save(ctx, makeRecord("multi-1", models.HistoryMultiEngine, now))
	store.Save(ctx, makeRecord("arxiv-1", models.HistoryArxivSearch, now.Add(time.Second)))
	store.Save(ctx, makeRecord("latest-1", models.HistoryLatestPapers, now.Add(2*time.Second)))

	records, err := store.List(ctx, models.HistoryArxivSearch, 10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 1 || records[0].ID != "arxiv-1" {
		t.Errorf("records = %v", records)
	}

	all, err := store.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List(all) failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("len(all) = %d, expected 3", len(all))
	}
}

func TestSaveTrimsPerType(t *testing.T) {
	store := newTestDB(t)
	ctx := context.Background()
	base := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < HistoryKeepPerType+5; i++ {
		r := makeRecord(fmt.Sprintf("multi-%03d", i), models.HistoryMultiEngine, base.Add(time.Duration(i)*time.Minute))
		if err := store.Save(ctx, r); err != nil {
			t.Fatalf("Save() failed: %v", err)
		}
	}
	// 另一种类型不受影响
	if err := store.Save(ctx, makeRecord("arxiv-1", models.HistoryArxivSearch, base)); err != nil {
		t.Fatalf("Save() failed: %v", err)
	}

	records, err := store.List(ctx, models.HistoryMultiEngine, HistoryKeepPerType+10)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != HistoryKeepPerType {
		t.Errorf("len = %d, expected %d", len(records), HistoryKeepPerType)
	}
	// 被淘汰的是最旧的
	if _, err := store.Get(ctx, "multi-000"); !errors.Is(err, db.ErrNotFound) {
		t.Errorf("oldest record should be trimmed, err = %v", err)
	}
	if _, err := store.Get(ctx, fmt.Sprintf("multi-%03d", HistoryKeepPerType+4)); err != nil {
		t.Errorf("newest record should survive, err = %v", err)
	}
	if _, err := store.Get(ctx, "arxiv-1"); err != nil {
		t.Errorf("other type should not be trimmed, err = %v", err)
	}
}
