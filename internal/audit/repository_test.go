package audit

import (
	"context"
	"testing"

	"github.com/onnwee/gigfeed/internal/recommend"
)

func testEntry(username string, requestID string) Entry {
	return Entry{
		Summary: recommend.Summary{
			Username:  username,
			Mode:      recommend.ModeHybrid,
			Weights:   *recommend.DefaultWeights(),
			Diversify: true,
			Results: []recommend.ResultSummary{
				{EventID: "ev-1", Score: 0.9, RandomPick: false},
				{EventID: "ev-2", Score: 0.4, RandomPick: true},
			},
		},
		RequestID: requestID,
	}
}

func TestInMemoryRepository_Record(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	log, err := repo.Record(ctx, testEntry("alice", "req-1"))
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if log.ID == "" {
		t.Error("expected generated ID")
	}
	if log.Username != "alice" {
		t.Errorf("Username = %q, want alice", log.Username)
	}
	if log.Mode != string(recommend.ModeHybrid) {
		t.Errorf("Mode = %q, want hybrid", log.Mode)
	}
	if !log.Diversify {
		t.Error("expected Diversify to carry over")
	}
	if len(log.Results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(log.Results))
	}
	if !log.Results[1].RandomPick {
		t.Error("expected second result flagged as random pick")
	}
	if log.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if log.RequestID != "req-1" {
		t.Errorf("RequestID = %q, want req-1", log.RequestID)
	}
}

func TestInMemoryRepository_QueryByUser(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for _, e := range []Entry{
		testEntry("alice", "req-1"),
		testEntry("bob", "req-2"),
		testEntry("alice", "req-3"),
	} {
		if _, err := repo.Record(ctx, e); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	logs, err := repo.QueryByUser(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("QueryByUser failed: %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 entries for alice, got %d", len(logs))
	}
	// Newest first
	if logs[0].RequestID != "req-3" || logs[1].RequestID != "req-1" {
		t.Errorf("expected newest-first order, got %q then %q", logs[0].RequestID, logs[1].RequestID)
	}
}

func TestInMemoryRepository_QueryByUserLimit(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := repo.Record(ctx, testEntry("alice", "")); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	logs, err := repo.QueryByUser(ctx, "alice", 3)
	if err != nil {
		t.Fatalf("QueryByUser failed: %v", err)
	}
	if len(logs) != 3 {
		t.Errorf("expected limit of 3, got %d", len(logs))
	}
}

func TestInMemoryRepository_QueryByUserEmpty(t *testing.T) {
	repo := NewInMemoryRepository()

	logs, err := repo.QueryByUser(context.Background(), "nobody", 10)
	if err != nil {
		t.Fatalf("QueryByUser failed: %v", err)
	}
	if len(logs) != 0 {
		t.Errorf("expected no entries, got %d", len(logs))
	}
}

func TestInMemoryRepository_RecordReturnsCopy(t *testing.T) {
	repo := NewInMemoryRepository()
	ctx := context.Background()

	created, err := repo.Record(ctx, testEntry("alice", "req-1"))
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	created.Username = "mutated"

	logs, err := repo.QueryByUser(ctx, "alice", 0)
	if err != nil {
		t.Fatalf("QueryByUser failed: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logs))
	}
	if logs[0].Username != "alice" {
		t.Error("mutating a returned record should not affect the stored one")
	}
}
