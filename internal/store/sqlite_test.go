package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nhle/listmirror/internal/model"
	"github.com/nhle/listmirror/internal/period"
	"github.com/nhle/listmirror/internal/store"
	"github.com/nhle/listmirror/tests/testutil"
)

func TestMarkClosedIsIdempotent(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := period.Period{Year: 2020, Month: time.March}

	closed, err := s.IsClosed(ctx, "alpha", p)
	if err != nil {
		t.Fatalf("IsClosed: %v", err)
	}
	if closed {
		t.Fatal("new period reported as closed")
	}

	if err := s.MarkClosed(ctx, "alpha", p); err != nil {
		t.Fatalf("MarkClosed: %v", err)
	}
	if err := s.MarkClosed(ctx, "alpha", p); err != nil {
		t.Fatalf("MarkClosed (second time): %v", err)
	}

	closed, err = s.IsClosed(ctx, "alpha", p)
	if err != nil {
		t.Fatalf("IsClosed: %v", err)
	}
	if !closed {
		t.Fatal("period not closed after MarkClosed")
	}
}

func TestClosedPeriodsAreScopedToList(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()
	p := period.Period{Year: 2021, Month: time.July}

	if err := s.MarkClosed(ctx, "alpha", p); err != nil {
		t.Fatalf("MarkClosed: %v", err)
	}

	closed, err := s.IsClosed(ctx, "beta", p)
	if err != nil {
		t.Fatalf("IsClosed: %v", err)
	}
	if closed {
		t.Error("closing a period of alpha leaked to beta")
	}
}

func TestClosedPeriodsSurviveReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()
	p := period.Period{Year: 2019, Month: time.December}

	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("creating store: %v", err)
	}
	if err := s.MarkClosed(ctx, "alpha", p); err != nil {
		t.Fatalf("MarkClosed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("closing store: %v", err)
	}

	s, err = store.NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("reopening store: %v", err)
	}
	defer s.Close()

	closed, err := s.IsClosed(ctx, "alpha", p)
	if err != nil {
		t.Fatalf("IsClosed after reopen: %v", err)
	}
	if !closed {
		t.Error("closed period lost after reopen")
	}
}

func TestLastRunReturnsNilWhenEmpty(t *testing.T) {
	s := testutil.NewTestStore(t)

	run, err := s.LastRun(context.Background(), "alpha")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if run != nil {
		t.Errorf("expected nil run for unknown list, got %+v", run)
	}
}

func TestRecordRunAndLastRun(t *testing.T) {
	s := testutil.NewTestStore(t)
	ctx := context.Background()

	first := model.SyncRun{
		List:         "alpha",
		StartedAt:    time.Date(2022, time.May, 1, 10, 0, 0, 0, time.UTC),
		FinishedAt:   time.Date(2022, time.May, 1, 10, 2, 0, 0, time.UTC),
		UnitsFetched: 12,
		UnitsChanged: 12,
		Rebuilt:      true,
	}
	second := model.SyncRun{
		List:       "alpha",
		StartedAt:  time.Date(2022, time.May, 2, 10, 0, 0, 0, time.UTC),
		FinishedAt: time.Date(2022, time.May, 2, 10, 0, 5, 0, time.UTC),
	}

	if err := s.RecordRun(ctx, first); err != nil {
		t.Fatalf("RecordRun (first): %v", err)
	}
	if err := s.RecordRun(ctx, second); err != nil {
		t.Fatalf("RecordRun (second): %v", err)
	}

	run, err := s.LastRun(ctx, "alpha")
	if err != nil {
		t.Fatalf("LastRun: %v", err)
	}
	if run == nil {
		t.Fatal("expected a run, got nil")
	}
	if run.ID == "" {
		t.Error("recorded run has no generated ID")
	}
	if run.UnitsFetched != 0 || run.UnitsChanged != 0 || run.Rebuilt {
		t.Errorf("LastRun returned the wrong entry: %+v", run)
	}
	if !run.StartedAt.Equal(second.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", run.StartedAt, second.StartedAt)
	}
}
