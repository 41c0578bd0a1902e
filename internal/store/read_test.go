package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	"github.com/roach88/kumihimo/internal/ir"
)

func TestReadPatterns_Empty(t *testing.T) {
	s := createTestStore(t)

	patterns, err := s.ReadPatterns(context.Background())
	if err != nil {
		t.Fatalf("ReadPatterns() failed: %v", err)
	}
	if patterns == nil {
		t.Error("ReadPatterns() returned nil, want empty slice")
	}
	if len(patterns) != 0 {
		t.Errorf("len = %d, want 0", len(patterns))
	}
}

func TestReadPattern_Roundtrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := createTestPattern("kongo_gumi_8")
	want.Description = "round"
	if err := s.WritePatterns(ctx, []ir.Pattern{want}); err != nil {
		t.Fatalf("WritePatterns() failed: %v", err)
	}

	got, err := s.ReadPattern(ctx, want.ID)
	if err != nil {
		t.Fatalf("ReadPattern() failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ReadPattern() = %+v, want %+v", got, want)
	}
}

func TestReadPattern_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadPattern(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestReadTranscript_Roundtrip(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	rec, _, err := s.WriteTranscript(ctx, createTestTranscript("t-1", "s-1"))
	if err != nil {
		t.Fatalf("WriteTranscript() failed: %v", err)
	}

	got, err := s.ReadTranscript(ctx, "t-1")
	if err != nil {
		t.Fatalf("ReadTranscript() failed: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Errorf("ReadTranscript() = %+v\nwant %+v", got, rec)
	}
}

func TestReadTranscript_NotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.ReadTranscript(context.Background(), "missing")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestReadTranscripts_OrderAndFilter(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	other := createTestTranscript("t-b", "s")
	other.PatternID = "kaku_yatsu_gumi_8"
	other.Moves = nil

	for _, tr := range []ir.Transcript{
		createTestTranscript("t-c", "s"),
		other,
		createTestTranscript("t-a", "s"),
	} {
		if _, _, err := s.WriteTranscript(ctx, tr); err != nil {
			t.Fatalf("WriteTranscript(%s) failed: %v", tr.ID, err)
		}
	}

	all, err := s.ReadTranscripts(ctx, "")
	if err != nil {
		t.Fatalf("ReadTranscripts() failed: %v", err)
	}
	if got := transcriptIDs(all); !reflect.DeepEqual(got, []string{"t-c", "t-b", "t-a"}) {
		t.Errorf("all = %v, want seq order [t-c t-b t-a]", got)
	}

	kongo, err := s.ReadTranscripts(ctx, "kongo_gumi_8")
	if err != nil {
		t.Fatalf("ReadTranscripts(kongo) failed: %v", err)
	}
	if got := transcriptIDs(kongo); !reflect.DeepEqual(got, []string{"t-c", "t-a"}) {
		t.Errorf("kongo = %v, want [t-c t-a]", got)
	}

	none, err := s.ReadTranscripts(ctx, "missing")
	if err != nil {
		t.Fatalf("ReadTranscripts(missing) failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("missing = %#v, want empty slice", none)
	}
}

func TestReadTranscript_RejectsUnknownFields(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, _, err := s.WriteTranscript(ctx, createTestTranscript("t-1", "s")); err != nil {
		t.Fatalf("WriteTranscript() failed: %v", err)
	}
	if _, err := s.db.Exec(`UPDATE transcripts SET moves = '[{"strand_id":"t7","from":7,"to":15,"extra":1}]'`); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if _, err := s.ReadTranscript(ctx, "t-1"); err == nil {
		t.Error("expected decode error for unknown field, got nil")
	}
}

func transcriptIDs(ts []ir.Transcript) []string {
	ids := make([]string, len(ts))
	for i, t := range ts {
		ids[i] = t.ID
	}
	return ids
}
