// ABOUTME: Tests for the SQLite case store
// ABOUTME: Uses in-memory databases for isolation
package storage

import (
	"strings"
	"testing"
	"time"

	"github.com/notewell/engine/internal/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenInMemory()
	if err != nil {
		t.Fatalf("OpenInMemory: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSaveCase_AssignsIDAndDefaults(t *testing.T) {
	store := openTestStore(t)

	saved, err := store.SaveCase(models.CaseRecord{Text: "visit transcript"})
	if err != nil {
		t.Fatalf("SaveCase: %v", err)
	}
	if saved.ID == "" {
		t.Error("SaveCase should assign an ID")
	}
	if saved.Scope != ScopeCases {
		t.Errorf("Scope = %q, want %q", saved.Scope, ScopeCases)
	}
	if saved.CreatedAt.IsZero() {
		t.Error("SaveCase should set CreatedAt")
	}
}

func TestSaveCase_RoundTrip(t *testing.T) {
	store := openTestStore(t)

	original := models.CaseRecord{
		ID:        "case-1",
		Scope:     ScopeCases,
		Text:      "Patient discussed blood pressure management",
		Embedding: []float64{0.1, -0.5, 0.9},
		Extraction: &models.Extraction{
			MedicationInstructions: []models.MedicationInstruction{
				{MedicationName: "lisinopril", Dosage: "10mg", Frequency: "once daily"},
			},
		},
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	if _, err := store.SaveCase(original); err != nil {
		t.Fatalf("SaveCase: %v", err)
	}

	loaded, err := store.GetCase("case-1")
	if err != nil {
		t.Fatalf("GetCase: %v", err)
	}
	if loaded.Text != original.Text {
		t.Errorf("Text = %q, want %q", loaded.Text, original.Text)
	}
	if len(loaded.Embedding) != 3 || loaded.Embedding[1] != -0.5 {
		t.Errorf("Embedding = %v, want %v", loaded.Embedding, original.Embedding)
	}
	if loaded.Extraction == nil || len(loaded.Extraction.MedicationInstructions) != 1 {
		t.Fatal("Extraction did not survive the round trip")
	}
	if got := loaded.Extraction.MedicationInstructions[0].MedicationName; got != "lisinopril" {
		t.Errorf("MedicationName = %q, want lisinopril", got)
	}
	if !loaded.CreatedAt.Equal(original.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, original.CreatedAt)
	}
}

func TestListCases_ScopeIsolation(t *testing.T) {
	store := openTestStore(t)

	for i, scope := range []string{ScopeCases, ScopeCases, ScopeGold} {
		_, err := store.SaveCase(models.CaseRecord{
			Scope:     scope,
			Text:      "transcript",
			CreatedAt: time.Now().UTC().Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("SaveCase: %v", err)
		}
	}

	cases, err := store.ListCases(ScopeCases)
	if err != nil {
		t.Fatalf("ListCases: %v", err)
	}
	if len(cases) != 2 {
		t.Errorf("len(cases) = %d, want 2", len(cases))
	}

	gold, err := store.ListCases(ScopeGold)
	if err != nil {
		t.Fatalf("ListCases gold: %v", err)
	}
	if len(gold) != 1 {
		t.Errorf("len(gold) = %d, want 1", len(gold))
	}
}

func TestGetCase_NotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.GetCase("missing")
	if err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("err = %v, want not-found error", err)
	}
}

func TestDeleteCase(t *testing.T) {
	store := openTestStore(t)

	saved, err := store.SaveCase(models.CaseRecord{Text: "to delete"})
	if err != nil {
		t.Fatalf("SaveCase: %v", err)
	}
	if err := store.DeleteCase(saved.ID); err != nil {
		t.Fatalf("DeleteCase: %v", err)
	}
	if _, err := store.GetCase(saved.ID); err == nil {
		t.Error("deleted case should not be loadable")
	}
	if err := store.DeleteCase(saved.ID); err == nil {
		t.Error("deleting a missing case should error")
	}
}

func TestCountCases(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 3; i++ {
		if _, err := store.SaveCase(models.CaseRecord{Text: "transcript"}); err != nil {
			t.Fatalf("SaveCase: %v", err)
		}
	}
	count, err := store.CountCases(ScopeCases)
	if err != nil {
		t.Fatalf("CountCases: %v", err)
	}
	if count != 3 {
		t.Errorf("count = %d, want 3", count)
	}
}

func TestVectorEncoding_RoundTrip(t *testing.T) {
	vectors := [][]float64{
		nil,
		{0.0},
		{1.5, -2.25, 1e-300, 1e300},
	}
	for _, v := range vectors {
		decoded := decodeVector(encodeVector(v))
		if len(v) == 0 {
			if decoded != nil {
				t.Errorf("decode(encode(%v)) = %v, want nil", v, decoded)
			}
			continue
		}
		if len(decoded) != len(v) {
			t.Fatalf("decode(encode(%v)) has length %d", v, len(decoded))
		}
		for i := range v {
			if decoded[i] != v[i] {
				t.Errorf("decoded[%d] = %v, want %v", i, decoded[i], v[i])
			}
		}
	}
}

func TestOpen_FileBackedPersistence(t *testing.T) {
	path := t.TempDir() + "/cases.db"

	store, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	saved, err := store.SaveCase(models.CaseRecord{Text: "durable transcript"})
	if err != nil {
		t.Fatalf("SaveCase: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	loaded, err := reopened.GetCase(saved.ID)
	if err != nil {
		t.Fatalf("GetCase after reopen: %v", err)
	}
	if loaded.Text != "durable transcript" {
		t.Errorf("Text = %q after reopen", loaded.Text)
	}
}
