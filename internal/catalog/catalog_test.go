package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"memory-assistant/internal/domain"
)

func testQuestions() []domain.Question {
	return []domain.Question{
		{ID: "gen-001", Category: "general", Prompt: "What makes you laugh?", Order: 3, IsActive: true},
		{ID: "ch-001", Category: "childhood", Prompt: "Describe your childhood home.", Order: 1, IsActive: true},
		{ID: "ch-002", Category: "childhood", Prompt: "Tell me about your best friend.", Order: 2, IsActive: true},
		{ID: "ch-999", Category: "childhood", Prompt: "Retired question.", Order: 4, IsActive: false},
		{ID: "el-001", Category: "early-life", Prompt: "Where were you born?", Order: 5, IsActive: true},
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	qs := testQuestions()
	qs = append(qs, domain.Question{ID: "ch-001", Category: "childhood", Prompt: "dup", IsActive: true})
	if _, err := New(qs); !errors.Is(err, ErrDuplicateQuestion) {
		t.Fatalf("expected ErrDuplicateQuestion, got %v", err)
	}
}

func TestNew_RejectsIncompleteQuestion(t *testing.T) {
	if _, err := New([]domain.Question{{ID: "x", Prompt: "no category"}}); !errors.Is(err, ErrInvalidQuestion) {
		t.Fatalf("expected ErrInvalidQuestion, got %v", err)
	}
}

func TestListAll_OnlyActiveSortedByOrder(t *testing.T) {
	c, err := New(testQuestions())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	got := c.ListAll()
	want := []string{"ch-001", "ch-002", "gen-001", "el-001"}
	if len(got) != len(want) {
		t.Fatalf("expected %d questions, got %d", len(want), len(got))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, got[i].ID)
		}
		if !got[i].IsActive {
			t.Fatalf("inactive question %s listed", got[i].ID)
		}
	}

	// Restartable: mutating the returned slice must not affect the catalog.
	got[0].ID = "mutated"
	if c.ListAll()[0].ID != "ch-001" {
		t.Fatalf("expected catalog to be immutable")
	}
}

func TestListByCategory_ExactMatch(t *testing.T) {
	c, _ := New(testQuestions())
	got := c.ListByCategory("childhood")
	if len(got) != 2 || got[0].ID != "ch-001" || got[1].ID != "ch-002" {
		t.Fatalf("unexpected childhood questions: %+v", got)
	}
	if out := c.ListByCategory("Childhood"); len(out) != 0 {
		t.Fatalf("expected exact category match, got %d", len(out))
	}
	if out := c.ListByCategory("missing"); out == nil || len(out) != 0 {
		t.Fatalf("expected empty non-nil slice, got %+v", out)
	}
}

func TestGet(t *testing.T) {
	c, _ := New(testQuestions())
	if q, ok := c.Get("ch-002"); !ok || q.Category != "childhood" {
		t.Fatalf("expected ch-002, got %+v ok=%v", q, ok)
	}
	if _, ok := c.Get("ch-999"); ok {
		t.Fatalf("inactive question must not be returned")
	}
	if _, ok := c.Get("nope"); ok {
		t.Fatalf("expected not found")
	}
}

func TestPickRandom(t *testing.T) {
	c, _ := New(testQuestions(), WithRandom(func(n int) int { return n - 1 }))
	q, err := c.PickRandom("childhood")
	if err != nil {
		t.Fatalf("pick random: %v", err)
	}
	if q.ID != "ch-002" {
		t.Fatalf("expected last childhood question, got %s", q.ID)
	}
	q, err = c.PickRandom("")
	if err != nil || q.ID != "el-001" {
		t.Fatalf("expected last active question, got %s err=%v", q.ID, err)
	}
	if _, err := c.PickRandom("missing"); !errors.Is(err, ErrNoQuestions) {
		t.Fatalf("expected ErrNoQuestions, got %v", err)
	}
}

func TestNextAfter(t *testing.T) {
	c, _ := New(testQuestions())

	next, ok := c.NextAfter("ch-001", "")
	if !ok || next.ID != "ch-002" {
		t.Fatalf("expected ch-002, got %+v ok=%v", next, ok)
	}
	next, ok = c.NextAfter("ch-002", "")
	if !ok || next.ID != "gen-001" {
		t.Fatalf("expected gen-001 across categories, got %+v", next)
	}
	if _, ok := c.NextAfter("ch-002", "childhood"); ok {
		t.Fatalf("expected no next question at end of category")
	}
	if _, ok := c.NextAfter("unknown", ""); ok {
		t.Fatalf("expected no next question for unknown id")
	}
}

func TestCategories(t *testing.T) {
	c, _ := New(testQuestions())
	got := c.Categories()
	want := []domain.CategoryCount{
		{Name: "childhood", Count: 2, Label: "Childhood"},
		{Name: "general", Count: 1, Label: "General"},
		{Name: "early-life", Count: 1, Label: "Early Life"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %+v", len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("category %d: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestDefaultCatalog(t *testing.T) {
	c, err := Default()
	if err != nil {
		t.Fatalf("default catalog: %v", err)
	}
	if _, ok := c.Get("ch-001"); !ok {
		t.Fatalf("expected ch-001 in default catalog")
	}
	if len(c.ListAll()) == 0 || len(c.Categories()) == 0 {
		t.Fatalf("expected non-empty default catalog")
	}
}

func TestLoad_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "questions.yaml")
	data := []byte(`
- id: q-1
  category: travel
  prompt: Where did you go?
  order: 1
  is_active: true
- id: q-2
  category: travel
  prompt: Hidden
  order: 2
  is_active: false
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	all := c.ListAll()
	if len(all) != 1 || all[0].ID != "q-1" {
		t.Fatalf("unexpected questions: %+v", all)
	}
}
