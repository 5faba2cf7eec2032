package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"memory-assistant/internal/catalog"
	"memory-assistant/internal/domain"
	"memory-assistant/internal/metrics"
	"memory-assistant/internal/repository"
	"memory-assistant/internal/service"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New([]domain.Question{
		{ID: "ch-001", Category: "childhood", Prompt: "Earliest memory?", FollowUpPrompts: []string{"Where were you?"}, Order: 1, IsActive: true},
		{ID: "ch-002", Category: "childhood", Prompt: "Best friend?", Order: 2, IsActive: true},
		{ID: "ca-001", Category: "career", Prompt: "First job?", Order: 3, IsActive: true},
	})
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func newInterviewFixture(t *testing.T) (*repository.LocalStore, *service.InterviewService, domain.User) {
	t.Helper()
	store := repository.NewLocalStore()
	svc := service.NewInterviewService(zap.NewNop(), store.Sessions(), store.Memories(), store.Answered(), metrics.Nop())
	user, err := ensureUser(context.Background(), store.Users(), " Ana@Example.com ", "")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	return store, svc, user
}

func TestEnsureUser_CreatesOnceAndReuses(t *testing.T) {
	store := repository.NewLocalStore()
	ctx := context.Background()

	first, err := ensureUser(ctx, store.Users(), "ana@example.com", "Ana")
	if err != nil {
		t.Fatalf("ensure user: %v", err)
	}
	if first.DisplayName != "Ana" || first.PasswordHash != "" {
		t.Fatalf("unexpected user: %+v", first)
	}
	again, err := ensureUser(ctx, store.Users(), "ANA@example.com", "Other")
	if err != nil {
		t.Fatalf("ensure user again: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("expected same user, got %s and %s", first.ID, again.ID)
	}
	if _, err := ensureUser(ctx, store.Users(), "  ", ""); err == nil {
		t.Fatalf("expected error for empty email")
	}
}

func TestRunInterview_AnswersAllAndCompletes(t *testing.T) {
	store, svc, user := newInterviewFixture(t)
	ctx := context.Background()
	var out bytes.Buffer

	in := strings.NewReader("A kitchen\nMarta\n")
	if err := runInterview(ctx, in, &out, svc, testCatalog(t), user.ID, "childhood"); err != nil {
		t.Fatalf("run interview: %v", err)
	}
	if !strings.Contains(out.String(), "Where were you?") {
		t.Fatalf("expected follow-up hint in output:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Interview completed") {
		t.Fatalf("expected completion message:\n%s", out.String())
	}

	sessions, err := store.Sessions().ListByUser(ctx, user.ID)
	if err != nil || len(sessions) != 1 {
		t.Fatalf("expected one session, got %d %v", len(sessions), err)
	}
	if sessions[0].Status != domain.SessionCompleted || sessions[0].Category != "childhood" {
		t.Fatalf("unexpected session: %+v", sessions[0])
	}
	memories, _ := store.Memories().ListBySession(ctx, sessions[0].ID)
	if len(memories) != 2 || memories[0].QuestionPrompt != "Earliest memory?" {
		t.Fatalf("unexpected memories: %+v", memories)
	}
}

func TestRunInterview_QuitThenResume(t *testing.T) {
	store, svc, user := newInterviewFixture(t)
	ctx := context.Background()
	cat := testCatalog(t)

	var out bytes.Buffer
	if err := runInterview(ctx, strings.NewReader("A kitchen\n:quit\n"), &out, svc, cat, user.ID, "childhood"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if !strings.Contains(out.String(), "Session left open") {
		t.Fatalf("expected session left open:\n%s", out.String())
	}

	out.Reset()
	if err := runInterview(ctx, strings.NewReader("Marta\n"), &out, svc, cat, user.ID, "childhood"); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if strings.Contains(out.String(), "Earliest memory?") {
		t.Fatalf("answered question must not be asked again:\n%s", out.String())
	}
	if !strings.Contains(out.String(), "Answered 1/2") {
		t.Fatalf("expected progress from the resumed session:\n%s", out.String())
	}

	sessions, _ := store.Sessions().ListByUser(ctx, user.ID)
	if len(sessions) != 1 || sessions[0].Status != domain.SessionCompleted {
		t.Fatalf("expected the resumed session to be completed, got %+v", sessions)
	}
}

func TestRunInterview_SkipKeepsSessionOpen(t *testing.T) {
	store, svc, user := newInterviewFixture(t)
	ctx := context.Background()
	var out bytes.Buffer

	if err := runInterview(ctx, strings.NewReader("\nMarta\n"), &out, svc, testCatalog(t), user.ID, "childhood"); err != nil {
		t.Fatalf("run interview: %v", err)
	}
	if !strings.Contains(out.String(), "1 question(s) skipped") {
		t.Fatalf("expected skip summary:\n%s", out.String())
	}
	open, err := store.Sessions().GetOpenByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("expected open session, got %v", err)
	}
	if n, _ := store.Answered().CountBySession(ctx, open.ID); n != 1 {
		t.Fatalf("expected one answered question, got %d", n)
	}
}

func TestRunInterview_DoneCompletesEarly(t *testing.T) {
	store, svc, user := newInterviewFixture(t)
	ctx := context.Background()
	var out bytes.Buffer

	if err := runInterview(ctx, strings.NewReader(":done\n"), &out, svc, testCatalog(t), user.ID, ""); err != nil {
		t.Fatalf("run interview: %v", err)
	}
	if _, err := store.Sessions().GetOpenByUser(ctx, user.ID); err == nil {
		t.Fatalf("expected no open session after :done")
	}
}

func TestRunInterview_UnknownCategory(t *testing.T) {
	_, svc, user := newInterviewFixture(t)
	var out bytes.Buffer
	if err := runInterview(context.Background(), strings.NewReader(""), &out, svc, testCatalog(t), user.ID, "astrology"); err == nil {
		t.Fatalf("expected error for unknown category")
	}
}

func TestPrintHistory(t *testing.T) {
	_, svc, user := newInterviewFixture(t)
	ctx := context.Background()
	if _, err := svc.RecordAnswer(ctx, service.RecordAnswerInput{
		UserID:         user.ID,
		QuestionID:     "ca-001",
		QuestionPrompt: "First job?",
		AnswerText:     "Paper route",
	}); err != nil {
		t.Fatalf("record answer: %v", err)
	}
	history, err := svc.ListMemories(ctx, user.ID)
	if err != nil {
		t.Fatalf("list memories: %v", err)
	}

	var out bytes.Buffer
	printHistory(&out, history)
	for _, want := range []string{"in_progress", "First job?", "Paper route", "1 answer(s) in 1 session(s)"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("expected %q in history output:\n%s", want, out.String())
		}
	}

	out.Reset()
	printHistory(&out, service.History{})
	if !strings.Contains(out.String(), "no sessions yet") {
		t.Fatalf("expected empty history message, got %q", out.String())
	}
}

func TestCategoriesCommand(t *testing.T) {
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"categories", "--env-file", "does-not-exist.env"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if !strings.Contains(out.String(), "Childhood") {
		t.Fatalf("expected embedded catalog labels, got:\n%s", out.String())
	}
}

func TestPrintQuestions(t *testing.T) {
	var out bytes.Buffer
	printQuestions(&out, testCatalog(t).ListByCategory("career"))
	if !strings.Contains(out.String(), "ca-001") || !strings.Contains(out.String(), "1 question(s)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}

	out.Reset()
	printQuestions(&out, nil)
	if strings.TrimSpace(out.String()) != "no questions" {
		t.Fatalf("unexpected empty output %q", out.String())
	}
}
