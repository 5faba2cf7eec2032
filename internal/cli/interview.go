package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"memory-assistant/internal/catalog"
	"memory-assistant/internal/domain"
	"memory-assistant/internal/metrics"
	"memory-assistant/internal/repository"
	"memory-assistant/internal/service"
)

const (
	cmdQuit = ":quit"
	cmdDone = ":done"
)

var (
	interviewEmail    string
	interviewName     string
	interviewCategory string
)

var interviewCmd = &cobra.Command{
	Use:   "interview",
	Short: "Answer the guided interview in the terminal",
	Long: `Resumes the open session of the user (or starts one) and walks the
unanswered questions. Empty input skips a question, :done completes the
session and :quit leaves it open for later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stores, logger, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer stores.Close()

		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		user, err := ensureUser(ctx, stores.Users, interviewEmail, interviewName)
		if err != nil {
			return err
		}
		svc := service.NewInterviewService(logger, stores.Sessions, stores.Memories, stores.Answered, metrics.Nop())
		return runInterview(ctx, cmd.InOrStdin(), cmd.OutOrStdout(), svc, cat, user.ID, interviewCategory)
	},
}

// ensureUser busca el usuario por email y lo crea sin password si no existe.
// Ese usuario no puede loguearse por HTTP hasta registrarse.
func ensureUser(ctx context.Context, users repository.UserRepository, email, name string) (domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return domain.User{}, errors.New("--email is required")
	}
	u, err := users.GetByEmail(ctx, email)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return domain.User{}, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = strings.SplitN(email, "@", 2)[0]
	}
	u = domain.User{
		ID:          uuid.NewString(),
		Email:       email,
		DisplayName: name,
		CreatedAt:   time.Now().UTC(),
	}
	if err := users.Create(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

func runInterview(ctx context.Context, in io.Reader, out io.Writer, svc *service.InterviewService, cat *catalog.Catalog, userID, category string) error {
	category = strings.TrimSpace(category)
	if category != "" && !cat.HasCategory(category) {
		return fmt.Errorf("unknown category %q", category)
	}

	session, err := svc.ResolveOpenSession(ctx, userID, category)
	if err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	detail, err := svc.GetSession(ctx, userID, session.ID)
	if err != nil {
		return fmt.Errorf("load session: %w", err)
	}
	answered := make(map[string]bool, len(detail.AnsweredQuestionIDs))
	for _, id := range detail.AnsweredQuestionIDs {
		answered[id] = true
	}

	pool := cat.ListAll()
	if category != "" {
		pool = cat.ListByCategory(category)
	}

	fmt.Fprintf(out, "===== Session %s =====\n", session.ID)
	fmt.Fprintf(out, "Answered %d/%d. Empty line skips, %s completes, %s exits.\n", len(answered), len(pool), cmdDone, cmdQuit)

	reader := bufio.NewReader(in)
	skipped := 0
	for i, q := range pool {
		if answered[q.ID] {
			continue
		}
		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(pool), q.Prompt)
		for _, hint := range q.FollowUpPrompts {
			fmt.Fprintf(out, "    - %s\n", hint)
		}
		fmt.Fprint(out, "> ")

		line, readErr := reader.ReadString('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return fmt.Errorf("read input: %w", readErr)
		}
		text := strings.TrimSpace(line)
		switch {
		case text == cmdQuit || (text == "" && errors.Is(readErr, io.EOF)):
			fmt.Fprintln(out, "\nSession left open.")
			return nil
		case text == cmdDone:
			return completeInterview(ctx, out, svc, userID, session.ID)
		case text == "":
			skipped++
			fmt.Fprintln(out, "skipped")
			continue
		}

		if _, err := svc.RecordAnswer(ctx, service.RecordAnswerInput{
			UserID:         userID,
			SessionID:      session.ID,
			QuestionID:     q.ID,
			QuestionPrompt: q.Prompt,
			AnswerText:     text,
		}); err != nil {
			return fmt.Errorf("save answer %s: %w", q.ID, err)
		}
		answered[q.ID] = true
		fmt.Fprintln(out, "saved")
		if errors.Is(readErr, io.EOF) {
			fmt.Fprintln(out, "\nSession left open.")
			return nil
		}
	}

	if skipped > 0 {
		fmt.Fprintf(out, "\n%d question(s) skipped; session stays open.\n", skipped)
		return nil
	}
	return completeInterview(ctx, out, svc, userID, session.ID)
}

func completeInterview(ctx context.Context, out io.Writer, svc *service.InterviewService, userID, sessionID string) error {
	if _, err := svc.CompleteSessionForUser(ctx, userID, sessionID); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	fmt.Fprintln(out, "\nInterview completed. Thank you!")
	return nil
}

func init() {
	interviewCmd.Flags().StringVar(&interviewEmail, "email", "", "user email (created if missing)")
	interviewCmd.Flags().StringVar(&interviewName, "name", "", "display name for a new user")
	interviewCmd.Flags().StringVar(&interviewCategory, "category", "", "restrict the interview to one category")
	_ = interviewCmd.MarkFlagRequired("email")
}
