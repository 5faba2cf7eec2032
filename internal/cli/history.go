package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"memory-assistant/internal/metrics"
	"memory-assistant/internal/repository"
	"memory-assistant/internal/service"
)

var historyEmail string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Print the sessions and answers of a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		stores, logger, err := openStores(ctx)
		if err != nil {
			return err
		}
		defer stores.Close()

		user, err := stores.Users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(historyEmail)))
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("no user with email %s", historyEmail)
			}
			return err
		}
		svc := service.NewInterviewService(logger, stores.Sessions, stores.Memories, stores.Answered, metrics.Nop())
		history, err := svc.ListMemories(ctx, user.ID)
		if err != nil {
			return err
		}
		printHistory(cmd.OutOrStdout(), history)
		return nil
	},
}

func printHistory(w io.Writer, history service.History) {
	if len(history.Sessions) == 0 {
		fmt.Fprintln(w, "no sessions yet")
		return
	}
	for _, s := range history.Sessions {
		fmt.Fprintf(w, "Session %s  %-11s  started %s", s.ID, s.Status, s.StartedAt.Format(time.DateTime))
		if s.CompletedAt != nil {
			fmt.Fprintf(w, "  completed %s", s.CompletedAt.Format(time.DateTime))
		}
		if s.Category != "" {
			fmt.Fprintf(w, "  [%s]", s.Category)
		}
		fmt.Fprintf(w, "\n  %d answer(s)\n", s.AnsweredCount)
		for _, m := range s.Memories {
			fmt.Fprintf(w, "  - %s\n    %s\n", m.QuestionPrompt, m.AnswerText)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d answer(s) in %d session(s)\n", len(history.Memories), len(history.Sessions))
}

func init() {
	historyCmd.Flags().StringVar(&historyEmail, "email", "", "user email")
	_ = historyCmd.MarkFlagRequired("email")
}
