package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"memory-assistant/internal/domain"
)

var questionsCategory string

var questionsCmd = &cobra.Command{
	Use:   "questions",
	Short: "List active questions of the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		questions := cat.ListAll()
		if questionsCategory != "" {
			questions = cat.ListByCategory(questionsCategory)
		}
		printQuestions(cmd.OutOrStdout(), questions)
		return nil
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List question categories with their sizes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat, err := loadCatalog()
		if err != nil {
			return err
		}
		printCategories(cmd.OutOrStdout(), cat.Categories())
		return nil
	},
}

func printQuestions(w io.Writer, questions []domain.Question) {
	if len(questions) == 0 {
		fmt.Fprintln(w, "no questions")
		return
	}
	for _, q := range questions {
		fmt.Fprintf(w, "  %-8s  %-12s  %s\n", q.ID, q.Category, q.Prompt)
	}
	fmt.Fprintf(w, "\n%d question(s)\n", len(questions))
}

func printCategories(w io.Writer, categories []domain.CategoryCount) {
	for _, c := range categories {
		fmt.Fprintf(w, "  %-14s  %-14s  %d\n", c.Name, c.Label, c.Count)
	}
}

func init() {
	questionsCmd.Flags().StringVar(&questionsCategory, "category", "", "only questions of this category")
}
