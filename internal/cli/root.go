// Package cli define los comandos cobra de memoryctl.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"memory-assistant/internal/catalog"
	"memory-assistant/internal/config"
	"memory-assistant/internal/logging"
	"memory-assistant/internal/repository"
)

var (
	envFile       string
	questionsFile string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "memoryctl",
	Short: "Operate the memory assistant from the terminal",
	Long: `memoryctl applies database migrations, browses the question catalog
and runs the guided interview against the same storage as the API.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", envFile, err)
		}
		if questionsFile == "" {
			questionsFile = os.Getenv("QUESTIONS_FILE")
		}
		return nil
	},
}

// Execute corre el comando raiz. Lo llama main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading configuration")
	rootCmd.PersistentFlags().StringVar(&questionsFile, "questions-file", "", "YAML question catalog (default: QUESTIONS_FILE or the embedded catalog)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Log service events to stderr")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(questionsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(interviewCmd)
	rootCmd.AddCommand(historyCmd)
}

func loadCatalog() (*catalog.Catalog, error) {
	return catalog.Load(questionsFile)
}

func newLogger(level string) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := logging.New(level)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStores carga la configuracion y conecta el backend. El caller debe
// llamar Close.
func openStores(ctx context.Context) (*repository.Stores, *zap.Logger, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger := newLogger(cfg.LogLevel)
	stores, err := repository.OpenStores(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	return stores, logger, nil
}
