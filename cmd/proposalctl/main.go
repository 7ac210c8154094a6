package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rutgers-seed/proposal-portal/internal/config"
	"github.com/rutgers-seed/proposal-portal/internal/db"
	"github.com/rutgers-seed/proposal-portal/internal/domain/repository"
	"github.com/rutgers-seed/proposal-portal/internal/draft"
	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/infrastructure/persistence"
	"github.com/rutgers-seed/proposal-portal/internal/logger"
)

var (
	// Глобальные флаги
	verbose      bool
	draftDBPath  string
	outputFormat string
	timeout      time.Duration

	// Зависимости создаются лениво; тесты подставляют свои.
	cfg          *config.Config
	kv           draft.KV
	proposalRepo repository.ProposalRepository
	closers      []io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "proposalctl",
	Short: "SEED project proposal form client",
	Long: `proposalctl edits a SEED project proposal draft locally and submits it.

The draft lives in a local SQLite file and survives restarts. Every edit is
saved immediately; a successful submit clears it.

Admin commands list, search, export and delete submitted proposals after
"proposalctl admin login".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := "warn"
		if verbose {
			level = "debug"
		}
		logger.Init(level)
		logger.SetTextFormatter()
		logger.SetOutput(os.Stderr)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		closeAll()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&draftDBPath, "draft-db", "", "Draft file (default: DRAFT_DB_PATH or user config dir)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "yaml", "Output format for drafts and records: yaml or json")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "Timeout for database and identity calls")

	rootCmd.AddCommand(draftCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(adminCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig читает конфигурацию один раз за запуск.
func loadConfig() (*config.Config, error) {
	if cfg != nil {
		return cfg, nil
	}
	loaded, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg = loaded
	return cfg, nil
}

// openKV открывает локальный файл со слотами черновика и сессии.
func openKV() (draft.KV, error) {
	if kv != nil {
		return kv, nil
	}
	path := draftDBPath
	if path == "" {
		c, err := loadConfig()
		if err != nil {
			return nil, err
		}
		path = c.DraftDBPath
	}

	store, err := draft.OpenSQLiteKV(path)
	if err != nil {
		return nil, err
	}
	closers = append(closers, store)
	kv = store
	return kv, nil
}

// openRepository подключается к PostgreSQL только для команд, которым он нужен.
func openRepository(ctx context.Context) (repository.ProposalRepository, error) {
	if proposalRepo != nil {
		return proposalRepo, nil
	}
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}

	conn, err := db.NewPostgres(ctx, c.DatabaseURL)
	if err != nil {
		return nil, err
	}
	closers = append(closers, conn)
	proposalRepo = persistence.NewProposalRepositoryAdapter(conn)
	return proposalRepo, nil
}

func newAuthenticator() (*identity.Authenticator, error) {
	c, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return identity.NewAuthenticator(
		identity.NewProvider(c),
		identity.NewSessionManager(c.SessionSecret, c.SessionTTL),
		c.InstitutionDomains,
	), nil
}

// commandContext ограничивает команду таймаутом и прерывается по сигналу.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithTimeout(ctx, timeout)
	return ctx, func() {
		cancel()
		stop()
	}
}

func closeAll() {
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i].Close(); err != nil {
			logger.Entry(logrus.Fields{"error": err.Error()}).Warn("proposalctl: ошибка закрытия ресурса")
		}
	}
	closers = nil
}
