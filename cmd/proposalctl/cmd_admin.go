package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/draft"
	"github.com/rutgers-seed/proposal-portal/internal/export"
	"github.com/rutgers-seed/proposal-portal/internal/identity"
	"github.com/rutgers-seed/proposal-portal/internal/metrics"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
	"github.com/rutgers-seed/proposal-portal/internal/storage"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
)

var (
	adminEmail    string
	adminPassword string
	adminSearch   string
	exportFormat  string
	exportDir     string
	exportID      int64
	exportMaxMB   int64

	// now подменяется в тестах.
	now = time.Now
)

// adminCmd группа админских команд
var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Review submitted proposals",
	Long: `Admin commands. Run "proposalctl admin login" first; the session is kept
in the draft file until logout or expiry.`,
}

var adminLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in as an administrator",
	Long: `Signs in through the configured identity provider. Only administrator
accounts are admitted; any other account is signed out again immediately.

The password may be passed with --password or PROPOSALCTL_PASSWORD.`,
	Args: cobra.NoArgs,
	RunE: runAdminLogin,
}

var adminLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the admin session",
	Args:  cobra.NoArgs,
	RunE:  runAdminLogout,
}

var adminListCmd = &cobra.Command{
	Use:   "list",
	Short: "List proposals, newest first",
	Args:  cobra.NoArgs,
	RunE:  runAdminList,
}

var adminShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Print one proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminShow,
}

var adminStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show totals for the current search",
	Args:  cobra.NoArgs,
	RunE:  runAdminStats,
}

var adminDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a proposal",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminDelete,
}

var adminExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export proposals to a spreadsheet",
	Long: `Writes the filtered proposals (or one proposal with --id) to a workbook.
xlsx is the default; if it cannot be produced a CSV file is written instead.`,
	Args: cobra.NoArgs,
	RunE: runAdminExport,
}

var adminHashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for ADMIN_USERS",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdminHashPassword,
}

func init() {
	adminLoginCmd.Flags().StringVar(&adminEmail, "email", "", "Admin email (required)")
	adminLoginCmd.Flags().StringVar(&adminPassword, "password", "", "Admin password (or PROPOSALCTL_PASSWORD)")
	adminLoginCmd.MarkFlagRequired("email")

	for _, c := range []*cobra.Command{adminListCmd, adminStatsCmd, adminExportCmd} {
		c.Flags().StringVarP(&adminSearch, "search", "s", "", "Filter by lead name, lead email, issue or aim")
	}
	adminExportCmd.Flags().StringVar(&exportFormat, "format", export.FormatXLSX, "xlsx or csv")
	adminExportCmd.Flags().StringVar(&exportDir, "dir", ".", "Directory to write the file to")
	adminExportCmd.Flags().Int64Var(&exportID, "id", 0, "Export a single proposal")
	adminExportCmd.Flags().Int64Var(&exportMaxMB, "max-mb", 0, "Refuse to write files larger than this many MB (0 = no limit)")

	adminCmd.AddCommand(adminLoginCmd)
	adminCmd.AddCommand(adminLogoutCmd)
	adminCmd.AddCommand(adminListCmd)
	adminCmd.AddCommand(adminShowCmd)
	adminCmd.AddCommand(adminStatsCmd)
	adminCmd.AddCommand(adminDeleteCmd)
	adminCmd.AddCommand(adminExportCmd)
	adminCmd.AddCommand(adminHashPasswordCmd)
}

func runAdminLogin(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	password := adminPassword
	if password == "" {
		password = os.Getenv("PROPOSALCTL_PASSWORD")
	}

	auth, err := newAuthenticator()
	if err != nil {
		return err
	}
	store, err := openKV()
	if err != nil {
		return err
	}

	session, err := auth.Login(ctx, adminEmail, password)
	if err != nil {
		return err
	}
	if err := store.Set(draft.AdminSessionKey, session.Token); err != nil {
		return fmt.Errorf("signed in but the session could not be saved: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s until %s\n",
		session.Email, session.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runAdminLogout(cmd *cobra.Command, args []string) error {
	store, err := openKV()
	if err != nil {
		return err
	}

	token, err := store.Get(draft.AdminSessionKey)
	if errors.Is(err, draft.ErrNoValue) {
		fmt.Fprintln(cmd.OutOrStdout(), "Not signed in")
		return nil
	}
	if err != nil {
		return err
	}

	if auth, err := newAuthenticator(); err == nil {
		auth.Logout(token)
	}
	if err := store.Delete(draft.AdminSessionKey); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Signed out")
	return nil
}

// requireAdmin проверяет сохранённую сессию. Просроченная или чужая сессия удаляется из слота.
func requireAdmin() (*identity.Claims, error) {
	store, err := openKV()
	if err != nil {
		return nil, err
	}
	token, err := store.Get(draft.AdminSessionKey)
	if errors.Is(err, draft.ErrNoValue) {
		return nil, apperror.New(apperror.ErrCodeUnauthorized, `not signed in, run "proposalctl admin login"`)
	}
	if err != nil {
		return nil, err
	}

	auth, err := newAuthenticator()
	if err != nil {
		return nil, err
	}
	claims, err := auth.Verify(token)
	if err != nil {
		_ = store.Delete(draft.AdminSessionKey)
		return nil, apperror.Wrap(err, apperror.ErrCodeUnauthorized, `session expired, run "proposalctl admin login"`)
	}
	return claims, nil
}

func runAdminList(cmd *cobra.Command, args []string) error {
	if _, err := requireAdmin(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	list, err := proposal.NewSearchProposalsUseCase(repo).Execute(ctx, adminSearch)
	if err != nil {
		return err
	}

	if len(list) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No proposals found")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSUBMITTED\tLEAD\tEMAIL\tBUDGET")
	for _, p := range list {
		name, email := "N/A", ""
		if lead := p.PrimaryLead(); lead != nil {
			name, email = lead.Name, lead.Email
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			p.ID, p.SubmittedAt.Local().Format("2006-01-02"), name, email, p.TotalBudget())
	}
	return tw.Flush()
}

func runAdminShow(cmd *cobra.Command, args []string) error {
	if _, err := requireAdmin(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	p, err := proposal.NewGetProposalUseCase(repo).Execute(ctx, id)
	if err != nil {
		return err
	}
	return printValue(cmd.OutOrStdout(), p)
}

func runAdminStats(cmd *cobra.Command, args []string) error {
	if _, err := requireAdmin(); err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	stats, err := proposal.NewGetStatisticsUseCase(repo).WithClock(now).Execute(ctx, adminSearch)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Total proposals: %d\nLast 30 days:    %d\nTotal budget:    %s\n",
		stats.Total, stats.Recent, stats.TotalBudget)
	return nil
}

func runAdminDelete(cmd *cobra.Command, args []string) error {
	if _, err := requireAdmin(); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}
	if err := proposal.NewDeleteProposalUseCase(repo, nil).Execute(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Proposal #%d deleted\n", id)
	return nil
}

func runAdminExport(cmd *cobra.Command, args []string) error {
	if _, err := requireAdmin(); err != nil {
		return err
	}
	c, err := loadConfig()
	if err != nil {
		return err
	}
	ctx, cancel := commandContext(cmd)
	defer cancel()

	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}

	var (
		list   []*entity.Proposal
		prefix = c.ExportPrefix
	)
	if exportID > 0 {
		p, err := proposal.NewGetProposalUseCase(repo).Execute(ctx, exportID)
		if err != nil {
			return err
		}
		list = []*entity.Proposal{p}
		prefix = fmt.Sprintf("seed-proposal-%d", exportID)
	} else {
		list, err = proposal.NewSearchProposalsUseCase(repo).Execute(ctx, adminSearch)
		if err != nil {
			return err
		}
	}

	ts := now()
	primary := export.RendererFor(exportFormat)
	var fallback export.Renderer
	if primary.Format() != export.FormatCSV {
		fallback = export.CSVRenderer{}
	}

	var buf bytes.Buffer
	format, err := export.Render(&buf, export.BuildWorkbook(list, ts), primary, fallback)
	if err != nil {
		return err
	}
	metrics.RecordExport(format)

	files, err := storage.NewFileStorage(exportDir, exportMaxMB)
	if err != nil {
		return err
	}
	path, size, err := files.Save(ctx, export.DefaultFilename(prefix, ts)+"."+format, &buf)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d proposals to %s (%d bytes)\n", len(list), path, size)
	return nil
}

func runAdminHashPassword(cmd *cobra.Command, args []string) error {
	if err := validation.ValidatePassword(args[0]); err != nil {
		return err
	}
	hash, err := identity.HashPassword(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("id must be a positive number, got %q", raw)
	}
	return id, nil
}
