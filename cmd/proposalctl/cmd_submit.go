package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rutgers-seed/proposal-portal/internal/form"
	"github.com/rutgers-seed/proposal-portal/internal/pkg/apperror"
	"github.com/rutgers-seed/proposal-portal/internal/usecase/proposal"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
)

// submitCmd отправляет черновик
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Validate and submit the draft",
	Long: `Validates the whole draft and stores it as a new proposal.

On success the local draft is cleared. On any failure the draft is kept as is,
so fix the reported fields and run submit again. A retry after a failed submit
creates a new proposal; nothing is deduplicated.`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	c, err := loadConfig()
	if err != nil {
		return err
	}
	model, drafts, err := openModel()
	if err != nil {
		return err
	}
	repo, err := openRepository(ctx)
	if err != nil {
		return err
	}

	uc := proposal.NewSubmitProposalUseCase(validation.NewValidator(c.InstitutionDomains), repo, nil)
	created, err := form.NewPipeline(model, drafts, uc).Submit(ctx)
	if err != nil {
		if fields := apperror.FieldsOf(err); len(fields) > 0 {
			printFieldErrors(cmd.OutOrStdout(), validation.Errors(fields))
			return fmt.Errorf("draft has %d invalid fields, nothing was submitted", len(fields))
		}
		return fmt.Errorf("submit failed, the draft was kept: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Proposal #%d submitted at %s\n",
		created.ID, created.SubmittedAt.Local().Format("2006-01-02 15:04"))
	return nil
}
