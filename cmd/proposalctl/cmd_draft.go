package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rutgers-seed/proposal-portal/internal/domain/entity"
	"github.com/rutgers-seed/proposal-portal/internal/draft"
	"github.com/rutgers-seed/proposal-portal/internal/form"
	"github.com/rutgers-seed/proposal-portal/internal/validation"
)

var (
	draftEntry string
)

// draftCmd группа команд редактирования черновика
var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Edit the local proposal draft",
	Long: `Edits the locally saved proposal draft. Every change is written to the
draft file right away, so an interrupted session resumes where it stopped.

Field paths:
  leads.0.email, problemStatement.whyItMatters, goal.approach, objectives.1,
  teamRoles.0.role, seedActivity.what, timeline.0.startDate,
  expectedExpenses.2.cost, expectedOutcomes.finalDeliverable`,
}

var draftShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current draft",
	Args:  cobra.NoArgs,
	RunE:  runDraftShow,
}

var draftSetCmd = &cobra.Command{
	Use:   "set [path] [value]",
	Short: "Set a single field of the draft",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftSet,
}

var draftAddCmd = &cobra.Command{
	Use:   "add [group]",
	Short: "Append an entry to a repeatable group",
	Long: `Appends an entry to one of: leads, objectives, teamRoles, timeline, expectedExpenses.

Without --entry a blank entry is appended. --entry takes YAML or JSON, e.g.
  proposalctl draft add leads --entry '{name: Ada, email: ada@rutgers.edu, phone: "555"}'
  proposalctl draft add objectives --entry 'Plant 40 trees'`,
	Args: cobra.ExactArgs(1),
	RunE: runDraftAdd,
}

var draftRemoveCmd = &cobra.Command{
	Use:   "remove [group] [index]",
	Short: "Remove an entry from a repeatable group",
	Args:  cobra.ExactArgs(2),
	RunE:  runDraftRemove,
}

var draftSeedActivityCmd = &cobra.Command{
	Use:   "seed-activity [on|off]",
	Short: "Add or drop the optional SEED activity block",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftSeedActivity,
}

var draftImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Replace the draft with a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE:  runDraftImport,
}

var draftValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the draft without submitting it",
	Args:  cobra.NoArgs,
	RunE:  runDraftValidate,
}

var draftClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the draft and start from a blank form",
	Args:  cobra.NoArgs,
	RunE:  runDraftClear,
}

func init() {
	draftAddCmd.Flags().StringVar(&draftEntry, "entry", "", "Entry content as YAML or JSON")

	draftCmd.AddCommand(draftShowCmd)
	draftCmd.AddCommand(draftSetCmd)
	draftCmd.AddCommand(draftAddCmd)
	draftCmd.AddCommand(draftRemoveCmd)
	draftCmd.AddCommand(draftSeedActivityCmd)
	draftCmd.AddCommand(draftImportCmd)
	draftCmd.AddCommand(draftValidateCmd)
	draftCmd.AddCommand(draftClearCmd)
}

// openModel поднимает модель формы из сохранённого снимка.
func openModel() (*form.Model, *draft.Store, error) {
	store, err := openKV()
	if err != nil {
		return nil, nil, err
	}
	drafts := draft.NewStore(store)
	return form.NewModel(drafts.Load(), drafts), drafts, nil
}

func runDraftShow(cmd *cobra.Command, args []string) error {
	model, _, err := openModel()
	if err != nil {
		return err
	}
	return printValue(cmd.OutOrStdout(), model.Draft())
}

func runDraftSet(cmd *cobra.Command, args []string) error {
	model, _, err := openModel()
	if err != nil {
		return err
	}
	if err := model.SetField(args[0], args[1]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", args[0])
	return nil
}

func runDraftAdd(cmd *cobra.Command, args []string) error {
	model, _, err := openModel()
	if err != nil {
		return err
	}

	group := form.Group(args[0])
	entry, err := decodeEntry(group, draftEntry)
	if err != nil {
		return err
	}
	if err := model.AddEntry(group, entry); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", group, model.Len(group))
	return nil
}

func runDraftRemove(cmd *cobra.Command, args []string) error {
	model, _, err := openModel()
	if err != nil {
		return err
	}

	idx, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("index must be a number, got %q", args[1])
	}
	group := form.Group(args[0])
	if err := model.RemoveEntry(group, idx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d entries\n", group, model.Len(group))
	return nil
}

func runDraftSeedActivity(cmd *cobra.Command, args []string) error {
	var present bool
	switch strings.ToLower(args[0]) {
	case "on", "add", "true":
		present = true
	case "off", "remove", "false":
		present = false
	default:
		return fmt.Errorf("expected on or off, got %q", args[0])
	}

	model, _, err := openModel()
	if err != nil {
		return err
	}
	return model.SetSeedActivity(present)
}

func runDraftImport(cmd *cobra.Command, args []string) error {
	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	imported, err := decodeDraft(filepath.Ext(args[0]), raw)
	if err != nil {
		return err
	}

	model, _, err := openModel()
	if err != nil {
		return err
	}
	if err := model.Replace(imported); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "draft imported from %s\n", args[0])
	return nil
}

func runDraftValidate(cmd *cobra.Command, args []string) error {
	model, _, err := openModel()
	if err != nil {
		return err
	}
	c, err := loadConfig()
	if err != nil {
		return err
	}

	_, errs := validation.NewValidator(c.InstitutionDomains).Validate(model.Draft())
	if len(errs) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "draft is valid")
		return nil
	}
	printFieldErrors(cmd.OutOrStdout(), errs)
	return fmt.Errorf("draft has %d invalid fields", len(errs))
}

func runDraftClear(cmd *cobra.Command, args []string) error {
	_, drafts, err := openModel()
	if err != nil {
		return err
	}
	drafts.Clear()
	fmt.Fprintln(cmd.OutOrStdout(), "draft cleared")
	return nil
}

// decodeDraft разбирает файл поверх пустой формы: отсутствующие ключи остаются дефолтными.
func decodeDraft(ext string, raw []byte) (*entity.ProposalDraft, error) {
	d := entity.DefaultDraft()
	var err error
	if strings.EqualFold(ext, ".json") {
		err = json.Unmarshal(raw, d)
	} else {
		err = yaml.Unmarshal(raw, d)
	}
	if err != nil {
		return nil, fmt.Errorf("draft file is not valid %s: %w", strings.TrimPrefix(ext, "."), err)
	}
	return d, nil
}

// decodeEntry превращает --entry в строку нужной группы. YAML включает JSON.
func decodeEntry(group form.Group, raw string) (any, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	switch group {
	case form.GroupLeads:
		return unmarshalEntry[entity.Lead](group, raw)
	case form.GroupObjectives:
		return raw, nil
	case form.GroupTeamRoles:
		return unmarshalEntry[entity.TeamRole](group, raw)
	case form.GroupTimeline:
		return unmarshalEntry[entity.TimelineItem](group, raw)
	case form.GroupExpectedExpenses:
		return unmarshalEntry[entity.ExpenseItem](group, raw)
	}
	return nil, fmt.Errorf("unknown group %q", group)
}

func unmarshalEntry[T any](group form.Group, raw string) (any, error) {
	var v T
	if err := yaml.Unmarshal([]byte(raw), &v); err != nil {
		return nil, fmt.Errorf("entry for %s is not valid YAML: %w", group, err)
	}
	return v, nil
}

// printValue печатает значение в формате --output.
func printValue(w io.Writer, v any) error {
	if strings.EqualFold(outputFormat, "json") {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func printFieldErrors(w io.Writer, errs validation.Errors) {
	for _, p := range errs.Paths() {
		fmt.Fprintf(w, "  %s: %s\n", p, errs[p])
	}
}
