package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
	"github.com/spf13/cobra"
)

// Output formats of the kit command.
const (
	formatJSON  = "json"
	formatTable = "table"
)

func newKitCmd(opts *globalOptions) *cobra.Command {
	var (
		in     recruiting.KitInput
		format string
	)

	cmd := &cobra.Command{
		Use:   "kit",
		Short: "Generate an interview kit",
		Example: `  recruitctl kit --role-title "Site Reliability Engineer" --seniority Senior
  recruitctl kit --role-title "Data Engineer" --format table`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if format != formatJSON && format != formatTable {
				return fmt.Errorf("unknown format %q (want %s or %s)", format, formatJSON, formatTable)
			}
			if err := in.Validate(); err != nil {
				return err
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			if opts.dryRun {
				prompt, err := s.prompts.Kit(in)
				if err != nil {
					return err
				}
				return printPrompt(s.out, prompt)
			}

			kit, err := s.service.GenerateKit(cmd.Context(), in)
			if err != nil {
				return err
			}
			if format == formatTable {
				_, err = fmt.Fprintln(s.out, renderKitTable(kit))
				return err
			}
			return writeKitJSON(s.out, kit)
		},
	}

	cmd.Flags().StringVar(&in.RoleTitle, "role-title", "", "role title")
	cmd.Flags().StringVar(&in.Seniority, "seniority", "", "seniority level")
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or table")
	return cmd
}

func writeKitJSON(w io.Writer, kit *recruiting.Kit) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(kit)
}

// renderKitTable renders one row per question, grouped by category.
func renderKitTable(kit *recruiting.Kit) string {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "#", "Question", "Answer"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, WidthMax: 50},
		{Number: 4, WidthMax: 70},
	})

	total := 0
	for _, group := range []struct {
		name string
		qas  []recruiting.QA
	}{
		{"technical", kit.Technical},
		{"behavioral", kit.Behavioral},
		{"scenario", kit.Scenario},
	} {
		for i, qa := range group.qas {
			t.AppendRow(table.Row{group.name, i + 1, qa.Q, qa.A})
			total++
		}
	}
	t.AppendFooter(table.Row{"", "", fmt.Sprintf("%d questions", total), ""})
	return t.Render()
}
