package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
	"github.com/spf13/cobra"
)

func newPostingCmd(opts *globalOptions) *cobra.Command {
	var (
		in        recruiting.PostingInput
		inputFile string
	)

	cmd := &cobra.Command{
		Use:   "posting",
		Short: "Generate an HTML job posting",
		Example: `  recruitctl posting --title "Backend Engineer" --seniority Senior \
    --must-have Go --must-have PostgreSQL --benefit "Remote stipend"
  recruitctl posting --input role.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if inputFile != "" {
				if err := readJSONInput(cmd, inputFile, &in); err != nil {
					return err
				}
			}
			if err := in.Validate(); err != nil {
				return err
			}

			s, err := opts.open(cmd)
			if err != nil {
				return err
			}

			if opts.dryRun {
				prompt, err := s.prompts.Posting(in)
				if err != nil {
					return err
				}
				return printPrompt(s.out, prompt)
			}

			html, err := s.service.GeneratePosting(cmd.Context(), in)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(s.out, html)
			return err
		},
	}

	f := cmd.Flags()
	f.StringVar(&inputFile, "input", "", `JSON file with the posting fields ("-" for stdin); flags are ignored`)
	f.StringVar(&in.Title, "title", "", "job title")
	f.StringVar(&in.Seniority, "seniority", "", "seniority level")
	f.StringVar(&in.Team, "team", "", "team name")
	f.StringVar(&in.Location, "location", "", "location")
	f.StringVar(&in.RemotePolicy, "remote-policy", "", "remote policy")
	f.StringArrayVar(&in.MustHaveSkills, "must-have", nil, "must-have skill (repeatable)")
	f.StringArrayVar(&in.NiceToHaveSkills, "nice-to-have", nil, "nice-to-have skill (repeatable)")
	f.StringArrayVar(&in.Responsibilities, "responsibility", nil, "key responsibility (repeatable)")
	f.StringArrayVar(&in.Requirements, "requirement", nil, "requirement (repeatable)")
	f.StringArrayVar(&in.Benefits, "benefit", nil, "benefit (repeatable)")
	return cmd
}

// readJSONInput decodes path, or stdin for "-", into v, replacing any
// values set from flags.
func readJSONInput(cmd *cobra.Command, path string, v interface{}) error {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input %s: %w", path, err)
	}
	return nil
}
