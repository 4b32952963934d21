package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/phrazzld/recruiter-api/internal/config"
	"github.com/phrazzld/recruiter-api/internal/generation"
	"github.com/phrazzld/recruiter-api/internal/platform/llm"
	"github.com/phrazzld/recruiter-api/internal/platform/logger"
	"github.com/phrazzld/recruiter-api/internal/service/recruiting"
	"github.com/spf13/cobra"
)

// globalOptions are the flags shared by every subcommand.
type globalOptions struct {
	configFile string
	envFile    string
	logLevel   string
	dryRun     bool

	// newGenerator is replaced in tests.
	newGenerator func(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (generation.Generator, error)
}

func newRootCmd() *cobra.Command {
	return newRootCmdWith(&globalOptions{newGenerator: defaultGenerator})
}

func newRootCmdWith(opts *globalOptions) *cobra.Command {
	root := &cobra.Command{
		Use:   "recruitctl",
		Short: "Generate job postings and interview kits",
		Long: `recruitctl renders the recruiting prompts and sends them to the configured
language model, printing the result. Configuration is read the same way as the
server: config.yaml, .env, then RECRUITER_* environment variables.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configFile, "config", "", "config file (default: ./config.yaml if present)")
	flags.StringVar(&opts.envFile, "env-file", ".env", "dotenv file to load")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr (debug, info, warn, error)")
	flags.BoolVar(&opts.dryRun, "dry-run", false, "print the rendered prompts instead of calling the model")

	root.AddCommand(newPostingCmd(opts), newKitCmd(opts))
	return root
}

// session is everything a subcommand needs to run.
type session struct {
	prompts *recruiting.Prompts
	service recruiting.Service
	out     io.Writer
}

func (o *globalOptions) open(cmd *cobra.Command) (*session, error) {
	cfg, err := config.LoadWithOptions(config.Options{ConfigFile: o.configFile, EnvFile: o.envFile})
	if err != nil {
		return nil, err
	}

	log, err := logger.Setup(logger.LoggerConfig{Level: o.logLevel, Output: cmd.ErrOrStderr()})
	if err != nil {
		return nil, err
	}

	prompts, err := recruiting.LoadPrompts(recruiting.PromptOptions{
		PostingPath: cfg.LLM.PostingPromptPath,
		KitPath:     cfg.LLM.KitPromptPath,
		CompanyName: cfg.LLM.CompanyName,
	})
	if err != nil {
		return nil, err
	}

	s := &session{prompts: prompts, out: cmd.OutOrStdout()}
	if o.dryRun {
		return s, nil
	}

	gen, err := o.newGenerator(cmd, cfg, log)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, errors.New("no API key configured: set RECRUITER_LLM_API_KEY or OPENAI_API_KEY")
	}

	s.service, err = recruiting.NewService(gen, prompts, log, nil)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func defaultGenerator(cmd *cobra.Command, cfg *config.Config, log *slog.Logger) (generation.Generator, error) {
	return llm.NewGenerator(cmd.Context(), cfg.LLM, log, nil)
}

func printPrompt(w io.Writer, p recruiting.Prompt) error {
	_, err := fmt.Fprintf(w, "--- system ---\n%s\n--- user ---\n%s\n", p.System, p.User)
	return err
}
