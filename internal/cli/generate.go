package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"commitscribe/internal/chain"
	"commitscribe/internal/config"
	"commitscribe/internal/git"
	"commitscribe/internal/llm"
	"commitscribe/internal/notify"
)

var errNoStagedChanges = errors.New("no staged changes, stage files with git add first")

// confirmCommit asks before running git commit. A variable so tests can
// answer without a terminal.
var confirmCommit = func(message string) (bool, error) {
	ok := false
	prompt := &survey.Confirm{
		Message: "Commit with this message?",
		Default: true,
	}
	if err := survey.AskOne(prompt, &ok); err != nil {
		return false, err
	}
	return ok, nil
}

func newGenerateCmd(verbose *bool) *cobra.Command {
	var (
		provider string
		model    string
		language string
		template string
		parallel int
		single   bool
		commit   bool
		progress bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a commit message for the staged changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			if flags.Changed("provider") {
				cfg.Provider = provider
			}
			if flags.Changed("model") {
				cfg.Model = model
			}
			if flags.Changed("language") {
				cfg.Language = language
			}
			if flags.Changed("template") {
				cfg.Template = template
			}
			if flags.Changed("parallel") {
				cfg.Parallel = parallel
			}
			if single {
				cfg.UseChain = false
			}

			logger, closeLog := newLogger(cfg, *verbose)
			defer closeLog()

			repo, err := git.Open(".")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			diffs, err := repo.StagedDiffs(ctx)
			if err != nil {
				return err
			}
			if len(diffs) == 0 {
				return errNoStagedChanges
			}

			release, err := generationGuard.Acquire(repo.Root())
			if err != nil {
				return err
			}
			defer release()

			usage := newAccounting(cfg)
			client, err := buildClient(ctx, cfg.Provider, llm.BuildOptions{
				APIKey: config.APIKey(cfg.Provider),
				Model:  cfg.Model,
				Logger: logger,
				Usage:  usage,
				Notify: &notify.LogNotifier{Log: logger},
			})
			if err != nil {
				return err
			}
			defer client.Close()

			opts := chain.Options{
				Parallel: cfg.Parallel,
				Cache:    summaryCache,
				Logger:   logger,
			}
			var bar *progressbar.ProgressBar
			if progress {
				bar = newProgressBar(len(diffs))
				opts.Progress = func(done, _ int) { _ = bar.Set(done) }
			}

			out, err := chain.NewGenerator(client, cfg.UseChain, opts).Generate(ctx, chain.Request{
				RepoPath: repo.Root(),
				Diffs:    diffs,
				Template: cfg.Template,
				Language: cfg.Language,
			})
			if bar != nil {
				_ = bar.Finish()
			}
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), out.CommitMessage)
			logger.Printf("generate: %d files summarized, estimated cost $%.4f",
				len(out.FileSummaries), usage.TotalCost())

			if !commit {
				return nil
			}
			ok, err := confirmCommit(out.CommitMessage)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "not committed")
				return nil
			}
			if err := repo.Commit(ctx, out.CommitMessage); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "committed")
			return nil
		},
	}

	cmd.Flags().StringVarP(&provider, "provider", "p", "", "chat provider: openai, groq, anthropic or gemini")
	cmd.Flags().StringVarP(&model, "model", "m", "", "model id, defaults to the provider's standard model")
	cmd.Flags().StringVarP(&language, "language", "l", "", "language of the generated message")
	cmd.Flags().StringVarP(&template, "template", "t", "", "free-text commit template")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "max concurrent file summaries, 0 picks automatically")
	cmd.Flags().BoolVar(&single, "single", false, "use the one-call path instead of the staged pipeline")
	cmd.Flags().BoolVarP(&commit, "commit", "c", false, "commit with the generated message after confirmation")
	cmd.Flags().BoolVar(&progress, "progress", false, "render a progress bar while files are summarized")

	return cmd
}

func newProgressBar(total int) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("summarizing"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{Saucer: "#", SaucerPadding: " ", BarStart: "|", BarEnd: "|"}),
		progressbar.OptionClearOnFinish(),
	)
}
