package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"commitscribe/internal/analysis"
	"commitscribe/internal/config"
	"commitscribe/internal/git"
	"commitscribe/internal/llm"
	"commitscribe/internal/notify"
)

func newAnalyzeCmd(verbose *bool) *cobra.Command {
	var (
		refresh bool
		clear   bool
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Build or refresh the stored repository analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			logger, closeLog := newLogger(cfg, *verbose)
			defer closeLog()

			repo, err := git.Open(".")
			if err != nil {
				return err
			}
			store, err := analysis.NewDiskStore(cfg.AnalysisDir())
			if err != nil {
				return err
			}

			if clear {
				az := &analysis.Analyzer{Repo: repo.Root(), Store: store, Logger: logger}
				if err := az.Clear(); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "analysis cleared")
				return nil
			}

			ctx := cmd.Context()
			client, err := buildClient(ctx, cfg.Provider, llm.BuildOptions{
				APIKey: config.APIKey(cfg.Provider),
				Model:  cfg.Model,
				Logger: logger,
				Usage:  newAccounting(cfg),
				Notify: &notify.LogNotifier{Log: logger},
			})
			if err != nil {
				return err
			}
			defer client.Close()

			az := &analysis.Analyzer{
				Repo:      repo.Root(),
				LLM:       client,
				Store:     store,
				History:   repo,
				Threshold: cfg.Threshold,
				Logger:    logger,
				Notify:    &notify.LogNotifier{Log: logger},
			}
			outcome, err := runAnalysis(ctx, az, store, repo.Root(), refresh)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "analysis %s\n", outcome)
			if outcome != analysis.OutcomeSkipped {
				fmt.Fprintln(cmd.OutOrStdout(), analysis.ArtifactPath(repo.Root()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&refresh, "refresh", false, "rebuild the analysis even when it is still fresh")
	cmd.Flags().BoolVar(&clear, "clear", false, "delete the stored analysis and its markdown artifact")
	cmd.MarkFlagsMutuallyExclusive("refresh", "clear")

	return cmd
}

// runAnalysis picks the analyzer entry point: Ensure respects the
// staleness threshold, --refresh forces a rebuild either way.
func runAnalysis(ctx context.Context, az *analysis.Analyzer, store analysis.Store, root string, refresh bool) (analysis.Outcome, error) {
	if !refresh {
		return az.Ensure(ctx)
	}
	stored, err := store.Get(analysis.Key(root))
	if err != nil {
		return analysis.OutcomeSkipped, err
	}
	if stored == nil {
		return az.Initialize(ctx)
	}
	return az.Update(ctx)
}
