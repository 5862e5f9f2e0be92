package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"commitscribe/internal/config"
	"commitscribe/internal/cost"
	"commitscribe/internal/llm"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the built-in providers, default models and prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PROVIDER\tDEFAULT MODEL\tAPI KEY\tPROMPT $/1M\tCOMPLETION $/1M")
			for _, name := range llm.Providers() {
				prof, err := llm.Resolve(name, "")
				if err != nil {
					continue
				}
				key := "set"
				if config.APIKey(name) == "" {
					key = "missing"
				}
				prompt, completion := "-", "-"
				if price, ok := cost.PriceFor(name, prof.Model); ok {
					prompt = fmt.Sprintf("%.2f", price.Prompt)
					completion = fmt.Sprintf("%.2f", price.Completion)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", name, prof.Model, key, prompt, completion)
			}
			return w.Flush()
		},
	}
}
