package cost

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatTotals renders in-memory totals as aligned text lines for the
// terminal.
func FormatTotals(rows []Totals) string {
	if len(rows) == 0 {
		return "no usage recorded\n"
	}
	var b strings.Builder
	var cost float64
	for _, r := range rows {
		fmt.Fprintf(&b, "%s/%s: %s calls, %s prompt + %s completion tokens, $%.4f\n",
			r.Provider, r.Model,
			humanize.Comma(r.Requests),
			humanize.Comma(int64(r.Usage.PromptTokens)),
			humanize.Comma(int64(r.Usage.CompletionTokens)),
			r.CostUSD)
		cost += r.CostUSD
	}
	fmt.Fprintf(&b, "total estimated cost: $%.4f\n", cost)
	return b.String()
}

// FormatLedger renders the persisted ledger, newest day first.
func FormatLedger(file *UsageFile) string {
	if file == nil || len(file.Days) == 0 {
		return "no usage recorded\n"
	}
	days := make([]string, 0, len(file.Days))
	for day := range file.Days {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	var b strings.Builder
	for _, day := range days {
		d := file.Days[day]
		fmt.Fprintf(&b, "%s: %s calls, %s tokens, $%.4f",
			day,
			humanize.Comma(d.Requests),
			humanize.Comma(d.PromptTokens+d.CompletionTokens),
			d.CostUSD)
		if d.Errors > 0 {
			fmt.Fprintf(&b, " (%s failed)", humanize.Comma(d.Errors))
		}
		b.WriteString("\n")

		models := make([]string, 0, len(d.Models))
		for m := range d.Models {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			mt := d.Models[m]
			fmt.Fprintf(&b, "  %s: %s calls, %s tokens, $%.4f\n",
				m,
				humanize.Comma(mt.Requests),
				humanize.Comma(mt.PromptTokens+mt.CompletionTokens),
				mt.CostUSD)
		}
	}
	return b.String()
}
