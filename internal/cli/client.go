package cli

import (
	"commitscribe/internal/chain"
	"commitscribe/internal/config"
	"commitscribe/internal/cost"
	"commitscribe/internal/llm"
)

// buildClient is a variable so tests can substitute a scripted client
// for the real provider transports.
var buildClient = llm.Build

// generationGuard rejects overlapping generations for the same
// repository within this process.
var generationGuard = chain.NewGuard()

// summaryCache survives across in-process generations so a rerun after
// an unrelated edit reuses stage-1 summaries.
var summaryCache, _ = chain.NewSummaryCache(0)

// newAccounting wires the persisted usage ledger into a fresh
// in-memory aggregator.
func newAccounting(cfg *config.Config) *cost.Aggregator {
	return cost.NewAggregator(cost.NewLedger(cfg.UsagePath()))
}
