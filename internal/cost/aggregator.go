package cost

import (
	"sort"
	"sync"

	"commitscribe/internal/llmclient"
)

// Totals is the accumulated spend for one provider/model pair.
type Totals struct {
	Provider string          `json:"provider"`
	Model    string          `json:"model"`
	Requests int64           `json:"requests"`
	Errors   int64           `json:"errors"`
	Usage    llmclient.Usage `json:"usage"`
	CostUSD  float64         `json:"cost_usd"`
}

// Aggregator collects per-call usage records in memory and forwards
// them to an optional ledger. It is the UsageSink wired innermost into
// every built client, so retried attempts each count.
type Aggregator struct {
	// Ledger, when set, receives every record for persistence.
	Ledger *Ledger

	mu     sync.Mutex
	rows   map[string]*Totals
	stages map[string]int64
}

func NewAggregator(ledger *Ledger) *Aggregator {
	return &Aggregator{
		Ledger: ledger,
		rows:   make(map[string]*Totals),
		stages: make(map[string]int64),
	}
}

// Record accumulates one call's usage. Ledger write failures are
// dropped: accounting must never fail a generation.
func (a *Aggregator) Record(provider, model, stage string, usage llmclient.Usage, callErr error) {
	price, _ := PriceFor(provider, model)
	cost := price.Cost(usage)

	a.mu.Lock()
	key := provider + "/" + model
	row, ok := a.rows[key]
	if !ok {
		row = &Totals{Provider: provider, Model: model}
		a.rows[key] = row
	}
	row.Requests++
	if callErr != nil {
		row.Errors++
	}
	row.Usage.Add(usage)
	row.CostUSD += cost
	a.stages[stage]++
	a.mu.Unlock()

	if a.Ledger != nil {
		_ = a.Ledger.Record(provider, model, usage, callErr != nil, cost)
	}
}

// Snapshot returns the totals so far, sorted by provider then model.
func (a *Aggregator) Snapshot() []Totals {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]Totals, 0, len(a.rows))
	for _, row := range a.rows {
		out = append(out, *row)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}

// Stages returns how many calls each pipeline stage issued.
func (a *Aggregator) Stages() map[string]int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]int64, len(a.stages))
	for k, v := range a.stages {
		out[k] = v
	}
	return out
}

// TotalCost sums the estimated spend across all rows.
func (a *Aggregator) TotalCost() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	var sum float64
	for _, row := range a.rows {
		sum += row.CostUSD
	}
	return sum
}
