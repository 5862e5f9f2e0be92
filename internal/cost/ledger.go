package cost

import (
	"fmt"
	"os"
	"sync"
	"time"

	"commitscribe/internal/fsutil"
	"commitscribe/internal/llmclient"
)

const dayKeyFormat = "2006-01-02"

// Ledger persists usage day by day in one JSON file. Every record
// rewrites the whole file atomically, so readers never see a torn
// ledger even while a generation is running.
type Ledger struct {
	mu   sync.Mutex
	path string
	// now overrides the clock in tests.
	now func() time.Time
}

// UsageFile is the on-disk ledger shape.
type UsageFile struct {
	UpdatedAt time.Time            `json:"updated_at"`
	Days      map[string]DayTotals `json:"days"`
}

// DayTotals accumulates one UTC day of calls.
type DayTotals struct {
	Requests         int64                  `json:"requests"`
	Errors           int64                  `json:"errors"`
	PromptTokens     int64                  `json:"prompt_tokens"`
	CompletionTokens int64                  `json:"completion_tokens"`
	CostUSD          float64                `json:"cost_usd"`
	Models           map[string]ModelTotals `json:"models"`
}

// ModelTotals is one provider/model slice of a day.
type ModelTotals struct {
	Requests         int64   `json:"requests"`
	Errors           int64   `json:"errors"`
	PromptTokens     int64   `json:"prompt_tokens"`
	CompletionTokens int64   `json:"completion_tokens"`
	CostUSD          float64 `json:"cost_usd"`
}

func NewLedger(path string) *Ledger {
	return &Ledger{path: path, now: time.Now}
}

// Record folds one call into today's bucket and rewrites the file.
func (l *Ledger) Record(provider, model string, usage llmclient.Usage, failed bool, cost float64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	file, err := l.load()
	if err != nil {
		return err
	}
	day := file.Days[l.now().UTC().Format(dayKeyFormat)]
	if day.Models == nil {
		day.Models = make(map[string]ModelTotals)
	}

	day.Requests++
	day.PromptTokens += int64(usage.PromptTokens)
	day.CompletionTokens += int64(usage.CompletionTokens)
	day.CostUSD += cost
	if failed {
		day.Errors++
	}

	key := provider + "/" + model
	m := day.Models[key]
	m.Requests++
	m.PromptTokens += int64(usage.PromptTokens)
	m.CompletionTokens += int64(usage.CompletionTokens)
	m.CostUSD += cost
	if failed {
		m.Errors++
	}
	day.Models[key] = m

	file.Days[l.now().UTC().Format(dayKeyFormat)] = day
	file.UpdatedAt = l.now().UTC()
	return fsutil.WriteJSONAtomic(l.path, file)
}

// Snapshot reads the ledger from disk. A missing file is an empty
// ledger, not an error.
func (l *Ledger) Snapshot() (*UsageFile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.load()
}

func (l *Ledger) load() (*UsageFile, error) {
	file := &UsageFile{Days: make(map[string]DayTotals)}
	err := fsutil.ReadJSON(l.path, file)
	switch {
	case os.IsNotExist(err):
		return &UsageFile{Days: make(map[string]DayTotals)}, nil
	case err != nil:
		return nil, fmt.Errorf("cost: read ledger: %w", err)
	}
	if file.Days == nil {
		file.Days = make(map[string]DayTotals)
	}
	return file, nil
}
