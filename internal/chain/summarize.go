package chain

import (
	"context"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
)

// maxSummaryWords caps the per-file summary length.
const maxSummaryWords = 18

// maxWorkers bounds the stage-1 fan-out when no explicit parallelism
// was configured.
const maxWorkers = 8

// maxPatchTokens bounds how much of one file's patch goes into the
// summarize prompt.
const maxPatchTokens = 6000

// Summarizer fans one model call per file diff through a bounded worker
// pool. A file whose model output cannot be parsed gets a synthetic
// summary instead of failing the run.
type Summarizer struct {
	LLM      llmclient.LLMClient
	Parallel int
	Cache    *SummaryCache
	// Progress, when set, is called after each file finishes with the
	// completed count and the total. Calls come from worker goroutines.
	Progress func(done, total int)
}

// Summarize runs stage 1 over all diffs. Results are sorted by file
// path so downstream prompts are deterministic. The first transport
// error cancels outstanding workers and is returned as-is; malformed
// model output is not an error.
func (s *Summarizer) Summarize(ctx context.Context, diffs []FileDiff) ([]FileSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(diffs) == 0 {
		return nil, nil
	}

	workers := s.Parallel
	if workers <= 0 {
		workers = defaultParallelism(len(diffs))
	}
	if workers > len(diffs) {
		workers = len(diffs)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan FileDiff)
	results := make(chan FileSummary, len(diffs))
	errc := make(chan error, 1)

	var wg sync.WaitGroup
	var done atomic.Int64
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for d := range jobs {
				sum, err := s.summarizeFile(ctx, d)
				if err != nil {
					select {
					case errc <- err:
					default:
					}
					cancel()
					return
				}
				results <- sum
				if s.Progress != nil {
					s.Progress(int(done.Add(1)), len(diffs))
				}
			}
		}()
	}

feed:
	for _, d := range diffs {
		select {
		case jobs <- d:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	close(results)

	select {
	case err := <-errc:
		return nil, err
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]FileSummary, 0, len(diffs))
	for sum := range results {
		out = append(out, sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].File < out[j].File })
	return out, nil
}

func (s *Summarizer) summarizeFile(ctx context.Context, d FileDiff) (FileSummary, error) {
	d = s.clampPatch(d)
	if s.Cache != nil {
		if sum, ok := s.Cache.Get(d); ok {
			return sum, nil
		}
	}

	payload, err := jsonutil.MarshalNoEscape(d)
	if err != nil {
		return fallbackSummary(d), nil
	}
	res, err := s.LLM.Chat(llm.WithStage(ctx, "summarize"), llmclient.System(summarizePrompt, string(payload)))
	if err != nil {
		return FileSummary{}, err
	}

	sum, usable := parseFileSummary(res.Text, d)
	if s.Cache != nil && usable {
		// Synthetic fallbacks stay out of the cache so a later run can
		// try the model again on the same diff.
		s.Cache.Put(d, sum)
	}
	return sum, nil
}

// parseFileSummary decodes stage-1 model output, falling back to a
// synthetic summary whenever the output is unusable. The second return
// reports whether the model's answer was usable.
func parseFileSummary(text string, d FileDiff) (FileSummary, bool) {
	var sum FileSummary
	if err := jsonutil.DecodeLoose(text, &sum); err != nil {
		return fallbackSummary(d), false
	}
	if strings.TrimSpace(sum.Summary) == "" {
		return fallbackSummary(d), false
	}
	if sum.File == "" {
		sum.File = d.Path
	}
	if sum.Status == "" {
		sum.Status = string(d.Kind)
	}
	sum.Summary = clampWords(strings.TrimSpace(sum.Summary), maxSummaryWords)
	return sum, true
}

// clampPatch cuts an oversized patch down to the prompt budget. Hunks
// go with it since they duplicate the patch text; the summary then
// leans on what remains and the change kind.
func (s *Summarizer) clampPatch(d FileDiff) FileDiff {
	tokens := s.LLM.CountTokens(d.Patch)
	if tokens <= maxPatchTokens {
		return d
	}
	keep := len(d.Patch) * maxPatchTokens / tokens
	d.Patch = d.Patch[:keep] + "\n[patch truncated]"
	d.Hunks = nil
	return d
}

func fallbackSummary(d FileDiff) FileSummary {
	return FileSummary{File: d.Path, Status: string(d.Kind), Summary: "minor update", Breaking: false}
}

func clampWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ")
}

func defaultParallelism(n int) int {
	if n < 1 {
		return 1
	}
	if n > maxWorkers {
		return maxWorkers
	}
	return n
}
