package analysis

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"commitscribe/internal/git"
	"commitscribe/internal/jsonutil"
	"commitscribe/internal/llm"
	"commitscribe/internal/llmclient"
	"commitscribe/internal/notify"
	"commitscribe/internal/scan"
)

// Outcome says what an analyzer run did. Skipped covers cancellation
// and unusable provider configuration; those are results, not errors.
type Outcome string

const (
	OutcomeInitialized Outcome = "initialized"
	OutcomeUpdated     Outcome = "updated"
	OutcomeFresh       Outcome = "fresh"
	OutcomeSkipped     Outcome = "skipped"
)

const analyzePrompt = `You are a senior engineer joining a project.
Study the repository description and distill what a commit message author should know about it.

Return STRICT JSON ONLY:
{
  "summary": "string, 2-4 sentences on what the project is and how it is laid out",
  "insights": ["string, short facts useful when describing changes, at most 5"]
}

Constraints:
- Ground every statement in the provided structure, manifests, and commit subjects.
- No narrative text outside the JSON.`

// Analyzer keeps one repository's analysis current. Wire the same
// retry-wrapped client the generation pipeline uses; the analyzer adds
// no retrying of its own.
type Analyzer struct {
	// Repo is the repository working tree root.
	Repo    string
	LLM     llmclient.LLMClient
	Store   Store
	History History
	// Scan overrides the structure scanner, nil for scan.Scan.
	Scan   ScanFunc
	Notify notify.Notifier
	// Threshold is how many commits make an analysis stale. Zero means
	// DefaultThreshold; values below 1 are raised to 1.
	Threshold int
	Logger    *log.Logger
	// Now overrides the clock, nil for time.Now.
	Now func() time.Time

	mu          sync.Mutex
	retryWanted bool
}

type analysisRequest struct {
	Structure     *scan.Structure   `json:"structure"`
	Manifests     map[string]string `json:"manifests,omitempty"`
	RecentCommits []string          `json:"recent_commits,omitempty"`
}

type analysisReply struct {
	Summary  string   `json:"summary"`
	Insights []string `json:"insights"`
}

// Ensure refreshes the analysis only when the decider says it is
// stale. A current analysis returns OutcomeFresh without any model
// call.
func (z *Analyzer) Ensure(ctx context.Context) (Outcome, error) {
	stored, err := z.Store.Get(Key(z.Repo))
	if err != nil {
		return OutcomeSkipped, err
	}
	history, err := z.History.Recent(ctx, z.threshold()+1)
	if err != nil {
		return z.mapError(err)
	}
	if !ShouldUpdate(stored, history, z.threshold()) {
		return OutcomeFresh, nil
	}
	if stored == nil {
		return z.refresh(ctx, OutcomeInitialized, history)
	}
	return z.refresh(ctx, OutcomeUpdated, history)
}

// Initialize builds and stores the analysis unconditionally.
func (z *Analyzer) Initialize(ctx context.Context) (Outcome, error) {
	return z.refresh(ctx, OutcomeInitialized, nil)
}

// Update rebuilds and stores the analysis unconditionally.
func (z *Analyzer) Update(ctx context.Context) (Outcome, error) {
	return z.refresh(ctx, OutcomeUpdated, nil)
}

// Clear removes the stored record and the markdown artifact. This is
// the only way the anchor moves backwards.
func (z *Analyzer) Clear() error {
	if err := z.Store.Delete(Key(z.Repo)); err != nil {
		return err
	}
	if err := removeArtifact(z.Repo); err != nil {
		z.logger().Printf("analysis: artifact removal failed: %v", err)
	}
	return nil
}

// CredentialsChanged retries a run that was skipped for missing or
// rejected credentials. The registration fires exactly once; a retry
// that fails the same way registers again through the normal path.
func (z *Analyzer) CredentialsChanged(ctx context.Context) {
	z.mu.Lock()
	wanted := z.retryWanted
	z.retryWanted = false
	z.mu.Unlock()
	if !wanted {
		return
	}
	outcome, err := z.Ensure(ctx)
	if err != nil {
		z.logger().Printf("analysis: retry after credential change failed: %v", err)
		return
	}
	z.logger().Printf("analysis: retry after credential change: %s", outcome)
}

// refresh scans, asks the model, and replaces the stored record. When
// history is nil it is fetched here; Ensure passes its own copy so the
// decider and the anchor see the same list.
func (z *Analyzer) refresh(ctx context.Context, done Outcome, history []git.Commit) (Outcome, error) {
	if err := ctx.Err(); err != nil {
		z.logger().Printf("analysis: cancelled before start")
		return OutcomeSkipped, nil
	}
	if history == nil {
		var err error
		history, err = z.History.Recent(ctx, z.threshold()+1)
		if err != nil {
			return z.mapError(err)
		}
	}
	structure, err := z.scanner()(ctx, z.Repo)
	if err != nil {
		return z.mapError(err)
	}
	reply, err := z.ask(ctx, structure, history)
	if err != nil {
		return z.mapError(err)
	}
	record := z.compose(structure, history, reply)
	if err := z.Store.Put(Key(z.Repo), record); err != nil {
		return OutcomeSkipped, err
	}
	if err := writeArtifact(z.Repo, record); err != nil {
		z.logger().Printf("analysis: artifact write failed: %v", err)
	}
	z.logger().Printf("analysis: %s %s", done, z.Repo)
	return done, nil
}

func (z *Analyzer) ask(ctx context.Context, st *scan.Structure, history []git.Commit) (analysisReply, error) {
	subjects := make([]string, 0, z.threshold())
	for _, c := range history {
		if len(subjects) >= z.threshold() {
			break
		}
		subjects = append(subjects, c.Subject())
	}
	payload, err := jsonutil.MarshalNoEscape(analysisRequest{
		Structure:     st,
		Manifests:     scan.Manifests(st),
		RecentCommits: subjects,
	})
	if err != nil {
		return analysisReply{}, nil
	}
	res, err := z.LLM.Chat(llm.WithStage(ctx, "analyze"), llmclient.System(analyzePrompt, string(payload)))
	if err != nil {
		return analysisReply{}, err
	}
	var reply analysisReply
	if err := jsonutil.DecodeLoose(res.Text, &reply); err != nil {
		// An unusable answer degrades to the synthetic summary.
		return analysisReply{}, nil
	}
	return reply, nil
}

func (z *Analyzer) compose(st *scan.Structure, history []git.Commit, reply analysisReply) *Analysis {
	summary := strings.TrimSpace(reply.Summary)
	if summary == "" {
		summary = syntheticSummary(st)
	}
	insights := make([]string, 0, len(reply.Insights))
	for _, in := range reply.Insights {
		if t := strings.TrimSpace(in); t != "" {
			insights = append(insights, t)
		}
	}
	anchor := ""
	if len(history) > 0 {
		anchor = history[0].Hash
	}
	return &Analysis{
		RepositoryPath:   st.Root,
		Timestamp:        z.now(),
		LastAnalyzedHash: anchor,
		Summary:          summary,
		Insights:         insights,
		ProjectType:      st.ProjectType,
		Technologies:     st.Technologies,
		KeyDirectories:   st.KeyDirectories,
		ImportantFiles:   st.ImportantFiles,
		ReadmeContent:    st.ReadmeContent,
		ConfigFiles:      st.ConfigFiles,
	}
}

// mapError turns transport conditions into outcomes: cancellation and
// configuration problems are skips, anything else propagates.
func (z *Analyzer) mapError(err error) (Outcome, error) {
	switch {
	case llmclient.IsCancel(err):
		z.logger().Printf("analysis: cancelled")
		return OutcomeSkipped, nil
	case llmclient.IsConfig(err):
		z.notifier().PromptConfigure(z.LLM.Name(), err.Error())
		z.mu.Lock()
		z.retryWanted = true
		z.mu.Unlock()
		z.logger().Printf("analysis: skipped, provider not configured: %v", err)
		return OutcomeSkipped, nil
	default:
		return OutcomeSkipped, err
	}
}

func syntheticSummary(st *scan.Structure) string {
	var b strings.Builder
	if st.ProjectType == "" || st.ProjectType == "unknown" {
		b.WriteString("Repository")
	} else {
		b.WriteString(st.ProjectType)
		b.WriteString(" repository")
	}
	if len(st.Technologies) > 0 {
		n := len(st.Technologies)
		if n > 3 {
			n = 3
		}
		b.WriteString(" using ")
		b.WriteString(strings.Join(st.Technologies[:n], ", "))
	}
	fmt.Fprintf(&b, " with %d files.", st.FileCount)
	return b.String()
}

func (z *Analyzer) threshold() int {
	switch {
	case z.Threshold == 0:
		return DefaultThreshold
	case z.Threshold < 1:
		return 1
	default:
		return z.Threshold
	}
}

func (z *Analyzer) scanner() ScanFunc {
	if z.Scan != nil {
		return z.Scan
	}
	return scan.Scan
}

func (z *Analyzer) notifier() notify.Notifier {
	if z.Notify != nil {
		return z.Notify
	}
	return notify.Nop{}
}

func (z *Analyzer) logger() *log.Logger {
	if z.Logger != nil {
		return z.Logger
	}
	return log.Default()
}

func (z *Analyzer) now() time.Time {
	if z.Now != nil {
		return z.Now()
	}
	return time.Now()
}
