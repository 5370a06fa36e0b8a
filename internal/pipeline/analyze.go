package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"

	"go.uber.org/zap"

	"github.com/JakeFAU/survivor-stats/internal/analysis"
	"github.com/JakeFAU/survivor-stats/internal/metrics"
	"github.com/JakeFAU/survivor-stats/internal/survivor"
)

// AnalyzeOptions tune an Analyzer.
type AnalyzeOptions struct {
	// OtherThreshold is the pie share, in percent, below which a slice is
	// folded into "other".
	OtherThreshold float64
	Mentions       analysis.MentionsConfig
	// OutputPrefix is prepended to every artifact path.
	OutputPrefix string
}

// Analyzer runs the state, age and mention studies over stored tables.
type Analyzer struct {
	repo  survivor.Repository
	blobs survivor.BlobStore
	out   io.Writer
	opts  AnalyzeOptions
	log   *zap.Logger
}

type chartPage struct {
	name  string
	title string
}

var (
	stateCharts = []chartPage{
		{"playersByState.html", "Percent of Players From Each State/Province"},
		{"juryByState.html", "Percent of Jury Members From Each State/Province"},
		{"finalistByState.html", "Percent of Finalists From Each State/Province"},
		{"winnersByState.html", "Percent of Winners From Each State/Province"},
	}
	ageCharts = []chartPage{
		{"playersByAgeRange.html", "Percent of Players From Each Age Range"},
		{"juryByAgeRange.html", "Percent of Jury Members From Each Age Range"},
		{"finalistByAgeRange.html", "Percent of Finalists From Each Age Range"},
		{"winnersByAgeRange.html", "Percent of Winners From Each Age Range"},
	}
)

// Artifact names.
const (
	StateCSV    = "stateQuestionsDataFrame.csv"
	AgeCSV      = "ageQuestionDataFrame.csv"
	AgeLine     = "percentOfAgeGroup.html"
	MentionsCSV = "mentionsClassification.csv"
)

// NewAnalyzer returns an Analyzer. Tables are printed to out; blobs may be
// nil to skip artifacts.
func NewAnalyzer(repo survivor.Repository, blobs survivor.BlobStore, out io.Writer, opts AnalyzeOptions, logger *zap.Logger) (*Analyzer, error) {
	if repo == nil {
		return nil, errors.New("pipeline: repository is required")
	}
	if out == nil {
		out = io.Discard
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.OtherThreshold <= 0 {
		opts.OtherThreshold = 1.5
	}
	return &Analyzer{repo: repo, blobs: blobs, out: out, opts: opts, log: logger.Named("analyze")}, nil
}

// States tallies contestants by home state or province.
func (a *Analyzer) States(ctx context.Context) ([]analysis.Breakdown, error) {
	contestants, err := a.repo.Contestants(ctx, survivor.ContestantFilter{})
	if err != nil {
		return nil, fmt.Errorf("load contestants: %w", err)
	}
	rows := analysis.States(contestants)
	analysis.RenderBreakdown(a.out, "Players by State/Province", analysis.StateHeader, rows)
	if err := a.breakdownArtifacts(ctx, StateCSV, analysis.StateHeader, rows, stateCharts, analysis.OtherStates); err != nil {
		return rows, err
	}
	metrics.ObserveAnalysis("states")
	a.log.Info("state analysis done", zap.Int("contestants", len(contestants)), zap.Int("states", len(rows)-1))
	return rows, nil
}

// Ages tallies contestants by age bracket relative to the season median.
func (a *Analyzer) Ages(ctx context.Context) ([]analysis.Breakdown, error) {
	contestants, err := a.repo.Contestants(ctx, survivor.ContestantFilter{})
	if err != nil {
		return nil, fmt.Errorf("load contestants: %w", err)
	}
	rows, skipped := analysis.Ages(contestants)
	if skipped > 0 {
		a.log.Warn("contestants without a usable age", zap.Int("skipped", skipped))
	}
	analysis.RenderBreakdown(a.out, "Players by Age Range", analysis.AgeHeader, rows)
	if err := a.breakdownArtifacts(ctx, AgeCSV, analysis.AgeHeader, rows, ageCharts, analysis.OtherAges); err != nil {
		return rows, err
	}
	if a.blobs != nil {
		var buf bytes.Buffer
		if err := analysis.RenderStageLine(&buf, "Percentage of Age Groups that Make Each Stage of Game", rows); err != nil {
			return rows, fmt.Errorf("render %s: %w", AgeLine, err)
		}
		if err := a.put(ctx, AgeLine, "text/html; charset=utf-8", &buf); err != nil {
			return rows, err
		}
	}
	metrics.ObserveAnalysis("ages")
	a.log.Info("age analysis done", zap.Int("contestants", len(contestants)))
	return rows, nil
}

// Mentions classifies finalists as winners from how often each episode
// description names them.
func (a *Analyzer) Mentions(ctx context.Context) (analysis.MentionsResult, error) {
	contestants, err := a.repo.Contestants(ctx, survivor.ContestantFilter{})
	if err != nil {
		return analysis.MentionsResult{}, fmt.Errorf("load contestants: %w", err)
	}
	episodes, err := a.repo.Episodes(ctx, nil)
	if err != nil {
		return analysis.MentionsResult{}, fmt.Errorf("load episodes: %w", err)
	}
	samples := analysis.MentionFeatures(contestants, episodes, a.opts.Mentions.ExcludedSeasons)
	result, err := analysis.ClassifyMentions(samples, a.opts.Mentions)
	if err != nil {
		return result, fmt.Errorf("classify mentions: %w", err)
	}
	if result.Skipped > 0 {
		a.log.Warn("splits skipped", zap.Int("skipped", result.Skipped), zap.Int("iterations", result.Iterations))
	}
	analysis.RenderMentions(a.out, result)
	if a.blobs != nil {
		var buf bytes.Buffer
		if err := analysis.WriteMentionsCSV(&buf, result); err != nil {
			return result, err
		}
		if err := a.put(ctx, MentionsCSV, "text/csv", &buf); err != nil {
			return result, err
		}
	}
	metrics.ObserveAnalysis("mentions")
	a.log.Info("mentions analysis done", zap.Int("samples", result.Samples), zap.Int("features", result.Features))
	return result, nil
}

func (a *Analyzer) breakdownArtifacts(ctx context.Context, csvName string, header []string, rows []analysis.Breakdown, pages []chartPage, other string) error {
	if a.blobs == nil {
		return nil
	}
	var buf bytes.Buffer
	if err := analysis.WriteBreakdownCSV(&buf, header, rows); err != nil {
		return fmt.Errorf("write %s: %w", csvName, err)
	}
	if err := a.put(ctx, csvName, "text/csv", &buf); err != nil {
		return err
	}
	for i, page := range pages {
		wedges := analysis.PieSlices(rows, analysis.Stages[i].Share, a.opts.OtherThreshold, other)
		buf.Reset()
		if err := analysis.RenderPie(&buf, page.title, wedges); err != nil {
			return fmt.Errorf("render %s: %w", page.name, err)
		}
		if err := a.put(ctx, page.name, "text/html; charset=utf-8", &buf); err != nil {
			return err
		}
	}
	return nil
}

func (a *Analyzer) put(ctx context.Context, name, contentType string, r io.Reader) error {
	key := path.Join(a.opts.OutputPrefix, name)
	uri, err := a.blobs.PutObject(ctx, key, contentType, r)
	if err != nil {
		return fmt.Errorf("store %s: %w", name, err)
	}
	a.log.Debug("artifact stored", zap.String("uri", uri))
	return nil
}
