package cmd

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/JakeFAU/survivor-stats/internal/cbs"
	"github.com/JakeFAU/survivor-stats/internal/pipeline"
	"github.com/JakeFAU/survivor-stats/internal/wiki"
)

func newScrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape",
		Short: "Scrape source pages into the table store",
	}
	cmd.AddCommand(newScrapeSeasonsCmd(), newScrapeCastCmd())
	return cmd
}

func newScrapeSeasonsCmd() *cobra.Command {
	var seasons []int
	cmd := &cobra.Command{
		Use:   "seasons",
		Short: "Scrape Wikipedia season pages and replace the season tables",
		Long: `Fetches every catalog season (or only those given with --season),
writes the per-season contestant and episode tables, then rewrites the
overall seasons, contestants and episodes tables. With --season the
stored rows of every other season are kept.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			selected, err := appInstance.GetCatalog().Select(seasons)
			if err != nil {
				return err
			}
			builder, err := pipeline.NewBuilder(pipelineDeps(appInstance, wiki.NewScraper(appInstance.GetPageFetcher(), appInstance.GetLogger())), pipeline.Options{
				BestEffort: appInstance.GetConfig().DB.BestEffort,
				Merge:      len(seasons) > 0,
			})
			if err != nil {
				return err
			}
			report, err := builder.Build(cmd.Context(), selected)
			if err != nil {
				return fmt.Errorf("build dataset: %w", err)
			}
			renderBuildReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&seasons, "season", nil, "season numbers to scrape (default: every catalog season)")
	return cmd
}

func newScrapeCastCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cast",
		Short: "Scrape the CBS cast listing and link it to stored contestants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			cc := appInstance.GetConfig().Cast
			scraper := cbs.NewScraper(appInstance.GetCastFetcher(), cc.URL, cc.BaseURL, appInstance.GetLogger())
			p, err := pipeline.NewCastPipeline(scraper, pipelineDeps(appInstance, nil), pipeline.CastOptions{
				MatchThreshold: cc.MatchThreshold,
				OutputName:     cc.OutputName,
				BestEffort:     appInstance.GetConfig().DB.BestEffort,
			})
			if err != nil {
				return err
			}
			report, err := p.Run(cmd.Context())
			if err != nil {
				return fmt.Errorf("scrape cast: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cast members: %d, linked: %d, artifact: %s\n",
				report.Members, report.Linked, report.Artifact)
			return nil
		},
	}
}

func pipelineDeps(a App, scraper pipeline.SeasonScraper) pipeline.Deps {
	return pipeline.Deps{
		Scraper:   scraper,
		Repo:      a.GetRepository(),
		Blobs:     a.GetBlobStore(),
		Publisher: a.GetPublisher(),
		IDs:       a.GetIDs(),
		Clock:     a.GetClock(),
		Logger:    a.GetLogger(),
	}
}

func renderBuildReport(w io.Writer, report pipeline.BuildReport) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.SetTitle("Dataset build " + report.RunID)
	t.AppendHeader(table.Row{"Seasons", "Contestants", "Episodes", "Skipped", "Write errors", "Duration"})
	t.AppendRow(table.Row{
		report.Seasons,
		report.Contestants,
		report.Episodes,
		len(report.Skipped),
		report.WriteErrors,
		report.CompletedAt.Sub(report.StartedAt).Round(time.Millisecond).String(),
	})
	for _, s := range report.Skipped {
		t.AppendFooter(table.Row{"skipped " + strconv.Itoa(s.Number), s.Reason})
	}
	t.Render()
}
