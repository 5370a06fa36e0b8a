package cmd

import (
	"github.com/spf13/cobra"

	"github.com/JakeFAU/survivor-stats/internal/analysis"
	"github.com/JakeFAU/survivor-stats/internal/pipeline"
)

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analysis over the stored tables",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "states",
			Short: "Break contestants down by home state or province",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newAnalyzer(cmd)
				if err != nil {
					return err
				}
				_, err = a.States(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "ages",
			Short: "Break contestants down by age relative to their season median",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newAnalyzer(cmd)
				if err != nil {
					return err
				}
				_, err = a.Ages(cmd.Context())
				return err
			},
		},
		&cobra.Command{
			Use:   "mentions",
			Short: "Classify finalists as winners from episode description mentions",
			RunE: func(cmd *cobra.Command, _ []string) error {
				a, err := newAnalyzer(cmd)
				if err != nil {
					return err
				}
				_, err = a.Mentions(cmd.Context())
				return err
			},
		},
	)
	return cmd
}

func newAnalyzer(cmd *cobra.Command) (*pipeline.Analyzer, error) {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return nil, err
	}
	ac := appInstance.GetConfig().Analysis
	return pipeline.NewAnalyzer(appInstance.GetRepository(), appInstance.GetBlobStore(), cmd.OutOrStdout(), pipeline.AnalyzeOptions{
		OtherThreshold: ac.OtherThreshold,
		OutputPrefix:   ac.OutputPrefix,
		Mentions: analysis.MentionsConfig{
			Iterations:      ac.Iterations,
			TestFraction:    ac.TestFraction,
			SelectFeatures:  ac.SelectFeatures,
			ExcludedSeasons: ac.ExcludedSeasons,
			Seed:            ac.Seed,
		},
	}, appInstance.GetLogger())
}
