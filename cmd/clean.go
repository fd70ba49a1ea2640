package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/bumuk-library/leadctl/internal/cost"
	"github.com/bumuk-library/leadctl/internal/pipeline"
	"github.com/bumuk-library/leadctl/internal/sheet"
	"github.com/bumuk-library/leadctl/pkg/anthropic"
)

var (
	cleanEnrich bool
	cleanNoSave bool
)

var cleanCmd = &cobra.Command{
	Use:   "clean <workbook>",
	Short: "Clean a lead workbook into scored, deduplicated leads",
	Long:  "Reads an XLSX workbook or CSV file, normalizes columns across sheets, cleans contact fields, removes duplicates, scores each lead, and saves the result to the store.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		sheets, err := sheet.Read(args[0])
		if err != nil {
			return eris.Wrapf(err, "read %s", args[0])
		}

		opts := []pipeline.Option{}
		var enricher *pipeline.Enricher
		if cleanEnrich {
			if cfg.Anthropic.Key == "" {
				return eris.New("anthropic key is required for --enrich (LEADCTL_ANTHROPIC_KEY)")
			}
			client := anthropic.NewClient(cfg.Anthropic.Key)
			enricher = pipeline.NewEnricher(client, cfg.Anthropic)
			opts = append(opts, pipeline.WithEnricher(enricher))
		}

		p := pipeline.New(cfg, opts...)
		result, err := p.Run(ctx, sheets)
		if err != nil {
			return eris.Wrap(err, "run pipeline")
		}

		saved := 0
		if !cleanNoSave {
			st, err := openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			saved, err = st.SaveLeads(ctx, result.Leads)
			if err != nil {
				return eris.Wrap(err, "save leads")
			}
		}

		for _, line := range result.Log {
			fmt.Println(line)
		}
		fmt.Printf("%d rows in, %d duplicates removed, %d leads out\n",
			result.RawRows, result.Duplicates, len(result.Leads))

		if enricher != nil {
			usage := enricher.Usage()
			calc := cost.NewCalculator(cost.DefaultRates())
			fmt.Printf("enriched %d leads (%d input / %d output tokens, est. $%.4f)\n",
				result.Enriched, usage.InputTokens, usage.OutputTokens,
				calc.Claude(cfg.Anthropic.Model, usage.InputTokens, usage.OutputTokens))
		}

		zap.L().Info("clean complete",
			zap.String("workbook", args[0]),
			zap.Int("leads", len(result.Leads)),
			zap.Int("saved", saved),
			zap.Int("enriched", result.Enriched),
		)
		return nil
	},
}

func init() {
	cleanCmd.Flags().BoolVar(&cleanEnrich, "enrich", false, "enrich leads with AI insights")
	cleanCmd.Flags().BoolVar(&cleanNoSave, "no-save", false, "skip saving to the store")
	rootCmd.AddCommand(cleanCmd)
}
