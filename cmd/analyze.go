package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/srs-capital/fii-screener/internal/pdftext"
	"github.com/srs-capital/fii-screener/internal/report"
	"github.com/srs-capital/fii-screener/internal/rules"
)

var analyzeJSON bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <report.pdf>",
	Short: "Score a fund report PDF against the Método SRS FI",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return eris.Wrapf(err, "analyze: stat %s", path)
		}

		extractor, err := newExtractor(cfg.Extract)
		if err != nil {
			return err
		}
		source := pdftext.NewPoppler(cfg.PDFText)

		pages := pdftext.SafePages(cmd.Context(), source, path)
		set := extractor.Metrics(pages)

		if set.Err != nil {
			// Still print the partial set for transparency before failing.
			partial, _ := json.MarshalIndent(set, "", "  ")
			fmt.Fprintln(cmd.OutOrStdout(), string(partial))
			return eris.Errorf("analyze: %s: %s", set.Err.Kind, set.Err.Message)
		}

		ev := rules.Evaluate(set)
		zap.L().Debug("analysis complete",
			zap.String("ticker", ev.Ticker),
			zap.String("recommendation", string(ev.Recommendation)),
		)

		if analyzeJSON {
			out, err := json.MarshalIndent(ev, "", "  ")
			if err != nil {
				return eris.Wrap(err, "analyze: marshal evaluation")
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		}

		fmt.Fprint(cmd.OutOrStdout(), report.Markdown(ev))
		return nil
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw evaluation JSON instead of the report")
	rootCmd.AddCommand(analyzeCmd)
}
