package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/export"
	"github.com/finlens-dev/finlens/internal/model"
)

func newExportCommand(a *app) *cobra.Command {
	var f filingFlags
	var years, quarter, out string

	cmd := &cobra.Command{
		Use:       "export <ratios|compare|multi-year|quarterly>",
		Short:     "Write an analysis to an xlsx workbook",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"ratios", "compare", "multi-year", "quarterly"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := args[0]
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			scope := model.Scope(f.scope)
			st := model.StatementType(f.statement)

			var wb *export.Workbook
			switch kind {
			case "ratios":
				res, err := svc.Ratios(ctx, analysis.RatiosRequest{CorpCode: f.corp, Year: f.year, ReportCode: model.ReportCode(f.report), Scope: scope})
				if err != nil {
					return err
				}
				if wb, err = export.RatiosReport(res); err != nil {
					return fmt.Errorf("%w: %s", err, res.Error)
				}
			case "compare":
				res, err := svc.CompareCurrentPrevious(ctx, analysis.CompareRequest{CorpCode: f.corp, Year: f.year, ReportCode: model.ReportCode(f.report), Scope: scope, StatementType: st})
				if err != nil {
					return err
				}
				if wb, err = export.ComparisonReport(res); err != nil {
					return err
				}
			case "multi-year":
				ys, err := parseYears(years)
				if err != nil {
					return err
				}
				res, err := svc.MultiYear(ctx, analysis.MultiYearRequest{CorpCode: f.corp, Years: ys, Quarter: quarter, Scope: scope, StatementType: st})
				if err != nil {
					return err
				}
				if wb, err = export.MultiYearReport(res); err != nil {
					return err
				}
			case "quarterly":
				res, err := svc.Quarterly(ctx, analysis.QuarterlyRequest{CorpCode: f.corp, Year: f.year, Scope: scope, StatementType: st})
				if err != nil {
					return err
				}
				if wb, err = export.QuarterlyReport(res); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown export %q (want ratios, compare, multi-year or quarterly)", kind)
			}
			defer wb.Close()

			path := out
			if path == "" {
				path = fmt.Sprintf("%s-%s.xlsx", kind, f.corp)
			}
			if err := wb.SaveAs(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d sheets)\n", path, len(wb.Sheets()))
			return nil
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerStatement(cmd)
	f.registerReport(cmd)
	cmd.Flags().StringVar(&years, "years", "", "years for multi-year, comma separated or ranged")
	cmd.Flags().StringVar(&quarter, "quarter", "Q4", "quarter for multi-year (Q1..Q4)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default <kind>-<corp>.xlsx)")
	return cmd
}
