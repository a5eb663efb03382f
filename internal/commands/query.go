package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/model"
)

// filingFlags are the filing selectors shared by query commands.
type filingFlags struct {
	corp      string
	year      int
	report    string
	scope     string
	statement string
}

// register adds --corp and --year.
func (f *filingFlags) register(cmd *cobra.Command) {
	f.registerCorp(cmd)
	cmd.Flags().IntVar(&f.year, "year", 0, "business year (default depends on the command)")
}

func (f *filingFlags) registerCorp(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.corp, "corp", "", "DART corp code (required)")
	_ = cmd.MarkFlagRequired("corp")
}

func (f *filingFlags) registerScope(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scope, "scope", string(model.ScopeConsolidated), "CFS (consolidated) or OFS (separate)")
}

func (f *filingFlags) registerStatement(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.statement, "type", string(model.StatementBS), "statement type: BS, IS, CIS, CF, SCE")
}

func (f *filingFlags) registerReport(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.report, "report", string(model.ReportAnnual), "report code: 11013 (Q1), 11012 (half), 11014 (Q3), 11011 (annual)")
}

// newProgress renders a fetch counter on w unless quiet.
func newProgress(w io.Writer, total int, desc string, quiet bool) analysis.Progress {
	if quiet {
		return nil
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(desc),
		progressbar.OptionOnCompletion(func() {
			fmt.Fprintln(w)
		}),
	)
}

func parseYears(s string) ([]int, error) {
	var years []int
	seen := make(map[int]bool)
	add := func(y int) {
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if from, to, ok := strings.Cut(part, "-"); ok {
			lo, err := strconv.Atoi(strings.TrimSpace(from))
			if err != nil {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			hi, err := strconv.Atoi(strings.TrimSpace(to))
			if err != nil || hi < lo {
				return nil, fmt.Errorf("invalid year range %q", part)
			}
			for y := lo; y <= hi; y++ {
				add(y)
			}
			continue
		}
		y, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid year %q", part)
		}
		add(y)
	}
	return years, nil
}

func newStatementCommand(a *app) *cobra.Command {
	var f filingFlags
	var raw bool

	cmd := &cobra.Command{
		Use:   "statement",
		Short: "Fetch one statement in canonical account order",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			req := analysis.StatementRequest{
				CorpCode:      f.corp,
				Year:          f.year,
				ReportCode:    model.ReportCode(f.report),
				Scope:         model.Scope(f.scope),
				StatementType: model.StatementType(f.statement),
			}
			if raw {
				resp, _, err := svc.Raw(cmd.Context(), req)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), resp)
			}
			res, err := svc.Statement(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerStatement(cmd)
	f.registerReport(cmd)
	cmd.Flags().BoolVar(&raw, "raw", false, "print the unprocessed API response")
	return cmd
}

func newCompareCommand(a *app) *cobra.Command {
	var f filingFlags

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare a year's statement with the previous year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			res, err := svc.CompareCurrentPrevious(cmd.Context(), analysis.CompareRequest{
				CorpCode:      f.corp,
				Year:          f.year,
				ReportCode:    model.ReportCode(f.report),
				Scope:         model.Scope(f.scope),
				StatementType: model.StatementType(f.statement),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerStatement(cmd)
	f.registerReport(cmd)
	return cmd
}

func newMultiYearCommand(a *app) *cobra.Command {
	var f filingFlags
	var years, quarter string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "multi-year",
		Short: "Fetch a statement across years and chain growth rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ys, err := parseYears(years)
			if err != nil {
				return err
			}
			progress := newProgress(cmd.ErrOrStderr(), len(ys), "fetching years", quiet)
			svc, err := a.service(progress)
			if err != nil {
				return err
			}
			res, err := svc.MultiYear(cmd.Context(), analysis.MultiYearRequest{
				CorpCode:      f.corp,
				Years:         ys,
				Quarter:       quarter,
				Scope:         model.Scope(f.scope),
				StatementType: model.StatementType(f.statement),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.registerCorp(cmd)
	f.registerScope(cmd)
	f.registerStatement(cmd)
	cmd.Flags().StringVar(&years, "years", "", "years, comma separated or ranged (2020-2023)")
	_ = cmd.MarkFlagRequired("years")
	cmd.Flags().StringVar(&quarter, "quarter", "Q4", "quarter whose report is compared (Q1..Q4)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func newQuarterlyCommand(a *app) *cobra.Command {
	var f filingFlags
	var quiet bool

	cmd := &cobra.Command{
		Use:   "quarterly",
		Short: "Fetch a statement for each quarter of a year",
		RunE: func(cmd *cobra.Command, _ []string) error {
			progress := newProgress(cmd.ErrOrStderr(), len(model.Quarters()), "fetching quarters", quiet)
			svc, err := a.service(progress)
			if err != nil {
				return err
			}
			res, err := svc.Quarterly(cmd.Context(), analysis.QuarterlyRequest{
				CorpCode:      f.corp,
				Year:          f.year,
				Scope:         model.Scope(f.scope),
				StatementType: model.StatementType(f.statement),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerStatement(cmd)
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	return cmd
}

func newRatiosCommand(a *app) *cobra.Command {
	var f filingFlags

	cmd := &cobra.Command{
		Use:   "ratios",
		Short: "Compute financial ratios for a filing",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			res, err := svc.Ratios(cmd.Context(), analysis.RatiosRequest{
				CorpCode:   f.corp,
				Year:       f.year,
				ReportCode: model.ReportCode(f.report),
				Scope:      model.Scope(f.scope),
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerReport(cmd)
	return cmd
}

func newDiffCommand(a *app) *cobra.Command {
	var f filingFlags
	var limit int

	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Compare consolidated and separate versions of a statement",
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			res, err := svc.ConsolidationDiff(cmd.Context(), analysis.DiffRequest{
				CorpCode:      f.corp,
				Year:          f.year,
				ReportCode:    model.ReportCode(f.report),
				StatementType: model.StatementType(f.statement),
				Limit:         limit,
			})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerStatement(cmd)
	f.registerReport(cmd)
	cmd.Flags().IntVar(&limit, "limit", 0, "number of consolidated accounts examined (default 10)")
	return cmd
}
