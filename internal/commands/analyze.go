package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"unicode/utf8"

	"github.com/spf13/cobra"

	"github.com/finlens-dev/finlens/internal/advisor"
	"github.com/finlens-dev/finlens/internal/analysis"
	"github.com/finlens-dev/finlens/internal/history"
	"github.com/finlens-dev/finlens/internal/model"
)

// trendYears is how many years the trends analysis covers.
const trendYears = 3

func newAnalyzeCommand(a *app) *cobra.Command {
	var f filingFlags
	var name, prompt string

	cmd := &cobra.Command{
		Use:   "analyze [basic|ratios|trends|investment|comprehensive]",
		Short: "Generate an AI narrative for a filing",
		Long: `Fetch a filing, normalize its statements and ask the configured model
for a narrative analysis. Without an advisor API key the command reports
that AI analysis is disabled.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := advisor.KindBasic
			if len(args) == 1 {
				kind = advisor.ParseKind(args[0])
			}
			ctx := cmd.Context()

			svc, err := a.service(nil)
			if err != nil {
				return err
			}
			adv, err := a.advisor(ctx)
			if err != nil {
				return err
			}

			ratios, err := svc.Ratios(ctx, analysis.RatiosRequest{
				CorpCode:   f.corp,
				Year:       f.year,
				ReportCode: model.ReportCode(f.report),
				Scope:      model.Scope(f.scope),
			})
			if err != nil {
				return err
			}
			if !ratios.Success {
				return fmt.Errorf("fetching %s: %s", f.corp, ratios.Error)
			}

			req := advisor.Request{
				CorpName:      a.corpName(cmd, f.corp, name),
				CorpCode:      f.corp,
				Year:          strconv.Itoa(ratios.Year),
				Scope:         ratios.Scope,
				FinancialData: make(map[string]model.Snapshot, len(ratios.Statements)),
				Prompt:        prompt,
			}
			for _, l := range ratios.Statements {
				req.FinancialData[l.Label] = l.Snapshot
			}

			switch kind {
			case advisor.KindTrends:
				years := make([]int, 0, trendYears)
				for y := ratios.Year - trendYears + 1; y <= ratios.Year; y++ {
					years = append(years, y)
				}
				multi, err := svc.MultiYear(ctx, analysis.MultiYearRequest{
					CorpCode:      f.corp,
					Years:         years,
					Scope:         ratios.Scope,
					StatementType: model.StatementIS,
				})
				if err != nil {
					return err
				}
				if req.MultiYearData, err = json.Marshal(multi.Data); err != nil {
					return fmt.Errorf("encoding multi-year data: %w", err)
				}
			case advisor.KindInvestment:
				if req.ComprehensiveData, err = json.Marshal(ratios); err != nil {
					return fmt.Errorf("encoding ratio data: %w", err)
				}
			}

			res, err := adv.Analyze(ctx, kind, req)
			if err != nil {
				return err
			}
			if err := a.record(res, req); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), res)
		},
	}
	f.register(cmd)
	f.registerScope(cmd)
	f.registerReport(cmd)
	cmd.Flags().StringVar(&name, "name", "", "company name used in prompts (default: looked up in the corp table)")
	cmd.Flags().StringVar(&prompt, "prompt", "", "custom question; ignored for basic analysis")
	return cmd
}

// record appends res to the analysis history when one is configured.
func (a *app) record(res *advisor.Result, req advisor.Request) error {
	path := a.cfg.Advisor.HistoryPath
	if path == "" {
		return nil
	}
	return history.Append(path, []history.Entry{{
		Timestamp: a.now(),
		Kind:      string(res.AnalysisType),
		CorpCode:  req.CorpCode,
		CorpName:  res.CorpName,
		Year:      res.Year,
		Scope:     res.Scope,
		Success:   res.Success,
		Chars:     utf8.RuneCountInString(res.Analysis),
	}})
}

func newHistoryCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List past AI analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Advisor.HistoryPath == "" {
				return fmt.Errorf("analysis history disabled (set advisor.history_path)")
			}
			entries, err := history.Read(a.cfg.Advisor.HistoryPath)
			if err != nil {
				return err
			}
			if entries == nil {
				entries = []history.Entry{}
			}
			return printJSON(cmd.OutOrStdout(), entries)
		},
	}
}

// corpName returns name, or the company's name from an existing corp table,
// or the code itself.
func (a *app) corpName(cmd *cobra.Command, code, name string) string {
	if name != "" {
		return name
	}
	if _, err := os.Stat(a.cfg.CorpCode.DBPath); err != nil {
		return code
	}
	store, err := a.openStore()
	if err != nil {
		return code
	}
	defer store.Close()
	corp, err := store.Get(cmd.Context(), code)
	if err != nil {
		a.logger.Debug("corp name lookup failed", "corp_code", code, "error", err)
		return code
	}
	return corp.Name
}
