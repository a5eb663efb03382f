package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/finlens-dev/finlens/internal/compare"
	"github.com/finlens-dev/finlens/internal/consolidation"
	"github.com/finlens-dev/finlens/internal/dart"
	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/ratio"
	"github.com/finlens-dev/finlens/internal/statement"
)

// StatementRequest selects one statement of one filing.
type StatementRequest struct {
	CorpCode      string
	Year          int // 0 selects the latest year with an annual report
	ReportCode    model.ReportCode
	Scope         model.Scope
	StatementType model.StatementType
}

// StatementResult is a single canonical statement.
type StatementResult struct {
	RequestID     string              `json:"request_id,omitempty"`
	Year          int                 `json:"year"`
	StatementType model.StatementType `json:"sj_div"`
	Scope         model.Scope         `json:"fs_div"`
	ScopeName     string              `json:"fs_div_name"`
	ReportCode    model.ReportCode    `json:"reprt_code"`
	Data          model.Snapshot      `json:"data"`
	RawCount      int                 `json:"raw_count"`
	Success       bool                `json:"success"`
	Error         string              `json:"error,omitempty"`
}

// Statement fetches a statement, falling back to earlier years when the
// requested one has no filing.
func (s *Service) Statement(ctx context.Context, req StatementRequest) (*StatementResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, err
	}
	st, err := requireStatement(req.StatementType)
	if err != nil {
		return nil, err
	}
	scope := model.ParseScope(string(req.Scope))
	dreq := dart.Request{CorpCode: corp, Year: req.Year, ReportCode: reportOrAnnual(req.ReportCode), Scope: scope}

	id, log := s.begin("statement", "corp_code", corp, "sj_div", st, "fs_div", scope)
	if dreq.Year == 0 {
		dreq.Year = s.latestYear(ctx, log, dreq)
	}

	res := &StatementResult{
		RequestID:     id,
		Year:          dreq.Year,
		StatementType: st,
		Scope:         scope,
		ScopeName:     scope.DisplayName(),
		ReportCode:    dreq.ReportCode,
	}

	resp, year, err := dart.FetchWithFallback(ctx, s.fetcher, dreq, s.retry)
	if err != nil || !resp.OK() {
		res.Error = failureMessage(resp, err)
		log.Warn("statement unavailable", "year", dreq.Year, "error", res.Error)
		return res, nil
	}
	if year != dreq.Year {
		log.Info("fell back to earlier year", "requested", dreq.Year, "year", year)
	}
	dreq.Year = year

	snap, stats := statement.BuildCanonical(resp.LineItems(dreq), st, s.taxonomy)
	res.Year = year
	res.Data = snap
	res.RawCount = stats.Filtered
	res.Success = true
	log.Info("statement built", "year", year, "accounts", snap.Len(), "defaulted", stats.Defaulted)
	return res, nil
}

// Raw returns the unprocessed response of one filing. A zero year selects
// the latest year with data. No year fallback is applied.
func (s *Service) Raw(ctx context.Context, req StatementRequest) (*dart.Response, int, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, 0, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, 0, err
	}
	dreq := dart.Request{
		CorpCode:   corp,
		Year:       req.Year,
		ReportCode: reportOrAnnual(req.ReportCode),
		Scope:      model.ParseScope(string(req.Scope)),
	}
	_, log := s.begin("raw", "corp_code", corp)
	if dreq.Year == 0 {
		dreq.Year = s.latestYear(ctx, log, dreq)
	}
	resp, err := s.fetcher.Fetch(ctx, dreq)
	if err != nil {
		return nil, dreq.Year, fmt.Errorf("fetching %s %d: %w", corp, dreq.Year, err)
	}
	return resp, dreq.Year, nil
}

// CompareRequest selects a statement to compare against the prior year.
type CompareRequest struct {
	CorpCode      string
	Year          int // 0 selects the current calendar year
	ReportCode    model.ReportCode
	Scope         model.Scope
	StatementType model.StatementType
}

// ComparisonResult is a current-versus-previous comparison.
type ComparisonResult struct {
	RequestID      string              `json:"request_id,omitempty"`
	CurrentYear    int                 `json:"current_year"`
	PreviousYear   int                 `json:"previous_year"`
	StatementType  model.StatementType `json:"sj_div"`
	Scope          model.Scope         `json:"fs_div"`
	Data           Periods             `json:"data"`
	GrowthAnalysis compare.Growth      `json:"growth_analysis"`
	Success        bool                `json:"success"`
}

// CurrentLabel names the current period of a comparison.
func CurrentLabel(year int) string { return fmt.Sprintf("%d년(당기)", year) }

// PreviousLabel names the previous period of a comparison.
func PreviousLabel(year int) string { return fmt.Sprintf("%d년(전기)", year) }

// CompareCurrentPrevious compares a year's statement with the year before.
// A period that cannot be fetched contributes an empty snapshot.
func (s *Service) CompareCurrentPrevious(ctx context.Context, req CompareRequest) (*ComparisonResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, err
	}
	st, err := requireStatement(req.StatementType)
	if err != nil {
		return nil, err
	}
	scope := model.ParseScope(string(req.Scope))
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}

	id, log := s.begin("compare", "corp_code", corp, "sj_div", st, "fs_div", scope, "year", year)

	base := dart.Request{CorpCode: corp, ReportCode: reportOrAnnual(req.ReportCode), Scope: scope}
	curReq, prevReq := base, base
	curReq.Year, prevReq.Year = year, year-1

	cur, _ := s.fetchSnapshot(ctx, log, curReq, st)
	prev, _ := s.fetchSnapshot(ctx, log, prevReq, st)

	return &ComparisonResult{
		RequestID:     id,
		CurrentYear:   year,
		PreviousYear:  year - 1,
		StatementType: st,
		Scope:         scope,
		Data: Periods{
			{Label: CurrentLabel(year), Snapshot: cur},
			{Label: PreviousLabel(year - 1), Snapshot: prev},
		},
		GrowthAnalysis: compare.Pairwise(cur, prev),
		Success:        true,
	}, nil
}

// MultiYearRequest selects one report across several years.
type MultiYearRequest struct {
	CorpCode      string
	Years         []int
	Quarter       string // Q1..Q4, default Q4
	Scope         model.Scope
	StatementType model.StatementType
}

// MultiYearResult holds per-year snapshots and the growth chain.
type MultiYearResult struct {
	RequestID     string              `json:"request_id,omitempty"`
	Years         []int               `json:"years"`
	Quarter       string              `json:"quarter"`
	StatementType model.StatementType `json:"sj_div"`
	Scope         model.Scope         `json:"fs_div"`
	Data          Periods             `json:"data"`
	GrowthRates   Steps               `json:"growth_rates"`
	Success       bool                `json:"success"`
}

// YearLabel names a year in multi-year results.
func YearLabel(year int) string { return fmt.Sprintf("%d년", year) }

// MultiYear fetches each requested year sequentially. Years keep request
// order in Data; repeats are dropped. Growth is chained in ascending order.
func (s *Service) MultiYear(ctx context.Context, req MultiYearRequest) (*MultiYearResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if len(req.Years) == 0 {
		return nil, invalid("회사코드와 연도가 필요합니다")
	}
	st, err := requireStatement(req.StatementType)
	if err != nil {
		return nil, err
	}

	var years []int
	seen := make(map[int]bool, len(req.Years))
	for _, y := range req.Years {
		if y <= 0 || y > 9999 {
			return nil, invalid("invalid year %d", y)
		}
		if !seen[y] {
			seen[y] = true
			years = append(years, y)
		}
	}

	quarter := strings.ToUpper(strings.TrimSpace(req.Quarter))
	if quarter == "" {
		quarter = "Q4"
	}
	scope := model.ParseScope(string(req.Scope))
	id, log := s.begin("multi_year", "corp_code", corp, "sj_div", st, "fs_div", scope, "years", years)

	res := &MultiYearResult{
		RequestID:     id,
		Years:         years,
		Quarter:       quarter,
		StatementType: st,
		Scope:         scope,
		Data:          make(Periods, 0, len(years)),
	}
	byYear := make(map[int]model.Snapshot, len(years))
	for _, y := range years {
		snap, _ := s.fetchSnapshot(ctx, log, dart.Request{
			CorpCode:   corp,
			Year:       y,
			ReportCode: model.QuarterReportCode(quarter),
			Scope:      scope,
		}, st)
		s.step()
		res.Data = append(res.Data, Labeled{Label: YearLabel(y), Snapshot: snap})
		byYear[y] = snap
	}
	res.GrowthRates = compare.Chain(byYear)
	res.Success = true
	return res, nil
}

// QuarterlyRequest selects a statement across the quarters of one year.
type QuarterlyRequest struct {
	CorpCode      string
	Year          int // 0 selects the current calendar year
	Scope         model.Scope
	StatementType model.StatementType
}

// QuarterlyResult holds Q1..Q4 snapshots.
type QuarterlyResult struct {
	RequestID          string              `json:"request_id,omitempty"`
	Year               int                 `json:"year"`
	StatementType      model.StatementType `json:"sj_div"`
	Scope              model.Scope         `json:"fs_div"`
	Data               Periods             `json:"data"`
	SuccessfulQuarters int                 `json:"successful_quarters"`
	Success            bool                `json:"success"`
}

// Quarterly fetches the four quarterly reports of a year in order.
func (s *Service) Quarterly(ctx context.Context, req QuarterlyRequest) (*QuarterlyResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, err
	}
	st, err := requireStatement(req.StatementType)
	if err != nil {
		return nil, err
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year()
	}
	scope := model.ParseScope(string(req.Scope))
	id, log := s.begin("quarterly", "corp_code", corp, "sj_div", st, "fs_div", scope, "year", year)

	res := &QuarterlyResult{
		RequestID:     id,
		Year:          year,
		StatementType: st,
		Scope:         scope,
	}
	for _, q := range model.Quarters() {
		snap, ok := s.fetchSnapshot(ctx, log, dart.Request{
			CorpCode:   corp,
			Year:       year,
			ReportCode: q.Code,
			Scope:      scope,
		}, st)
		s.step()
		if ok {
			res.SuccessfulQuarters++
		}
		res.Data = append(res.Data, Labeled{Label: q.Label, Snapshot: snap})
	}
	log.Info("quarterly fetch complete", "successful_quarters", res.SuccessfulQuarters)
	res.Success = true
	return res, nil
}

// RatiosRequest selects the filing ratios are computed from.
type RatiosRequest struct {
	CorpCode   string
	Year       int // 0 selects the latest year with an annual report
	ReportCode model.ReportCode
	Scope      model.Scope
}

// RatiosResult holds the ratio set and the statements it came from.
type RatiosResult struct {
	RequestID  string           `json:"request_id,omitempty"`
	CorpCode   string           `json:"corp_code"`
	Year       int              `json:"year"`
	Scope      model.Scope      `json:"fs_div"`
	ReportCode model.ReportCode `json:"reprt_code"`
	Ratios     ratio.Set        `json:"ratios"`
	Statements Periods          `json:"statements"`
	Success    bool             `json:"success"`
	Error      string           `json:"error,omitempty"`
}

// Ratios computes the ratio set of one filing, with year fallback.
func (s *Service) Ratios(ctx context.Context, req RatiosRequest) (*RatiosResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, err
	}
	scope := model.ParseScope(string(req.Scope))
	dreq := dart.Request{CorpCode: corp, Year: req.Year, ReportCode: reportOrAnnual(req.ReportCode), Scope: scope}
	id, log := s.begin("ratios", "corp_code", corp, "fs_div", scope)
	if dreq.Year == 0 {
		dreq.Year = s.latestYear(ctx, log, dreq)
	}

	res := &RatiosResult{
		RequestID:  id,
		CorpCode:   corp,
		Year:       dreq.Year,
		Scope:      scope,
		ReportCode: dreq.ReportCode,
	}
	resp, year, err := dart.FetchWithFallback(ctx, s.fetcher, dreq, s.retry)
	if err != nil || !resp.OK() {
		res.Error = failureMessage(resp, err)
		log.Warn("ratios unavailable", "year", dreq.Year, "error", res.Error)
		return res, nil
	}
	dreq.Year = year
	items := resp.LineItems(dreq)

	snaps := make(map[model.StatementType]model.Snapshot, 3)
	for _, st := range []model.StatementType{model.StatementBS, model.StatementIS, model.StatementCF} {
		snap, _ := statement.BuildCanonical(items, st, s.taxonomy)
		snaps[st] = snap
		res.Statements = append(res.Statements, Labeled{Label: string(st), Snapshot: snap})
	}

	res.Year = year
	res.Ratios = ratio.Compute(snaps[model.StatementBS], snaps[model.StatementIS], snaps[model.StatementCF])
	res.Success = true
	log.Info("ratios computed", "year", year, "ratios", res.Ratios.Len())
	return res, nil
}

// DiffRequest selects a filing to compare across consolidation scopes.
type DiffRequest struct {
	CorpCode      string
	Year          int // 0 selects the previous calendar year
	ReportCode    model.ReportCode
	StatementType model.StatementType
	Limit         int // accounts examined; 0 means consolidation.DefaultLimit
}

// DiffResult reports both fetches and, when both succeeded, the comparison.
type DiffResult struct {
	RequestID  string                `json:"request_id,omitempty"`
	CorpCode   string                `json:"corp_code"`
	Year       int                   `json:"year"`
	ReportCode model.ReportCode      `json:"reprt_code"`
	CFSStatus  string                `json:"cfs_status"`
	OFSStatus  string                `json:"ofs_status"`
	CFSCount   int                   `json:"cfs_count"`
	OFSCount   int                   `json:"ofs_count"`
	Comparison *consolidation.Result `json:"comparison,omitempty"`
}

// statusError is the status reported for a fetch that produced no response.
const statusError = "error"

// ConsolidationDiff fetches the consolidated and separate versions of a
// filing and compares the accounts of one statement.
func (s *Service) ConsolidationDiff(ctx context.Context, req DiffRequest) (*DiffResult, error) {
	corp, err := requireCorp(req.CorpCode)
	if err != nil {
		return nil, err
	}
	if err := requireYear(req.Year); err != nil {
		return nil, err
	}
	st, err := requireStatement(req.StatementType)
	if err != nil {
		return nil, err
	}
	year := req.Year
	if year == 0 {
		year = s.now().Year() - 1
	}
	id, log := s.begin("consolidation_diff", "corp_code", corp, "sj_div", st, "year", year)

	res := &DiffResult{
		RequestID:  id,
		CorpCode:   corp,
		Year:       year,
		ReportCode: reportOrAnnual(req.ReportCode),
	}

	fetch := func(scope model.Scope) (*dart.Response, dart.Request, string, int) {
		dreq := dart.Request{CorpCode: corp, Year: year, ReportCode: res.ReportCode, Scope: scope}
		resp, err := s.fetcher.Fetch(ctx, dreq)
		if err != nil {
			log.Warn("fetch failed", "fs_div", scope, "error", err)
			return nil, dreq, statusError, 0
		}
		return resp, dreq, resp.Status, len(resp.Items)
	}
	cfs, cfsReq, cfsStatus, cfsCount := fetch(model.ScopeConsolidated)
	ofs, ofsReq, ofsStatus, ofsCount := fetch(model.ScopeSeparate)
	res.CFSStatus, res.CFSCount = cfsStatus, cfsCount
	res.OFSStatus, res.OFSCount = ofsStatus, ofsCount

	if !cfs.OK() || !ofs.OK() {
		log.Info("comparison skipped", "cfs_status", cfsStatus, "ofs_status", ofsStatus)
		return res, nil
	}

	cons, consStats := statement.Build(cfs.LineItems(cfsReq), st)
	sep, sepStats := statement.Build(ofs.LineItems(ofsReq), st)
	cmp := consolidation.Diff(cons, sep, req.Limit, func(account string) bool {
		return consStats.IsMalformed(account) || sepStats.IsMalformed(account)
	})
	cmp.ConsolidatedCount = consStats.Filtered
	cmp.SeparateCount = sepStats.Filtered
	res.Comparison = &cmp

	log.Info("consolidation compared", "common_accounts", cmp.CommonAccounts, "different", len(cmp.Different))
	return res, nil
}
