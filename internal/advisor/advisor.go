// Package advisor turns normalized statements into narrative analysis with a
// generative model.
package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/finlens-dev/finlens/internal/model"
	"github.com/finlens-dev/finlens/internal/ratio"
)

// ErrDisabled is returned when no model is configured.
var ErrDisabled = errors.New("ai analysis disabled")

// DisabledMessage is shown in place of an analysis when no API key is set.
const DisabledMessage = "AI 분석 기능이 비활성화되어 있습니다. .env 파일에 GEMINI_API_KEY를 설정해주세요."

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Kind selects the analysis prompt.
type Kind string

const (
	KindBasic         Kind = "basic"
	KindRatios        Kind = "ratios"
	KindTrends        Kind = "trends"
	KindInvestment    Kind = "investment"
	KindComprehensive Kind = "comprehensive"
)

// ParseKind maps s to a Kind. Anything unrecognized is a basic analysis.
func ParseKind(s string) Kind {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindRatios, KindTrends, KindInvestment, KindComprehensive:
		return k
	default:
		return KindBasic
	}
}

// Request is an analysis request. FinancialData is keyed by statement type
// ("BS", "IS", "CF", ...).
type Request struct {
	CorpName          string                    `json:"corp_name"`
	CorpCode          string                    `json:"corp_code"`
	Year              string                    `json:"year"`
	Scope             model.Scope               `json:"fs_div"`
	FinancialData     map[string]model.Snapshot `json:"financial_data"`
	MultiYearData     json.RawMessage           `json:"multi_year_data,omitempty"`
	ComprehensiveData json.RawMessage           `json:"comprehensive_data,omitempty"`
	Prompt            string                    `json:"prompt,omitempty"`
}

// Result is the analysis response.
type Result struct {
	Analysis     string      `json:"analysis"`
	AnalysisType Kind        `json:"analysis_type"`
	Success      bool        `json:"success"`
	AIEnabled    bool        `json:"ai_enabled"`
	CorpName     string      `json:"corp_name"`
	Year         string      `json:"year"`
	Scope        model.Scope `json:"fs_div"`
	ScopeName    string      `json:"fs_div_name,omitempty"`
}

// Advisor builds prompts and calls a Generator.
type Advisor struct {
	gen    Generator
	logger *slog.Logger
}

// New creates an Advisor. A nil generator yields a disabled advisor.
func New(gen Generator, logger *slog.Logger) *Advisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{gen: gen, logger: logger}
}

// Enabled reports whether a generator is configured.
func (a *Advisor) Enabled() bool { return a != nil && a.gen != nil }

// Analyze runs the analysis kind describes. A disabled advisor returns an
// unsuccessful result and no error; generation failures are errors.
func (a *Advisor) Analyze(ctx context.Context, kind Kind, req Request) (*Result, error) {
	if req.CorpName == "" {
		req.CorpName = "선택된 기업"
	}
	scope := model.ParseScope(string(req.Scope))
	res := &Result{
		AnalysisType: kind,
		CorpName:     req.CorpName,
		Year:         req.Year,
		Scope:        scope,
	}

	log := a.logger.With("analysis_type", kind, "corp_code", req.CorpCode, "year", req.Year, "fs_div", scope)
	text, err := a.run(ctx, kind, req)
	if errors.Is(err, ErrDisabled) {
		log.Info("ai analysis requested while disabled")
		res.Analysis = DisabledMessage
		return res, nil
	}
	if err != nil {
		log.Error("ai analysis failed", "error", err)
		return nil, fmt.Errorf("%s analysis: %w", kind, err)
	}

	res.Analysis = text
	res.Success = true
	res.AIEnabled = true
	res.ScopeName = scope.DisplayName()
	log.Info("ai analysis complete", "chars", len(text))
	return res, nil
}

func (a *Advisor) run(ctx context.Context, kind Kind, req Request) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	if req.Prompt != "" && kind != KindBasic {
		return a.gen.Generate(ctx, CustomPrompt(req))
	}

	switch kind {
	case KindRatios:
		return a.gen.Generate(ctx, RatiosPrompt(req))
	case KindTrends:
		return a.gen.Generate(ctx, TrendsPrompt(req))
	case KindInvestment:
		return a.gen.Generate(ctx, InvestmentPrompt(req))
	case KindComprehensive:
		basic, err := a.gen.Generate(ctx, BasicPrompt(req))
		if err != nil {
			return "", err
		}
		ratios, err := a.gen.Generate(ctx, RatiosPrompt(req))
		if err != nil {
			return "", err
		}
		return basic + "\n\n" + ratios, nil
	default:
		return a.gen.Generate(ctx, BasicPrompt(req))
	}
}

// statementOrder is the order statements appear in prompts.
var statementOrder = map[string]int{"BS": 0, "IS": 1, "CIS": 2, "CF": 3, "SCE": 4}

func sortedStatements(data map[string]model.Snapshot) []string {
	names := make([]string, 0, len(data))
	for name := range data {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := statementOrder[names[i]]
		oj, jok := statementOrder[names[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})
	return names
}

// computeRatios derives ratios from the BS, IS and CF entries of data.
func computeRatios(data map[string]model.Snapshot) ratio.Set {
	return ratio.Compute(data["BS"], data["IS"], data["CF"])
}
