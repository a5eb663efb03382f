package advisor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/finlens-dev/finlens/internal/amount"
)

const (
	basicAccounts  = 10
	customAccounts = 20
)

// keyAccounts renders the first n accounts of each statement with Korean units.
func keyAccounts(req Request, n int) string {
	var b strings.Builder
	for _, name := range sortedStatements(req.FinancialData) {
		snap := req.FinancialData[name]
		if snap.Len() == 0 {
			continue
		}
		fmt.Fprintf(&b, "[%s]\n", name)
		for _, e := range snap.Head(n).Entries() {
			fmt.Fprintf(&b, "- %s: %s\n", e.Account, amount.Format(e.Amount))
		}
	}
	return b.String()
}

// indentJSON pretty-prints raw, falling back to the financial data when raw
// is empty.
func indentJSON(raw json.RawMessage, fallback any) string {
	if len(bytes.TrimSpace(raw)) == 0 || string(bytes.TrimSpace(raw)) == "null" {
		data, err := json.MarshalIndent(fallback, "", "  ")
		if err != nil {
			return "{}"
		}
		return string(data)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}

// BasicPrompt asks for an overall reading of the statements.
func BasicPrompt(req Request) string {
	return fmt.Sprintf(`다음은 %s의 %s년 재무제표 데이터입니다.
이 데이터를 기반으로 종합적인 재무분석을 해주세요.

재무데이터:
%s
다음 항목들을 포함하여 분석해주세요:
1. 재무상태 분석 (자산, 부채, 자본 구조)
2. 수익성 분석
3. 안정성 분석
4. 주요 재무지표의 의미
5. 투자자 관점에서의 종합 평가

분석 결과를 한국어로 쉽고 명확하게 설명해주세요.
전문용어는 간단히 설명을 덧붙여주세요.
`, req.CorpName, req.Year, keyAccounts(req, basicAccounts))
}

// RatiosPrompt asks for an interpretation of the computed ratios.
func RatiosPrompt(req Request) string {
	ratios, err := json.MarshalIndent(computeRatios(req.FinancialData), "", "  ")
	if err != nil {
		ratios = []byte("{}")
	}
	return fmt.Sprintf(`%s의 %s년 재무비율 분석을 해주세요.

계산된 주요 재무비율:
%s

다음 관점에서 분석해주세요:
1. 유동성 비율 (유동비율, 당좌비율 등)
2. 수익성 비율 (ROE, ROA, 영업이익률 등)
3. 안정성 비율 (부채비율, 자기자본비율 등)
4. 활동성 비율 (총자산회전율 등)
5. 업계 평균과의 비교 관점
6. 투자자 관점에서의 평가

한국어로 상세하고 실용적인 분석을 제공해주세요.
`, req.CorpName, req.Year, ratios)
}

// TrendsPrompt asks for a multi-year trend reading.
func TrendsPrompt(req Request) string {
	return fmt.Sprintf(`%s의 다년도 재무 추세 분석을 해주세요.

연도별 데이터:
%s

다음 관점에서 분석해주세요:
1. 매출 성장 추세
2. 수익성 변화 패턴
3. 자산 규모 변화
4. 부채 수준 변화
5. 현금흐름 패턴
6. 향후 전망 및 주의사항

숫자의 증감률과 함께 그 의미를 해석해주세요.
`, req.CorpName, indentJSON(req.MultiYearData, req.FinancialData))
}

// InvestmentPrompt asks for an investor-oriented evaluation.
func InvestmentPrompt(req Request) string {
	return fmt.Sprintf(`%s의 %s년 재무제표를 투자자 관점에서 종합 분석해주세요.

종합 재무 데이터:
%s

다음 관점에서 분석해주세요:
1. 투자 매력도 평가 (5점 만점)
2. 강점과 약점 분석
3. 주요 리스크 요인
4. 성장 가능성 평가
5. 배당 정책 및 주주 환원
6. 경쟁사 대비 포지션
7. 투자 권고 의견 (매수/보유/매도)

실용적이고 객관적인 투자 분석을 제공해주세요.
`, req.CorpName, req.Year, indentJSON(req.ComprehensiveData, req.FinancialData))
}

// CustomPrompt prefixes the caller's prompt to a summary of the balance sheet
// and income statement.
func CustomPrompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s년) 재무 데이터:\n\n재무상태표:\n", req.CorpName, req.Year)
	for _, e := range req.FinancialData["BS"].Head(customAccounts).Entries() {
		fmt.Fprintf(&b, "- %s: %s원\n", e.Account, amount.Group(e.Amount))
	}
	b.WriteString("\n포괄손익계산서:\n")
	for _, e := range req.FinancialData["IS"].Head(customAccounts).Entries() {
		fmt.Fprintf(&b, "- %s: %s원\n", e.Account, amount.Group(e.Amount))
	}
	return fmt.Sprintf("%s\n\n%s\n\n위 데이터를 바탕으로 분석해주세요.", req.Prompt, b.String())
}
