package taxonomy

import "github.com/finlens-dev/finlens/internal/model"

// Default returns the built-in taxonomy, following the order accounts are
// presented in Korean statutory filings.
func Default() *Taxonomy {
	b := NewBuilder()
	add := func(st model.StatementType, category string, accounts ...string) {
		for _, a := range accounts {
			b.Add(st, category, a)
		}
	}

	add(model.StatementBS, "자산",
		"자산총계", "자산총액",
		"유동자산", "유동자산계",
		"현금및현금성자산", "현금및현금성자산계",
		"단기금융상품", "단기금융상품계",
		"당기손익-공정가치측정금융자산",
		"기타포괄손익-공정가치측정금융자산",
		"매출채권", "매출채권및기타채권", "매출채권계",
		"재고자산", "재고자산계",
		"기타유동자산",
		"매각예정자산",
		"비유동자산", "비유동자산계",
		"장기금융상품",
		"관계기업투자", "관계기업및공동기업투자",
		"유형자산", "유형자산계",
		"사용권자산",
		"투자부동산",
		"무형자산", "무형자산계",
		"이연법인세자산",
		"기타비유동자산",
	)
	add(model.StatementBS, "부채",
		"부채총계", "부채총액",
		"유동부채", "유동부채계",
		"매입채무", "매입채무및기타채무",
		"단기차입금",
		"유동성장기부채",
		"당기법인세부채",
		"기타유동부채",
		"매각예정부채",
		"비유동부채", "비유동부채계",
		"장기차입금",
		"리스부채",
		"장기매입채무및기타채무",
		"이연법인세부채",
		"퇴직급여충당부채",
		"기타비유동부채",
	)
	add(model.StatementBS, "자본",
		"자본총계", "자본총액",
		"지배기업소유주지분",
		"자본금",
		"자본잉여금",
		"기타포괄손익누계액",
		"이익잉여금",
		"비지배지분",
	)

	add(model.StatementIS, "매출",
		"매출액", "수익(매출액)",
		"매출원가",
		"매출총이익", "매출총손익",
	)
	add(model.StatementIS, "영업손익",
		"판매비와관리비",
		"영업이익", "영업이익(손실)",
	)
	add(model.StatementIS, "영업외손익",
		"금융수익",
		"금융비용",
		"기타수익",
		"기타비용",
		"종속기업,관계기업및공동기업투자손익",
		"법인세비용차감전순이익", "법인세비용차감전순손익",
	)
	add(model.StatementIS, "법인세및순손익",
		"법인세비용",
		"당기순이익", "당기순이익(손실)",
		"지배기업소유주지분",
		"비지배지분",
	)
	add(model.StatementIS, "포괄손익",
		"기타포괄손익",
		"총포괄손익",
	)

	add(model.StatementCF, "영업활동",
		"영업활동현금흐름",
		"당기순이익",
		"조정항목",
		"영업자산부채의변동",
	)
	add(model.StatementCF, "투자활동",
		"투자활동현금흐름",
		"단기금융상품의순증감",
		"장기금융상품의순증감",
		"유형자산의취득",
		"유형자산의처분",
	)
	add(model.StatementCF, "재무활동",
		"재무활동현금흐름",
		"단기차입금의순증감",
		"장기차입금의차입",
		"장기차입금의상환",
		"배당금지급",
	)
	add(model.StatementCF, "현금및현금성자산",
		"현금및현금성자산의순증감",
		"기초현금및현금성자산",
		"기말현금및현금성자산",
	)

	add(model.StatementSCE, "자본변동",
		"기초자본",
		"당기순이익",
		"기타포괄손익",
		"총포괄손익",
		"자본거래",
		"기말자본",
	)

	return b.Build()
}
