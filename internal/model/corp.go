package model

// Corp is a row of the company-code reference table.
type Corp struct {
	Code       string `json:"corp_code"`
	Name       string `json:"corp_name"`
	StockCode  string `json:"stock_code"`
	ModifyDate string `json:"modify_date,omitempty"`
}

// Listed reports whether the company has a stock ticker.
func (c Corp) Listed() bool {
	for _, r := range c.StockCode {
		if r != ' ' {
			return true
		}
	}
	return false
}
