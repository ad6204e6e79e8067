package models

// FinancialStatement is one fiscal year. Net profit may be negative.
type FinancialStatement struct {
	Year             int   `json:"year"`
	Revenue          int64 `json:"revenue"`
	OperatingProfit  int64 `json:"operating_profit"`
	NetProfit        int64 `json:"net_profit"`
	TotalAssets      int64 `json:"total_assets"`
	TotalLiabilities int64 `json:"total_liabilities"`
	Equity           int64 `json:"equity"`
}

// StatementFromFields normalizes one decoded statement object.
func StatementFromFields(fields map[string]interface{}) FinancialStatement {
	return FinancialStatement{
		Year:             int(ParseAmount(fields["year"])),
		Revenue:          ParseAmount(fields["revenue"]),
		OperatingProfit:  ParseAmount(fields["operating_profit"]),
		NetProfit:        ParseAmount(fields["net_profit"]),
		TotalAssets:      ParseAmount(fields["total_assets"]),
		TotalLiabilities: ParseAmount(fields["total_liabilities"]),
		Equity:           ParseAmount(fields["equity"]),
	}
}
