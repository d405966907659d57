package tools

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

// FmtDecimal rounds v half away from zero to the given number of places, without trailing zeros
func FmtDecimal(v float64, places int32) string {
	return decimal.NewFromFloat(v).Round(places).String()
}

// FmtMegabytes renders a byte count in MB with two decimals
func FmtMegabytes(bytes int64) string {
	return decimal.NewFromInt(bytes).Div(decimal.NewFromInt(1 << 20)).StringFixed(2) + " MB"
}
