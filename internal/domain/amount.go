package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// ParseRawAmount 解析链上原始整数金额字符串
// 非数字（或带小数部分）时返回 (0, false)，调用方按 0 处理，不中断聚合
func ParseRawAmount(raw string) (decimal.Decimal, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(raw)
	if err != nil || !d.IsInteger() {
		return decimal.Zero, false
	}
	return d, true
}

// ScaleAmount 原始金额 / 10^decimals
func ScaleAmount(raw string, decimals int32) decimal.Decimal {
	d, ok := ParseRawAmount(raw)
	if !ok {
		return decimal.Zero
	}
	return d.Shift(-decimals)
}

// ParseDecimalOrZero 解析任意十进制字符串，失败返回 0
func ParseDecimalOrZero(s string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// EstimatePrice 按买价估算 scaled 金额的价值与涨跌
func EstimatePrice(scaled decimal.Decimal, bid Price) Price {
	return Price{
		Value:    scaled.Mul(bid.Value),
		Change:   scaled.Mul(bid.Change),
		Currency: bid.Currency,
	}
}
