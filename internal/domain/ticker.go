package domain

import "github.com/shopspring/decimal"

// TickerKind 资产类型
type TickerKind string

const (
	TickerKindNative   TickerKind = "Native"   // 链原生资产
	TickerKindContract TickerKind = "Contract" // 合约代币
)

// Price 价格（数值 + 涨跌 + 币种）
type Price struct {
	Value    decimal.Decimal `json:"value"`
	Change   decimal.Decimal `json:"change"`
	Currency string          `json:"currency,omitempty"`
}

// Ticker 资产元数据快照，按请求获取，不做跨请求缓存
type Ticker struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Symbol     string     `json:"symbol"`
	Decimals   int32      `json:"decimals"`
	Kind       TickerKind `json:"kind"`
	LedgerID   string     `json:"ledgerId"`
	LedgerType string     `json:"type"`
	Locked     bool       `json:"locked"`
	BidPrice   Price      `json:"bidPrice"`
}

// IsNative 是否原生资产
func (t Ticker) IsNative() bool {
	return t.Kind == TickerKindNative
}

// IsContract 是否合约代币
func (t Ticker) IsContract() bool {
	return t.Kind == TickerKindContract
}
