package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AmountWithValue 金额 + 资产 + 估值
type AmountWithValue struct {
	Amount string `json:"amount"`
	Ticker Ticker `json:"ticker"`
	Price  Price  `json:"price"`
}

// NewAmountWithValue 按买价估值
func NewAmountWithValue(amount string, ticker Ticker) AmountWithValue {
	return AmountWithValue{
		Amount: amount,
		Ticker: ticker,
		Price:  EstimatePrice(ScaleAmount(amount, ticker.Decimals), ticker.BidPrice),
	}
}

// TransactionData 交易列表单行
type TransactionData struct {
	ID             string    `json:"id"`
	Date           time.Time `json:"date"`
	Amount         string    `json:"amount"`
	Ticker         Ticker    `json:"ticker"`
	Type           string    `json:"type"`
	Status         string    `json:"status"`
	Price          Price     `json:"price"`
	RelatedAccount string    `json:"relatedAccount"`
}

// TransferData 交易明细中的单腿
type TransferData struct {
	Amount  string `json:"amount"`
	Type    string `json:"type"`
	Address string `json:"address"`
}

// TransactionTransferData 单笔交易明细
type TransactionTransferData struct {
	Status    string          `json:"status"`
	Date      time.Time       `json:"date"`
	Total     AmountWithValue `json:"total"`
	Transfers []TransferData  `json:"transfers"`
}

// BalanceData 单资产余额视图
type BalanceData struct {
	Amount string `json:"amount"`
	Ticker Ticker `json:"ticker"`
	Price  Price  `json:"price"`
}

// AccountBalance 合并余额
type AccountBalance struct {
	Balances []BalanceData `json:"balances"`
}

// AccountData 档案中的单个账户
type AccountData struct {
	AccountIdentifier AccountIdentifier `json:"accountIdentifier"`
	Tickers           []string          `json:"tickers"`
	Addresses         []string          `json:"addresses"`
	Alias             *string           `json:"alias,omitempty"`
}

// ProfileData 档案视图
type ProfileData struct {
	ProfileID string        `json:"profileId"`
	Accounts  []AccountData `json:"accounts"`
}

// TransactionListParameter 交易列表查询
type TransactionListParameter struct {
	DomainID  string
	AccountID string
	TickerID  *string
}

// TransactionParameter 单笔交易查询
type TransactionParameter struct {
	DomainID      string
	AccountID     string
	TransactionID string
}

// BalanceParameter 单资产余额查询
type BalanceParameter struct {
	DomainID  string
	AccountID string
	TickerID  string
}

// Sum 汇总 decimal（空切片返回 0）
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}
	return total
}
