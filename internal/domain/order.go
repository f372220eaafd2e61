package domain

import (
	"encoding/json"
	"strings"
)

// TransactionPropertiesKey 订单自定义属性中交易定价/类型覆盖字段
const TransactionPropertiesKey = "transactionProperties"

// TransactionProperties 下单时写入的估值与交易类型
type TransactionProperties struct {
	Value    string `json:"value"`
	Change   string `json:"change"`
	Currency string `json:"currency"`
	Type     string `json:"type,omitempty"`
}

// Price 覆盖值中的价格，数值解析失败按 0
func (p TransactionProperties) Price() Price {
	return Price{
		Value:    ParseDecimalOrZero(p.Value),
		Change:   ParseDecimalOrZero(p.Change),
		Currency: p.Currency,
	}
}

// PricingOverride 下单时记录的估值，value/change/currency 三者齐全才成立
type PricingOverride struct {
	Value    string
	Change   string
	Currency string
}

// Price 数值解析失败按 0
func (p PricingOverride) Price() Price {
	return Price{
		Value:    ParseDecimalOrZero(p.Value),
		Change:   ParseDecimalOrZero(p.Change),
		Currency: p.Currency,
	}
}

// Order 交易意图
type Order struct {
	ID               string            `json:"id"`
	DomainID         string            `json:"domainId"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`

	// 入库时从 CustomProperties 解码一次；缺失或 JSON 非法时均为空
	Pricing      *PricingOverride `json:"-"`
	TypeOverride string           `json:"-"`
}

// NewOrder 构造订单并解码自定义属性
func NewOrder(id, domainID string, customProperties map[string]string) Order {
	pricing, typ := DecodeOverrides(customProperties)
	return Order{
		ID:               id,
		DomainID:         domainID,
		CustomProperties: customProperties,
		Pricing:          pricing,
		TypeOverride:     typ,
	}
}

// DecodeOverrides 拆出定价覆盖和类型覆盖，两者相互独立
func DecodeOverrides(props map[string]string) (*PricingOverride, string) {
	raw, ok := props[TransactionPropertiesKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil, ""
	}
	var fields struct {
		Value    *string `json:"value"`
		Change   *string `json:"change"`
		Currency *string `json:"currency"`
		Type     string  `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, ""
	}
	var pricing *PricingOverride
	if fields.Value != nil && fields.Change != nil && fields.Currency != nil {
		pricing = &PricingOverride{Value: *fields.Value, Change: *fields.Change, Currency: *fields.Currency}
	}
	return pricing, strings.TrimSpace(fields.Type)
}

// DecodeTransactionProperties 解码 transactionProperties，失败视为缺失
func DecodeTransactionProperties(props map[string]string) *TransactionProperties {
	raw, ok := props[TransactionPropertiesKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return nil
	}
	var tp TransactionProperties
	if err := json.Unmarshal([]byte(raw), &tp); err != nil {
		return nil
	}
	return &tp
}

// Encode 编码为自定义属性值
func (p TransactionProperties) Encode() string {
	b, _ := json.Marshal(p)
	return string(b)
}
