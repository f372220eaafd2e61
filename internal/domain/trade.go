package domain

import "time"

// TradeType 交易语义标签，只用于请求组装
type TradeType string

const (
	TradeTypeSell     TradeType = "Sell"
	TradeTypeBuy      TradeType = "Buy"
	TradeTypeTransfer TradeType = "Transfer"
	TradeTypeReceive  TradeType = "Receive"
)

// 交易方向（列表视图）
const (
	DirectionReceive  = "Receive"
	DirectionOutgoing = "Outgoing"
)

// PayloadType 下单载荷类型
type PayloadType string

const (
	PayloadCreateTransactionOrder PayloadType = "v0_CreateTransactionOrder"
	PayloadCreateTransferOrder    PayloadType = "v0_CreateTransferOrder"
	PayloadUnsupported            PayloadType = ""
)

// PayloadTypeFor 合约代币走转账订单，原生资产走交易订单，其他类型不支持
func PayloadTypeFor(kind TickerKind) PayloadType {
	switch kind {
	case TickerKindContract:
		return PayloadCreateTransferOrder
	case TickerKindNative:
		return PayloadCreateTransactionOrder
	default:
		return PayloadUnsupported
	}
}

// TransferParameter 转账意图
type TransferParameter struct {
	Amount    string            `json:"amount"`
	Ticker    string            `json:"ticker"`
	MaxFee    string            `json:"maxFee"`
	Sender    AccountIdentifier `json:"sender"`
	Recipient AccountIdentifier `json:"recipient"`
}

// TradeData 单腿交易数据
type TradeData struct {
	DomainID string            `json:"domainId"`
	Trade    TransferParameter `json:"trade"`
	Type     TradeType         `json:"type"`
}

// OrderRequest 提交给托管平台的下单请求
type OrderRequest struct {
	ID             string      `json:"id"`
	PayloadType    PayloadType `json:"payloadType"`
	TargetDomainID string      `json:"targetDomainId"`
	Data           TradeData   `json:"data"`
	LedgerType     string      `json:"ledgerType"`
}

// RequestResult 上游受理结果
type RequestResult struct {
	Result   bool   `json:"result"`
	Message  string `json:"message,omitempty"`
	Payload  any    `json:"payload,omitempty"`
	Estimate *Price `json:"estimate,omitempty"`
}

// TradeLegRole 腿在一次操作中的角色
type TradeLegRole string

const (
	LegRoleSpend   TradeLegRole = "spend"
	LegRoleReceive TradeLegRole = "receive"
	LegRoleSend    TradeLegRole = "send"
)

// TradeLegRecord 单腿提交结果（本地流水）
type TradeLegRecord struct {
	RequestID string       `json:"requestId"`
	Operation string       `json:"operation"`
	Role      TradeLegRole `json:"role"`
	Leg       TradeType    `json:"leg"`
	TickerID  string       `json:"tickerId"`
	Amount    string       `json:"amount"`
	Sender    string       `json:"sender"`
	Recipient string       `json:"recipient"`
	Accepted  bool         `json:"accepted"`
	Message   string       `json:"message,omitempty"`
	Error     string       `json:"error,omitempty"`
	Estimate  *Price       `json:"estimate,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}
