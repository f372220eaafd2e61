package domain

import "time"

// TransferKindTransfer 只有该类型计入结算金额，手续费等其他类型不计
const TransferKindTransfer = "Transfer"

// StatusUnknown 状态/地址缺失时的占位值
const StatusUnknown = "Unknown"

// TransferPartyType 转账参与方类型
type TransferPartyType string

const (
	TransferPartyAccount TransferPartyType = "Account"
	TransferPartyAddress TransferPartyType = "Address"
)

// TransferParty 转账参与方
// Address 类型直接携带地址；Account 类型可能带链上地址，也可能只有 accountId
type TransferParty struct {
	Type      TransferPartyType `json:"type"`
	DomainID  string            `json:"domainId,omitempty"`
	AccountID string            `json:"accountId,omitempty"`
	Address   string            `json:"address,omitempty"`
}

// IsAccount 是否指向指定账户
func (p TransferParty) IsAccount(accountID string) bool {
	return p.Type == TransferPartyAccount && p.AccountID == accountID
}

// Transfer 单笔价值转移
type Transfer struct {
	ID            string          `json:"id"`
	DomainID      string          `json:"domainId"`
	TransactionID *string         `json:"transactionId,omitempty"`
	Kind          string          `json:"kind"`
	Value         string          `json:"value"`
	TickerID      string          `json:"tickerId"`
	Senders       []TransferParty `json:"senders"`
	Recipient     *TransferParty  `json:"recipient,omitempty"`
	RegisteredAt  time.Time       `json:"registeredAt"`
}

// IsSettlement 是否计入结算金额
func (t Transfer) IsSettlement() bool {
	return t.Kind == TransferKindTransfer
}

// TxID 返回交易 ID（缺失时为空串）
func (t Transfer) TxID() string {
	if t.TransactionID == nil {
		return ""
	}
	return *t.TransactionID
}

// SentBy 发送方中是否包含指定账户
func (t Transfer) SentBy(accountID string) bool {
	for _, s := range t.Senders {
		if s.IsAccount(accountID) {
			return true
		}
	}
	return false
}

// RelatedAccount 交易关联账户条目
type RelatedAccount struct {
	ID     string `json:"id"`
	Sender bool   `json:"sender"`
}

// Transaction 结算单元
type Transaction struct {
	ID               string           `json:"id"`
	LedgerStatus     *string          `json:"ledgerStatus,omitempty"`
	ProcessingStatus *string          `json:"processingStatus,omitempty"`
	RegisteredAt     time.Time        `json:"registeredAt"`
	OrderReference   *string          `json:"orderReference,omitempty"`
	RelatedAccounts  []RelatedAccount `json:"relatedAccounts,omitempty"`
}

// Status 账本状态 > 处理状态 > Unknown
func (t *Transaction) Status() string {
	if t == nil {
		return StatusUnknown
	}
	if t.LedgerStatus != nil && *t.LedgerStatus != "" {
		return *t.LedgerStatus
	}
	if t.ProcessingStatus != nil && *t.ProcessingStatus != "" {
		return *t.ProcessingStatus
	}
	return StatusUnknown
}

// OrderID 关联订单 ID（缺失时为空串）
func (t *Transaction) OrderID() string {
	if t == nil || t.OrderReference == nil {
		return ""
	}
	return *t.OrderReference
}

// SentByAccount 关联账户条目中该账户是否出现过 sender 标记
func (t *Transaction) SentByAccount(accountID string) bool {
	if t == nil {
		return false
	}
	for _, ra := range t.RelatedAccounts {
		if ra.ID == accountID && ra.Sender {
			return true
		}
	}
	return false
}
