package domain

// Domain 托管平台的管理分区
type Domain struct {
	ID    string `json:"id"`
	Alias string `json:"alias,omitempty"`
}

// AccountIdentifier 账户复合标识（domainId + accountId）
type AccountIdentifier struct {
	DomainID  string `json:"domainId"`
	AccountID string `json:"accountId"`
}

// Account 账户（只解析，不持久化）
type Account struct {
	DomainID         string            `json:"domainId"`
	ID               string            `json:"id"`
	Alias            *string           `json:"alias,omitempty"`
	LedgerID         string            `json:"ledgerId,omitempty"`
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

// Identifier 返回账户的复合标识
func (a Account) Identifier() AccountIdentifier {
	return AccountIdentifier{DomainID: a.DomainID, AccountID: a.ID}
}

// HasAlias 别名精确匹配
func (a Account) HasAlias(alias string) bool {
	return a.Alias != nil && *a.Alias == alias
}

// Address 账户地址
type Address struct {
	ID        string `json:"id"`
	DomainID  string `json:"domainId"`
	AccountID string `json:"accountId"`
	Address   string `json:"address"`
}

// Balance 账户单资产余额（原始整数金额）
type Balance struct {
	TickerID          string `json:"tickerId"`
	TotalAmount       string `json:"totalAmount"`
	ReservedAmount    string `json:"reservedAmount"`
	QuarantinedAmount string `json:"quarantinedAmount"`
}
