package restapi

import (
	"time"

	"github.com/betbot/custodygw/internal/domain"
)

// 托管平台的列表响应统一包一层 items
type listResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

type metadata struct {
	CustomProperties map[string]string `json:"customProperties,omitempty"`
}

type domainDTO struct {
	Data struct {
		ID    string `json:"id"`
		Alias string `json:"alias"`
	} `json:"data"`
}

func (d domainDTO) toDomain() domain.Domain {
	return domain.Domain{ID: d.Data.ID, Alias: d.Data.Alias}
}

type accountDTO struct {
	Data struct {
		ID       string   `json:"id"`
		DomainID string   `json:"domainId"`
		Alias    *string  `json:"alias"`
		LedgerID string   `json:"ledgerId"`
		Metadata metadata `json:"metadata"`
	} `json:"data"`
}

func (a accountDTO) toDomain() domain.Account {
	return domain.Account{
		DomainID:         a.Data.DomainID,
		ID:               a.Data.ID,
		Alias:            a.Data.Alias,
		LedgerID:         a.Data.LedgerID,
		CustomProperties: a.Data.Metadata.CustomProperties,
	}
}

type tickerDTO struct {
	Data struct {
		ID            string `json:"id"`
		LedgerID      string `json:"ledgerId"`
		Kind          string `json:"kind"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		Decimals      int32  `json:"decimals"`
		Lock          string `json:"lock"`
		LedgerDetails struct {
			Type string `json:"type"`
		} `json:"ledgerDetails"`
	} `json:"data"`
}

func (t tickerDTO) toDomain() domain.Ticker {
	return domain.Ticker{
		ID:         t.Data.ID,
		Name:       t.Data.Name,
		Symbol:     t.Data.Symbol,
		Decimals:   t.Data.Decimals,
		Kind:       domain.TickerKind(t.Data.Kind),
		LedgerID:   t.Data.LedgerID,
		LedgerType: t.Data.LedgerDetails.Type,
		Locked:     t.Data.Lock == "Locked",
	}
}

type statusDTO struct {
	Status string `json:"status"`
}

type referenceDTO struct {
	ID       string `json:"id"`
	DomainID string `json:"domainId"`
}

type relatedAccountDTO struct {
	AccountID string `json:"accountId"`
	DomainID  string `json:"domainId"`
	Sender    bool   `json:"sender"`
}

type transactionDTO struct {
	ID             string              `json:"id"`
	LedgerID       string              `json:"ledgerId"`
	Processing     *statusDTO          `json:"processing"`
	LedgerData     *statusDTO          `json:"ledgerData"`
	RegisteredAt   time.Time           `json:"registeredAt"`
	OrderReference *referenceDTO       `json:"orderReference"`
	Related        []relatedAccountDTO `json:"relatedAccounts"`
}

func (t transactionDTO) toDomain() domain.Transaction {
	tx := domain.Transaction{ID: t.ID, RegisteredAt: t.RegisteredAt}
	if t.LedgerData != nil && t.LedgerData.Status != "" {
		tx.LedgerStatus = &t.LedgerData.Status
	}
	if t.Processing != nil && t.Processing.Status != "" {
		tx.ProcessingStatus = &t.Processing.Status
	}
	if t.OrderReference != nil && t.OrderReference.ID != "" {
		tx.OrderReference = &t.OrderReference.ID
	}
	for _, r := range t.Related {
		tx.RelatedAccounts = append(tx.RelatedAccounts, domain.RelatedAccount{ID: r.AccountID, Sender: r.Sender})
	}
	return tx
}

type orderDTO struct {
	Data struct {
		ID       string   `json:"id"`
		DomainID string   `json:"domainId"`
		Metadata metadata `json:"metadata"`
	} `json:"data"`
}

func (o orderDTO) toDomain() domain.Order {
	return domain.NewOrder(o.Data.ID, o.Data.DomainID, o.Data.Metadata.CustomProperties)
}

type addressDetailsDTO struct {
	Address string `json:"address"`
}

type partyDTO struct {
	Type           string             `json:"type"`
	DomainID       string             `json:"domainId"`
	AccountID      string             `json:"accountId"`
	Address        string             `json:"address"`
	AddressDetails *addressDetailsDTO `json:"addressDetails"`
}

func (p partyDTO) toDomain() domain.TransferParty {
	party := domain.TransferParty{
		Type:      domain.TransferPartyType(p.Type),
		DomainID:  p.DomainID,
		AccountID: p.AccountID,
		Address:   p.Address,
	}
	if party.Address == "" && p.AddressDetails != nil {
		party.Address = p.AddressDetails.Address
	}
	return party
}

type transferDTO struct {
	ID            string     `json:"id"`
	DomainID      string     `json:"domainId"`
	TransactionID *string    `json:"transactionId"`
	Kind          string     `json:"kind"`
	Value         string     `json:"value"`
	TickerID      string     `json:"tickerId"`
	Senders       []partyDTO `json:"senders"`
	Recipient     *partyDTO  `json:"recipient"`
	RegisteredAt  time.Time  `json:"registeredAt"`
}

func (t transferDTO) toDomain() domain.Transfer {
	tr := domain.Transfer{
		ID:            t.ID,
		DomainID:      t.DomainID,
		TransactionID: t.TransactionID,
		Kind:          t.Kind,
		Value:         t.Value,
		TickerID:      t.TickerID,
		RegisteredAt:  t.RegisteredAt,
	}
	for _, s := range t.Senders {
		tr.Senders = append(tr.Senders, s.toDomain())
	}
	if t.Recipient != nil {
		r := t.Recipient.toDomain()
		tr.Recipient = &r
	}
	return tr
}

type addressDTO struct {
	ID               string `json:"id"`
	Address          string `json:"address"`
	AccountReference struct {
		DomainID  string `json:"domainId"`
		AccountID string `json:"accountId"`
	} `json:"accountReference"`
}

func (a addressDTO) toDomain() domain.Address {
	return domain.Address{
		ID:        a.ID,
		DomainID:  a.AccountReference.DomainID,
		AccountID: a.AccountReference.AccountID,
		Address:   a.Address,
	}
}

type balanceDTO struct {
	TickerID          string `json:"tickerId"`
	TotalAmount       string `json:"totalAmount"`
	ReservedAmount    string `json:"reservedAmount"`
	QuarantinedAmount string `json:"quarantinedAmount"`
}

func (b balanceDTO) toDomain() domain.Balance {
	return domain.Balance{
		TickerID:          b.TickerID,
		TotalAmount:       b.TotalAmount,
		ReservedAmount:    b.ReservedAmount,
		QuarantinedAmount: b.QuarantinedAmount,
	}
}

func mapItems[T any, D any](items []T, fn func(T) D) []D {
	out := make([]D, 0, len(items))
	for _, it := range items {
		out = append(out, fn(it))
	}
	return out
}
