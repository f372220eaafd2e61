package restapi

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/ports"
	sdkhttp "github.com/betbot/custodygw/pkg/sdk/http"
)

var _ ports.RequestSubmitter = (*IntentSubmitter)(nil)

const (
	intentsEndpoint       = "/v1/intents"
	intentsDryRunEndpoint = "/v1/intents/dry-run"

	intentTypePropose = "Propose"
	intentLifetime    = time.Hour
)

type authorDTO struct {
	ID       string `json:"id"`
	DomainID string `json:"domainId"`
}

type accountRefDTO struct {
	DomainID  string `json:"domainId"`
	AccountID string `json:"accountId"`
}

type orderParametersDTO struct {
	Type        string        `json:"type"`
	TickerID    string        `json:"tickerId,omitempty"`
	Amount      string        `json:"amount"`
	MaximumFee  string        `json:"maximumFee,omitempty"`
	Destination accountRefDTO `json:"destination"`
}

type orderPayloadDTO struct {
	Type             domain.PayloadType `json:"type"`
	ID               string             `json:"id"`
	AccountID        string             `json:"accountId"`
	Parameters       orderParametersDTO `json:"parameters"`
	CustomProperties map[string]string  `json:"customProperties"`
}

type intentRequestDTO struct {
	Author           authorDTO         `json:"author"`
	ExpiryAt         time.Time         `json:"expiryAt"`
	TargetDomainID   string            `json:"targetDomainId"`
	ID               string            `json:"id"`
	Payload          orderPayloadDTO   `json:"payload"`
	Type             string            `json:"type"`
	CustomProperties map[string]string `json:"customProperties"`
}

type signedIntentDTO struct {
	Request   intentRequestDTO `json:"request"`
	Signature string           `json:"signature"`
}

type intentResponseDTO struct {
	RequestID string `json:"requestId"`
	IntentID  string `json:"intentId"`
	Message   string `json:"message"`
}

type dryRunResponseDTO struct {
	Result struct {
		Type   string `json:"type"`
		Reason string `json:"reason"`
	} `json:"result"`
	Estimate any `json:"estimate,omitempty"`
}

// IntentSubmitter 以签名 intent 的形式向托管平台提交下单请求
type IntentSubmitter struct {
	c        *Client
	signer   Signer
	authorID string
	domainID string
	now      func() time.Time
}

// NewIntentSubmitter domainID 为作者所在 domain
func NewIntentSubmitter(c *Client, signer Signer, authorID, domainID string) *IntentSubmitter {
	return &IntentSubmitter{c: c, signer: signer, authorID: authorID, domainID: domainID, now: time.Now}
}

func (s *IntentSubmitter) buildRequest(req domain.OrderRequest, metadata map[string]string) intentRequestDTO {
	props := map[string]string{}
	if len(metadata) > 0 {
		props[domain.TransactionPropertiesKey] = domain.TransactionProperties{
			Value:    metadata["value"],
			Change:   metadata["change"],
			Currency: metadata["currency"],
			Type:     metadata["type"],
		}.Encode()
	}

	params := orderParametersDTO{
		Type:       req.LedgerType,
		Amount:     req.Data.Trade.Amount,
		MaximumFee: req.Data.Trade.MaxFee,
		Destination: accountRefDTO{
			DomainID:  req.Data.Trade.Recipient.DomainID,
			AccountID: req.Data.Trade.Recipient.AccountID,
		},
	}
	if req.PayloadType == domain.PayloadCreateTransferOrder {
		params.TickerID = req.Data.Trade.Ticker
	}

	return intentRequestDTO{
		Author:         authorDTO{ID: s.authorID, DomainID: s.domainID},
		ExpiryAt:       s.now().UTC().Add(intentLifetime).Truncate(time.Second),
		TargetDomainID: req.TargetDomainID,
		ID:             req.ID,
		Type:           intentTypePropose,
		Payload: orderPayloadDTO{
			Type:             req.PayloadType,
			ID:               req.ID,
			AccountID:        req.Data.Trade.Sender.AccountID,
			Parameters:       params,
			CustomProperties: props,
		},
		CustomProperties: map[string]string{},
	}
}

// Create 签名并提交；不支持的资产类型或未配置签名密钥时直接返回 Result=false，不调用上游
func (s *IntentSubmitter) Create(ctx context.Context, req domain.OrderRequest, metadata map[string]string) (domain.RequestResult, error) {
	if req.PayloadType == domain.PayloadUnsupported {
		return domain.RequestResult{Result: false, Message: "unsupported ticker kind"}, nil
	}
	if s.signer == nil {
		return domain.RequestResult{Result: false, Message: "signing key not configured"}, nil
	}
	body := s.buildRequest(req, metadata)
	sig, err := s.signer.Sign(body)
	if err != nil {
		return domain.RequestResult{}, errors.Wrap(err, "sign intent")
	}

	if err := s.c.throttle(ctx, intentsEndpoint); err != nil {
		return domain.RequestResult{}, err
	}
	var out intentResponseDTO
	if err := s.c.http.Post(ctx, intentsEndpoint, signedIntentDTO{Request: body, Signature: sig}, &out); err != nil {
		// 4xx 是上游对请求本身的拒绝，作为结果返回；传输错误和 5xx 作为错误
		if code := sdkhttp.StatusCode(err); code >= 400 && code < 500 {
			restLog.WithError(err).Warnf("intent rejected: id=%s status=%d", req.ID, code)
			return domain.RequestResult{Result: false, Message: err.Error()}, nil
		}
		return domain.RequestResult{}, classify(err, intentsEndpoint)
	}
	restLog.Infof("intent accepted: id=%s requestId=%s", req.ID, out.RequestID)
	return domain.RequestResult{Result: true, Message: out.Message, Payload: out}, nil
}

// Validate 上游预演，不创建订单
func (s *IntentSubmitter) Validate(ctx context.Context, req domain.OrderRequest) (domain.RequestResult, error) {
	if req.PayloadType == domain.PayloadUnsupported {
		return domain.RequestResult{Result: false, Message: "unsupported ticker kind"}, nil
	}
	body := s.buildRequest(req, nil)

	var out dryRunResponseDTO
	if err := s.c.post(ctx, intentsDryRunEndpoint, body, &out); err != nil {
		return domain.RequestResult{}, err
	}
	return domain.RequestResult{
		Result:  strings.EqualFold(out.Result.Type, "Success"),
		Message: out.Result.Reason,
		Payload: out.Estimate,
	}, nil
}
