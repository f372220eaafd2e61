package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/metrics"
	"github.com/betbot/custodygw/internal/ports"
)

var tradeLog = logrus.WithField("component", "trade_service")

// LegRecorder 记录每一腿的提交结果（可选）
type LegRecorder interface {
	RecordLeg(ctx context.Context, rec domain.TradeLegRecord) error
}

// TradeOptions 交易编排配置
type TradeOptions struct {
	// GatePreValidation 为 true 时资产预校验失败直接拒绝该腿；为 false 时只记录告警并继续提交
	GatePreValidation bool
}

// TradeService 买/卖/转账/预校验编排
type TradeService struct {
	tickers  *TickerService
	requests ports.RequestSubmitter
	recorder LegRecorder
	opts     TradeOptions

	newID func() string
	now   func() time.Time
}

// NewTradeService recorder 可为 nil
func NewTradeService(tickers *TickerService, requests ports.RequestSubmitter, recorder LegRecorder, opts TradeOptions) *TradeService {
	return &TradeService{
		tickers:  tickers,
		requests: requests,
		recorder: recorder,
		opts:     opts,
		newID:    uuid.NewString,
		now:      time.Now,
	}
}

// Sell 先提交支出腿，再提交收入腿；返回支出腿结果，收入腿结果只记录
func (s *TradeService) Sell(ctx context.Context, spend, receive domain.TradeData) (domain.RequestResult, error) {
	return s.twoLegs(ctx, "sell", spend, receive)
}

// Buy 同 Sell
func (s *TradeService) Buy(ctx context.Context, spend, receive domain.TradeData) (domain.RequestResult, error) {
	return s.twoLegs(ctx, "buy", spend, receive)
}

// Send 单腿转账
func (s *TradeService) Send(ctx context.Context, leg domain.TradeData) (domain.RequestResult, error) {
	return s.submit(ctx, "send", domain.LegRoleSend, leg)
}

// Validate 预演，不产生副作用；相同输入得到相同估值
func (s *TradeService) Validate(ctx context.Context, leg domain.TradeData) (domain.RequestResult, error) {
	req, estimate, err := s.prepare(ctx, leg)
	if err != nil {
		return domain.RequestResult{}, err
	}
	res, err := s.requests.Validate(ctx, req)
	if err != nil {
		return domain.RequestResult{}, domain.NewTradeError(domain.TradeErrSubmission, leg.Type, err)
	}
	res.Estimate = &estimate
	return res, nil
}

func (s *TradeService) twoLegs(ctx context.Context, op string, spend, receive domain.TradeData) (domain.RequestResult, error) {
	res, err := s.submit(ctx, op, domain.LegRoleSpend, spend)

	recvRes, recvErr := s.submit(ctx, op, domain.LegRoleReceive, receive)
	switch {
	case recvErr != nil:
		tradeLog.WithError(recvErr).Warnf("%s receive leg failed (not propagated): ticker=%s", op, receive.Trade.Ticker)
	case !recvRes.Result:
		tradeLog.Warnf("%s receive leg rejected (not propagated): ticker=%s msg=%s", op, receive.Trade.Ticker, recvRes.Message)
	}
	return res, err
}

// prepare 校验金额、解析资产、组装请求并估值
func (s *TradeService) prepare(ctx context.Context, leg domain.TradeData) (domain.OrderRequest, domain.Price, error) {
	// 金额为链上最小单位的正整数
	amount, ok := domain.ParseRawAmount(leg.Trade.Amount)
	if !ok || !amount.IsPositive() {
		return domain.OrderRequest{}, domain.Price{}, domain.NewTradeError(domain.TradeErrMalformedIntent, leg.Type,
			errors.Wrapf(domain.ErrMalformedData, "amount %q", leg.Trade.Amount))
	}
	if leg.Trade.Ticker == "" {
		return domain.OrderRequest{}, domain.Price{}, domain.NewTradeError(domain.TradeErrMalformedIntent, leg.Type,
			errors.Wrap(domain.ErrMalformedData, "ticker is empty"))
	}

	ticker, err := s.tickers.Get(ctx, leg.Trade.Ticker)
	if err != nil {
		return domain.OrderRequest{}, domain.Price{}, domain.NewTradeError(domain.TradeErrTickerNotFound, leg.Type, err)
	}

	leg.Trade.Amount = amount.String()
	req := domain.OrderRequest{
		ID:             s.newID(),
		PayloadType:    domain.PayloadTypeFor(ticker.Kind),
		TargetDomainID: leg.Trade.Sender.DomainID,
		Data:           leg,
		LedgerType:     ticker.LedgerType,
	}
	estimate := domain.EstimatePrice(amount.Shift(-ticker.Decimals), ticker.BidPrice)
	return req, estimate, nil
}

func (s *TradeService) submit(ctx context.Context, op string, role domain.TradeLegRole, leg domain.TradeData) (domain.RequestResult, error) {
	rec := domain.TradeLegRecord{
		Operation: op,
		Role:      role,
		Leg:       leg.Type,
		TickerID:  leg.Trade.Ticker,
		Amount:    leg.Trade.Amount,
		Sender:    leg.Trade.Sender.DomainID + "/" + leg.Trade.Sender.AccountID,
		Recipient: leg.Trade.Recipient.DomainID + "/" + leg.Trade.Recipient.AccountID,
	}

	res, err := s.submitLeg(ctx, leg, &rec)
	if err != nil {
		rec.Error = err.Error()
	} else {
		rec.Accepted = res.Result
		rec.Message = res.Message
	}
	s.record(ctx, rec)
	return res, err
}

func (s *TradeService) submitLeg(ctx context.Context, leg domain.TradeData, rec *domain.TradeLegRecord) (domain.RequestResult, error) {
	req, estimate, err := s.prepare(ctx, leg)
	if err != nil {
		return domain.RequestResult{}, err
	}
	rec.RequestID = req.ID
	rec.Estimate = &estimate

	if err := s.tickers.Validate(ctx, leg.Trade.Ticker); err != nil {
		if s.opts.GatePreValidation {
			return domain.RequestResult{}, domain.NewTradeError(domain.TradeErrPreValidation, leg.Type, err)
		}
		tradeLog.WithError(err).Warnf("pre-validation failed, submitting anyway: ticker=%s", leg.Trade.Ticker)
	}

	res, err := s.requests.Create(ctx, req, map[string]string{
		"value":    estimate.Value.String(),
		"change":   estimate.Change.String(),
		"currency": estimate.Currency,
		"type":     string(leg.Type),
	})
	if err != nil {
		return domain.RequestResult{}, domain.NewTradeError(domain.TradeErrSubmission, leg.Type, err)
	}
	res.Estimate = &estimate
	tradeLog.Infof("leg submitted: id=%s type=%s ticker=%s payload=%s result=%v",
		req.ID, leg.Type, leg.Trade.Ticker, req.PayloadType, res.Result)
	return res, nil
}

func (s *TradeService) record(ctx context.Context, rec domain.TradeLegRecord) {
	switch {
	case rec.Error != "":
		metrics.TradeLegsFailed.Add(1)
	case rec.Accepted:
		metrics.TradeLegsAccepted.Add(1)
	default:
		metrics.TradeLegsRejected.Add(1)
	}
	if s.recorder == nil {
		return
	}
	rec.CreatedAt = s.now().UTC()
	if err := s.recorder.RecordLeg(ctx, rec); err != nil {
		tradeLog.WithError(err).Warnf("record leg failed: op=%s role=%s", rec.Operation, rec.Role)
	}
}
