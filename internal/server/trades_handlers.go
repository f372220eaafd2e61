package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/betbot/custodygw/internal/domain"
)

// swapLeg 买卖请求中的一侧（对手方固定为运营方 nostro 账户）
type swapLeg struct {
	Amount string                   `json:"amount"`
	Ticker string                   `json:"ticker"`
	MaxFee string                   `json:"maxFee"`
	Sender domain.AccountIdentifier `json:"sender"`
}

type swapRequest struct {
	Spend   swapLeg `json:"spend"`
	Receive swapLeg `json:"receive"`
}

func (s *Server) nostro() domain.AccountIdentifier {
	return domain.AccountIdentifier{DomainID: s.cfg.Nostro.DomainID, AccountID: s.cfg.Nostro.AccountID}
}

// swapLegs spend: 用户 -> nostro，receive: nostro -> 用户
func (s *Server) swapLegs(req swapRequest, spendType, receiveType domain.TradeType) (domain.TradeData, domain.TradeData) {
	spend := domain.TradeData{
		DomainID: s.cfg.DomainID,
		Type:     spendType,
		Trade: domain.TransferParameter{
			Amount:    req.Spend.Amount,
			Ticker:    req.Spend.Ticker,
			MaxFee:    req.Spend.MaxFee,
			Sender:    req.Spend.Sender,
			Recipient: s.nostro(),
		},
	}
	receive := domain.TradeData{
		DomainID: s.cfg.DomainID,
		Type:     receiveType,
		Trade: domain.TransferParameter{
			Amount:    req.Receive.Amount,
			Ticker:    req.Receive.Ticker,
			MaxFee:    req.Receive.MaxFee,
			Sender:    s.nostro(),
			Recipient: req.Receive.Sender,
		},
	}
	return spend, receive
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	spend, receive := s.swapLegs(req, domain.TradeTypeSell, domain.TradeTypeBuy)
	res, err := s.deps.Trades.Sell(r.Context(), spend, receive)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	spend, receive := s.swapLegs(req, domain.TradeTypeBuy, domain.TradeTypeReceive)
	res, err := s.deps.Trades.Buy(r.Context(), spend, receive)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeResult(w, res)
}

func (s *Server) decodeTransfer(r *http.Request) (domain.TradeData, error) {
	var p domain.TransferParameter
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		return domain.TradeData{}, err
	}
	return domain.TradeData{DomainID: s.cfg.DomainID, Trade: p, Type: domain.TradeTypeTransfer}, nil
}

func (s *Server) handleSend(w http.ResponseWriter, r *http.Request) {
	leg, err := s.decodeTransfer(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := s.deps.Trades.Send(r.Context(), leg)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	leg, err := s.decodeTransfer(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	res, err := s.deps.Trades.Validate(r.Context(), leg)
	if err != nil {
		writeFailure(w, err, false)
		return
	}
	writeResult(w, res)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if s.deps.Journal == nil {
		writeError(w, http.StatusNotFound, "journal disabled")
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := s.deps.Journal.List(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
