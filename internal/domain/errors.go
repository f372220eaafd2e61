package domain

import (
	"fmt"

	"github.com/pkg/errors"
)

// 错误分类
var (
	// ErrNotFound 解析器/仓储没有结果
	ErrNotFound = errors.New("not found")
	// ErrUpstream 上游传输或鉴权失败
	ErrUpstream = errors.New("upstream error")
	// ErrMalformedData 自定义属性 JSON 非法、金额非数字等
	ErrMalformedData = errors.New("malformed data")
	// ErrPartialAggregate 扇出中某个分支失败，聚合使用其余分支结果
	ErrPartialAggregate = errors.New("partial aggregate failure")
)

// TradeErrorKind 交易失败类型
type TradeErrorKind string

const (
	TradeErrTickerNotFound  TradeErrorKind = "ticker_not_found"
	TradeErrPreValidation   TradeErrorKind = "pre_validation"
	TradeErrSubmission      TradeErrorKind = "submission"
	TradeErrMalformedIntent TradeErrorKind = "malformed_intent"
)

// TradeError 单腿交易的类型化失败
type TradeError struct {
	Kind TradeErrorKind
	Leg  TradeType
	Err  error
}

func (e *TradeError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("trade %s leg: %s", e.Leg, e.Kind)
	}
	return fmt.Sprintf("trade %s leg: %s: %v", e.Leg, e.Kind, e.Err)
}

func (e *TradeError) Unwrap() error {
	return e.Err
}

// NewTradeError 构造交易失败
func NewTradeError(kind TradeErrorKind, leg TradeType, err error) *TradeError {
	return &TradeError{Kind: kind, Leg: leg, Err: err}
}

// ErrorKind 对外展示的错误类别
func ErrorKind(err error) string {
	var te *TradeError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &te):
		return string(te.Kind)
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrMalformedData):
		return "malformed_data"
	case errors.Is(err, ErrUpstream):
		return "upstream"
	case errors.Is(err, ErrPartialAggregate):
		return "partial_aggregate"
	default:
		return "unknown"
	}
}
