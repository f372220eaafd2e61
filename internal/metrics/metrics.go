package metrics

import "expvar"

var (
	UpstreamRequests    = expvar.NewInt("upstream_requests")
	UpstreamErrors      = expvar.NewInt("upstream_errors")
	UpstreamThrottled   = expvar.NewInt("upstream_throttled")
	TradeLegsAccepted   = expvar.NewInt("trade_legs_accepted")
	TradeLegsRejected   = expvar.NewInt("trade_legs_rejected")
	TradeLegsFailed     = expvar.NewInt("trade_legs_failed")
	PriceLookupFailures = expvar.NewInt("price_lookup_failures")
)
