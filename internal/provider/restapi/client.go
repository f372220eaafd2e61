package restapi

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/betbot/custodygw/internal/domain"
	"github.com/betbot/custodygw/internal/metrics"
	"github.com/betbot/custodygw/internal/ports"
	"github.com/betbot/custodygw/pkg/ratelimit"
	sdkhttp "github.com/betbot/custodygw/pkg/sdk/http"
)

var restLog = logrus.WithField("component", "custody_rest")

// Client 托管平台 REST 客户端（所有仓储共用）
type Client struct {
	http    *sdkhttp.Client
	limiter *ratelimit.Manager
}

// ClientOptions 传输层配置
type ClientOptions struct {
	Timeout    time.Duration
	RetryCount int // 0 使用默认重试策略
	RetryWait  time.Duration
	NoRetry    bool
	Limiter    *ratelimit.Manager // 为空时不限速
}

// NewClient tokens 为空时不带鉴权头（测试用）
func NewClient(baseURL string, tokens sdkhttp.TokenSource, opts ClientOptions) *Client {
	var fns []func(*sdkhttp.Options)
	if tokens != nil {
		fns = append(fns, sdkhttp.WithTokenSource(tokens))
	}
	if opts.Timeout > 0 {
		fns = append(fns, sdkhttp.WithTimeout(opts.Timeout))
	}
	switch {
	case opts.NoRetry:
		fns = append(fns, sdkhttp.WithRetry(0, 0))
	case opts.RetryCount > 0:
		fns = append(fns, sdkhttp.WithRetry(opts.RetryCount, opts.RetryWait))
	}
	return &Client{http: sdkhttp.NewClient(baseURL, fns...), limiter: opts.Limiter}
}

// throttle 等待限速放行，并计数一次上游调用
func (c *Client) throttle(ctx context.Context, endpoint string) error {
	if c.limiter != nil && !c.limiter.Allow(endpoint) {
		metrics.UpstreamThrottled.Add(1)
		if err := c.limiter.Wait(ctx, endpoint); err != nil {
			return errors.Wrapf(domain.ErrUpstream, "%s: rate limited: %v", endpoint, err)
		}
	}
	metrics.UpstreamRequests.Add(1)
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, filter ports.Filter, out any) error {
	if err := c.throttle(ctx, endpoint); err != nil {
		return err
	}
	var params map[string]any
	if len(filter) > 0 {
		params = make(map[string]any, len(filter))
		for k, v := range filter {
			params[k] = v
		}
	}
	return classify(c.http.Get(ctx, endpoint, params, out), endpoint)
}

func (c *Client) post(ctx context.Context, endpoint string, body, out any) error {
	if err := c.throttle(ctx, endpoint); err != nil {
		return err
	}
	return classify(c.http.Post(ctx, endpoint, body, out), endpoint)
}

// classify 404 => ErrNotFound，其余 => ErrUpstream
func classify(err error, endpoint string) error {
	if err == nil {
		return nil
	}
	if sdkhttp.IsNotFound(err) {
		return errors.Wrapf(domain.ErrNotFound, "%s", endpoint)
	}
	metrics.UpstreamErrors.Add(1)
	restLog.WithError(err).Debugf("upstream call failed: %s", endpoint)
	return errors.Wrapf(domain.ErrUpstream, "%s: %v", endpoint, err)
}

// path 拼接并转义路径片段
func path(format string, segments ...string) string {
	args := make([]any, len(segments))
	for i, s := range segments {
		args[i] = url.PathEscape(s)
	}
	return fmt.Sprintf(format, args...)
}
