package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// TokenSource 提供 Bearer 令牌（鉴权由调用方实现）
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

type Client struct {
	client *resty.Client
	tokens TokenSource
}

// Options 客户端选项
type Options struct {
	Timeout      time.Duration
	RetryCount   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	UserAgent    string
	TokenSource  TokenSource
}

func defaultOptions() Options {
	return Options{
		Timeout:      60 * time.Second,
		RetryCount:   3,
		RetryWait:    1 * time.Second,
		RetryMaxWait: 10 * time.Second,
		UserAgent:    "custodygw/1.0",
	}
}

func NewClient(host string, opts ...func(*Options)) *Client {
	host = strings.TrimRight(host, "/")
	o := defaultOptions()
	for _, fn := range opts {
		fn(&o)
	}

	// resty 会自动从环境变量读取代理配置（HTTP_PROXY, HTTPS_PROXY）
	client := resty.New().
		SetBaseURL(host).
		SetTimeout(o.Timeout).
		SetRetryCount(o.RetryCount).
		SetRetryWaitTime(o.RetryWait).
		SetRetryMaxWaitTime(o.RetryMaxWait).
		SetHeader("User-Agent", o.UserAgent).
		SetRetryAfter(func(client *resty.Client, resp *resty.Response) (time.Duration, error) {
			// 如果遇到 429 限流，使用 Retry-After 头
			if resp != nil && resp.StatusCode() == http.StatusTooManyRequests {
				if retryAfter := resp.Header().Get("Retry-After"); retryAfter != "" {
					if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
						return seconds, nil
					}
				}
				return 10 * time.Second, nil
			}
			return 0, nil
		}).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= 500
		})
	return &Client{client: client, tokens: o.TokenSource}
}

// WithTokenSource 设置鉴权令牌来源
func WithTokenSource(ts TokenSource) func(*Options) {
	return func(o *Options) { o.TokenSource = ts }
}

// WithRetry 设置重试策略（测试里通常设为 0）
func WithRetry(count int, wait time.Duration) func(*Options) {
	return func(o *Options) {
		o.RetryCount = count
		o.RetryWait = wait
		if o.RetryMaxWait < wait {
			o.RetryMaxWait = wait
		}
	}
}

// WithTimeout 设置单次请求超时
func WithTimeout(d time.Duration) func(*Options) {
	return func(o *Options) { o.Timeout = d }
}

type RequestOptions struct {
	Headers map[string]string
	Data    any
	Params  map[string]any
	Form    map[string]string
}

// 仅设置本次请求的默认 Header（不要再改 client 级 Header）
func (c *Client) newRequest(ctx context.Context) (*resty.Request, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	r := c.client.R().SetContext(ctx)
	r.SetHeader("Accept", "application/json")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "acquire access token")
		}
		r.SetAuthToken(token)
	}
	return r, nil
}

// DoRequest 发送请求；out 非空时解析 2xx 响应体
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, opt *RequestOptions, out any) (*resty.Response, error) {
	rc, err := c.newRequest(ctx)
	if err != nil {
		return nil, err
	}
	if opt != nil {
		for k, v := range opt.Headers {
			rc.SetHeader(k, v)
		}
		if opt.Params != nil {
			rc.SetQueryParamsFromValues(toValues(opt.Params))
		}
		if opt.Form != nil {
			rc.SetFormData(opt.Form)
		}
		if opt.Data != nil {
			rc.SetHeader("Content-Type", "application/json")
			rc.SetBody(opt.Data)
		}
	}
	if out != nil {
		rc.SetResult(out)
	}

	switch strings.ToUpper(method) {
	case http.MethodGet:
		return rc.Get(endpoint)
	case http.MethodPost:
		return rc.Post(endpoint)
	case http.MethodDelete:
		return rc.Delete(endpoint)
	case http.MethodPut:
		return rc.Put(endpoint)
	default:
		return nil, fmt.Errorf("unsupported method: %s", method)
	}
}

// Get GET 请求并检查状态码
func (c *Client) Get(ctx context.Context, endpoint string, params map[string]any, out any) error {
	resp, err := c.DoRequest(ctx, http.MethodGet, endpoint, &RequestOptions{Params: params}, out)
	return ParseHTTPError(resp, err)
}

// Post POST JSON 请求并检查状态码
func (c *Client) Post(ctx context.Context, endpoint string, body any, out any) error {
	resp, err := c.DoRequest(ctx, http.MethodPost, endpoint, &RequestOptions{Data: body}, out)
	return ParseHTTPError(resp, err)
}

func toValues(m map[string]any) map[string][]string {
	v := make(map[string][]string, len(m))
	for k, val := range m {
		if k == "" {
			continue
		}
		switch t := val.(type) {
		case []string:
			v[k] = t
		default:
			v[k] = []string{fmt.Sprint(val)}
		}
	}
	return v
}

// StatusError 非 2xx 响应
type StatusError struct {
	Status     int
	StatusText string
	Body       any
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http non-2xx: %d %v", e.Status, e.Body)
}

// TransportError 网络/超时等未拿到响应的错误
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return "http transport: " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// ParseHTTPError 统一把传输错误和非 2xx 响应转换为 error
func ParseHTTPError(resp *resty.Response, err error) error {
	if err != nil {
		return errors.WithStack(&TransportError{Err: err})
	}
	if resp == nil {
		return errors.New("http: empty response")
	}
	if resp.IsSuccess() {
		return nil
	}
	var body any
	b := resp.Body()
	_ = json.Unmarshal(b, &body)
	if body == nil {
		body = string(b)
	}
	return errors.WithStack(&StatusError{
		Status:     resp.StatusCode(),
		StatusText: resp.Status(),
		Body:       body,
	})
}

// IsNotFound 是否 404
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Status == http.StatusNotFound
}

// StatusCode 返回错误中的 HTTP 状态码（没有则为 0）
func StatusCode(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}
