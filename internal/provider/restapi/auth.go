package restapi

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/betbot/custodygw/pkg/cache"
	sdkhttp "github.com/betbot/custodygw/pkg/sdk/http"
)

const (
	tokenCacheKey = "access_token"
	// 提前刷新，避免请求途中过期
	tokenExpirySkew  = 30 * time.Second
	defaultTokenLife = 5 * time.Minute
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// OAuthTokenSource client-credentials 模式获取访问令牌，缓存到过期前
type OAuthTokenSource struct {
	http         *sdkhttp.Client
	clientID     string
	clientSecret string

	mu    sync.Mutex
	cache *cache.InMemoryCache[string, string]
}

// NewOAuthTokenSource authURL 为完整的 token 端点地址
func NewOAuthTokenSource(authURL, clientID, clientSecret string) *OAuthTokenSource {
	return &OAuthTokenSource{
		http:         sdkhttp.NewClient(authURL, sdkhttp.WithRetry(1, time.Second)),
		clientID:     clientID,
		clientSecret: clientSecret,
		cache:        cache.NewInMemoryCache[string, string](defaultTokenLife),
	}
}

func (s *OAuthTokenSource) Token(ctx context.Context) (string, error) {
	if tok, ok := s.cache.Get(tokenCacheKey); ok {
		return tok, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok, ok := s.cache.Get(tokenCacheKey); ok {
		return tok, nil
	}

	var out tokenResponse
	resp, err := s.http.DoRequest(ctx, http.MethodPost, "", &sdkhttp.RequestOptions{
		Form: map[string]string{
			"grant_type":    "client_credentials",
			"client_id":     s.clientID,
			"client_secret": s.clientSecret,
		},
	}, &out)
	if err := sdkhttp.ParseHTTPError(resp, err); err != nil {
		return "", errors.Wrap(err, "oauth token")
	}
	if out.AccessToken == "" {
		return "", errors.New("oauth token: empty access_token")
	}

	ttl := defaultTokenLife
	if out.ExpiresIn > 0 {
		ttl = time.Duration(out.ExpiresIn) * time.Second
	}
	if ttl > tokenExpirySkew {
		ttl -= tokenExpirySkew
	}
	s.cache.Set(tokenCacheKey, out.AccessToken, ttl)
	restLog.Debugf("access token refreshed, ttl=%s", ttl)
	return out.AccessToken, nil
}

// Close 停止缓存清理协程
func (s *OAuthTokenSource) Close() {
	s.cache.Close()
}
