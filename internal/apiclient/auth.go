// internal/apiclient/auth.go
package apiclient

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/verakocha/veriflow/pkg/types"
)

// tokenExpirySkew is subtracted from a token's lifetime so a token is
// never used within its final seconds.
const tokenExpirySkew = 30 * time.Second

// cachedToken holds an OAuth2 access token until shortly before expiry.
type cachedToken struct {
	accessToken string
	expiresAt   time.Time
}

// tokenCache caches client-credentials tokens per (tokenURL, clientID).
type tokenCache struct {
	mu     sync.Mutex
	tokens map[string]*cachedToken
}

func newTokenCache() *tokenCache {
	return &tokenCache{tokens: make(map[string]*cachedToken)}
}

func (tc *tokenCache) get(key string) (string, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	tok, ok := tc.tokens[key]
	if !ok || time.Now().After(tok.expiresAt) {
		return "", false
	}
	return tok.accessToken, true
}

func (tc *tokenCache) put(key, accessToken string, ttl time.Duration) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	expiry := ttl - tokenExpirySkew
	if expiry <= 0 {
		expiry = ttl
	}
	tc.tokens[key] = &cachedToken{
		accessToken: accessToken,
		expiresAt:   time.Now().Add(expiry),
	}
}

// applyAuth injects the configured auth scheme into the request. Query
// parameter injection mutates query, which the caller re-encodes.
//
// An OAuth2 token-exchange failure only fails the request when
// FailOnTokenError is set; otherwise the request proceeds without an
// Authorization header and the omission is logged.
func (c *Client) applyAuth(ctx context.Context, req *http.Request, query url.Values, auth types.AuthConfig) error {
	switch auth.Type {
	case "", types.AuthNone:
		return nil

	case types.AuthBearer:
		req.Header.Set("Authorization", "Bearer "+auth.Token)
		return nil

	case types.AuthAPIKey:
		if auth.Location == types.APIKeyInQuery {
			query.Set(auth.Key, auth.Value)
		} else {
			req.Header.Set(auth.Key, auth.Value)
		}
		return nil

	case types.AuthBasic:
		credentials := base64.StdEncoding.EncodeToString([]byte(auth.Username + ":" + auth.Password))
		req.Header.Set("Authorization", "Basic "+credentials)
		return nil

	case types.AuthOAuth2:
		if auth.OAuth2 == nil {
			return fmt.Errorf("oauth2 auth selected but no oauth2 configuration supplied")
		}
		token, err := c.obtainToken(ctx, auth.OAuth2)
		if err != nil {
			if auth.OAuth2.FailOnTokenError {
				return fmt.Errorf("oauth2 token exchange failed: %w", err)
			}
			c.logger.Warn("oauth2 token exchange failed, proceeding without authorization",
				zap.String("token_url", auth.OAuth2.TokenURL),
				zap.Error(err))
			return nil
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return nil

	default:
		return fmt.Errorf("unsupported auth type: %s", auth.Type)
	}
}

// obtainToken performs a client-credentials grant against the token URL,
// serving from the cache when a live token exists.
func (c *Client) obtainToken(ctx context.Context, cfg *types.OAuth2Config) (string, error) {
	cacheKey := cfg.TokenURL + "|" + cfg.ClientID
	if token, ok := c.tokens.get(cacheKey); ok {
		return token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", cfg.ClientID)
	form.Set("client_secret", cfg.ClientSecret)
	if len(cfg.Scopes) > 0 {
		form.Set("scope", strings.Join(cfg.Scopes, " "))
	}

	tokenCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(tokenCtx, http.MethodPost, cfg.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("token endpoint returned HTTP %d", resp.StatusCode)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("invalid token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access_token")
	}

	ttl := time.Duration(payload.ExpiresIn) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c.tokens.put(cacheKey, payload.AccessToken, ttl)

	return payload.AccessToken, nil
}
