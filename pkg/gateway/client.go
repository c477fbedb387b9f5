package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/singleflight"

	"github.com/souqly/souqly-backend/pkg/config"
	pkgerrors "github.com/souqly/souqly-backend/pkg/errors"
	"github.com/souqly/souqly-backend/pkg/logger"
)

const (
	sandboxEnv    = "sandbox"
	productionEnv = "production"

	tokenPath = "/v1/oauth2/token"
)

var (
	errClientIDRequired     = errors.New("gateway client id is required")
	errClientSecretRequired = errors.New("gateway client secret is required")
	errLoggerRequired       = errors.New("gateway logger is required")
	errInvalidGatewayEnv    = fmt.Errorf("gateway environment must be %q or %q", sandboxEnv, productionEnv)
)

var baseURLs = map[string]string{
	sandboxEnv:    "https://api-m.sandbox.paypal.com",
	productionEnv: "https://api-m.paypal.com",
}

// Client wraps the marketplace payment processor's REST API with centralized
// auth, logging, and error mapping. Access tokens are cached with an expiry
// skew; concurrent refreshes collapse into a single request.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	environment  string
	clientID     string
	clientSecret string
	expirySkew   time.Duration
	logger       *logger.Logger

	tokenMu    sync.Mutex
	token      string
	tokenUntil time.Time
	tokenGroup singleflight.Group
}

// NewClient initializes the gateway wrapper and validates the credentials.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errLoggerRequired
	}
	env, err := normalizeEnv(cfg.Environment)
	if err != nil {
		return nil, err
	}

	clientID := strings.TrimSpace(cfg.ClientID)
	if clientID == "" {
		return nil, errClientIDRequired
	}
	clientSecret := strings.TrimSpace(cfg.ClientSecret)
	if clientSecret == "" {
		return nil, errClientSecretRequired
	}

	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = baseURLs[env]
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	skew := cfg.TokenExpirySkew
	if skew <= 0 {
		skew = time.Minute
	}

	c := &Client{
		httpClient:   &http.Client{Timeout: timeout},
		baseURL:      strings.TrimRight(baseURL, "/"),
		environment:  env,
		clientID:     clientID,
		clientSecret: clientSecret,
		expirySkew:   skew,
		logger:       logg,
	}

	logg.Info(ctx, "payment gateway client initialized")
	return c, nil
}

// Environment reports the normalized gateway environment.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// Token returns a valid access token, fetching or refreshing as needed.
// The client-credentials exchange is idempotent, so it is safe to race and
// safe to retry with backoff.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	if c.token != "" && time.Now().Before(c.tokenUntil) {
		token := c.token
		c.tokenMu.Unlock()
		return token, nil
	}
	c.tokenMu.Unlock()

	result, err, _ := c.tokenGroup.Do("token", func() (any, error) {
		return c.fetchToken(ctx)
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	var fetched tokenResponse

	backoff := retry.WithMaxRetries(2, retry.NewExponential(200*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		form := url.Values{"grant_type": {"client_credentials"}}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+tokenPath, strings.NewReader(form.Encode()))
		if err != nil {
			return err
		}
		req.SetBasicAuth(c.clientID, c.clientSecret)
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		c.log(ctx, "request", "get_access_token", nil)
		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(c.mapTransportError(err, "get access token"))
		}
		defer drainBody(resp.Body)

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := pkgerrors.New(pkgerrors.CodeGatewayAuth, fmt.Sprintf("token endpoint returned %d", resp.StatusCode))
			if resp.StatusCode >= 500 {
				return retry.RetryableError(apiErr)
			}
			return apiErr
		}
		if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeGatewayAuth, err, "malformed token response")
		}
		if fetched.AccessToken == "" {
			return pkgerrors.New(pkgerrors.CodeGatewayAuth, "token response missing access_token")
		}
		return nil
	})
	if err != nil {
		c.log(ctx, "error", "get_access_token", map[string]any{"error": err.Error()})
		return "", err
	}

	ttl := time.Duration(fetched.ExpiresIn) * time.Second
	if ttl > c.expirySkew {
		ttl -= c.expirySkew
	}

	c.tokenMu.Lock()
	c.token = fetched.AccessToken
	c.tokenUntil = time.Now().Add(ttl)
	c.tokenMu.Unlock()

	c.log(ctx, "response", "get_access_token", map[string]any{"expires_in": fetched.ExpiresIn})
	return fetched.AccessToken, nil
}

// doJSON issues an authenticated JSON request and decodes the response body
// into dest when dest is non-nil. The HTTP response is returned for status
// inspection by the caller.
func (c *Client) doJSON(ctx context.Context, method, path string, payload, dest any) (*http.Response, error) {
	token, err := c.Token(ctx)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encoding gateway payload: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.mapTransportError(err, method+" "+path)
	}
	defer drainBody(resp.Body)

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil && !errors.Is(err, io.EOF) {
			return resp, fmt.Errorf("decoding gateway response: %w", err)
		}
	}
	return resp, nil
}

// mapTransportError distinguishes timeouts, which are retryable, from other
// transport failures.
func (c *Client) mapTransportError(err error, op string) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return pkgerrors.Wrap(pkgerrors.CodeGatewayTimeout, err, fmt.Sprintf("gateway %s timed out", op))
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, fmt.Sprintf("gateway %s failed", op))
}

func (c *Client) log(ctx context.Context, phase, op string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logFields := map[string]any{
		"operation": op,
		"phase":     phase,
	}
	for k, v := range fields {
		logFields[k] = c.redact(k, v)
	}
	ctx = c.logger.WithFields(ctx, logFields)
	switch phase {
	case "error":
		c.logger.Error(ctx, fmt.Sprintf("gateway %s", op), errors.New(fmt.Sprint(fields["error"])))
	default:
		c.logger.Info(ctx, fmt.Sprintf("gateway %s", phase))
	}
}

func (c *Client) redact(key string, value any) any {
	lower := strings.ToLower(key)
	for _, sensitive := range []string{"secret", "token", "email", "phone", "authorization"} {
		if strings.Contains(lower, sensitive) {
			return "[REDACTED]"
		}
	}
	return value
}

func drainBody(body io.ReadCloser) {
	io.Copy(io.Discard, body)
	body.Close()
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = sandboxEnv
	}
	switch env {
	case sandboxEnv, productionEnv:
		return env, nil
	default:
		return "", errInvalidGatewayEnv
	}
}
