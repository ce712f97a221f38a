package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/DoyleJ11/arena-sync/internal/config"
	"github.com/DoyleJ11/arena-sync/pkg/types"
)

const (
	TokenHeader = "X-Auth-Token"
	UserAgent   = "arena-sync/1.0"
)

// Client talks to the game server. It keeps nothing between calls besides the
// session's url and token, so one Client is shared by every in-flight operation.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	log     *zap.Logger
}

func New(s config.Session, log *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: s.Timeout},
		baseURL: s.BaseURL(),
		token:   s.Token,
		log:     log.Named("transport"),
	}
}

func (c *Client) Register(ctx context.Context) (types.RegistrationResponse, error) {
	return do[types.RegistrationResponse](ctx, c, http.MethodPost, "register", nil)
}

func (c *Client) Arena(ctx context.Context) (types.ArenaResponse, error) {
	return do[types.ArenaResponse](ctx, c, http.MethodGet, "arena", nil)
}

func (c *Client) Move(ctx context.Context, req types.MoveRequest) (types.MoveResponse, error) {
	return do[types.MoveResponse](ctx, c, http.MethodPost, "move", req)
}

func (c *Client) Logs(ctx context.Context) ([]types.LogMessage, error) {
	return do[[]types.LogMessage](ctx, c, http.MethodGet, "logs", nil)
}

func do[T any](ctx context.Context, c *Client, method, endpoint string, payload any) (T, error) {
	var out T

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return out, &Error{Kind: KindTransport, Op: endpoint, Err: fmt.Errorf("encode request: %w", err)}
		}
		body = bytes.NewReader(raw)
	}

	url := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return out, &Error{Kind: KindTransport, Op: endpoint, Err: err}
	}
	req.Header.Set(TokenHeader, c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)

	c.log.Debug("request", zap.String("method", method), zap.String("url", url))

	resp, err := c.http.Do(req)
	if err != nil {
		return out, &Error{Kind: KindTransport, Op: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return out, &Error{Kind: KindTransport, Op: endpoint, Err: fmt.Errorf("read body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(raw)
		var apiErr types.APIError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
			text = apiErr.Message
		}
		c.log.Warn("request failed",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
			zap.String("body", text),
		)
		return out, &Error{
			Kind:   KindProtocol,
			Op:     endpoint,
			Status: resp.StatusCode,
			Body:   text,
			Err:    errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		c.log.Error("decode failed", zap.String("endpoint", endpoint), zap.Error(err), zap.ByteString("body", raw))
		return out, &Error{Kind: KindDecode, Op: endpoint, Body: string(raw), Err: err}
	}

	c.log.Debug("request ok", zap.String("endpoint", endpoint))
	return out, nil
}
