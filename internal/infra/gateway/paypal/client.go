package paypal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tourbook/internal/domain/payment"
	"tourbook/internal/pkg/errs"
)

const maxResponseBytes = 1 << 20

type apiError struct {
	Name             string `json:"name"`
	Message          string `json:"message"`
	ErrorCode        string `json:"error"`
	ErrorDescription string `json:"error_description"`
	Details          []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e apiError) code() string {
	if len(e.Details) > 0 && e.Details[0].Issue != "" {
		return e.Details[0].Issue
	}
	if e.Name != "" {
		return e.Name
	}
	return e.ErrorCode
}

func (e apiError) message() string {
	switch {
	case len(e.Details) > 0 && e.Details[0].Description != "":
		return e.Details[0].Description
	case e.Message != "":
		return e.Message
	default:
		return e.ErrorDescription
	}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

type request struct {
	method    string
	path      string
	operation string
	body      any
	headers   map[string]string
}

// client speaks PayPal's REST API. Every failure it returns is a *payment.GatewayError.
type client struct {
	baseURL      string
	clientID     string
	clientSecret string
	http         *http.Client
	tokens       *TokenCache
}

func (c *client) fetchToken(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, gatewayError("oauth_token", 0, err.Error(), "")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.clientID, c.clientSecret)

	var out tokenResponse
	if err := c.send(req, "oauth_token", &out); err != nil {
		return "", 0, err
	}
	if out.AccessToken == "" {
		return "", 0, gatewayError("oauth_token", 0, "token response without access_token", "")
	}
	return out.AccessToken, time.Duration(out.ExpiresIn) * time.Second, nil
}

// do sends an authenticated JSON request and decodes a 2xx body into out.
// A 401 drops the cached token so the next call fetches a fresh one.
func (c *client) do(ctx context.Context, r request, out any) error {
	token, err := c.tokens.Get(ctx, c.fetchToken)
	if err != nil {
		return err
	}

	var body io.Reader
	if r.body != nil {
		raw, err := json.Marshal(r.body)
		if err != nil {
			return gatewayError(r.operation, 0, err.Error(), "")
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.baseURL+r.path, body)
	if err != nil {
		return gatewayError(r.operation, 0, err.Error(), "")
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	err = c.send(req, r.operation, out)
	c.dropTokenOnUnauthorized(err)
	return err
}

func (c *client) dropTokenOnUnauthorized(err error) {
	var gwErr *payment.GatewayError
	if errs.As(err, &gwErr) && gwErr.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
}

func (c *client) send(req *http.Request, operation string, out any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return gatewayError(operation, 0, err.Error(), "")
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return gatewayError(operation, res.StatusCode, err.Error(), "")
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		var apiErr apiError
		if err := json.Unmarshal(raw, &apiErr); err != nil || apiErr.message() == "" {
			return gatewayError(operation, res.StatusCode, http.StatusText(res.StatusCode), "")
		}
		return gatewayError(operation, res.StatusCode, apiErr.message(), apiErr.code())
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return gatewayError(operation, res.StatusCode, fmt.Sprintf("malformed response: %v", err), "")
	}
	return nil
}

func gatewayError(operation string, status int, message, code string) *payment.GatewayError {
	e := payment.NewGatewayError(payment.MethodPayPal, operation, status, message)
	e.Code = code
	return e
}
