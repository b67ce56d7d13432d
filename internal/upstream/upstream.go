package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultURL is the PenzGTU Android application API endpoint
const DefaultURL = "http://android.penzgtu.ru/apps/penzgtuappandroid/api"

// Caller performs signed method calls against the upstream API
type Caller struct {
	url        string
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
}

// Config holds what a Caller needs to reach the upstream
type Config struct {
	URL         string
	Credentials Credentials
	Timeout     time.Duration
}

// NewCaller creates a new upstream caller
func NewCaller(cfg Config, logger *slog.Logger) *Caller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Caller{
		url:   cfg.URL,
		creds: cfg.Credentials,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.With("component", "upstream"),
	}
}

// Call signs and sends method with args and returns the raw response body.
// An upstream-reported failure is returned as *Error.
func (c *Caller) Call(ctx context.Context, method string, args Args) (json.RawMessage, error) {
	start := time.Now()
	body, outcome, err := c.call(ctx, method, args)
	callDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	callsTotal.WithLabelValues(method, outcome).Inc()

	if err != nil {
		c.logger.Warn("upstream call failed", "method", method, "error", err)
		return nil, err
	}
	return body, nil
}

func (c *Caller) call(ctx context.Context, method string, args Args) (json.RawMessage, string, error) {
	signature := Sign(c.creds, method, args)
	form := encodeForm(method, args, signature)

	c.logger.Debug("upstream request", "method", method, "args", args.Keys(), "url", c.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, strings.NewReader(form))
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, outcomeTransport, fmt.Errorf("%w: HTTP %d", ErrTransport, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, outcomeTransport, fmt.Errorf("%w: read response: %v", ErrTransport, err)
	}

	if !gjson.ValidBytes(raw) {
		return nil, outcomeInvalid, fmt.Errorf("%w: HTTP %d", ErrInvalidResponse, resp.StatusCode)
	}

	if code := gjson.GetBytes(raw, "error"); truthy(code) {
		return nil, outcomeUpstream, &Error{
			Code: code.String(),
			Desc: gjson.GetBytes(raw, "desc").String(),
		}
	}

	return json.RawMessage(raw), outcomeOK, nil
}

// encodeForm builds the request body in call order:
// method_name, the arguments, then signature.
func encodeForm(method string, args Args, signature string) string {
	var b strings.Builder
	b.WriteString("method_name=")
	b.WriteString(url.QueryEscape(method))
	for _, arg := range args {
		b.WriteByte('&')
		b.WriteString(url.QueryEscape(arg.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(arg.Value))
	}
	b.WriteString("&signature=")
	b.WriteString(url.QueryEscape(signature))
	return b.String()
}

// truthy reports whether r would be considered set by the upstream's clients
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True, gjson.JSON:
		return true
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return false
	}
}
