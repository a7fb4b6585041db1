// Package jobqueue publishes deferred jobs (match settlement) to QStash, which
// calls back into the internal job endpoints.
package jobqueue

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrTransient marks failures worth retrying: network errors, 408, 429 and 5xx.
var ErrTransient = crerr.New("qstash transient failure")

const (
	headerForwardJobToken = "Upstash-Forward-X-Internal-Job-Token"
	maxLoggedBody         = 4096
)

type QStashPublisherConfig struct {
	BaseURL          string
	Token            string
	TargetBaseURL    string
	Retries          int
	InternalJobToken string
	Timeout          time.Duration
	CircuitBreaker   resilience.CircuitBreakerConfig
}

type QStashPublisher struct {
	client  *http.Client
	cfg     QStashPublisherConfig
	breaker *resilience.CircuitBreaker
	logger  *logging.Logger
}

func NewQStashPublisher(cfg QStashPublisherConfig, logger *logging.Logger) *QStashPublisher {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if logger == nil {
		logger = logging.Default()
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	cfg.TargetBaseURL = strings.TrimRight(strings.TrimSpace(cfg.TargetBaseURL), "/")
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.InternalJobToken = strings.TrimSpace(cfg.InternalJobToken)

	return &QStashPublisher{
		client:  &http.Client{Timeout: cfg.Timeout},
		cfg:     cfg,
		breaker: cfg.CircuitBreaker.Build(),
		logger:  logger.Named("qstash"),
	}
}

type publishRequest struct {
	path            string
	targetURL       string
	publishURL      string
	body            []byte
	delay           string
	retries         int
	deduplicationID string
	forwardToken    bool
}

func (p *QStashPublisher) Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error {
	req, err := p.newPublishRequest(path, payload, delay, deduplicationID)
	if err != nil {
		return err
	}

	if err := p.breaker.Allow(); err != nil {
		p.logger.WarnContext(ctx, "qstash circuit breaker rejected request", "state", p.breaker.State())
		return crerr.Wrap(err, "qstash is temporarily unavailable")
	}

	preview := req.curlPreview()
	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.SetAttributes(
			attribute.String("qstash.publish_url", req.publishURL),
			attribute.String("qstash.target_url", req.targetURL),
			attribute.String("qstash.deduplication_id", req.deduplicationID),
			attribute.String("qstash.request_curl_preview", preview),
		)
	}
	p.logger.DebugContext(ctx, "qstash publish request", "path", req.path, "curl_preview", preview)

	err = p.send(ctx, req)
	p.breaker.Record(err, isTransient)
	if err != nil {
		return err
	}

	p.logger.InfoContext(ctx, "qstash job published",
		"path", req.path,
		"delay", req.delay,
		"deduplication_id", req.deduplicationID,
	)
	return nil
}

func (p *QStashPublisher) newPublishRequest(path string, payload any, delay time.Duration, deduplicationID string) (publishRequest, error) {
	path = "/" + strings.TrimLeft(strings.TrimSpace(path), "/")
	if path == "/" {
		return publishRequest{}, crerr.New("job path is required")
	}

	baseURL, err := validateHTTPBaseURL(p.cfg.BaseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_BASE_URL")
	}
	targetBaseURL, err := validateHTTPBaseURL(p.cfg.TargetBaseURL)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "invalid QSTASH_TARGET_BASE_URL")
	}

	if payload == nil {
		payload = map[string]any{}
	}
	body, err := sonic.Marshal(payload)
	if err != nil {
		return publishRequest{}, crerr.Wrap(err, "marshal job payload")
	}

	targetURL := targetBaseURL + path
	return publishRequest{
		path:            path,
		targetURL:       targetURL,
		publishURL:      baseURL + "/v2/publish/" + targetURL,
		body:            body,
		delay:           formatDelay(delay),
		retries:         p.cfg.Retries,
		deduplicationID: strings.TrimSpace(deduplicationID),
		forwardToken:    p.cfg.InternalJobToken != "",
	}, nil
}

func (p *QStashPublisher) send(ctx context.Context, req publishRequest) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.publishURL, strings.NewReader(string(req.body)))
	if err != nil {
		return crerr.Wrap(err, "create qstash request")
	}
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.Token)
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Upstash-Method", http.MethodPost)
	if req.retries > 0 {
		httpReq.Header.Set("Upstash-Retries", strconv.Itoa(req.retries))
	}
	if req.delay != "0s" {
		httpReq.Header.Set("Upstash-Delay", req.delay)
	}
	if req.deduplicationID != "" {
		httpReq.Header.Set("Upstash-Deduplication-Id", req.deduplicationID)
	}
	if req.forwardToken {
		httpReq.Header.Set(headerForwardJobToken, p.cfg.InternalJobToken)
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return crerr.Mark(crerr.Wrapf(err, "publish qstash job target_url=%s", req.targetURL), ErrTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 == 2 {
		return nil
	}

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxLoggedBody))
	callErr := crerr.Newf("publish qstash job status=%d target_url=%s body=%s",
		resp.StatusCode, req.targetURL, strings.TrimSpace(string(raw)))
	if retryableStatus(resp.StatusCode) {
		return crerr.Mark(callErr, ErrTransient)
	}
	return callErr
}

// isTransient decides what trips the breaker; a 4xx means QStash is reachable.
func isTransient(err error) bool {
	return crerr.Is(err, ErrTransient)
}

func (r publishRequest) curlPreview() string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	write := func(parts ...string) {
		for _, part := range parts {
			if buf.Len() > 0 {
				_ = buf.WriteByte(' ')
			}
			_, _ = buf.WriteString(part)
		}
	}
	header := func(value string) {
		write("-H", shellQuote(value))
	}

	write("curl", "-X", "POST", shellQuote(r.publishURL))
	header("Authorization: Bearer ***")
	header("Content-Type: application/json")
	if r.retries > 0 {
		header("Upstash-Retries: " + strconv.Itoa(r.retries))
	}
	if r.delay != "0s" {
		header("Upstash-Delay: " + r.delay)
	}
	if r.deduplicationID != "" {
		header("Upstash-Deduplication-Id: " + r.deduplicationID)
	}
	if r.forwardToken {
		header(headerForwardJobToken + ": ***")
	}

	body := string(r.body)
	if len(body) > maxLoggedBody {
		body = body[:maxLoggedBody] + "...(truncated)"
	}
	write("-d", shellQuote(body))
	return buf.String()
}

func formatDelay(delay time.Duration) string {
	seconds := int64(delay.Round(time.Second) / time.Second)
	if seconds <= 0 {
		return "0s"
	}
	return strconv.FormatInt(seconds, 10) + "s"
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}
	return strings.TrimRight(candidate, "/"), nil
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func retryableStatus(statusCode int) bool {
	return statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests ||
		statusCode >= http.StatusInternalServerError
}
