package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/observability"
	"github.com/boddenberg/store-portal-bfa-go/internal/infra/resilience"
)

var tracer = otel.Tracer("client")

// Backend endpoint names, used for metrics labels and error reporting.
const (
	EndpointLogin         = "CustomerLogin"
	EndpointServices      = "GetProductService"
	EndpointCreate        = "CreateCustomer"
	EndpointListCustomers = "GetCustomersByStoreId"
	EndpointGetCustomer   = "GetById"
	EndpointUpdate        = "CustumerUpdate"
	EndpointDelete        = "DeleteCustomer"
	EndpointBalance       = "BalancebyStoreid"
	EndpointUpload        = "PostUserImage"
)

// maxBodyBytes caps how much of a backend response is read.
const maxBodyBytes = 4 << 20

// BackendClient talks to the remote store backend. One instance serves the
// credential gateway, the customer store and the document uploader.
type BackendClient struct {
	httpClient *http.Client
	baseURL    string
	cb         *gobreaker.CircuitBreaker
	cfg        resilience.Config
	bulkhead   *resilience.Bulkhead
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewBackendClient creates a new BackendClient.
func NewBackendClient(
	httpClient *http.Client,
	baseURL string,
	cb *gobreaker.CircuitBreaker,
	cfg resilience.Config,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *BackendClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BackendClient{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		cb:         cb,
		cfg:        cfg,
		bulkhead:   resilience.NewBulkhead(cfg.MaxConcurrency),
		metrics:    metrics,
		logger:     logger,
	}
}

// IsBreakerSuccess reports whether err leaves the backend's health untouched.
// Answers the backend gave on purpose (4xx, not found, rejected uploads) are
// not failures of the backend itself and must not trip the breaker.
func IsBreakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	var rejected *domain.ErrRejected
	var notFound *domain.ErrNotFound
	var upload *domain.ErrUpload
	var external *domain.ErrExternalService
	switch {
	case errors.As(err, &rejected), errors.As(err, &notFound), errors.As(err, &upload):
		return true
	case errors.As(err, &external):
		// Malformed bodies still mean the backend answered.
		return true
	}
	return false
}

// ============================================================
// Request plumbing
// ============================================================

// read performs an idempotent GET, retried per cfg.MaxRetries.
func (c *BackendClient) read(ctx context.Context, endpoint, url string, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, resilience.RetryWithBackoff(ctx, c.cfg, func() error {
			err := c.doJSON(ctx, http.MethodGet, endpoint, url, nil, out)
			if err != nil && !isRetryable(err) {
				return &resilience.Permanent{Err: err}
			}
			return err
		})
	})
	return c.classify(endpoint, err)
}

// write performs a single non-idempotent call. Writes are never retried.
func (c *BackendClient) write(ctx context.Context, method, endpoint, url string, body, out any) error {
	_, err := c.cb.Execute(func() (any, error) {
		return nil, c.doJSON(ctx, method, endpoint, url, body, out)
	})
	return c.classify(endpoint, err)
}

func (c *BackendClient) doJSON(ctx context.Context, method, endpoint, url string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s body: %w", endpoint, err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.ErrNetwork{Service: endpoint, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return &domain.ErrNetwork{Service: endpoint, Err: err}
	}

	if err := statusToError(endpoint, resp.StatusCode, raw); err != nil {
		return err
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ErrExternalService{Service: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// statusToError maps a non-2xx status to the error the callers classify on.
func statusToError(endpoint string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return &domain.ErrNotFound{Resource: endpoint, ID: backendMessage(body)}
	case status >= 500:
		return &domain.ErrServer{Service: endpoint, Status: status}
	default:
		return &domain.ErrRejected{Service: endpoint, Status: status, Message: backendMessage(body)}
	}
}

// classify converts breaker and transport failures into domain errors and counts them.
func (c *BackendClient) classify(endpoint string, err error) error {
	if err == nil {
		return nil
	}
	if c.metrics != nil {
		c.metrics.IncrBackendError(endpoint)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return &domain.ErrCircuitOpen{Service: endpoint}
	}

	var (
		network  *domain.ErrNetwork
		server   *domain.ErrServer
		notFound *domain.ErrNotFound
		rejected *domain.ErrRejected
		external *domain.ErrExternalService
	)
	switch {
	case errors.As(err, &network), errors.As(err, &server), errors.As(err, &notFound),
		errors.As(err, &rejected), errors.As(err, &external):
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &domain.ErrNetwork{Service: endpoint, Err: err}
	}
	return &domain.ErrExternalService{Service: endpoint, Err: err}
}

func isRetryable(err error) bool {
	var network *domain.ErrNetwork
	var server *domain.ErrServer
	return errors.As(err, &network) || errors.As(err, &server)
}

// backendMessage extracts "message" or "error" from a JSON body, if any.
func backendMessage(body []byte) string {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	if envelope.Message != "" {
		return envelope.Message
	}
	return envelope.Error
}

func (c *BackendClient) endpointURL(path string) string {
	return c.baseURL + "/" + strings.TrimLeft(path, "/")
}
