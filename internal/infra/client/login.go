package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// Default message when the backend rejects credentials without saying why.
const invalidCredentialsMessage = "Invalid Store ID or Password"

type loginRequest struct {
	GeneratedStoreID string `json:"GeneratedStoreID"`
	StorePassword    string `json:"StorePassword"`
}

type loginResponse struct {
	Status     domain.FlexString `json:"status"`
	Message    string            `json:"message"`
	EmployeeID domain.FlexString `json:"EmployeeID"`
	StoreID    domain.FlexString `json:"StoreID"`
}

// credentialFields maps a fragment of the lower-cased backend message to the
// form field it blames. Order matters: the first match wins.
var credentialFields = []struct {
	fragment string
	field    string
}{
	{"store id", domain.FieldStoreID},
	{"password", domain.FieldPassword},
}

// CredentialField classifies which login field a backend message blames.
// No match flags both fields.
func CredentialField(message string) string {
	lower := strings.ToLower(message)
	for _, entry := range credentialFields {
		if strings.Contains(lower, entry.fragment) {
			return entry.field
		}
	}
	return domain.CredentialBoth
}

// Login checks store credentials. It is never retried and never returns an
// error: every failure mode maps to one LoginOutcome.
func (c *BackendClient) Login(ctx context.Context, storeID, password string) domain.LoginOutcome {
	ctx, span := tracer.Start(ctx, "BackendClient.Login")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	var outcome domain.LoginOutcome
	_, err := c.cb.Execute(func() (any, error) {
		var loginErr error
		outcome, loginErr = c.login(ctx, storeID, password)
		return nil, loginErr
	})

	if err != nil && c.metrics != nil {
		c.metrics.IncrBackendError(EndpointLogin)
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn("login rejected by open circuit", zap.String("store_id", storeID))
		return domain.LoginNetworkError{Err: &domain.ErrCircuitOpen{Service: EndpointLogin}}
	}
	if outcome == nil {
		return domain.LoginNetworkError{Err: err}
	}
	return outcome
}

// login performs the call. The returned error only feeds the circuit breaker:
// transport failures and 5xx count against backend health, rejections do not.
func (c *BackendClient) login(ctx context.Context, storeID, password string) (domain.LoginOutcome, error) {
	buf, err := json.Marshal(loginRequest{GeneratedStoreID: storeID, StorePassword: password})
	if err != nil {
		return domain.LoginFailed{Message: err.Error()}, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpointURL(EndpointLogin), bytes.NewReader(buf))
	if err != nil {
		return domain.LoginFailed{Message: err.Error()}, nil
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		netErr := &domain.ErrNetwork{Service: EndpointLogin, Err: err}
		return domain.LoginNetworkError{Err: netErr}, netErr
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		netErr := &domain.ErrNetwork{Service: EndpointLogin, Err: err}
		return domain.LoginNetworkError{Err: netErr}, netErr
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		msg := backendMessage(raw)
		if msg == "" {
			return domain.InvalidCredentials{Field: domain.CredentialBoth, Message: invalidCredentialsMessage}, nil
		}
		return domain.InvalidCredentials{Field: CredentialField(msg), Message: msg}, nil
	case resp.StatusCode == http.StatusInternalServerError:
		return domain.LoginServerError{Status: resp.StatusCode},
			&domain.ErrServer{Service: EndpointLogin, Status: resp.StatusCode}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		failed := domain.LoginFailed{Status: resp.StatusCode, Message: backendMessage(raw)}
		if resp.StatusCode > 500 {
			return failed, &domain.ErrServer{Service: EndpointLogin, Status: resp.StatusCode}
		}
		return failed, nil
	}

	var body loginResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		c.logger.Warn("undecodable login response", zap.Error(err))
		return domain.LoginFailed{Status: resp.StatusCode, Message: "unexpected login response"}, nil
	}

	if body.Status.String() == "1" {
		return domain.LoginSuccess{
			EmployeeID: body.EmployeeID.String(),
			StoreID:    body.StoreID.String(),
		}, nil
	}

	msg := body.Message
	if msg == "" {
		return domain.InvalidCredentials{Field: domain.CredentialBoth, Message: invalidCredentialsMessage}, nil
	}
	return domain.InvalidCredentials{Field: CredentialField(msg), Message: msg}, nil
}
