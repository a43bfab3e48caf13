package client

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"go.opentelemetry.io/otel/attribute"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// ListServices fetches the service catalog.
func (c *BackendClient) ListServices(ctx context.Context) ([]domain.ProductService, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.ListServices")
	defer span.End()

	var services []domain.ProductService
	if err := c.read(ctx, EndpointServices, c.endpointURL(EndpointServices), &services); err != nil {
		return nil, err
	}
	if services == nil {
		services = []domain.ProductService{}
	}
	return services, nil
}

// CreateCustomer posts a merged draft. A 4xx carrying a message is returned as
// a {status: 0} result so duplicate detection sees the same shape either way.
func (c *BackendClient) CreateCustomer(ctx context.Context, payload *domain.CreateCustomerPayload) (*domain.BackendResult, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.CreateCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", payload.StoreID))

	var result domain.BackendResult
	err := c.write(ctx, http.MethodPost, EndpointCreate, c.endpointURL(EndpointCreate), payload, &result)
	if err != nil {
		var rejected *domain.ErrRejected
		if errors.As(err, &rejected) && rejected.Message != "" {
			return &domain.BackendResult{Status: "0", Message: rejected.Message}, nil
		}
		return nil, err
	}
	return &result, nil
}

// ListCustomers fetches every customer of a store. The backend answers an
// unknown or empty store with an empty list (or null).
func (c *BackendClient) ListCustomers(ctx context.Context, storeID string) ([]domain.CustomerRecord, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.ListCustomers")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	u := c.endpointURL(EndpointListCustomers) + "?" + url.Values{"Id": {storeID}}.Encode()

	var records []domain.CustomerRecord
	if err := c.read(ctx, EndpointListCustomers, u, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.CustomerRecord{}
	}
	return records, nil
}

// GetCustomer loads one customer. The backend wraps it in a one-element array.
func (c *BackendClient) GetCustomer(ctx context.Context, customerID string) (*domain.CustomerRecord, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.GetCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	u := c.endpointURL(EndpointGetCustomer) + "/" + url.PathEscape(customerID)

	var records []domain.CustomerRecord
	if err := c.read(ctx, EndpointGetCustomer, u, &records); err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, &domain.ErrNotFound{Resource: "customer", ID: customerID}
	}
	return &records[0], nil
}

// UpdateCustomer replaces a customer's details. Any 2xx is success; the
// backend does not always send a status field on update.
func (c *BackendClient) UpdateCustomer(ctx context.Context, payload *domain.UpdateCustomerPayload) (*domain.BackendResult, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.UpdateCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", payload.CustomerID))

	var body struct {
		Message string `json:"message"`
	}
	if err := c.write(ctx, http.MethodPut, EndpointUpdate, c.endpointURL(EndpointUpdate), payload, &body); err != nil {
		return nil, err
	}
	return &domain.BackendResult{Status: "1", Message: body.Message}, nil
}

// DeleteCustomer removes a customer.
func (c *BackendClient) DeleteCustomer(ctx context.Context, customerID string) error {
	ctx, span := tracer.Start(ctx, "BackendClient.DeleteCustomer")
	defer span.End()
	span.SetAttributes(attribute.String("customer.id", customerID))

	u := c.endpointURL(EndpointDelete) + "?" + url.Values{"id": {customerID}}.Encode()
	return c.write(ctx, http.MethodDelete, EndpointDelete, u, nil, nil)
}

// GetStoreBalance returns the store's total sales. An empty answer is zero.
func (c *BackendClient) GetStoreBalance(ctx context.Context, storeID string) (float64, error) {
	ctx, span := tracer.Start(ctx, "BackendClient.GetStoreBalance")
	defer span.End()
	span.SetAttributes(attribute.String("store.id", storeID))

	u := c.endpointURL(EndpointBalance) + "?" + url.Values{"StoreID": {storeID}}.Encode()

	var rows []domain.StoreBalance
	if err := c.read(ctx, EndpointBalance, u, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].TotalBalance, nil
}
