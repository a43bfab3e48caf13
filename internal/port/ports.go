// Package port defines the interfaces (ports) for external dependencies.
// Following hexagonal architecture, these ports decouple the domain/service
// layer from concrete implementations.
package port

//go:generate mockgen -destination=mocks/mock_ports.go -package=mocks github.com/boddenberg/store-portal-bfa-go/internal/port CustomerStore,DocumentUploader

import (
	"context"

	"github.com/boddenberg/store-portal-bfa-go/internal/domain"
)

// CredentialGateway checks store credentials against the backend.
// It never returns an error: every failure mode is a LoginOutcome.
type CredentialGateway interface {
	Login(ctx context.Context, storeID, password string) domain.LoginOutcome
}

// DocumentUploader sends one identity-document image to the backend.
type DocumentUploader interface {
	UploadDocument(ctx context.Context, kind domain.DocumentKind, fileName, contentType string, data []byte) (*domain.UploadResult, error)
}

// CustomerStore is the backend's customer surface.
type CustomerStore interface {
	ListServices(ctx context.Context) ([]domain.ProductService, error)
	CreateCustomer(ctx context.Context, payload *domain.CreateCustomerPayload) (*domain.BackendResult, error)
	ListCustomers(ctx context.Context, storeID string) ([]domain.CustomerRecord, error)
	GetCustomer(ctx context.Context, customerID string) (*domain.CustomerRecord, error)
	UpdateCustomer(ctx context.Context, payload *domain.UpdateCustomerPayload) (*domain.BackendResult, error)
	DeleteCustomer(ctx context.Context, customerID string) error
	GetStoreBalance(ctx context.Context, storeID string) (float64, error)
}

// KVStore is the durable per-device key-value store (the portal's "local storage").
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	// Append adds value to the end of the list stored at key.
	Append(ctx context.Context, key, value string) error
	// List returns every element of the list stored at key, oldest first.
	List(ctx context.Context, key string) ([]string, error)
	Ping(ctx context.Context) error
}

// Cache provides generic caching with TTL.
type Cache[T any] interface {
	Get(key string) (T, bool)
	Set(key string, value T)
	Delete(key string)
}
