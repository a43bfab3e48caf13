package session

import (
	"context"

	"github.com/boddenberg/store-portal-bfa-go/internal/port"
)

// Cookie names.
const (
	TokenCookie  = "customerToken"
	DeviceCookie = "portal_device"
)

// Durable keys, per device.
const (
	KeyToken        = "customerToken"
	KeyInfo         = "customerInfo"
	KeyCurrentLogin = "CurrentLogin"
	KeyEmployeeID   = "EmployeeID"
	KeyStoreID      = "StoreID"
	KeyAllLogins    = "AllLogins"
)

// SubmissionLogKey is the list holding the local log of created customers
// for one (employee, store) pair.
func SubmissionLogKey(employeeID, storeID string) string {
	return "customerData_" + employeeID + "_" + storeID
}

// deviceStore scopes every key of a KVStore to one browser device.
type deviceStore struct {
	kv     port.KVStore
	prefix string
}

// ForDevice returns a view of kv whose keys live under the device's namespace.
func ForDevice(kv port.KVStore, deviceID string) port.KVStore {
	return &deviceStore{kv: kv, prefix: "device:" + deviceID + ":"}
}

func (d *deviceStore) key(k string) string { return d.prefix + k }

func (d *deviceStore) Get(ctx context.Context, key string) (string, bool, error) {
	return d.kv.Get(ctx, d.key(key))
}

func (d *deviceStore) Set(ctx context.Context, key, value string) error {
	return d.kv.Set(ctx, d.key(key), value)
}

func (d *deviceStore) Delete(ctx context.Context, keys ...string) error {
	scoped := make([]string, len(keys))
	for i, k := range keys {
		scoped[i] = d.key(k)
	}
	return d.kv.Delete(ctx, scoped...)
}

func (d *deviceStore) Append(ctx context.Context, key, value string) error {
	return d.kv.Append(ctx, d.key(key), value)
}

func (d *deviceStore) List(ctx context.Context, key string) ([]string, error) {
	return d.kv.List(ctx, d.key(key))
}

func (d *deviceStore) Ping(ctx context.Context) error {
	return d.kv.Ping(ctx)
}
