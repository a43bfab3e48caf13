package kv_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"github.com/boddenberg/store-portal-bfa-go/internal/infra/kv"
	"github.com/boddenberg/store-portal-bfa-go/internal/port"
)

// exerciseStore runs the same contract against every KVStore implementation.
func exerciseStore(t *testing.T, store port.KVStore) {
	t.Helper()
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	if _, ok, err := store.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("expected miss without error, got ok=%v err=%v", ok, err)
	}

	if err := store.Set(ctx, "device:1:customerToken", "tok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := store.Get(ctx, "device:1:customerToken")
	if err != nil || !ok || v != "tok" {
		t.Fatalf("expected tok, got %q ok=%v err=%v", v, ok, err)
	}

	for _, item := range []string{"a", "b", "c"} {
		if err := store.Append(ctx, "device:1:AllLogins", item); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	list, err := store.List(ctx, "device:1:AllLogins")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0] != "a" || list[2] != "c" {
		t.Errorf("expected [a b c], got %v", list)
	}

	if err := store.Delete(ctx, "device:1:customerToken", "device:1:AllLogins"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "device:1:customerToken"); ok {
		t.Error("expected token to be deleted")
	}
	if list, _ := store.List(ctx, "device:1:AllLogins"); len(list) != 0 {
		t.Errorf("expected empty list after delete, got %v", list)
	}

	// Deleting twice is fine.
	if err := store.Delete(ctx, "device:1:customerToken"); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemory_Contract(t *testing.T) {
	exerciseStore(t, kv.NewMemory())
}

func TestRedis_Contract(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewRedis(mr.Addr(), "", "", 0, "portal:")
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedis_Prefix(t *testing.T) {
	mr := miniredis.RunT(t)
	store := kv.NewRedis(mr.Addr(), "", "", 0, "portal:")
	defer store.Close()

	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatal(err)
	}
	got, err := mr.Get("portal:k")
	if err != nil || got != "v" {
		t.Errorf("expected prefixed key in redis, got %q err=%v", got, err)
	}
}
