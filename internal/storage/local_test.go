package storage

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestLocalPutListDelete(t *testing.T) {
	svc, err := NewLocalService(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("new local service: %v", err)
	}
	ctx := context.Background()

	location, err := svc.Put(ctx, "uploads/a.txt", strings.NewReader("hello"), "text/plain")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if location == "" {
		t.Fatal("put returned an empty location")
	}

	objects, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(objects))
	}
	if objects[0].Key != "uploads/a.txt" {
		t.Errorf("unexpected key %q", objects[0].Key)
	}
	if objects[0].Size != int64(len("hello")) {
		t.Errorf("unexpected size %d", objects[0].Size)
	}

	filtered, err := svc.List(ctx, "other/")
	if err != nil {
		t.Fatalf("list with prefix: %v", err)
	}
	if len(filtered) != 0 {
		t.Errorf("expected prefix filter to exclude the object, got %d", len(filtered))
	}

	if err := svc.Delete(ctx, "uploads/a.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(ctx, "uploads/a.txt"); !errors.Is(err, ErrObjectNotFound) {
		t.Errorf("second delete should report a missing object, got %v", err)
	}
}

func TestLocalURL(t *testing.T) {
	svc, err := NewLocalService(t.TempDir(), "/media/")
	if err != nil {
		t.Fatalf("new local service: %v", err)
	}
	ctx := context.Background()

	url, err := svc.URL(ctx, "uploads/a.txt", 0)
	if err != nil {
		t.Fatalf("url: %v", err)
	}
	if url != "/media/uploads/a.txt" {
		t.Errorf("unexpected url %q", url)
	}

	if _, err := svc.URL(ctx, "../outside", 0); err == nil {
		t.Error("escaping key should be rejected")
	}
}

func TestLocalRejectsEscapingKeys(t *testing.T) {
	svc, err := NewLocalService(t.TempDir(), "/media")
	if err != nil {
		t.Fatalf("new local service: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "/", "../outside", "a/../../outside"} {
		if _, err := svc.Put(ctx, key, strings.NewReader("x"), ""); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}
