package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDiskStoreSaveAndServe(t *testing.T) {
	dir := t.TempDir()
	store := NewDiskStore(dir, "http://localhost:8080/images/")

	url, err := store.Save(context.Background(), "car.png", strings.NewReader("fake-image-bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !strings.HasPrefix(url, "http://localhost:8080/images/") {
		t.Fatalf("unexpected url: %s", url)
	}
	if !strings.HasSuffix(url, ".png") {
		t.Fatalf("expected extension preserved: %s", url)
	}

	name := url[strings.LastIndex(url, "/")+1:]
	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("stored content mismatch")
	}
}

func TestDeliveryURLTransformation(t *testing.T) {
	got := DeliveryURL("http://cdn.example.com/img/abc.png")
	want := "http://cdn.example.com/img/abc.png?tr=w-1280,q-auto,f-webp"
	if got != want {
		t.Fatalf("DeliveryURL = %s, want %s", got, want)
	}

	got = DeliveryURL("http://cdn.example.com/img/abc.png?v=2")
	if !strings.HasSuffix(got, "&tr=w-1280,q-auto,f-webp") {
		t.Fatalf("expected transform appended with &, got %s", got)
	}

	if DeliveryURL("") != "" {
		t.Fatalf("expected empty input to stay empty")
	}
}
