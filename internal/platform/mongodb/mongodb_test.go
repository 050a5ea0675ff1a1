package mongodb

import (
	"context"
	"os"
	"testing"
)

func TestConnect_InvalidURI(t *testing.T) {
	if _, err := Connect(context.Background(), "not-a-mongo-uri"); err == nil {
		t.Error("expected invalid uri to fail")
	}
}

func TestConnect_Live(t *testing.T) {
	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		t.Skip("TEST_MONGO_URI not set")
	}
	client, err := Connect(context.Background(), uri)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect(context.Background())
	if err := Ping(client)(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
