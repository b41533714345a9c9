package services_test

import (
	"context"
	"testing"

	"puppetmask/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithPuppetID(ctx, "puppet-7")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.PuppetIDFromContext(ctx); !ok || id != "puppet-7" {
		t.Fatalf("unexpected puppet id: %v %v", id, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	if services.WithPuppetID(ctx, "") != ctx {
		t.Fatal("expected blank puppet id to return original context")
	}
	if services.WithRequestID(ctx, "") != ctx {
		t.Fatal("expected blank request id to return original context")
	}
	if _, ok := services.PuppetIDFromContext(ctx); ok {
		t.Fatal("expected no puppet id on bare context")
	}
}
