package artifacts_test

import (
	"context"
	"strings"
	"testing"

	"github.com/nvujicic/supplyline/internal/artifacts"
)

func TestGenerateOrderCode(t *testing.T) {
	gen := artifacts.NewGenerator("/qr-codes")

	first, err := gen.GenerateOrderCode(context.Background(), 42)
	if err != nil {
		t.Fatalf("GenerateOrderCode: %v", err)
	}

	if !strings.HasPrefix(first, "/qr-codes/order-42-") {
		t.Errorf("reference = %q, want /qr-codes/order-42-* prefix", first)
	}
	if !strings.HasSuffix(first, ".png") {
		t.Errorf("reference = %q, want .png suffix", first)
	}

	second, err := gen.GenerateOrderCode(context.Background(), 42)
	if err != nil {
		t.Fatalf("GenerateOrderCode: %v", err)
	}
	if first == second {
		t.Error("re-issued reference must not collide with the previous one")
	}
}
