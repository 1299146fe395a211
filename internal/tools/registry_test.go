// ABOUTME: Tests for registry registration and dispatch ordering.
// ABOUTME: Verifies no handler or adapter is reached when any dispatch check fails.

package tools

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

func newTestRegistry(t *testing.T, env map[string]string) *Registry {
	t.Helper()
	store := credentials.NewStoreWithLookup(func(key string) string { return env[key] })
	return NewRegistry(store, slog.Default())
}

func echoTool(name string, params []Param, services []credentials.Service, called *map[string]any) *Tool {
	return &Tool{
		Descriptor: Descriptor{
			Name:        name,
			Description: "test tool",
			Params:      params,
			Credentials: services,
		},
		Handler: func(ctx context.Context, args map[string]any) (any, error) {
			*called = args
			return map[string]any{"ok": true}, nil
		},
	}
}

func TestRegisterPackCollision(t *testing.T) {
	r := newTestRegistry(t, nil)

	var sink map[string]any
	first := &Pack{ID: "store", Tools: []*Tool{echoTool("get_products", nil, nil, &sink)}}
	if err := r.RegisterPack(first); err != nil {
		t.Fatalf("first RegisterPack failed: %v", err)
	}

	second := &Pack{ID: "other", Tools: []*Tool{echoTool("get_products", nil, nil, &sink)}}
	err := r.RegisterPack(second)
	if !errors.Is(err, ErrToolCollision) {
		t.Fatalf("error = %v, want ErrToolCollision", err)
	}
	if r.Count() != 1 {
		t.Errorf("Count = %d after rejected pack, want 1", r.Count())
	}
}

func TestInvokeUnknownTool(t *testing.T) {
	r := newTestRegistry(t, nil)

	_, err := r.Invoke(context.Background(), "no_such_tool", nil)
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("error = %v, want ErrUnknownTool", err)
	}
}

func TestInvokeValidatesBeforeHandler(t *testing.T) {
	r := newTestRegistry(t, nil)

	var called map[string]any
	pack := &Pack{ID: "store", Tools: []*Tool{
		echoTool("get_products",
			[]Param{{Name: "per_page", Type: TypeNumber, Default: float64(10)}},
			nil, &called),
	}}
	if err := r.RegisterPack(pack); err != nil {
		t.Fatalf("RegisterPack failed: %v", err)
	}

	_, err := r.Invoke(context.Background(), "get_products", map[string]any{"per_page": "ten"})
	var argErr *InvalidArgumentError
	if !errors.As(err, &argErr) {
		t.Fatalf("error is %T, want *InvalidArgumentError", err)
	}
	if called != nil {
		t.Error("handler ran despite failed validation")
	}
}

func TestInvokeCredentialGate(t *testing.T) {
	env := map[string]string{}
	r := newTestRegistry(t, env)

	var called map[string]any
	pack := &Pack{ID: "support", Tools: []*Tool{
		echoTool("get_zendesk_ticket",
			[]Param{{Name: "ticket_id", Type: TypeString, Required: true}},
			[]credentials.Service{credentials.ServiceZendesk}, &called),
	}}
	if err := r.RegisterPack(pack); err != nil {
		t.Fatalf("RegisterPack failed: %v", err)
	}

	_, err := r.Invoke(context.Background(), "get_zendesk_ticket", map[string]any{"ticket_id": "42"})
	var missing *credentials.MissingError
	if !errors.As(err, &missing) {
		t.Fatalf("error is %T, want *credentials.MissingError", err)
	}
	if len(missing.Keys) != 3 {
		t.Errorf("MissingError names %d keys, want all 3 zendesk variables", len(missing.Keys))
	}
	if called != nil {
		t.Error("handler ran without credentials")
	}

	// Complete the environment and the same call goes through.
	env[credentials.EnvZendeskSubdomain] = "example"
	env[credentials.EnvZendeskEmail] = "agent@example.com"
	env[credentials.EnvZendeskAPIToken] = "secret"

	result, err := r.Invoke(context.Background(), "get_zendesk_ticket", map[string]any{"ticket_id": "42"})
	if err != nil {
		t.Fatalf("Invoke failed with complete credentials: %v", err)
	}
	if called["ticket_id"] != "42" {
		t.Errorf("handler args = %v, want ticket_id forwarded", called)
	}
	if m, ok := result.(map[string]any); !ok || m["ok"] != true {
		t.Errorf("result = %v, want handler result", result)
	}
}

func TestInvokeAppliesDefaults(t *testing.T) {
	r := newTestRegistry(t, nil)

	var called map[string]any
	pack := &Pack{ID: "store", Tools: []*Tool{
		echoTool("get_orders",
			[]Param{
				{Name: "per_page", Type: TypeNumber, Default: float64(10)},
				{Name: "status", Type: TypeString, Default: "any"},
			},
			nil, &called),
	}}
	if err := r.RegisterPack(pack); err != nil {
		t.Fatalf("RegisterPack failed: %v", err)
	}

	if _, err := r.Invoke(context.Background(), "get_orders", map[string]any{}); err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if called["per_page"] != float64(10) || called["status"] != "any" {
		t.Errorf("handler args = %v, want defaults applied", called)
	}
}

func TestDescriptorsSorted(t *testing.T) {
	r := newTestRegistry(t, nil)

	var sink map[string]any
	pack := &Pack{ID: "store", Tools: []*Tool{
		echoTool("get_products", nil, nil, &sink),
		echoTool("analyze_sales_trends", nil, nil, &sink),
		echoTool("get_orders", nil, nil, &sink),
	}}
	if err := r.RegisterPack(pack); err != nil {
		t.Fatalf("RegisterPack failed: %v", err)
	}

	descriptors := r.Descriptors()
	if len(descriptors) != 3 {
		t.Fatalf("got %d descriptors, want 3", len(descriptors))
	}
	for i := 1; i < len(descriptors); i++ {
		if descriptors[i-1].Name >= descriptors[i].Name {
			t.Errorf("descriptors not sorted: %q before %q", descriptors[i-1].Name, descriptors[i].Name)
		}
	}
}
