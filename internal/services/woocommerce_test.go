// ABOUTME: Tests for the WooCommerce adapter.
// ABOUTME: Covers query-string auth, path construction, and typed decoding.

package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

func newWooCommerceTest(t *testing.T, handler http.HandlerFunc) (*WooCommerce, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	b := resolveBundle(t, credentials.ServiceWooCommerce, map[string]string{
		credentials.EnvStoreURL:       srv.URL,
		credentials.EnvConsumerKey:    "ck_test",
		credentials.EnvConsumerSecret: "cs_test",
	})
	return NewWooCommerce(b, srv.Client()), srv
}

func TestWooCommerceAuthAndPath(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	client, _ := newWooCommerceTest(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	})

	query := url.Values{}
	query.Set("per_page", "10")
	if _, err := client.Products(context.Background(), query); err != nil {
		t.Fatalf("Products returned error: %v", err)
	}

	if gotPath != "/wp-json/wc/v3/products" {
		t.Errorf("path = %q, want /wp-json/wc/v3/products", gotPath)
	}
	if gotQuery.Get("consumer_key") != "ck_test" {
		t.Errorf("consumer_key = %q, want ck_test", gotQuery.Get("consumer_key"))
	}
	if gotQuery.Get("consumer_secret") != "cs_test" {
		t.Errorf("consumer_secret = %q, want cs_test", gotQuery.Get("consumer_secret"))
	}
	if gotQuery.Get("per_page") != "10" {
		t.Errorf("per_page = %q, want 10", gotQuery.Get("per_page"))
	}
}

func TestWooCommerceProducts(t *testing.T) {
	client, _ := newWooCommerceTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 11, "name": "Acrylic Sheet", "sku": "ACR-3", "price": "24.99",
			 "stock_quantity": 7, "total_sales": 120, "manage_stock": true},
			{"id": 12, "name": "Vinyl Banner", "sku": "", "price": "89.00",
			 "stock_quantity": null, "total_sales": 3, "manage_stock": false}
		]`))
	})

	products, err := client.Products(context.Background(), nil)
	if err != nil {
		t.Fatalf("Products returned error: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("got %d products, want 2", len(products))
	}

	first := products[0]
	if first.ID != 11 || first.Name != "Acrylic Sheet" || first.Price != "24.99" {
		t.Errorf("first product = %+v, want id 11 / Acrylic Sheet / 24.99", first)
	}
	if first.StockQuantity == nil || *first.StockQuantity != 7 {
		t.Errorf("first.StockQuantity = %v, want 7", first.StockQuantity)
	}

	second := products[1]
	if second.StockQuantity != nil {
		t.Errorf("second.StockQuantity = %v, want nil for null", second.StockQuantity)
	}
	if second.ManageStock {
		t.Error("second.ManageStock = true, want false")
	}
}

func TestWooCommerceOrders(t *testing.T) {
	client, _ := newWooCommerceTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[
			{"id": 501, "status": "completed", "total": "140.00",
			 "date_created": "2025-08-20T10:15:00", "customer_id": 9,
			 "line_items": [
				{"id": 1, "name": "Acrylic Sheet", "product_id": 11, "quantity": 2, "total": "49.98"},
				{"id": 2, "name": "Vinyl Banner", "product_id": 12, "quantity": 1, "total": "89.00"}
			 ]}
		]`))
	})

	orders, err := client.Orders(context.Background(), nil)
	if err != nil {
		t.Fatalf("Orders returned error: %v", err)
	}
	if len(orders) != 1 {
		t.Fatalf("got %d orders, want 1", len(orders))
	}

	order := orders[0]
	if order.ID != 501 || order.Status != "completed" || order.Total != "140.00" {
		t.Errorf("order = %+v, want id 501 / completed / 140.00", order)
	}
	if order.CustomerID != 9 {
		t.Errorf("CustomerID = %d, want 9", order.CustomerID)
	}
	if len(order.LineItems) != 2 {
		t.Fatalf("got %d line items, want 2", len(order.LineItems))
	}
	if order.LineItems[0].Quantity != 2 {
		t.Errorf("LineItems[0].Quantity = %d, want 2", order.LineItems[0].Quantity)
	}
}

func TestWooCommerceServiceError(t *testing.T) {
	client, _ := newWooCommerceTest(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"code":"woocommerce_rest_authentication_error"}`))
	})

	_, err := client.Products(context.Background(), nil)
	var svcErr *ServiceError
	if !errors.As(err, &svcErr) {
		t.Fatalf("error is %T, want *ServiceError", err)
	}
	if svcErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", svcErr.StatusCode)
	}
	if svcErr.Service != credentials.ServiceWooCommerce {
		t.Errorf("Service = %q, want woocommerce", svcErr.Service)
	}
}
