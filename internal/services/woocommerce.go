// ABOUTME: WooCommerce REST API adapter (wp-json/wc/v3) with query-string key/secret auth.
// ABOUTME: Exposes typed product and order fetches used by the store tools.

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
)

// Product is the subset of a WooCommerce product the tools care about.
// stock_quantity is null when stock management is off for the product.
type Product struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	SKU           string `json:"sku"`
	Price         string `json:"price"`
	StockQuantity *int   `json:"stock_quantity"`
	TotalSales    int64  `json:"total_sales"`
	ManageStock   bool   `json:"manage_stock"`
}

// LineItem is one line of an order.
type LineItem struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Total     string `json:"total"`
}

// Order is the subset of a WooCommerce order the tools care about.
// Monetary amounts arrive as strings, dates as site-local ISO timestamps.
type Order struct {
	ID          int64      `json:"id"`
	Status      string     `json:"status"`
	Total       string     `json:"total"`
	DateCreated string     `json:"date_created"`
	CustomerID  int64      `json:"customer_id"`
	LineItems   []LineItem `json:"line_items"`
}

// WooCommerce calls the store's REST API. Authentication is the v3
// query-string scheme: consumer_key and consumer_secret appended to every
// request.
type WooCommerce struct {
	baseURL string
	key     string
	secret  string
	httpc   *http.Client
}

// NewWooCommerce builds an adapter from a resolved credential bundle.
func NewWooCommerce(b *credentials.Bundle, httpc *http.Client) *WooCommerce {
	return &WooCommerce{
		baseURL: strings.TrimRight(b.Get(credentials.EnvStoreURL), "/"),
		key:     b.Get(credentials.EnvConsumerKey),
		secret:  b.Get(credentials.EnvConsumerSecret),
		httpc:   httpc,
	}
}

// get performs a GET against the wc/v3 namespace and returns the raw body.
func (c *WooCommerce) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + "/wp-json/wc/v3/" + strings.TrimLeft(path, "/")

	q := url.Values{}
	for key, vals := range query {
		for _, v := range vals {
			q.Add(key, v)
		}
	}
	q.Set("consumer_key", c.key)
	q.Set("consumer_secret", c.secret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building woocommerce request: %w", err)
	}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Accept", "application/json")

	return do(c.httpc, credentials.ServiceWooCommerce, req)
}

// Products fetches a page of products.
func (c *WooCommerce) Products(ctx context.Context, query url.Values) ([]Product, error) {
	body, err := c.get(ctx, "products", query)
	if err != nil {
		return nil, err
	}

	var products []Product
	if err := json.Unmarshal(body, &products); err != nil {
		return nil, fmt.Errorf("decoding products: %w", err)
	}
	return products, nil
}

// Orders fetches a page of orders.
func (c *WooCommerce) Orders(ctx context.Context, query url.Values) ([]Order, error) {
	body, err := c.get(ctx, "orders", query)
	if err != nil {
		return nil, err
	}

	var orders []Order
	if err := json.Unmarshal(body, &orders); err != nil {
		return nil, fmt.Errorf("decoding orders: %w", err)
	}
	return orders, nil
}
