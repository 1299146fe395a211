// ABOUTME: WooCommerce tool pack: product/order fetches and the order-analytics tools.
// ABOUTME: Aggregations run over already-fetched pages; nothing is streamed or cached.

package packs

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/mitchellh/mapstructure"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/config"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

// wooTimeLayout is the site-local ISO form the WooCommerce API uses for
// date_created and accepts for after/before filters.
const wooTimeLayout = "2006-01-02T15:04:05"

// analyticsPageSize is the page size used when a tool walks the full
// product or order collection.
const analyticsPageSize = 100

type wooHandlers struct {
	creds     *credentials.Store
	httpc     *http.Client
	analytics config.AnalyticsConfig
	now       func() time.Time
}

// WooCommercePack builds the store tools. The analytics defaults seed the
// parameter defaults advertised in the tool schemas.
func WooCommercePack(creds *credentials.Store, httpc *http.Client, analytics config.AnalyticsConfig) *tools.Pack {
	h := &wooHandlers{creds: creds, httpc: httpc, analytics: analytics, now: time.Now}

	return &tools.Pack{
		ID: "woocommerce",
		Tools: []*tools.Tool{
			{
				Descriptor: tools.Descriptor{
					Name:        "get_products",
					Description: "Get products from WooCommerce store. Returns product details including ID, name, SKU, price, stock quantity, and total sales.",
					Params: []tools.Param{
						{Name: "per_page", Type: tools.TypeNumber, Description: "Number of products to retrieve (max 100)", Default: float64(10)},
						{Name: "category", Type: tools.TypeString, Description: "Filter by category ID (optional)"},
					},
					Credentials: []credentials.Service{credentials.ServiceWooCommerce},
				},
				Handler: h.getProducts,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_orders",
					Description: "Get orders from WooCommerce store. Returns order details including status, total, date, and customer info.",
					Params: []tools.Param{
						{Name: "per_page", Type: tools.TypeNumber, Description: "Number of orders to retrieve (max 100)", Default: float64(10)},
						{Name: "status", Type: tools.TypeString, Description: "Order status: any, pending, processing, on-hold, completed, cancelled, refunded, failed", Default: "any"},
						{Name: "after", Type: tools.TypeString, Description: "ISO 8601 date to get orders after (e.g., 2024-01-01T00:00:00)"},
						{Name: "before", Type: tools.TypeString, Description: "ISO 8601 date to get orders before"},
					},
					Credentials: []credentials.Service{credentials.ServiceWooCommerce},
				},
				Handler: h.getOrders,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "analyze_sales_trends",
					Description: "Analyze sales trends over a specified time period. Returns total orders, revenue, averages, and best performing day.",
					Params: []tools.Param{
						{Name: "days", Type: tools.TypeNumber, Description: "Number of days to analyze", Default: float64(analytics.SalesWindowDays)},
					},
					Credentials: []credentials.Service{credentials.ServiceWooCommerce},
				},
				Handler: h.analyzeSalesTrends,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_low_stock_products",
					Description: "Find products with low stock levels. Useful for inventory management and reorder alerts.",
					Params: []tools.Param{
						{Name: "threshold", Type: tools.TypeNumber, Description: "Stock quantity threshold (products at or below this level)", Default: float64(analytics.LowStockThreshold)},
					},
					Credentials: []credentials.Service{credentials.ServiceWooCommerce},
				},
				Handler: h.getLowStockProducts,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "analyze_refund_patterns",
					Description: "Find customers with repeated refunds over a time window. Flags customers at or above the repeat-refund count.",
					Params: []tools.Param{
						{Name: "days", Type: tools.TypeNumber, Description: "Number of days to analyze", Default: float64(analytics.RefundWindowDays)},
						{Name: "min_refunds", Type: tools.TypeNumber, Description: "Minimum refund count for a customer to be flagged", Default: float64(analytics.RepeatRefundCount)},
					},
					Credentials: []credentials.Service{credentials.ServiceWooCommerce},
				},
				Handler: h.analyzeRefundPatterns,
			},
		},
	}
}

func (h *wooHandlers) client() (*services.WooCommerce, error) {
	b, err := h.creds.Get(credentials.ServiceWooCommerce)
	if err != nil {
		return nil, err
	}
	return services.NewWooCommerce(b, h.httpc), nil
}

type getProductsInput struct {
	PerPage  int    `mapstructure:"per_page"`
	Category string `mapstructure:"category"`
}

func (h *wooHandlers) getProducts(ctx context.Context, args map[string]any) (any, error) {
	var in getProductsInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(in.PerPage))
	if in.Category != "" {
		query.Set("category", in.Category)
	}

	products, err := client.Products(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(products))
	for _, p := range products {
		out = append(out, map[string]any{
			"id":             p.ID,
			"name":           p.Name,
			"sku":            p.SKU,
			"price":          p.Price,
			"stock_quantity": p.StockQuantity,
			"total_sales":    p.TotalSales,
		})
	}
	return out, nil
}

type getOrdersInput struct {
	PerPage int    `mapstructure:"per_page"`
	Status  string `mapstructure:"status"`
	After   string `mapstructure:"after"`
	Before  string `mapstructure:"before"`
}

func (h *wooHandlers) getOrders(ctx context.Context, args map[string]any) (any, error) {
	var in getOrdersInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(in.PerPage))
	query.Set("status", in.Status)
	if in.After != "" {
		query.Set("after", in.After)
	}
	if in.Before != "" {
		query.Set("before", in.Before)
	}

	orders, err := client.Orders(ctx, query)
	if err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(orders))
	for _, o := range orders {
		out = append(out, map[string]any{
			"id":           o.ID,
			"status":       o.Status,
			"total":        o.Total,
			"date_created": o.DateCreated,
			"customer_id":  o.CustomerID,
			"line_items":   len(o.LineItems),
		})
	}
	return out, nil
}

type salesTrendsInput struct {
	Days int `mapstructure:"days"`
}

func (h *wooHandlers) analyzeSalesTrends(ctx context.Context, args map[string]any) (any, error) {
	var in salesTrendsInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	end := h.now()
	start := end.AddDate(0, 0, -in.Days)

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(analyticsPageSize))
	query.Set("after", start.Format(wooTimeLayout))
	query.Set("before", end.Format(wooTimeLayout))
	query.Set("status", "completed")

	orders, err := client.Orders(ctx, query)
	if err != nil {
		return nil, err
	}

	if len(orders) == 0 {
		return map[string]any{
			"total_orders": 0,
			"message":      "no orders found in the requested window",
		}, nil
	}

	return summarizeSales(orders, in.Days), nil
}

// summarizeSales computes the aggregate metrics for one window of
// completed orders. The daily average divides total revenue by the window
// length; a window of a single day (or less) returns the total as-is so
// there is never a division by zero.
func summarizeSales(orders []services.Order, days int) map[string]any {
	var totalRevenue float64
	var totalItems int
	daily := make(map[string]float64)
	var seenDays []string

	for _, o := range orders {
		total := parseAmount(o.Total)
		totalRevenue += total
		totalItems += len(o.LineItems)

		day := orderDay(o.DateCreated)
		if _, seen := daily[day]; !seen {
			seenDays = append(seenDays, day)
		}
		daily[day] += total
	}

	n := float64(len(orders))

	dailyAverage := totalRevenue
	if days > 1 {
		dailyAverage = totalRevenue / float64(days)
	}

	// Ties go to the earliest-seen day.
	var bestDay string
	var bestRevenue float64
	for _, day := range seenDays {
		if daily[day] > bestRevenue {
			bestDay, bestRevenue = day, daily[day]
		}
	}

	return map[string]any{
		"total_orders":            len(orders),
		"total_revenue":           round2(totalRevenue),
		"average_order_value":     round2(totalRevenue / n),
		"average_items_per_order": round2(float64(totalItems) / n),
		"daily_average_revenue":   round2(dailyAverage),
		"best_day": map[string]any{
			"date":    bestDay,
			"revenue": round2(bestRevenue),
		},
	}
}

type lowStockInput struct {
	Threshold int `mapstructure:"threshold"`
}

func (h *wooHandlers) getLowStockProducts(ctx context.Context, args map[string]any) (any, error) {
	var in lowStockInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	// Walk every page; the API order is preserved in the result.
	low := []map[string]any{}
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(analyticsPageSize))
		query.Set("page", strconv.Itoa(page))

		products, err := client.Products(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(products) == 0 {
			break
		}

		for _, p := range products {
			if p.StockQuantity == nil || *p.StockQuantity > in.Threshold {
				continue
			}
			low = append(low, map[string]any{
				"id":             p.ID,
				"name":           p.Name,
				"sku":            p.SKU,
				"stock_quantity": *p.StockQuantity,
				"price":          p.Price,
				"manage_stock":   p.ManageStock,
			})
		}

		if len(products) < analyticsPageSize {
			break
		}
	}

	return map[string]any{
		"total_low_stock_products": len(low),
		"threshold":                in.Threshold,
		"products":                 low,
	}, nil
}

type refundPatternsInput struct {
	Days       int `mapstructure:"days"`
	MinRefunds int `mapstructure:"min_refunds"`
}

func (h *wooHandlers) analyzeRefundPatterns(ctx context.Context, args map[string]any) (any, error) {
	var in refundPatternsInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	end := h.now()
	start := end.AddDate(0, 0, -in.Days)

	var refunded []services.Order
	for page := 1; ; page++ {
		query := url.Values{}
		query.Set("per_page", strconv.Itoa(analyticsPageSize))
		query.Set("page", strconv.Itoa(page))
		query.Set("after", start.Format(wooTimeLayout))
		query.Set("before", end.Format(wooTimeLayout))
		query.Set("status", "refunded")

		orders, err := client.Orders(ctx, query)
		if err != nil {
			return nil, err
		}
		if len(orders) == 0 {
			break
		}
		refunded = append(refunded, orders...)
		if len(orders) < analyticsPageSize {
			break
		}
	}

	return refundSummary(refunded, in.Days, in.MinRefunds), nil
}

// refundSummary groups refunded orders by customer and flags customers
// whose refund count reaches minRefunds. Flagged customers appear in
// first-seen order.
func refundSummary(orders []services.Order, days, minRefunds int) map[string]any {
	counts := make(map[int64]int)
	totals := make(map[int64]float64)
	var seenCustomers []int64

	for _, o := range orders {
		if _, seen := counts[o.CustomerID]; !seen {
			seenCustomers = append(seenCustomers, o.CustomerID)
		}
		counts[o.CustomerID]++
		totals[o.CustomerID] += parseAmount(o.Total)
	}

	flagged := []map[string]any{}
	for _, id := range seenCustomers {
		if counts[id] < minRefunds {
			continue
		}
		flagged = append(flagged, map[string]any{
			"customer_id":    id,
			"refund_count":   counts[id],
			"total_refunded": round2(totals[id]),
		})
	}

	return map[string]any{
		"window_days":           days,
		"min_refunds":           minRefunds,
		"total_refunded_orders": len(orders),
		"flagged_customers":     flagged,
	}
}

// parseAmount reads a WooCommerce money string. Unparseable values count
// as zero rather than failing the whole aggregation.
func parseAmount(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

// orderDay extracts the calendar day from a date_created value. The API
// emits site-local ISO timestamps, but offsets show up behind some proxy
// configurations.
func orderDay(s string) string {
	if t, err := time.Parse(wooTimeLayout, s); err == nil {
		return t.Format("2006-01-02")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.Format("2006-01-02")
	}
	if len(s) >= 10 {
		return s[:10]
	}
	return s
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
