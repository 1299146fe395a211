// ABOUTME: Theme tool pack: quote-request and sample-box endpoints of the storefront.
// ABOUTME: Includes the status-update call driving the quote approval workflow.

package packs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

type themeHandlers struct {
	creds *credentials.Store
	httpc *http.Client
}

// ThemePack builds the tools for the storefront's custom REST namespace.
func ThemePack(creds *credentials.Store, httpc *http.Client) *tools.Pack {
	h := &themeHandlers{creds: creds, httpc: httpc}

	return &tools.Pack{
		ID: "theme",
		Tools: []*tools.Tool{
			{
				Descriptor: tools.Descriptor{
					Name:        "list_quote_requests",
					Description: "List quote requests submitted through the storefront. Returns newest first.",
					Params: []tools.Param{
						{Name: "status", Type: tools.TypeString, Description: "Filter by status: pending, quoted, approved, rejected"},
						{Name: "per_page", Type: tools.TypeNumber, Description: "Number of quote requests to retrieve", Default: float64(10)},
					},
					Credentials: []credentials.Service{credentials.ServiceTheme},
				},
				Handler: h.listQuoteRequests,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_quote_request",
					Description: "Get details of a specific quote request, including requested items and contact info.",
					Params: []tools.Param{
						{Name: "quote_id", Type: tools.TypeNumber, Description: "The quote request ID", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceTheme},
				},
				Handler: h.getQuoteRequest,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "update_quote_request_status",
					Description: "Move a quote request through the approval workflow by setting its status.",
					Params: []tools.Param{
						{Name: "quote_id", Type: tools.TypeNumber, Description: "The quote request ID", Required: true},
						{Name: "status", Type: tools.TypeString, Description: "New status: pending, quoted, approved, rejected", Required: true},
						{Name: "note", Type: tools.TypeString, Description: "Optional note recorded with the status change"},
					},
					Credentials: []credentials.Service{credentials.ServiceTheme},
				},
				Handler: h.updateQuoteRequestStatus,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "list_sample_boxes",
					Description: "List sample box orders submitted through the storefront.",
					Params: []tools.Param{
						{Name: "status", Type: tools.TypeString, Description: "Filter by fulfillment status"},
						{Name: "per_page", Type: tools.TypeNumber, Description: "Number of sample boxes to retrieve", Default: float64(10)},
					},
					Credentials: []credentials.Service{credentials.ServiceTheme},
				},
				Handler: h.listSampleBoxes,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_sample_box",
					Description: "Get details of a specific sample box order.",
					Params: []tools.Param{
						{Name: "box_id", Type: tools.TypeNumber, Description: "The sample box ID", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceTheme},
				},
				Handler: h.getSampleBox,
			},
		},
	}
}

func (h *themeHandlers) client() (*services.Theme, error) {
	b, err := h.creds.Get(credentials.ServiceTheme)
	if err != nil {
		return nil, err
	}
	return services.NewTheme(b, h.httpc), nil
}

type themeListInput struct {
	Status  string `mapstructure:"status"`
	PerPage int    `mapstructure:"per_page"`
}

func (h *themeHandlers) list(ctx context.Context, resource string, args map[string]any) (any, error) {
	var in themeListInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("per_page", strconv.Itoa(in.PerPage))
	if in.Status != "" {
		query.Set("status", in.Status)
	}
	return client.Get(ctx, resource, query)
}

func (h *themeHandlers) listQuoteRequests(ctx context.Context, args map[string]any) (any, error) {
	return h.list(ctx, "quote-requests", args)
}

func (h *themeHandlers) listSampleBoxes(ctx context.Context, args map[string]any) (any, error) {
	return h.list(ctx, "sample-boxes", args)
}

func (h *themeHandlers) getQuoteRequest(ctx context.Context, args map[string]any) (any, error) {
	id, err := int64Arg(args, "quote_id")
	if err != nil {
		return nil, err
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, "quote-requests/"+strconv.FormatInt(id, 10), nil)
}

type quoteStatusInput struct {
	QuoteID int64  `mapstructure:"quote_id"`
	Status  string `mapstructure:"status"`
	Note    string `mapstructure:"note"`
}

func (h *themeHandlers) updateQuoteRequestStatus(ctx context.Context, args map[string]any) (any, error) {
	var in quoteStatusInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	payload := map[string]any{"status": in.Status}
	if in.Note != "" {
		payload["note"] = in.Note
	}
	return client.Post(ctx, "quote-requests/"+strconv.FormatInt(in.QuoteID, 10)+"/status", payload)
}

func (h *themeHandlers) getSampleBox(ctx context.Context, args map[string]any) (any, error) {
	id, err := int64Arg(args, "box_id")
	if err != nil {
		return nil, err
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, "sample-boxes/"+strconv.FormatInt(id, 10), nil)
}
