// ABOUTME: Zendesk Sell tool pack: lead/contact/deal search and reads.
// ABOUTME: Ten per-field contact tools are generated from a static field table.

package packs

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

// sellContactField maps one generated tool to the contact field it reads.
// Field is the key looked up in the contact: standard fields first, then
// the custom_fields object.
type sellContactField struct {
	Suffix  string
	Display string
	Field   string
}

// sellContactFields drives the generated get_zendesk_sell_contact_*
// tools. "industry" is a standard Sell field; the rest live in
// custom_fields under their display names.
var sellContactFields = []sellContactField{
	{Suffix: "industry", Display: "Industry", Field: "industry"},
	{Suffix: "client", Display: "Client", Field: "Client"},
	{Suffix: "equipment", Display: "Equipment", Field: "Equipment"},
	{Suffix: "sample_box", Display: "Sample Box", Field: "Sample Box"},
	{Suffix: "product", Display: "Product", Field: "Product"},
	{Suffix: "service", Display: "Service", Field: "Service"},
	{Suffix: "web_account_id", Display: "Web Account ID", Field: "Web Account ID"},
	{Suffix: "journey_of_acquisition", Display: "Journey of Acquisition", Field: "Journey of Acquisition"},
	{Suffix: "completed_web_training", Display: "Completed Web Training", Field: "Completed Web Training"},
	{Suffix: "current_suppliers", Display: "Current Suppliers", Field: "Current Suppliers"},
}

type sellHandlers struct {
	creds *credentials.Store
	httpc *http.Client
}

// ZendeskSellPack builds the CRM tools.
func ZendeskSellPack(creds *credentials.Store, httpc *http.Client) *tools.Pack {
	h := &sellHandlers{creds: creds, httpc: httpc}

	all := []*tools.Tool{
		{
			Descriptor: tools.Descriptor{
				Name:        "search_zendesk_sell_leads",
				Description: "Search for leads in Zendesk Sell.",
				Params: []tools.Param{
					{Name: "email", Type: tools.TypeString, Description: "Filter by email"},
					{Name: "first_name", Type: tools.TypeString, Description: "Filter by first name"},
					{Name: "last_name", Type: tools.TypeString, Description: "Filter by last name"},
					{Name: "organization_name", Type: tools.TypeString, Description: "Filter by organization name"},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.search("leads"),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_zendesk_sell_lead",
				Description: "Get details of a specific Zendesk Sell lead by ID.",
				Params: []tools.Param{
					{Name: "lead_id", Type: tools.TypeNumber, Description: "The Zendesk Sell lead ID", Required: true},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.getByID("leads", "lead_id"),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "search_zendesk_sell_contacts",
				Description: "Search for contacts in Zendesk Sell.",
				Params: []tools.Param{
					{Name: "email", Type: tools.TypeString, Description: "Filter by email"},
					{Name: "name", Type: tools.TypeString, Description: "Filter by name"},
					{Name: "is_organization", Type: tools.TypeBoolean, Description: "Filter by whether the contact is an organization"},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.search("contacts"),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_zendesk_sell_contact",
				Description: "Get details of a specific Zendesk Sell contact by ID.",
				Params: []tools.Param{
					{Name: "contact_id", Type: tools.TypeNumber, Description: "The Zendesk Sell contact ID", Required: true},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.getByID("contacts", "contact_id"),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "search_zendesk_sell_deals",
				Description: "Search for deals in Zendesk Sell.",
				Params: []tools.Param{
					{Name: "name", Type: tools.TypeString, Description: "Filter by deal name"},
					{Name: "contact_id", Type: tools.TypeNumber, Description: "Filter by contact ID"},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.search("deals"),
		},
		{
			Descriptor: tools.Descriptor{
				Name:        "get_zendesk_sell_deal",
				Description: "Get details of a specific Zendesk Sell deal by ID.",
				Params: []tools.Param{
					{Name: "deal_id", Type: tools.TypeNumber, Description: "The Zendesk Sell deal ID", Required: true},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.getByID("deals", "deal_id"),
		},
	}

	for _, field := range sellContactFields {
		all = append(all, &tools.Tool{
			Descriptor: tools.Descriptor{
				Name:        "get_zendesk_sell_contact_" + field.Suffix,
				Description: fmt.Sprintf("Fetch the '%s' field value for a specific Zendesk Sell contact.", field.Display),
				Params: []tools.Param{
					{Name: "contact_id", Type: tools.TypeNumber, Description: "The Zendesk Sell contact ID", Required: true},
				},
				Credentials: []credentials.Service{credentials.ServiceZendeskSell},
			},
			Handler: h.contactField(field),
		})
	}

	return &tools.Pack{ID: "zendesk_sell", Tools: all}
}

func (h *sellHandlers) client() (*services.ZendeskSell, error) {
	b, err := h.creds.Get(credentials.ServiceZendeskSell)
	if err != nil {
		return nil, err
	}
	return services.NewZendeskSell(b, h.httpc), nil
}

// search forwards every provided argument as a query parameter on the
// collection endpoint.
func (h *sellHandlers) search(resource string) tools.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		client, err := h.client()
		if err != nil {
			return nil, err
		}

		query := url.Values{}
		for key, value := range args {
			query.Set(key, formatQueryValue(value))
		}
		return client.Get(ctx, resource, query)
	}
}

// getByID fetches a single resource by its numeric ID argument.
func (h *sellHandlers) getByID(resource, idArg string) tools.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		id, err := int64Arg(args, idArg)
		if err != nil {
			return nil, err
		}

		client, err := h.client()
		if err != nil {
			return nil, err
		}
		return client.Get(ctx, resource+"/"+strconv.FormatInt(id, 10), nil)
	}
}

type sellContactIDInput struct {
	ContactID int64 `mapstructure:"contact_id"`
}

// contactField returns a handler that fetches one contact and extracts a
// single field value. Standard fields win over custom_fields entries of
// the same name; an empty standard value falls through to custom_fields.
func (h *sellHandlers) contactField(field sellContactField) tools.Handler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		var in sellContactIDInput
		if err := mapstructure.Decode(args, &in); err != nil {
			return nil, fmt.Errorf("invalid input: %w", err)
		}

		client, err := h.client()
		if err != nil {
			return nil, err
		}

		result, err := client.Get(ctx, "contacts/"+strconv.FormatInt(in.ContactID, 10), nil)
		if err != nil {
			return nil, err
		}

		var value any
		if obj, ok := result.(map[string]any); ok {
			if data, ok := obj["data"].(map[string]any); ok {
				value = data[field.Field]
				if value == nil || value == "" {
					if custom, ok := data["custom_fields"].(map[string]any); ok {
						value = custom[field.Field]
					}
				}
			}
		}

		return map[string]any{
			"contact_id": in.ContactID,
			"field":      field.Field,
			"value":      value,
		}, nil
	}
}

// int64Arg reads a numeric argument that has already passed schema
// validation.
func int64Arg(args map[string]any, name string) (int64, error) {
	switch v := args[name].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	}
	return 0, fmt.Errorf("argument %q is not a number", name)
}

// formatQueryValue renders an argument value for a query string without
// losing precision on large IDs.
func formatQueryValue(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		if v == math.Trunc(v) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	}
	return fmt.Sprintf("%v", value)
}
