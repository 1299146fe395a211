// ABOUTME: Zendesk Support tool pack: ticket search, ticket reads, comments, user search.
// ABOUTME: Pure passthrough; responses are returned exactly as the Support API shapes them.

package packs

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/mitchellh/mapstructure"

	"github.com/RkentMatsui/Woocommerce-MCP/internal/credentials"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/services"
	"github.com/RkentMatsui/Woocommerce-MCP/internal/tools"
)

type zendeskHandlers struct {
	creds *credentials.Store
	httpc *http.Client
}

// ZendeskPack builds the support tools.
func ZendeskPack(creds *credentials.Store, httpc *http.Client) *tools.Pack {
	h := &zendeskHandlers{creds: creds, httpc: httpc}

	return &tools.Pack{
		ID: "zendesk",
		Tools: []*tools.Tool{
			{
				Descriptor: tools.Descriptor{
					Name:        "search_zendesk_tickets",
					Description: "Search for Zendesk tickets using Zendesk search query syntax.",
					Params: []tools.Param{
						{Name: "query", Type: tools.TypeString, Description: "Zendesk search query (e.g. 'status<solved order_id:12345')", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceZendesk},
				},
				Handler: h.searchTickets,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_zendesk_ticket",
					Description: "Get details of a specific Zendesk ticket by ID.",
					Params: []tools.Param{
						{Name: "ticket_id", Type: tools.TypeString, Description: "The Zendesk ticket ID", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceZendesk},
				},
				Handler: h.getTicket,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "get_zendesk_ticket_comments",
					Description: "Retrieve all comments for a specific Zendesk ticket.",
					Params: []tools.Param{
						{Name: "ticket_id", Type: tools.TypeString, Description: "The Zendesk ticket ID", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceZendesk},
				},
				Handler: h.getTicketComments,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "add_zendesk_ticket_comment",
					Description: "Add a comment (reply or internal note) to a Zendesk ticket.",
					Params: []tools.Param{
						{Name: "ticket_id", Type: tools.TypeString, Description: "The Zendesk ticket ID", Required: true},
						{Name: "comment", Type: tools.TypeString, Description: "The comment text", Required: true},
						{Name: "public", Type: tools.TypeBoolean, Description: "Whether the comment is public (visible to requester) or internal", Default: true},
					},
					Credentials: []credentials.Service{credentials.ServiceZendesk},
				},
				Handler: h.addTicketComment,
			},
			{
				Descriptor: tools.Descriptor{
					Name:        "search_zendesk_users",
					Description: "Search for Zendesk users by email, name, or phone.",
					Params: []tools.Param{
						{Name: "query", Type: tools.TypeString, Description: "Search query for users", Required: true},
					},
					Credentials: []credentials.Service{credentials.ServiceZendesk},
				},
				Handler: h.searchUsers,
			},
		},
	}
}

func (h *zendeskHandlers) client() (*services.Zendesk, error) {
	b, err := h.creds.Get(credentials.ServiceZendesk)
	if err != nil {
		return nil, err
	}
	return services.NewZendesk(b, h.httpc), nil
}

type zendeskSearchInput struct {
	Query string `mapstructure:"query"`
}

func (h *zendeskHandlers) searchTickets(ctx context.Context, args map[string]any) (any, error) {
	var in zendeskSearchInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("query", in.Query)
	return client.Get(ctx, "search.json", query)
}

type zendeskTicketInput struct {
	TicketID string `mapstructure:"ticket_id"`
}

func (h *zendeskHandlers) getTicket(ctx context.Context, args map[string]any) (any, error) {
	var in zendeskTicketInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, "tickets/"+url.PathEscape(in.TicketID)+".json", nil)
}

func (h *zendeskHandlers) getTicketComments(ctx context.Context, args map[string]any) (any, error) {
	var in zendeskTicketInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}
	return client.Get(ctx, "tickets/"+url.PathEscape(in.TicketID)+"/comments.json", nil)
}

type zendeskCommentInput struct {
	TicketID string `mapstructure:"ticket_id"`
	Comment  string `mapstructure:"comment"`
	Public   bool   `mapstructure:"public"`
}

func (h *zendeskHandlers) addTicketComment(ctx context.Context, args map[string]any) (any, error) {
	var in zendeskCommentInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	payload := map[string]any{
		"ticket": map[string]any{
			"comment": map[string]any{
				"body":   in.Comment,
				"public": in.Public,
			},
		},
	}
	return client.Put(ctx, "tickets/"+url.PathEscape(in.TicketID)+".json", payload)
}

func (h *zendeskHandlers) searchUsers(ctx context.Context, args map[string]any) (any, error) {
	var in zendeskSearchInput
	if err := mapstructure.Decode(args, &in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}

	client, err := h.client()
	if err != nil {
		return nil, err
	}

	query := url.Values{}
	query.Set("query", in.Query)
	return client.Get(ctx, "users/search.json", query)
}
