// Package packs defines the tool packs exposed over MCP, one per remote
// integration.
//
// # Overview
//
// A pack groups the tools of one service: WooCommerce store reads and
// order analytics, Zendesk Support tickets, Zendesk Sell CRM lookups, the
// storefront theme's quote and sample-box endpoints, and OCR text
// extraction. Pack constructors take the credential store and the shared
// HTTP client and return a *tools.Pack ready for registration.
//
// # Handlers
//
// Handlers are pure orchestration. Each one decodes its validated
// argument mapping into a typed input struct, resolves the service's
// credential bundle, builds one or more adapter calls, and reshapes the
// JSON response. The analytics tools (sales trends, low stock, refund
// patterns) combine pages of results into aggregates; everything else is
// a single passthrough call.
//
// Credential resolution happens per call. The registry has already
// verified the bundle resolves before a handler runs, so the resolution
// here is a memoized lookup, not a second environment read.
//
// # Generated Tools
//
// The ten get_zendesk_sell_contact_* tools come from a static field
// table. Each fetches the contact once and extracts a single standard or
// custom field value.
package packs
