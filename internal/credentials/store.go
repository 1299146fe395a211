// ABOUTME: Environment-backed credential store for the remote service integrations.
// ABOUTME: Resolves complete bundles per service and memoizes them for the process lifetime.

package credentials

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
)

// Service identifies one remote integration whose credentials resolve as a
// unit. A bundle is either fully present or the service's tools fail at
// call time; partial bundles are never handed out.
type Service string

const (
	ServiceWooCommerce Service = "woocommerce"
	ServiceZendesk     Service = "zendesk"
	ServiceZendeskSell Service = "zendesk_sell"
	ServiceTheme       Service = "theme"
	ServiceOCR         Service = "ocr"
)

// Environment variable names, one block per integration. The theme API
// lives on the same WordPress install as the store, so it shares WC_URL.
const (
	EnvStoreURL       = "WC_URL"
	EnvConsumerKey    = "WC_CONSUMER_KEY"
	EnvConsumerSecret = "WC_CONSUMER_SECRET"

	EnvZendeskSubdomain = "ZENDESK_SUBDOMAIN"
	EnvZendeskEmail     = "ZENDESK_EMAIL"
	EnvZendeskAPIToken  = "ZENDESK_API_TOKEN"

	EnvZendeskSellToken = "ZENDESK_SELL_API_TOKEN"

	EnvThemeAPIKey      = "THEME_API_KEY"
	EnvThemeAPIUsername = "THEME_API_USERNAME"
	EnvThemeAPIPassword = "THEME_API_PASSWORD"

	EnvOCRAPIKey = "OCR_API_KEY"
	EnvOCRAPIURL = "OCR_API_URL"
)

// ErrUnknownService is returned when a bundle is requested for a service
// the store has no variable mapping for.
var ErrUnknownService = errors.New("unknown service")

// required lists the variables that must all be set before a service's
// bundle resolves.
var required = map[Service][]string{
	ServiceWooCommerce: {EnvStoreURL, EnvConsumerKey, EnvConsumerSecret},
	ServiceZendesk:     {EnvZendeskSubdomain, EnvZendeskEmail, EnvZendeskAPIToken},
	ServiceZendeskSell: {EnvZendeskSellToken},
	ServiceTheme:       {EnvStoreURL, EnvThemeAPIKey, EnvThemeAPIUsername, EnvThemeAPIPassword},
	ServiceOCR:         {EnvOCRAPIKey},
}

// optional lists variables captured into the bundle when set but not
// needed for the bundle to resolve.
var optional = map[Service][]string{
	ServiceOCR: {EnvOCRAPIURL},
}

// MissingError names every unset variable for a service so a
// misconfigured integration can be fixed in one pass.
type MissingError struct {
	Service Service
	Keys    []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("missing credentials for %s: %s", e.Service, strings.Join(e.Keys, ", "))
}

// Bundle holds the resolved secrets for one service.
type Bundle struct {
	Service Service
	values  map[string]string
}

// Get returns the value captured for an environment variable name, or ""
// when the variable was not part of the bundle.
func (b *Bundle) Get(key string) string {
	return b.values[key]
}

// Store resolves credential bundles from the process environment. Complete
// bundles are memoized; a service that failed to resolve is re-read on the
// next request so setting the variable does not require a rebuild of the
// store.
type Store struct {
	mu      sync.Mutex
	lookup  func(string) string
	bundles map[Service]*Bundle
}

// NewStore returns a store backed by os.Getenv.
func NewStore() *Store {
	return NewStoreWithLookup(os.Getenv)
}

// NewStoreWithLookup returns a store using lookup in place of the process
// environment. Tests substitute a map-backed lookup.
func NewStoreWithLookup(lookup func(string) string) *Store {
	return &Store{
		lookup:  lookup,
		bundles: make(map[Service]*Bundle),
	}
}

// Get resolves the bundle for a service. When one or more required
// variables are unset it returns a MissingError listing all of them, and
// no bundle is cached.
func (s *Store) Get(service Service) (*Bundle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b, ok := s.bundles[service]; ok {
		return b, nil
	}

	keys, ok := required[service]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownService, service)
	}

	values := make(map[string]string)
	var missing []string
	for _, key := range keys {
		v := s.lookup(key)
		if v == "" {
			missing = append(missing, key)
			continue
		}
		values[key] = v
	}
	if len(missing) > 0 {
		return nil, &MissingError{Service: service, Keys: missing}
	}

	for _, key := range optional[service] {
		if v := s.lookup(key); v != "" {
			values[key] = v
		}
	}

	b := &Bundle{Service: service, values: values}
	s.bundles[service] = b
	return b, nil
}

// Check resolves every known service and reports the result per service.
// A nil entry means the bundle resolved completely.
func (s *Store) Check() map[Service]error {
	out := make(map[Service]error, len(required))
	for svc := range required {
		_, err := s.Get(svc)
		out[svc] = err
	}
	return out
}

// Services returns every service the store knows about, sorted by name.
func Services() []Service {
	out := make([]Service, 0, len(required))
	for svc := range required {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
