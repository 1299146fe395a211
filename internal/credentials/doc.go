// Package credentials resolves per-service secrets from the process
// environment.
//
// # Overview
//
// Each remote integration (WooCommerce, Zendesk, Zendesk Sell, the theme
// API, OCR) declares a fixed set of environment variables. A Store hands
// out Bundles: a bundle exists only when every required variable for its
// service is set. Partial configuration is an error that names all the
// absent variables at once, so tools backed by a half-configured service
// fail fast instead of making doomed remote calls.
//
// # Usage
//
//	store := credentials.NewStore()
//	b, err := store.Get(credentials.ServiceWooCommerce)
//	if err != nil {
//		var missing *credentials.MissingError
//		if errors.As(err, &missing) {
//			// missing.Keys lists every unset variable
//		}
//	}
//	url := b.Get(credentials.EnvStoreURL)
//
// Complete bundles are memoized for the process lifetime. Secrets are
// re-read only on process restart.
package credentials
