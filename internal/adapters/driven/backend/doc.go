// Package backend provides the HTTP adapter for the SearchBox backend.
//
// Transport decorates every request with the session's vault PIN
// (X-Vault-PIN) and the CSRF token (X-CSRFToken). PINAuthFetch additionally
// prompts for a PIN when the backend answers 401 and retries once.
//
// Client layers typed endpoints over the transport and implements
// driven.Backend. Non-2xx answers become *domain.HTTPError values.
//
// Background calls (status checks, recommendations) are throttled through a
// token bucket so a busy front-end cannot flood the backend.
package backend
