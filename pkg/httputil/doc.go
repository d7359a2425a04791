// Package httputil provides the HTTP plumbing shared by remote collaborators.
//
// # Overview
//
//   - [Client]: JSON GET client with default headers, status mapping and retries
//   - [Retry]: automatic retry with exponential backoff
//
// # Retry
//
// [Retry] only re-attempts errors wrapped in [RetryableError]. [Client]
// wraps the transient failures:
//
//   - Network errors
//   - 5xx server errors
//   - 429 rate limit responses
//
// Other statuses map to structured errors from pkg/errors: 401 and 403 to
// UNAUTHORIZED, 404 to NOT_FOUND, anything else to NETWORK_ERROR.
//
// # Observability
//
// Every request made through [Client] is reported to the registered
// [observability.HTTPHooks].
//
// [observability.HTTPHooks]: github.com/matzehuels/flowcanvas/pkg/observability
package httputil
