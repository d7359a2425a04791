// Package credentials looks up the credential records an automation server
// holds for a credential kind.
//
// The lookup only feeds selection UIs. A chosen credential enters the graph
// through store.ApplyCredential; nothing here touches a graph.
//
// [Client] talks to the server's REST API. [Latest] wraps any [Lookup] so
// that only the most recent request's answer is delivered: when the user
// moves to another node before a fetch returns, the old response is
// dropped with [ErrStale] instead of being merged.
package credentials
