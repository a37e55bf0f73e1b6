// Package http implements the HTTP transport of the auth gate.
//
// Every request passes the request gate first: skip-list, bearer token peek,
// per-key rate limiting and identity attachment. Route handlers then serve
// password and federated login, two-factor management, identity info and the
// admin rate-limit operations on top of the service layer.
package http
