// Package linksdk provides the request/response types for the linkgate HTTP
// API and a small typed client. The server handlers and the client share
// these types so the wire contract lives in one place.
package linksdk
