// Package client contains the client-side building blocks that talk to the
// outside world.
//
// # Overview
//
//  1. Gateway, the transport-agnostic contract of the staffdesk REST API,
//     and HTTPClient, its net/http implementation. HTTPClient attaches the
//     bearer token, decodes JSON and multipart responses, and maps failures
//     onto the error kinds in package common.
//  2. InitDatabase, which opens the local SQLite file and applies the
//     embedded goose migrations.
//
// # Error Handling
//
//   - transport failures wrap common.ErrUnavailable
//   - context cancellation wraps common.ErrAborted
//   - 401 wraps common.ErrUnauthorized, 403 wraps common.ErrForbidden
//   - any other non-2xx becomes *common.APIError carrying the server message
//
// No call is retried.
package client
