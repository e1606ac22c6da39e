// Package reqctx carries request scoped metadata (request id, client
// address, user agent) through context.Context and stamps it onto log
// records.
//
// The authenticated identity does not live here; see authorize.WithIdentity.
package reqctx
