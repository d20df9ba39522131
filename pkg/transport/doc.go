// Package transport is the HTTP layer of the SDK.
//
// Client sends every request to the platform base URL with
//
//	Authorization: Bearer <token>
//	Accept:        application/json
//	User-Agent:    adama-sdk-go (configurable)
//	X-Request-ID:  a fresh UUID
//
// and returns a Response holding the status code, the raw body, and the body
// decoded as JSON when it is JSON. Decoding is best-effort: a non-JSON body is
// not an error at this layer.
//
// Envelope turns a Response into a *model.Envelope and reports, as
// *apierr.Error values:
//
//   - a non-2xx status (message taken from the envelope or the body text)
//   - a body that is not a JSON envelope
//   - an envelope whose status is not "success"
//
// Each request runs in an OpenTelemetry client span named "platform <METHOD>"
// with the method, the path and the response status as attributes. The global
// tracer provider is used unless WithTracerProvider is given.
package transport
