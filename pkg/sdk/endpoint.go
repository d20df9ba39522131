package sdk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/model"
	"github.com/shamank/adama-sdk-go/pkg/transport"
)

// Endpoint is a single invocable operation of a service version. It holds
// no state besides its identity.
type Endpoint struct {
	svc  *Service
	name string
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string {
	return e.name
}

// Service returns the owning service handle.
func (e *Endpoint) Service() *Service {
	return e.svc
}

// Path returns the platform path of the endpoint for the currently selected
// service version.
func (e *Endpoint) Path() string {
	return e.svc.Path() + "/" + url.PathEscape(e.name)
}

// Result is the answer of an endpoint invocation.
type Result struct {
	// ServiceType is the type of the service that answered.
	ServiceType string
	// Value is the envelope result. Set only for services whose endpoints
	// answer with a JSON envelope (query, map_filter).
	Value json.RawMessage
	// Response is the raw HTTP response.
	Response *transport.Response
}

// Unwrapped reports whether Value holds an envelope result rather than the
// caller having to interpret the raw response.
func (r *Result) Unwrapped() bool {
	return model.ReturnsJSON(r.ServiceType)
}

// Decode unmarshals the result into v: the envelope result for JSON service
// types, the raw body otherwise.
func (r *Result) Decode(v any) error {
	data := r.Response.Body
	if r.Unwrapped() {
		data = r.Value
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to decode result: %w", err)
	}
	return nil
}

// Text returns the raw response body.
func (r *Result) Text() string {
	return r.Response.Text()
}

// Call invokes the endpoint with params as the query string. The service
// type is loaded first, on the first call only, to decide how the answer is
// interpreted: query and map_filter services must answer with a success
// envelope whose result is returned; any other type only needs a 2xx.
func (e *Endpoint) Call(ctx context.Context, params url.Values) (*Result, error) {
	serviceType, err := e.svc.Type(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := e.svc.ns.root.transport.Get(ctx, e.Path(), params)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", e.Path(), err)
	}

	res := &Result{ServiceType: serviceType, Response: resp}
	if model.ReturnsJSON(serviceType) {
		env, err := transport.Envelope(resp)
		if err != nil {
			return nil, err
		}
		res.Value = env.Result
	} else if err := transport.CheckStatus(resp); err != nil {
		return nil, err
	}

	zap.L().Debug("endpoint called",
		zap.String("endpoint", e.Path()),
		zap.String("type", serviceType),
		zap.Int("status", resp.StatusCode))
	return res, nil
}
