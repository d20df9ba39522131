package sdk

import (
	"encoding/json"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/model"
)

// Kind tags the handle held by a Resource.
type Kind int

const (
	KindNamespace Kind = iota + 1
	KindService
	KindEndpoint
)

func (k Kind) String() string {
	switch k {
	case KindNamespace:
		return "namespace"
	case KindService:
		return "service"
	case KindEndpoint:
		return "endpoint"
	default:
		return "unknown"
	}
}

// Resource is the result of resolving a child name on a handle. Exactly one
// of the accessors matching Kind returns a non-nil handle.
type Resource struct {
	kind      Kind
	namespace *Namespace
	service   *Service
	endpoint  *Endpoint
}

// Kind reports which handle the resource holds.
func (r Resource) Kind() Kind {
	return r.kind
}

// Namespace returns the namespace handle, or nil.
func (r Resource) Namespace() *Namespace {
	return r.namespace
}

// Service returns the service handle, or nil.
func (r Resource) Service() *Service {
	return r.service
}

// Endpoint returns the endpoint handle, or nil.
func (r Resource) Endpoint() *Endpoint {
	return r.endpoint
}

// Path returns the platform path of the held handle.
func (r Resource) Path() string {
	switch r.kind {
	case KindNamespace:
		return r.namespace.Path()
	case KindService:
		return r.service.Path()
	case KindEndpoint:
		return r.endpoint.Path()
	default:
		return ""
	}
}

func decodeResult(env *model.Envelope, v any) error {
	if len(env.Result) == 0 {
		return apierr.New("platform response has no result").WithPayload(env.Raw)
	}
	if err := json.Unmarshal(env.Result, v); err != nil {
		return apierr.Newf("unparsable platform result: %v", err).WithPayload(env.Raw)
	}
	return nil
}
