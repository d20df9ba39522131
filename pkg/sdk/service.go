package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/model"
	"github.com/shamank/adama-sdk-go/pkg/transport"
)

// Deleted is the name reported by a service handle after Delete.
const Deleted = "<deleted>"

// Service is a handle on one version of a service. Distinct versions are
// distinct services; At switches the handle between them.
type Service struct {
	ns      *Namespace
	name    string
	version string
	info    *model.ServiceInfo
	deleted bool
	state   model.RegistrationState
}

// Name returns the service name, or Deleted once the service was deleted
// through this handle.
func (s *Service) Name() string {
	if s.deleted {
		return Deleted
	}
	return s.name
}

// Version returns the selected version.
func (s *Service) Version() string {
	return s.version
}

// Namespace returns the owning namespace handle.
func (s *Service) Namespace() *Namespace {
	return s.ns
}

// ID returns the platform identifier of the selected version, name_vVERSION.
func (s *Service) ID() string {
	return s.name + "_v" + s.version
}

// Path returns the platform path of the selected version.
func (s *Service) Path() string {
	return s.ns.Path() + "/" + url.PathEscape(s.ID())
}

// State returns the registration state. Handles that were resolved rather
// than registered report model.StateNone.
func (s *Service) State() model.RegistrationState {
	return s.state
}

// IsDeleted reports whether Delete succeeded on this handle.
func (s *Service) IsDeleted() bool {
	return s.deleted
}

// Loaded reports whether the descriptive info has been fetched.
func (s *Service) Loaded() bool {
	return s.info != nil
}

// At selects version on this handle and returns it. Cached info is dropped
// so the next access fetches the newly selected version.
func (s *Service) At(version string) *Service {
	if version == "" {
		version = model.DefaultVersion
	}
	s.version = version
	s.info = nil
	s.deleted = false
	s.state = model.StateNone
	return s
}

// Info returns the service info, fetching it on the first call only.
func (s *Service) Info(ctx context.Context) (*model.ServiceInfo, error) {
	if s.deleted {
		return nil, apierr.Wrap(apierr.ErrServiceDeleted, s.ID())
	}
	if s.info != nil {
		return s.info, nil
	}
	info, err := s.preload(ctx)
	if err != nil {
		return nil, err
	}
	s.info = info
	return s.info, nil
}

// Type returns the declared service type.
func (s *Service) Type(ctx context.Context) (string, error) {
	info, err := s.Info(ctx)
	if err != nil {
		return "", err
	}
	return info.Type, nil
}

// Field returns an arbitrary key of the service info. Keys starting with an
// underscore never trigger a fetch.
func (s *Service) Field(ctx context.Context, key string) (any, bool, error) {
	if strings.HasPrefix(key, "_") {
		return nil, false, nil
	}
	info, err := s.Info(ctx)
	if err != nil {
		return nil, false, err
	}
	v, ok := info.Raw[key]
	return v, ok, nil
}

// Endpoint returns a handle for the named endpoint without network traffic.
func (s *Service) Endpoint(name string) *Endpoint {
	return &Endpoint{svc: s, name: name}
}

// Resolve returns the named endpoint as a Resource.
func (s *Service) Resolve(name string) Resource {
	return Resource{kind: KindEndpoint, endpoint: s.Endpoint(name)}
}

// Delete removes the selected version from the platform. The handle then
// reports Deleted as its name and refuses to fetch info.
func (s *Service) Delete(ctx context.Context) error {
	if s.deleted {
		return apierr.Wrap(apierr.ErrServiceDeleted, s.ID())
	}
	resp, err := s.ns.root.transport.Delete(ctx, s.Path())
	if err != nil {
		return fmt.Errorf("failed to delete service %s: %w", s.ID(), err)
	}
	if _, err := transport.Envelope(resp); err != nil {
		return err
	}

	zap.L().Info("service deleted",
		zap.String("namespace", s.ns.name),
		zap.String("service", s.ID()))

	s.deleted = true
	s.info = nil
	return nil
}

// preload fetches the service status. A failed registration yields
// ErrRegistrationFailed, a registration still in flight ErrServiceNotReady.
func (s *Service) preload(ctx context.Context) (*model.ServiceInfo, error) {
	resp, err := s.ns.root.transport.Get(ctx, s.Path(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load service %s: %w", s.ID(), err)
	}
	env, err := transport.Envelope(resp)
	if err != nil {
		return nil, err
	}
	var status model.ServiceStatus
	if err := decodeResult(env, &status); err != nil {
		return nil, err
	}

	if status.Failed() {
		msg := status.Msg
		if msg == "" {
			msg = s.ID()
		}
		return nil, apierr.Wrap(apierr.ErrRegistrationFailed, msg).WithPayload(env.Raw).WithStatus(resp.StatusCode)
	}
	if !status.Present() {
		return nil, apierr.Wrap(apierr.ErrServiceNotReady, s.ID()).WithPayload(env.Raw)
	}

	info, err := status.Info()
	if err != nil {
		return nil, apierr.Newf("unparsable service info: %v", err).WithPayload(env.Raw)
	}
	zap.L().Debug("service info loaded",
		zap.String("namespace", s.ns.name),
		zap.String("service", s.ID()),
		zap.String("type", info.Type))
	return info, nil
}
