package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/model"
)

// Namespace is a handle on a platform namespace. Its descriptive info is
// fetched on first use and kept for the lifetime of the handle.
type Namespace struct {
	root *Root
	name string
	info *model.NamespaceInfo
}

// Name returns the namespace name.
func (n *Namespace) Name() string {
	return n.name
}

// Path returns the platform path of the namespace.
func (n *Namespace) Path() string {
	return "/" + url.PathEscape(n.name)
}

// Loaded reports whether the descriptive info has been fetched.
func (n *Namespace) Loaded() bool {
	return n.info != nil
}

// Info returns the namespace info, fetching it on the first call only.
func (n *Namespace) Info(ctx context.Context) (*model.NamespaceInfo, error) {
	if n.info != nil {
		return n.info, nil
	}
	var info model.NamespaceInfo
	if err := n.root.getResult(ctx, n.Path(), &info); err != nil {
		return nil, fmt.Errorf("failed to load namespace %s: %w", n.name, err)
	}
	zap.L().Debug("namespace info loaded", zap.String("namespace", n.name))
	n.info = &info
	return n.info, nil
}

// Field returns an arbitrary key of the namespace info. Keys starting with
// an underscore are private to the handle and never trigger a fetch.
func (n *Namespace) Field(ctx context.Context, key string) (any, bool, error) {
	if strings.HasPrefix(key, "_") {
		return nil, false, nil
	}
	info, err := n.Info(ctx)
	if err != nil {
		return nil, false, err
	}
	v, ok := info.Raw[key]
	return v, ok, nil
}

// Service returns a handle for the named service at the default version
// without network traffic.
func (n *Namespace) Service(name string) *Service {
	return &Service{ns: n, name: name, version: model.DefaultVersion}
}

// Resolve returns the named service as a Resource.
func (n *Namespace) Resolve(name string) Resource {
	return Resource{kind: KindService, service: n.Service(name)}
}

// Services lists the services of the namespace. Every call hits the network.
func (n *Namespace) Services(ctx context.Context) ([]*Service, error) {
	var refs []model.ServiceRef
	if err := n.root.getResult(ctx, n.Path()+"/services", &refs); err != nil {
		return nil, fmt.Errorf("failed to list services of %s: %w", n.name, err)
	}
	out := make([]*Service, 0, len(refs))
	for _, ref := range refs {
		svc := n.Service(ref.Name)
		if ref.Version != "" {
			svc.version = ref.Version
		}
		out = append(out, svc)
	}
	return out, nil
}
