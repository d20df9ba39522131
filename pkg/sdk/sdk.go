package sdk

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/config"
	"github.com/shamank/adama-sdk-go/pkg/model"
	"github.com/shamank/adama-sdk-go/pkg/transport"
)

// Platform is the public interface of an SDK session. Handles returned by it
// are created without network traffic; their descriptive info is fetched on
// first use.
type Platform interface {
	// Namespace returns a handle for the named namespace.
	Namespace(name string) *Namespace

	// Resolve returns the named namespace as a Resource.
	Resolve(name string) Resource

	// Namespaces lists the namespaces visible to the credential.
	Namespaces(ctx context.Context) ([]*Namespace, error)

	// AddNamespace creates a namespace and returns its handle.
	AddNamespace(ctx context.Context, spec model.NamespaceSpec) (*Namespace, error)

	// Status returns the platform status document.
	Status(ctx context.Context) (map[string]any, error)

	// Request performs an unauthenticated GET against an arbitrary URL.
	Request(ctx context.Context, rawURL string, params url.Values) (*transport.Response, error)
}

// logLevel controls the global logger installed by init. It is process-wide:
// every New sets it from its Config.Debug, so the most recent Root wins.
var logLevel = zap.NewAtomicLevelAt(zap.InfoLevel)

// init configures a default global zap logger for the SDK. Applications may
// replace it with zap.ReplaceGlobals(...) if they need custom logging.
func init() {
	c := zap.Config{
		Level:            logLevel,
		Development:      false,
		Encoding:         "console",
		EncoderConfig:    zap.NewDevelopmentEncoderConfig(),
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		panic(err)
	}
	zap.ReplaceGlobals(logger)
}

// urlGetter is implemented by transports able to reach hosts other than the
// platform without credentials.
type urlGetter interface {
	GetURL(ctx context.Context, rawURL string, params url.Values) (*transport.Response, error)
}

// Root is the concrete Platform. It owns the credential for the session and
// the transport every handle issues its requests through.
type Root struct {
	cfg       *config.Config
	transport transport.Transport

	now   func() time.Time
	sleep func(context.Context, time.Duration) error
}

var _ Platform = (*Root)(nil)

// Option customizes a Root.
type Option func(*options)

type options struct {
	transport     transport.Transport
	transportOpts []transport.Option
}

// WithTransport replaces the HTTP transport entirely.
func WithTransport(t transport.Transport) Option {
	return func(o *options) {
		o.transport = t
	}
}

// WithTransportOptions passes options to the default transport.
func WithTransportOptions(opts ...transport.Option) Option {
	return func(o *options) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}

// WithTracerProvider selects the provider request spans are created from.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return WithTransportOptions(transport.WithTracerProvider(tp))
}

// New validates cfg, applies default timeouts and returns a Root bound to the
// configured credential. No request is made.
func New(cfg *config.Config, opts ...Option) (*Root, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := cfg.Validate(); err != nil {
		zap.L().Error("invalid config", zap.Error(err))
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	cfg.Timeouts = cfg.Timeouts.WithDefaults()

	logLevel.SetLevel(levelFor(cfg))

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	t := o.transport
	if t == nil {
		base := []transport.Option{
			transport.WithTimeout(cfg.Timeouts.HTTP),
			transport.WithUserAgent(cfg.UserAgent),
		}
		t = transport.New(cfg.Credential, append(base, o.transportOpts...)...)
	}

	zap.L().Debug("sdk initialized", zap.String("url", cfg.BaseURL))

	return &Root{
		cfg:       cfg,
		transport: t,
		now:       time.Now,
		sleep:     sleepContext,
	}, nil
}

// Config returns the validated configuration of the session.
func (r *Root) Config() *config.Config {
	return r.cfg
}

// Namespace returns a handle for the named namespace without network traffic.
func (r *Root) Namespace(name string) *Namespace {
	return &Namespace{root: r, name: name}
}

// Resolve returns the named namespace as a Resource.
func (r *Root) Resolve(name string) Resource {
	return Resource{kind: KindNamespace, namespace: r.Namespace(name)}
}

// Namespaces lists the namespaces on the platform. Every call hits the network.
func (r *Root) Namespaces(ctx context.Context) ([]*Namespace, error) {
	var refs []model.NamespaceRef
	if err := r.getResult(ctx, "/namespaces", &refs); err != nil {
		return nil, fmt.Errorf("failed to list namespaces: %w", err)
	}
	out := make([]*Namespace, 0, len(refs))
	for _, ref := range refs {
		out = append(out, r.Namespace(ref.Name))
	}
	return out, nil
}

// AddNamespace creates a namespace and returns a handle for it.
func (r *Root) AddNamespace(ctx context.Context, spec model.NamespaceSpec) (*Namespace, error) {
	if spec.Name == "" {
		return nil, apierr.New("namespace name is required")
	}
	form := url.Values{"name": {spec.Name}}
	if spec.URL != "" {
		form.Set("url", spec.URL)
	}
	if spec.Description != "" {
		form.Set("description", spec.Description)
	}

	resp, err := r.transport.Post(ctx, "/namespaces", strings.NewReader(form.Encode()), "application/x-www-form-urlencoded")
	if err != nil {
		return nil, fmt.Errorf("failed to add namespace %s: %w", spec.Name, err)
	}
	if _, err := transport.Envelope(resp); err != nil {
		return nil, err
	}

	zap.L().Info("namespace created", zap.String("namespace", spec.Name))
	return r.Namespace(spec.Name), nil
}

// Status returns the decoded status document of the platform.
func (r *Root) Status(ctx context.Context) (map[string]any, error) {
	resp, err := r.transport.Get(ctx, "/status", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get platform status: %w", err)
	}
	env, err := transport.Envelope(resp)
	if err != nil {
		return nil, err
	}
	return env.Raw, nil
}

// Request performs an unauthenticated GET on rawURL with params as the query
// string. A non-2xx answer fails with the response body as message.
func (r *Root) Request(ctx context.Context, rawURL string, params url.Values) (*transport.Response, error) {
	g, ok := r.transport.(urlGetter)
	if !ok {
		return nil, fmt.Errorf("transport %T cannot issue direct requests", r.transport)
	}
	resp, err := g.GetURL(ctx, rawURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to request %s: %w", rawURL, err)
	}
	if !resp.OK() {
		msg := resp.Text()
		if strings.TrimSpace(msg) == "" {
			msg = fmt.Sprintf("%s returned HTTP %d", rawURL, resp.StatusCode)
		}
		return nil, apierr.New(msg).WithStatus(resp.StatusCode)
	}
	return resp, nil
}

// getResult GETs path and decodes the envelope result into v.
func (r *Root) getResult(ctx context.Context, path string, v any) error {
	resp, err := r.transport.Get(ctx, path, nil)
	if err != nil {
		return err
	}
	env, err := transport.Envelope(resp)
	if err != nil {
		return err
	}
	return decodeResult(env, v)
}

func levelFor(cfg *config.Config) zapcore.Level {
	if cfg.Debug {
		return zap.DebugLevel
	}
	return zap.InfoLevel
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
