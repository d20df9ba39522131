package sdk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/shamank/adama-sdk-go/pkg/apierr"
	"github.com/shamank/adama-sdk-go/pkg/artifact"
	"github.com/shamank/adama-sdk-go/pkg/model"
	"github.com/shamank/adama-sdk-go/pkg/transport"
)

// RegisterOption customizes Namespace.Register.
type RegisterOption func(*registerOptions)

type registerOptions struct {
	blocking bool
	timeout  time.Duration
	interval time.Duration
}

// NonBlocking makes Register return as soon as the platform accepted the
// artifact. The returned service is in the pending state.
func NonBlocking() RegisterOption {
	return func(o *registerOptions) {
		o.blocking = false
	}
}

// WithTimeout bounds how long Register waits for the service to become
// ready. Default: config Timeouts.Register.
func WithTimeout(d time.Duration) RegisterOption {
	return func(o *registerOptions) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithPollInterval sets the pause between readiness checks.
// Default: config Timeouts.PollInterval.
func WithPollInterval(d time.Duration) RegisterOption {
	return func(o *registerOptions) {
		if d > 0 {
			o.interval = d
		}
	}
}

// Register submits art to the namespace and returns a handle for the new
// service, named after the artifact's descriptor.
//
// By default Register then polls the service until the platform reports it
// ready, reports an error, or the timeout elapses. On error and timeout the
// handle is still returned so its State can be inspected.
func (n *Namespace) Register(ctx context.Context, art *artifact.Artifact, opts ...RegisterOption) (*Service, error) {
	if art == nil || art.Descriptor == nil {
		return nil, apierr.Wrap(apierr.ErrInvalidMetadata, "artifact has no descriptor")
	}

	timeouts := n.root.cfg.Timeouts
	o := &registerOptions{
		blocking: true,
		timeout:  timeouts.Register,
		interval: timeouts.PollInterval,
	}
	for _, opt := range opts {
		opt(o)
	}

	body, contentType, err := transport.Multipart(
		map[string]string{
			"type":     art.Descriptor.Type,
			"metadata": art.MetadataPath,
		},
		transport.FilePart{Field: "file", FileName: art.FileName(), Content: art.Archive},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to encode registration: %w", err)
	}

	resp, err := n.root.transport.Post(ctx, n.Path()+"/services", body, contentType)
	if err != nil {
		return nil, fmt.Errorf("failed to register %s: %w", art.Descriptor.Name, err)
	}
	env, err := transport.Envelope(resp)
	if err != nil {
		zap.L().Error("registration rejected",
			zap.String("namespace", n.name),
			zap.String("service", art.Descriptor.Name),
			zap.Error(err))
		return nil, err
	}

	var result model.RegistrationResult
	if len(env.Result) > 0 {
		if err := decodeResult(env, &result); err != nil {
			zap.L().Debug("registration result not decoded",
				zap.String("namespace", n.name),
				zap.Any("envelope", env.Raw),
				zap.Error(err))
		}
	}

	svc := n.Service(art.Descriptor.Name).At(art.Descriptor.Version)
	svc.state = model.StatePending

	zap.L().Info("registration accepted",
		zap.String("namespace", n.name),
		zap.String("service", svc.ID()),
		zap.String("state_url", result.StateURL),
		zap.Bool("blocking", o.blocking))

	if !o.blocking {
		return svc, nil
	}
	return svc, n.root.waitReady(ctx, svc, o)
}

// waitReady polls svc until it is ready or failed, or the timeout elapses.
// The deadline is checked before every sleep and sleeps never extend past
// it, so a timed-out wait lasts at most timeout plus one poll interval.
func (r *Root) waitReady(ctx context.Context, svc *Service, o *registerOptions) error {
	start := r.now()
	deadline := start.Add(o.timeout)

	for attempt := 1; ; attempt++ {
		info, err := svc.preload(ctx)
		switch {
		case err == nil:
			svc.info = info
			svc.state = model.StateReady
			zap.L().Info("service ready",
				zap.String("service", svc.ID()),
				zap.Int("attempts", attempt),
				zap.Duration("elapsed", r.now().Sub(start)))
			return nil
		case errors.Is(err, apierr.ErrRegistrationFailed):
			svc.state = model.StateError
			zap.L().Error("registration failed", zap.String("service", svc.ID()), zap.Error(err))
			return err
		case !errors.Is(err, apierr.ErrServiceNotReady):
			svc.state = model.StateError
			return fmt.Errorf("failed to poll %s: %w", svc.ID(), err)
		}

		remaining := deadline.Sub(r.now())
		if remaining <= 0 {
			svc.state = model.StateTimedOut
			zap.L().Warn("registration timed out",
				zap.String("service", svc.ID()),
				zap.Duration("timeout", o.timeout),
				zap.Int("attempts", attempt))
			return apierr.Wrap(apierr.ErrRegistrationTimeout,
				fmt.Sprintf("%s not ready after %s", svc.ID(), o.timeout))
		}

		wait := min(o.interval, remaining)
		zap.L().Debug("service pending",
			zap.String("service", svc.ID()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait))
		if err := r.sleep(ctx, wait); err != nil {
			svc.state = model.StateError
			zap.L().Warn("registration wait interrupted", zap.String("service", svc.ID()), zap.Error(err))
			return fmt.Errorf("registration of %s interrupted: %w", svc.ID(), err)
		}
	}
}
