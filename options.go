package gfxhal

import (
	"log/slog"

	"github.com/gogpu/gfxhal/settings"
	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Device during Open.
//
// Example:
//
//	dev, err := gfxhal.Open(caps,
//	    gfxhal.WithSource(settings.FileSource("/etc/gfxhal.yaml")),
//	    gfxhal.WithRegistrar(svc),
//	)
type Option func(*options)

type options struct {
	source     settings.Source
	registrar  settings.Registrar
	component  string
	logger     *slog.Logger
	registerer prometheus.Registerer
}

func defaultOptions() options {
	return options{
		source:    settings.EmptySource{},
		component: settings.DefaultComponentName,
	}
}

// WithSource sets the raw override source read by Open. Reread with a nil
// source reads it again.
func WithSource(src settings.Source) Option {
	return func(o *options) {
		if src != nil {
			o.source = src
		}
	}
}

// WithRegistrar registers the device's settings for external introspection.
func WithRegistrar(r settings.Registrar) Option {
	return func(o *options) {
		o.registrar = r
	}
}

// WithComponentName sets the name the settings register under.
func WithComponentName(name string) Option {
	return func(o *options) {
		o.component = name
	}
}

// WithLogger sets a device-scoped logger. Without it the device logs through
// the package logger set with SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics registers pipeline construction metrics on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(o *options) {
		o.registerer = reg
	}
}
