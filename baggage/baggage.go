package baggage

import (
	"context"
	"net/http"

	"github.com/acuvity/sharepoint-flow/config"
)

// baggage is a custom context key for storing the node configuration.
type baggage struct{}

// WithConfig attaches cfg to ctx.
func WithConfig(ctx context.Context, cfg *config.Config) context.Context {
	return context.WithValue(ctx, baggage{}, cfg)
}

// WithConfigFromRequest sends the configuration as a baggage for HTTP transports.
func WithConfigFromRequest(cfg *config.Config) func(context.Context, *http.Request) context.Context {
	return func(ctx context.Context, r *http.Request) context.Context {
		return WithConfig(ctx, cfg)
	}
}

// WithConfigFunc sends the configuration as a baggage for stdio transports.
func WithConfigFunc(cfg *config.Config) func(context.Context) context.Context {
	return func(ctx context.Context) context.Context {
		return WithConfig(ctx, cfg)
	}
}

// ConfigFromContext extracts the configuration from the context, or nil.
func ConfigFromContext(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(baggage{}).(*config.Config)
	return cfg
}
