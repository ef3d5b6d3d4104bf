package config

import (
	"fmt"
	"net/http"
	"time"

	msgraphsdk "github.com/microsoftgraph/msgraph-sdk-go"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"golang.org/x/time/rate"

	"github.com/acuvity/sharepoint-flow/auth"
	"github.com/acuvity/sharepoint-flow/client"
	"github.com/acuvity/sharepoint-flow/logger"
)

// Defaults for the outbound HTTP side.
const (
	DefaultHTTPTimeout = 30 * time.Second
	DefaultRateLimit   = 10.0
	DefaultRateBurst   = 15
)

// GraphClientFunc builds a Graph client for one set of credentials.
type GraphClientFunc func(secret auth.Secret) (*msgraphsdk.GraphServiceClient, error)

// Config is everything a node needs besides its own arguments.
type Config struct {
	// HTTPClient is used for ACS token requests and SharePoint REST calls.
	HTTPClient *http.Client
	// SiteURL returns the scheme and host for a SharePoint domain.
	SiteURL func(siteDomain string) string
	// TokenURL returns the ACS token endpoint for a tenant.
	TokenURL func(tenantID string) string
	// GraphClient builds the Graph SDK client.
	GraphClient GraphClientFunc
	// DefaultSecret fills node secrets that arrive empty.
	DefaultSecret auth.Secret
	// Limiter paces SharePoint REST requests.
	Limiter *rate.Limiter
}

// Default returns a Config talking to the real Microsoft endpoints.
func Default() *Config {
	return &Config{
		HTTPClient: &http.Client{Timeout: DefaultHTTPTimeout},
		SiteURL: func(siteDomain string) string {
			return fmt.Sprintf("https://%s", siteDomain)
		},
		TokenURL:    auth.ACSTokenURL,
		GraphClient: client.GetClient,
		Limiter:     rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateBurst),
	}
}

// FromViper builds a Config from flags, environment and config file.
func FromViper() *Config {
	cfg := Default()

	if timeout := viper.GetDuration("http-timeout"); timeout > 0 {
		cfg.HTTPClient.Timeout = timeout
	}
	if zerolog.GlobalLevel() <= zerolog.TraceLevel {
		logger.AttachLoggingTransport(cfg.HTTPClient)
	}

	limit := viper.GetFloat64("rate-limit")
	burst := viper.GetInt("rate-burst")
	if limit <= 0 {
		limit = DefaultRateLimit
	}
	if burst <= 0 {
		burst = DefaultRateBurst
	}
	cfg.Limiter = rate.NewLimiter(rate.Limit(limit), burst)

	cfg.DefaultSecret = auth.Secret{
		TenantID:     viper.GetString("tenant-id"),
		ClientID:     viper.GetString("client-id"),
		ClientSecret: viper.GetString("client-secret"),
	}
	return cfg
}

// Secret returns s, falling back field by field to the default secret.
func (c *Config) Secret(s auth.Secret) auth.Secret {
	if s.TenantID == "" {
		s.TenantID = c.DefaultSecret.TenantID
	}
	if s.ClientID == "" {
		s.ClientID = c.DefaultSecret.ClientID
	}
	if s.ClientSecret == "" {
		s.ClientSecret = c.DefaultSecret.ClientSecret
	}
	return s
}
