// Package connection centralizes AWS connectivity for the toolkit: a tuned
// HTTP transport, a lazily loaded aws.Config, resolvers for values kept in
// SSM and Secrets Manager, and a watcher for rotation notifications.
//
// Connection behavior is fixed at construction. The transport knobs in
// TransportSettings are applied exactly once, when the shared aws.Config is
// first loaded; nothing downstream reconfigures sockets afterwards.
package connection

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// TransportSettings tunes the HTTP client handed to the AWS SDK. Zero values
// fall back to the toolkit defaults.
type TransportSettings struct {
	MaxConns            int
	MaxIdleConns        int
	IdleConnTimeout     time.Duration
	DialTimeout         time.Duration
	KeepAlive           time.Duration
	TLSHandshakeTimeout time.Duration
}

// Settings describes how to reach AWS.
type Settings struct {
	Region    string
	Endpoint  string // optional base endpoint override, for local emulators
	Transport TransportSettings
}

var (
	awsCfg  aws.Config
	awsOnce sync.Once
	awsErr  error
)

// LoadAWSConfig loads the AWS configuration (env vars, profile, IAM role) as
// a lazy singleton. The first caller's settings win; later calls reuse the
// already loaded configuration.
func LoadAWSConfig(ctx context.Context, settings Settings) (aws.Config, error) {
	awsOnce.Do(func() {
		opts := []func(*awsconfig.LoadOptions) error{
			awsconfig.WithHTTPClient(newHTTPClient(settings.Transport)),
		}
		if settings.Region != "" {
			opts = append(opts, awsconfig.WithRegion(settings.Region))
		}
		if settings.Endpoint != "" {
			opts = append(opts, awsconfig.WithBaseEndpoint(settings.Endpoint))
		}
		awsCfg, awsErr = awsconfig.LoadDefaultConfig(ctx, opts...)
	})
	return awsCfg, awsErr
}

func (t TransportSettings) withDefaults() TransportSettings {
	if t.MaxConns == 0 {
		t.MaxConns = 100
	}
	if t.MaxIdleConns == 0 {
		t.MaxIdleConns = 32
	}
	if t.IdleConnTimeout == 0 {
		t.IdleConnTimeout = 90 * time.Second
	}
	if t.DialTimeout == 0 {
		t.DialTimeout = 5 * time.Second
	}
	if t.KeepAlive == 0 {
		t.KeepAlive = 30 * time.Second
	}
	if t.TLSHandshakeTimeout == 0 {
		t.TLSHandshakeTimeout = 10 * time.Second
	}
	return t
}

func newHTTPClient(ts TransportSettings) *http.Client {
	ts = ts.withDefaults()
	dialer := &net.Dialer{
		Timeout:   ts.DialTimeout,
		KeepAlive: ts.KeepAlive,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			DialContext:         dialer.DialContext,
			ForceAttemptHTTP2:   true,
			MaxConnsPerHost:     ts.MaxConns,
			MaxIdleConns:        ts.MaxIdleConns,
			MaxIdleConnsPerHost: ts.MaxIdleConns,
			IdleConnTimeout:     ts.IdleConnTimeout,
			TLSHandshakeTimeout: ts.TLSHandshakeTimeout,
		},
	}
}
