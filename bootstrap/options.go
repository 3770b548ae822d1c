package bootstrap

import (
	"time"

	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/server"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	loaderOptions   []config.LoaderOption
	serverConfig    server.Config
	gracefulTimeout time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfigFile sets an explicit configuration file path.
func WithConfigFile(path string) Option {
	return func(o *appOptions) {
		o.loaderOptions = append(o.loaderOptions, config.WithConfigFile(path))
	}
}

// WithServerConfig overrides the HTTP server configuration.
func WithServerConfig(cfg server.Config) Option {
	return func(o *appOptions) {
		o.serverConfig = cfg
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = d
	}
}
