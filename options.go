package valuedict

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	registerer prometheus.Registerer
}

// Option configures Open.
type Option func(*options)

// WithLogger overrides the logger built from Config.Logging.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithMetricsRegisterer registers the store's metrics against reg.
// Without it the metrics still update but are not registered anywhere.
func WithMetricsRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}
