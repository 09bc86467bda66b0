// Package adapter converts between the caller's wire formats and the JSON
// prediction API of a TensorFlow Serving backend.
package adapter

import (
	"go.uber.org/zap"
)

// ContentTypeNPY marks a body encoded in the numpy .npy format.
const ContentTypeNPY = "application/x-npy"

// RequestContext carries the content negotiation headers of one request.
// Values are taken verbatim from the caller.
type RequestContext struct {
	RequestContentType string
	AcceptHeader       string
}

// BackendResponse is the raw result of a prediction call.
type BackendResponse struct {
	StatusCode int
	Body       []byte
}

type Adapter struct {
	logger *zap.Logger
}

type Option func(*Adapter)

func WithLogger(logger *zap.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// New returns an Adapter. It holds no per-request state and may be shared
// across goroutines.
func New(opts ...Option) *Adapter {
	a := &Adapter{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(a)
	}

	return a
}

// signal logs err and hands it back. Callers return the result straight away.
func (a *Adapter) signal(err HandlerError) error {
	a.logger.Error(err.Message(), zap.Int("code", err.StatusCode()))
	return err
}
