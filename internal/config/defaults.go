package config

import (
	"errors"
	"time"
)

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8080
	DefaultMaxBodyBytes   = 64 << 20
	DefaultBackendURL     = "http://localhost:8501"
	DefaultModelName      = "model"
	DefaultBackendTimeout = 60 * time.Second
)

var (
	ErrInvalidPort       = errors.New("port must be between 1 and 65535")
	ErrInvalidMaxBody    = errors.New("max body size must be positive")
	ErrBackendNotSet     = errors.New("backend is not configured")
	ErrInvalidBackendURL = errors.New("backend url must be an absolute http(s) url")
	ErrModelNameNotSet   = errors.New("backend model name is not set")
	ErrInvalidTimeout    = errors.New("backend timeout must be positive")
)
