package config

import "context"

// ctxKey is used to store the loaded config in a command context.
type ctxKey struct{}

// IntoContext returns a child context carrying cfg.
func IntoContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, ctxKey{}, cfg)
}

// FromContext retrieves the config from the command context, falling back
// to defaults when none was stored.
func FromContext(ctx context.Context) *Config {
	if c, ok := ctx.Value(ctxKey{}).(*Config); ok {
		return c
	}
	return &Config{
		LogLevel:  DefaultLogLevel,
		LogFormat: DefaultLogFormat,
		Delimiter: DefaultDelimiter,
		From:      DefaultFrom,
		To:        DefaultTo,
	}
}
