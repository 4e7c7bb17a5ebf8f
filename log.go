package skema

import (
	"context"

	"github.com/rs/zerolog"
)

// WithLogger attaches l to ctx. Schemas and the ParseFrom family emit debug
// events (union fallthrough, discriminator resolution, source decoding) to it.
func WithLogger(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// Logger returns the logger attached to ctx, or a disabled logger.
func Logger(ctx context.Context) *zerolog.Logger {
	return zerolog.Ctx(ctx)
}
