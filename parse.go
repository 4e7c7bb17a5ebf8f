package skema

import (
	"context"
	"fmt"
	"io"

	eng "github.com/reoring/skema/internal/engine"
)

// ParseFrom is the primary entry point for serialized input. It consumes
// tokens from the Source, builds an any value, and delegates validation to
// the Schema. Decoding failures are returned as wrapped errors; validation
// failures as Issues.
func ParseFrom[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (T, error) {
	var zero T
	opt := lastOpt(opts)
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	v, err := DecodeFrom(ctx, src, opt)
	if err != nil {
		return zero, err
	}
	return s.Parse(ctx, v)
}

// ParseFromWithMeta is like ParseFrom and also returns presence metadata.
// Presence collection is enabled unless opt.Presence says otherwise.
func ParseFromWithMeta[T any](ctx context.Context, s Schema[T], src Source, opts ...ParseOpt) (Decoded[T], error) {
	opt := lastOpt(opts)
	if !opt.Presence.Collect && len(opt.Presence.Include) == 0 && len(opt.Presence.Exclude) == 0 {
		opt.Presence.Collect = true
	}
	if opt.FailFast {
		ctx = WithFailFast(ctx, true)
	}
	v, err := DecodeFrom(ctx, src, opt)
	if err != nil {
		return Decoded[T]{}, err
	}
	dm, err := s.ParseWithMeta(ctx, v)
	dm.Presence = applyPresenceOptions(dm.Presence, opt.Presence)
	return dm, err
}

// StreamParse validates JSON read from r. When MaxBytes is set it enforces
// the size cap up front, otherwise it delegates directly to ParseFrom.
func StreamParse[T any](ctx context.Context, s Schema[T], r io.Reader, opts ...ParseOpt) (T, error) {
	opt := lastOpt(opts)
	if opt.MaxBytes > 0 {
		var zero T
		data, err := io.ReadAll(io.LimitReader(r, opt.MaxBytes+1))
		if err != nil {
			return zero, fmt.Errorf("skema: read input: %w", err)
		}
		if int64(len(data)) > opt.MaxBytes {
			return zero, fmt.Errorf("skema: read input: %w", ErrMaxBytes)
		}
		return ParseFrom(ctx, s, JSONBytes(data), opts...)
	}
	return ParseFrom(ctx, s, JSONReader(r), opts...)
}

// DecodeFrom builds the any tree for src without validating it. Objects are
// map[string]any, or *orderedmap.OrderedMap[string, any] with PreserveOrder.
func DecodeFrom(ctx context.Context, src Source, opt ParseOpt) (any, error) {
	var in eng.TokenSource = engineTokenSource(src)
	eo := eng.EnforceOptions{
		RejectDuplicates: opt.Strictness.OnDuplicateKey == Error,
		MaxDepth:         opt.MaxDepth,
		MaxBytes:         opt.MaxBytes,
	}
	if eo.Enabled() {
		in = eng.WrapWithEnforcement(in, eo)
	}
	v, err := eng.DecodeAnyFromSource(in, eng.DecodeOptions{
		Float64: src.NumberMode() == NumberFloat64,
		Ordered: opt.PreserveOrder,
	})
	if err != nil {
		Logger(ctx).Debug().Err(err).Int64("offset", src.Location()).Msg("source decode failed")
		return nil, fmt.Errorf("skema: decode input: %w", err)
	}
	return v, nil
}

func lastOpt(opts []ParseOpt) ParseOpt {
	if len(opts) > 0 {
		return opts[len(opts)-1]
	}
	return ParseOpt{}
}
