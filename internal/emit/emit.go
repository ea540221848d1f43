// Package emit drains a command result into the output sink.
//
// The sink is append-only and line-oriented. For a streaming result the
// emitter pulls one item, writes it, and only then lets the producer run
// again, so output order mirrors production order and earlier items are
// visible before later ones exist.
package emit

import (
	"context"
	"fmt"
	"io"

	"github.com/vk/funcli/internal/ctxlog"
	"github.com/vk/funcli/internal/sig"
)

// Emitter writes command results to a single ordered sink.
type Emitter struct {
	w io.Writer
}

// New creates an Emitter over w, conventionally the process's stdout.
func New(w io.Writer) *Emitter {
	return &Emitter{w: w}
}

// Emit consumes res exactly once. A single result becomes one line; a
// streaming result becomes one line per produced item. A mid-stream handler
// error stops emission and propagates unmasked. Cancellation is observed
// between items: an interrupted stream just stops.
func (e *Emitter) Emit(ctx context.Context, res *sig.Result) error {
	if res == nil {
		return nil
	}

	if !res.Streaming {
		if !res.HasValue {
			return nil
		}
		_, err := fmt.Fprintln(e.w, res.Value)
		return err
	}

	logger := ctxlog.FromContext(ctx)
	count := 0
	for v, err := range res.Seq {
		if err != nil {
			logger.Debug("Stream produced an error.", "emitted", count)
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			logger.Debug("Stream interrupted.", "emitted", count)
			return ctxErr
		}
		if _, werr := fmt.Fprintln(e.w, v); werr != nil {
			return werr
		}
		count++
	}
	logger.Debug("Stream drained.", "emitted", count)
	return nil
}
