package pix

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Processor decodes many PIX codes concurrently, e.g. a file of codes or
// a stream of QR scans. Decode itself holds no state, so the only limit
// is how many goroutines run at once.
type Processor struct {
	concurrency  int            // Max number of goroutines for processing
	decodeOpts   []DecodeOption // Passed to every Decode call
	errorHandler func(int, error)
	logger       *slog.Logger
}

// ProcessorOption defines a function signature for configuring a Processor.
type ProcessorOption func(*Processor)

// WithConcurrency sets the maximum number of concurrent decodes.
func WithConcurrency(n int) ProcessorOption {
	return func(p *Processor) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

// WithDecodeOptions sets the options used for every decode.
func WithDecodeOptions(opts ...DecodeOption) ProcessorOption {
	return func(p *Processor) {
		p.decodeOpts = append(p.decodeOpts, opts...)
	}
}

// WithErrorHandler sets a callback for per-code failures. index is the
// position of the code in the batch, or its sequence number in a stream.
func WithErrorHandler(handler func(index int, err error)) ProcessorOption {
	return func(p *Processor) {
		p.errorHandler = handler
	}
}

// WithProcessorLogger sets the logger used by the default error handler.
func WithProcessorLogger(logger *slog.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor creates a new Processor with the given options.
func NewProcessor(opts ...ProcessorOption) *Processor {
	p := &Processor{
		concurrency: 4, // Default concurrency
		logger:      discardLogger,
	}

	for _, opt := range opts {
		opt(p)
	}

	if p.errorHandler == nil {
		p.errorHandler = func(index int, err error) {
			p.logger.Warn("PIX decode failed", "index", index, "error", err)
		}
	}
	return p
}

// Result is one decoded code from DecodeStream.
type Result struct {
	Index   int
	Code    string
	Payload *Payload
	Err     error
}

// Process decodes a single code with the processor's options.
func (p *Processor) Process(code string) (*Payload, error) {
	return Decode(code, p.decodeOpts...)
}

// DecodeBatch decodes codes concurrently. results[i] belongs to codes[i]
// and is nil when that code failed. Every code is attempted; the first
// failure (by index) is returned along with the results. Context
// cancellation stops new work and returns ctx.Err().
func (p *Processor) DecodeBatch(ctx context.Context, codes []string) ([]*Payload, error) {
	results := make([]*Payload, len(codes))
	errs := make([]error, len(codes))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, code := range codes {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			payload, err := p.Process(code)
			if err != nil {
				errs[i] = err
				p.errorHandler(i, err)
				return nil
			}
			results[i] = payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}

	for _, err := range errs {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// DecodeStream decodes codes from input and sends one Result per code to
// output, in completion order. Failures are delivered as Results with Err
// set. It returns when input is closed and all work is done, or when ctx
// is cancelled.
func (p *Processor) DecodeStream(ctx context.Context, input <-chan string, output chan<- Result) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	index := 0
	for {
		select {
		case <-gctx.Done():
			g.Wait()
			return ctx.Err()

		case code, ok := <-input:
			if !ok {
				return g.Wait()
			}

			i := index
			index++
			g.Go(func() error {
				payload, err := p.Process(code)
				if err != nil {
					p.errorHandler(i, err)
				}
				select {
				case output <- Result{Index: i, Code: code, Payload: payload, Err: err}:
					return nil
				case <-gctx.Done():
					return gctx.Err()
				}
			})
		}
	}
}
