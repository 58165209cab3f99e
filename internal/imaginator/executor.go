// Package imaginator renders garment images by fanning out concurrent calls to the
// image model.
package imaginator

import (
	"context"
	"fmt"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/gemini"
	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/internal/prompts"
	"github.com/EasterCompany/dex-runway-service/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	HandlerName        = "imaginator"
	DefaultConcurrency = 4
	DefaultTimeout     = 90 * time.Second
)

// ImageGenerator is the provider capability the executor needs.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (gemini.ImageResult, error)
}

// Options configures an Executor.
type Options struct {
	Concurrency int
	Timeout     time.Duration
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
}

// Executor issues image calls. A failed call never fails its siblings: the slot
// simply holds the empty sentinel.
type Executor struct {
	images      ImageGenerator
	concurrency int
	timeout     time.Duration
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

func NewExecutor(images ImageGenerator, opts Options) *Executor {
	if opts.Concurrency < 1 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Executor{
		images:      images,
		concurrency: opts.Concurrency,
		timeout:     opts.Timeout,
		metrics:     opts.Metrics,
		logger:      opts.Logger.Named(HandlerName),
	}
}

// GenerateImages renders one product shot per item. The result always has
// len(items) entries and result[i] belongs to items[i].
func (e *Executor) GenerateImages(ctx context.Context, items []string, vibe, color string) []string {
	results := make([]string, len(items))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, item := range items {
		prompt := prompts.BuildImagePrompt(item, vibe, color)
		g.Go(func() error {
			results[i] = e.GenerateImage(ctx, prompt)
			return nil
		})
	}
	_ = g.Wait() // failures are absorbed per slot

	return results
}

// GenerateImage renders a single prompt and returns it as a data URL, or "" when the
// call fails, times out, panics or returns no image.
func (e *Executor) GenerateImage(ctx context.Context, prompt string) (image string) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Image generation panicked", zap.Any("panic", r))
			e.metrics.ImageSlot(metrics.OutcomeError)
			image = ""
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	res, err := e.images.GenerateImage(ctx, prompt)
	if err != nil {
		e.logger.Warn("Image generation failed", zap.Error(err), zap.String("prompt", truncate(prompt, 80)))
		e.metrics.ImageSlot(metrics.OutcomeEmpty)
		return ""
	}
	if len(res.Data) == 0 {
		e.logger.Warn("Image generation returned no data", zap.String("prompt", truncate(prompt, 80)))
		e.metrics.ImageSlot(metrics.OutcomeEmpty)
		return ""
	}

	e.metrics.ImageSlot(metrics.OutcomeOK)
	return utils.EncodeDataURL(res.Data, res.MIMEType)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return fmt.Sprintf("%s...", s[:n])
}
