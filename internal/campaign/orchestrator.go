// Package campaign sequences the roadmap call, the image fan-out and persistence.
package campaign

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/internal/prompts"
	"github.com/EasterCompany/dex-runway-service/internal/roadmap"
	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/EasterCompany/dex-runway-service/utils"
	"go.uber.org/zap"
)

type RoadmapGenerator interface {
	Generate(ctx context.Context, image types.InspirationImage, p roadmap.Params) ([]types.RoadmapStage, error)
}

type ImageFanOut interface {
	GenerateImages(ctx context.Context, items []string, vibe, color string) []string
	GenerateImage(ctx context.Context, prompt string) string
}

type Store interface {
	Save(ctx context.Context, c *types.Campaign) (string, error)
	Load(ctx context.Context, id string) (*types.Campaign, error)
}

// Options tune an Orchestrator. Zero values are usable.
type Options struct {
	// MaxImageDim bounds the longest side of the inspiration image sent upstream.
	// Zero disables downscaling.
	MaxImageDim int
	Metrics     *metrics.Metrics
	Logger      *zap.Logger
	Now         func() time.Time
}

type Orchestrator struct {
	roadmaps    RoadmapGenerator
	images      ImageFanOut
	store       Store
	maxImageDim int
	metrics     *metrics.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

func NewOrchestrator(roadmaps RoadmapGenerator, images ImageFanOut, store Store, opts Options) *Orchestrator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Orchestrator{
		roadmaps:    roadmaps,
		images:      images,
		store:       store,
		maxImageDim: opts.MaxImageDim,
		metrics:     opts.Metrics,
		logger:      opts.Logger.Named("campaign"),
		now:         opts.Now,
	}
}

// CreateCampaign runs the whole pipeline and returns the new campaign id. Nothing is
// stored unless the roadmap succeeds; individual image failures are stored as "".
func (o *Orchestrator) CreateCampaign(ctx context.Context, req types.GenerateRunwayRequest) (string, error) {
	id, err := o.createCampaign(ctx, req)
	if err != nil {
		o.metrics.Campaign(metrics.OutcomeError)
		o.logger.Warn("Campaign creation failed", zap.String("kind", types.ErrorKind(err)), zap.Error(err))
		return "", err
	}
	o.metrics.Campaign(metrics.OutcomeOK)
	return id, nil
}

func (o *Orchestrator) createCampaign(ctx context.Context, req types.GenerateRunwayRequest) (string, error) {
	if err := validate(req); err != nil {
		return "", err
	}

	image, err := utils.DecodeInspirationImage(req.InspirationImageBase64)
	if err != nil {
		return "", err
	}
	if o.maxImageDim > 0 {
		if resized, ok := utils.NormalizeInspirationImage(image, o.maxImageDim); ok {
			o.logger.Debug("Downscaled inspiration image",
				zap.Int("from_bytes", len(image.Data)), zap.Int("to_bytes", len(resized.Data)))
			image = resized
		}
	}

	start := o.now()
	stages, err := o.roadmaps.Generate(ctx, image, roadmap.Params{
		Goal:       req.Goal,
		Designer:   req.Designer,
		Color:      req.Color,
		Vibe:       req.Vibe,
		TargetDate: req.TargetDate,
	})
	if err != nil {
		return "", err
	}

	images := o.images.GenerateImages(ctx, types.ClothingItems(stages), req.Vibe, req.Color)

	c := &types.Campaign{
		Roadmap:    stages,
		Images:     images,
		Vibe:       req.Vibe,
		Color:      req.Color,
		Designer:   req.Designer,
		Goal:       req.Goal,
		TargetDate: req.TargetDate,
		CreatedAt:  o.now().Unix(),
	}
	id, err := o.store.Save(ctx, c)
	if err != nil {
		return "", err
	}

	o.logger.Info("Campaign created",
		zap.String("campaign_id", id),
		zap.Int("images", countNonEmpty(images)),
		zap.Duration("elapsed", o.now().Sub(start)))
	return id, nil
}

// GetCampaign returns the stored campaign unchanged.
func (o *Orchestrator) GetCampaign(ctx context.Context, id string) (*types.Campaign, error) {
	return o.store.Load(ctx, id)
}

// GenerateFinalLook renders all of a campaign's items worn together. The campaign is
// not modified. An image failure yields "" rather than an error.
func (o *Orchestrator) GenerateFinalLook(ctx context.Context, id string) (string, error) {
	c, err := o.store.Load(ctx, id)
	if err != nil {
		return "", err
	}

	prompt := prompts.BuildFinalLookPrompt(types.ClothingItems(c.Roadmap), c.Vibe, c.Color)
	image := o.images.GenerateImage(ctx, prompt)
	if image == "" {
		o.logger.Warn("Final look unavailable", zap.String("campaign_id", id))
	}
	return image, nil
}

func validate(req types.GenerateRunwayRequest) error {
	fields := []struct{ name, value string }{
		{"goal", req.Goal},
		{"designer", req.Designer},
		{"color", req.Color},
		{"vibe", req.Vibe},
		{"target_date", req.TargetDate},
		{"inspiration_image_base64", req.InspirationImageBase64},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", types.ErrInvalidInput, strings.Join(missing, ", "))
	}
	return nil
}

func countNonEmpty(images []string) int {
	n := 0
	for _, img := range images {
		if img != "" {
			n++
		}
	}
	return n
}
