// Package roadmap turns a goal and an inspiration image into four milestone stages.
package roadmap

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/prompts"
	"github.com/EasterCompany/dex-runway-service/types"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	DefaultTemperature = 0.7
	DefaultTimeout     = 60 * time.Second
)

// StructuredGenerator is the provider capability the generator needs.
type StructuredGenerator interface {
	GenerateJSON(ctx context.Context, image types.InspirationImage, prompt string, schema *genai.Schema, temperature float32) (string, error)
}

// Params are the user inputs of a roadmap.
type Params struct {
	Goal       string
	Designer   string
	Color      string
	Vibe       string
	TargetDate string
}

// Generator issues the single structured roadmap call.
type Generator struct {
	client      StructuredGenerator
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGenerator creates a Generator. Zero temperature or timeout select the defaults.
func NewGenerator(client StructuredGenerator, temperature float32, timeout time.Duration, logger *zap.Logger) *Generator {
	if temperature <= 0 {
		temperature = DefaultTemperature
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		client:      client,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger.Named("roadmap"),
	}
}

// Generate returns exactly four stages in milestone order.
func (g *Generator) Generate(ctx context.Context, image types.InspirationImage, p Params) ([]types.RoadmapStage, error) {
	if len(image.Data) == 0 {
		return nil, fmt.Errorf("%w: inspiration image is empty", types.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	prompt := prompts.BuildRoadmapPrompt(p.Goal, p.Designer, p.Color, p.Vibe, p.TargetDate)
	text, err := g.client.GenerateJSON(ctx, image, prompt, prompts.RoadmapSchema(), g.temperature)
	if err != nil {
		return nil, fmt.Errorf("roadmap generation: %w", err)
	}

	stages, err := ParseStages(text)
	if err != nil {
		g.logger.Warn("Roadmap response did not match schema", zap.Error(err), zap.Int("bytes", len(text)))
		return nil, err
	}

	for _, w := range Advise(stages, p) {
		g.logger.Warn("Roadmap violates a prompt constraint", zap.String("warning", w))
	}
	return stages, nil
}

// ParseStages decodes the provider's JSON text into exactly four well-formed stages.
func ParseStages(text string) ([]types.RoadmapStage, error) {
	var stages []types.RoadmapStage
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &stages); err != nil {
		return nil, fmt.Errorf("%w: failed to parse roadmap JSON: %v", types.ErrSchemaParse, err)
	}

	if len(stages) != types.RoadmapStageCount {
		return nil, fmt.Errorf("%w: expected %d stages, got %d", types.ErrSchemaParse, types.RoadmapStageCount, len(stages))
	}
	for i, s := range stages {
		if strings.TrimSpace(s.MilestoneTask) == "" {
			return nil, fmt.Errorf("%w: stage %d has no milestone_task", types.ErrSchemaParse, i)
		}
		if strings.TrimSpace(s.ClothingItem) == "" {
			return nil, fmt.Errorf("%w: stage %d has no clothing_item", types.ErrSchemaParse, i)
		}
	}
	return stages, nil
}

var yearPattern = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// Advise reports constraints that are only requested in the prompt and that the
// model ignored. The results are advisory; they never reject a roadmap.
func Advise(stages []types.RoadmapStage, p Params) []string {
	var warnings []string
	designer := strings.ToLower(strings.TrimSpace(p.Designer))
	seen := make(map[string]int, len(stages))

	for i, s := range stages {
		if s.TargetPercentage != types.StagePercentages[i%len(types.StagePercentages)] {
			warnings = append(warnings, fmt.Sprintf("stage %d has target_percentage %d", i, s.TargetPercentage))
		}
		if yearPattern.MatchString(s.MilestoneTask) {
			warnings = append(warnings, fmt.Sprintf("stage %d milestone mentions a year", i))
		}
		if designer != "" {
			if strings.Contains(strings.ToLower(s.MilestoneTask), designer) || strings.Contains(strings.ToLower(s.ClothingItem), designer) {
				warnings = append(warnings, fmt.Sprintf("stage %d names the designer", i))
			}
		}
		item := strings.ToLower(strings.TrimSpace(s.ClothingItem))
		if j, dup := seen[item]; dup {
			warnings = append(warnings, fmt.Sprintf("stage %d repeats the clothing item of stage %d", i, j))
		} else {
			seen[item] = i
		}
	}
	return warnings
}
