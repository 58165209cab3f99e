package roadmap

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

const fourStages = `[
  {"target_percentage": 25, "milestone_task": "Finish the thesis outline", "clothing_item": "black patent leather loafers"},
  {"target_percentage": 50, "milestone_task": "Complete the first full draft", "clothing_item": "wide-leg wool trousers"},
  {"target_percentage": 75, "milestone_task": "Defend the draft to your advisor", "clothing_item": "cropped satin blazer"},
  {"target_percentage": 100, "milestone_task": "Walk across the stage", "clothing_item": "structured leather tote"}
]`

type stubStructured struct {
	text string
	err  error

	prompt      string
	schema      *genai.Schema
	temperature float32
	deadline    time.Time
	hasDeadline bool
}

func (s *stubStructured) GenerateJSON(ctx context.Context, image types.InspirationImage, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	s.prompt = prompt
	s.schema = schema
	s.temperature = temperature
	s.deadline, s.hasDeadline = ctx.Deadline()
	return s.text, s.err
}

var (
	testImage  = types.InspirationImage{Data: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
	testParams = Params{Goal: "Graduation", Designer: "Dior", Color: "Black", Vibe: "Minimalist", TargetDate: "2026-04-30"}
)

func TestGeneratePreservesOrder(t *testing.T) {
	stub := &stubStructured{text: fourStages}
	g := NewGenerator(stub, 0.9, time.Minute, nil)

	stages, err := g.Generate(context.Background(), testImage, testParams)
	require.NoError(t, err)
	require.Len(t, stages, 4)

	assert.Equal(t, []int{25, 50, 75, 100}, []int{
		stages[0].TargetPercentage, stages[1].TargetPercentage, stages[2].TargetPercentage, stages[3].TargetPercentage,
	})
	assert.Equal(t, []string{
		"black patent leather loafers", "wide-leg wool trousers", "cropped satin blazer", "structured leather tote",
	}, types.ClothingItems(stages))
	assert.Equal(t, "Finish the thesis outline", stages[0].MilestoneTask)

	assert.Contains(t, stub.prompt, "Graduation")
	assert.NotNil(t, stub.schema)
	assert.InDelta(t, 0.9, stub.temperature, 0.0001)
	assert.True(t, stub.hasDeadline, "provider call must carry a deadline")
}

func TestGenerateDefaultsTemperature(t *testing.T) {
	stub := &stubStructured{text: fourStages}
	g := NewGenerator(stub, 0, 0, nil)

	_, err := g.Generate(context.Background(), testImage, testParams)
	require.NoError(t, err)
	assert.InDelta(t, DefaultTemperature, stub.temperature, 0.0001)
}

func TestGenerateRejectsEmptyImage(t *testing.T) {
	g := NewGenerator(&stubStructured{text: fourStages}, 0.7, time.Minute, nil)
	_, err := g.Generate(context.Background(), types.InspirationImage{}, testParams)
	assert.True(t, errors.Is(err, types.ErrInvalidInput))
}

func TestGeneratePropagatesEmptyResponse(t *testing.T) {
	upstream := fmt.Errorf("%w: no candidates (finish reason: SAFETY)", types.ErrUpstreamEmptyResponse)
	g := NewGenerator(&stubStructured{err: upstream}, 0.7, time.Minute, nil)

	_, err := g.Generate(context.Background(), testImage, testParams)
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrUpstreamEmptyResponse))
	assert.Contains(t, err.Error(), "SAFETY")
}

func TestParseStagesErrors(t *testing.T) {
	cases := map[string]string{
		"not json":        `here is your roadmap`,
		"object":          `{"target_percentage": 25}`,
		"three stages":    `[{"target_percentage":25,"milestone_task":"a","clothing_item":"b"},{"target_percentage":50,"milestone_task":"a","clothing_item":"b"},{"target_percentage":75,"milestone_task":"a","clothing_item":"b"}]`,
		"wrong type":      `[{"target_percentage":"25","milestone_task":"a","clothing_item":"b"},{"target_percentage":50,"milestone_task":"a","clothing_item":"b"},{"target_percentage":75,"milestone_task":"a","clothing_item":"b"},{"target_percentage":100,"milestone_task":"a","clothing_item":"b"}]`,
		"missing garment": `[{"target_percentage":25,"milestone_task":"a"},{"target_percentage":50,"milestone_task":"a","clothing_item":"b"},{"target_percentage":75,"milestone_task":"a","clothing_item":"b"},{"target_percentage":100,"milestone_task":"a","clothing_item":"b"}]`,
	}

	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseStages(text)
			assert.True(t, errors.Is(err, types.ErrSchemaParse), "got %v", err)
		})
	}
}

func TestGenerateSchemaParseError(t *testing.T) {
	g := NewGenerator(&stubStructured{text: `[]`}, 0.7, time.Minute, nil)
	_, err := g.Generate(context.Background(), testImage, testParams)
	assert.True(t, errors.Is(err, types.ErrSchemaParse))
}

func TestAdvise(t *testing.T) {
	stages, err := ParseStages(fourStages)
	require.NoError(t, err)
	assert.Empty(t, Advise(stages, testParams))

	stages[1].MilestoneTask = "Submit the draft before May 2026"
	stages[2].ClothingItem = "Dior saddle bag"
	stages[3].ClothingItem = "black patent leather loafers"
	stages[3].TargetPercentage = 90

	warnings := Advise(stages, testParams)
	assert.Len(t, warnings, 4)
}
