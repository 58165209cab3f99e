// Package gemini wraps the Gemini API behind the two capabilities the runway
// pipeline needs: structured JSON generation from an image plus prompt, and image
// generation from a prompt.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/types"
	"google.golang.org/genai"
)

const (
	DefaultRoadmapModel = "gemini-2.5-flash"
	DefaultImageModel   = "gemini-2.5-flash-image"
)

// Operation labels used for metrics.
const (
	OperationRoadmap = "roadmap"
	OperationImage   = "image"
)

// ContentGenerator is the slice of the genai SDK the client calls.
// *genai.Models satisfies it; tests substitute a stub.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageResult is one generated image.
type ImageResult struct {
	Data     []byte
	MIMEType string
}

// Client issues generation calls. It is safe for concurrent use.
type Client struct {
	models       ContentGenerator
	roadmapModel string
	imageModel   string
	metrics      *metrics.Metrics
}

// Options configures a Client.
type Options struct {
	RoadmapModel string
	ImageModel   string
	Metrics      *metrics.Metrics
}

// NewClient creates a Client backed by the Gemini API.
func NewClient(ctx context.Context, apiKey string, opts Options) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return NewClientWithGenerator(client.Models, opts), nil
}

// NewClientWithGenerator creates a Client over an arbitrary ContentGenerator.
func NewClientWithGenerator(models ContentGenerator, opts Options) *Client {
	if opts.RoadmapModel == "" {
		opts.RoadmapModel = DefaultRoadmapModel
	}
	if opts.ImageModel == "" {
		opts.ImageModel = DefaultImageModel
	}
	return &Client{
		models:       models,
		roadmapModel: opts.RoadmapModel,
		imageModel:   opts.ImageModel,
		metrics:      opts.Metrics,
	}
}

// GenerateJSON sends the image and prompt to the roadmap model, constrained to schema,
// and returns the raw JSON text of the first candidate.
func (c *Client) GenerateJSON(ctx context.Context, image types.InspirationImage, prompt string, schema *genai.Schema, temperature float32) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image.Data, image.MIMEType),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
		Temperature:      genai.Ptr(temperature),
	}

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.roadmapModel, contents, config)
	if err != nil {
		c.metrics.ObserveUpstream(OperationRoadmap, start, metrics.OutcomeError)
		return "", upstreamError(err)
	}

	parts, err := firstCandidateParts(resp)
	if err != nil {
		c.metrics.ObserveUpstream(OperationRoadmap, start, metrics.OutcomeEmpty)
		return "", err
	}

	var text strings.Builder
	for _, p := range parts {
		if p.Thought {
			continue
		}
		text.WriteString(p.Text)
	}
	if strings.TrimSpace(text.String()) == "" {
		c.metrics.ObserveUpstream(OperationRoadmap, start, metrics.OutcomeEmpty)
		return "", fmt.Errorf("%w: response contained no text (%s)", types.ErrUpstreamEmptyResponse, describeResponse(resp))
	}

	c.metrics.ObserveUpstream(OperationRoadmap, start, metrics.OutcomeOK)
	return text.String(), nil
}

// GenerateImage asks the image model for one picture and returns the first inline
// image payload of the response.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (ImageResult, error) {
	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.imageModel, genai.Text(prompt), nil)
	if err != nil {
		c.metrics.ObserveUpstream(OperationImage, start, metrics.OutcomeError)
		return ImageResult{}, upstreamError(err)
	}

	parts, err := firstCandidateParts(resp)
	if err != nil {
		c.metrics.ObserveUpstream(OperationImage, start, metrics.OutcomeEmpty)
		return ImageResult{}, err
	}

	for _, p := range parts {
		if p.InlineData != nil && len(p.InlineData.Data) > 0 {
			c.metrics.ObserveUpstream(OperationImage, start, metrics.OutcomeOK)
			return ImageResult{Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType}, nil
		}
	}

	c.metrics.ObserveUpstream(OperationImage, start, metrics.OutcomeEmpty)
	return ImageResult{}, fmt.Errorf("%w: response contained no inline image data (%s)", types.ErrUpstreamEmptyResponse, describeResponse(resp))
}

func upstreamError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: deadline exceeded: %v", types.ErrUpstreamCall, err)
	}
	return fmt.Errorf("%w: %v", types.ErrUpstreamCall, err)
}

// firstCandidateParts returns the content parts of the first candidate or an
// ErrUpstreamEmptyResponse describing why there are none.
func firstCandidateParts(resp *genai.GenerateContentResponse) ([]*genai.Part, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates (%s)", types.ErrUpstreamEmptyResponse, describeResponse(resp))
	}
	cand := resp.Candidates[0]
	if cand == nil || cand.Content == nil || len(cand.Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: no content parts (%s)", types.ErrUpstreamEmptyResponse, describeResponse(resp))
	}
	return cand.Content.Parts, nil
}

// describeResponse summarizes why a response may be empty, usually a safety block.
func describeResponse(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return "no response"
	}

	var reasons []string
	if fb := resp.PromptFeedback; fb != nil && fb.BlockReason != "" {
		r := "prompt blocked: " + string(fb.BlockReason)
		if fb.BlockReasonMessage != "" {
			r += " " + fb.BlockReasonMessage
		}
		reasons = append(reasons, r)
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		cand := resp.Candidates[0]
		if cand.FinishReason != "" {
			r := "finish reason: " + string(cand.FinishReason)
			if cand.FinishMessage != "" {
				r += " " + cand.FinishMessage
			}
			reasons = append(reasons, r)
		}
	}

	if len(reasons) == 0 {
		return "finish reason: unknown"
	}
	return strings.Join(reasons, "; ")
}
