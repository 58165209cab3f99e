package campaign

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/EasterCompany/dex-runway-service/internal/metrics"
	"github.com/EasterCompany/dex-runway-service/internal/roadmap"
	"github.com/EasterCompany/dex-runway-service/internal/storage"
	"github.com/EasterCompany/dex-runway-service/types"
	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStages = []types.RoadmapStage{
	{TargetPercentage: 25, MilestoneTask: "Outline the thesis", ClothingItem: "Black bar jacket"},
	{TargetPercentage: 50, MilestoneTask: "Finish the first draft", ClothingItem: "Pleated midi skirt"},
	{TargetPercentage: 75, MilestoneTask: "Rehearse the defense", ClothingItem: "Slingback pumps"},
	{TargetPercentage: 100, MilestoneTask: "Walk at graduation", ClothingItem: "Saddle bag"},
}

type stubRoadmaps struct {
	stages []types.RoadmapStage
	err    error

	calls  int
	image  types.InspirationImage
	params roadmap.Params
}

func (s *stubRoadmaps) Generate(_ context.Context, img types.InspirationImage, p roadmap.Params) ([]types.RoadmapStage, error) {
	s.calls++
	s.image = img
	s.params = p
	return s.stages, s.err
}

type stubImages struct {
	mu      sync.Mutex
	items   []string
	prompts []string
	fail    map[string]bool
	final   string
}

func (s *stubImages) GenerateImages(_ context.Context, items []string, _, _ string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	out := make([]string, len(items))
	for i, item := range items {
		if !s.fail[item] {
			out[i] = "data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte(item))
		}
	}
	return out
}

func (s *stubImages) GenerateImage(_ context.Context, prompt string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prompts = append(s.prompts, prompt)
	return s.final
}

func validRequest() types.GenerateRunwayRequest {
	return types.GenerateRunwayRequest{
		Goal:                   "Graduation",
		Designer:               "Dior",
		Color:                  "Black",
		Vibe:                   "Minimalist",
		TargetDate:             "2026-04-30",
		InspirationImageBase64: "data:image/jpeg;base64,AAAA",
	}
}

func newTestOrchestrator(t *testing.T, r *stubRoadmaps, imgs *stubImages, opts Options) (*Orchestrator, *storage.FileStore) {
	t.Helper()
	store := storage.NewFileStore(t.TempDir())
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Unix(1767225600, 0) }
	}
	return NewOrchestrator(r, imgs, store, opts), store
}

func TestCreateCampaign(t *testing.T) {
	ctx := context.Background()
	m := metrics.New(prometheus.NewRegistry())
	r := &stubRoadmaps{stages: testStages}
	imgs := &stubImages{fail: map[string]bool{"Slingback pumps": true}}
	o, store := newTestOrchestrator(t, r, imgs, Options{Metrics: m})

	id, err := o.CreateCampaign(ctx, validRequest())
	require.NoError(t, err)
	assert.True(t, storage.ValidID(id))

	assert.Equal(t, roadmap.Params{
		Goal: "Graduation", Designer: "Dior", Color: "Black", Vibe: "Minimalist", TargetDate: "2026-04-30",
	}, r.params)
	assert.Equal(t, "image/jpeg", r.image.MIMEType)
	assert.Equal(t, types.ClothingItems(testStages), imgs.items)

	got, err := store.Load(ctx, id)
	require.NoError(t, err)
	want := &types.Campaign{
		ID:      id,
		Roadmap: testStages,
		Images: []string{
			"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("Black bar jacket")),
			"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("Pleated midi skirt")),
			"",
			"data:image/png;base64," + base64.StdEncoding.EncodeToString([]byte("Saddle bag")),
		},
		Vibe:       "Minimalist",
		Color:      "Black",
		Designer:   "Dior",
		Goal:       "Graduation",
		TargetDate: "2026-04-30",
		CreatedAt:  1767225600,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stored campaign mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Campaigns.WithLabelValues(metrics.OutcomeOK)))
}

func TestCreateCampaignValidation(t *testing.T) {
	mutations := map[string]func(*types.GenerateRunwayRequest){
		"goal":        func(r *types.GenerateRunwayRequest) { r.Goal = "" },
		"designer":    func(r *types.GenerateRunwayRequest) { r.Designer = "  " },
		"color":       func(r *types.GenerateRunwayRequest) { r.Color = "" },
		"vibe":        func(r *types.GenerateRunwayRequest) { r.Vibe = "" },
		"target_date": func(r *types.GenerateRunwayRequest) { r.TargetDate = "" },
		"image":       func(r *types.GenerateRunwayRequest) { r.InspirationImageBase64 = "" },
		"bad base64":  func(r *types.GenerateRunwayRequest) { r.InspirationImageBase64 = "%%%" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := &stubRoadmaps{stages: testStages}
			o, _ := newTestOrchestrator(t, r, &stubImages{}, Options{})

			req := validRequest()
			mutate(&req)
			_, err := o.CreateCampaign(context.Background(), req)
			assert.ErrorIs(t, err, types.ErrInvalidInput)
			assert.Zero(t, r.calls)
		})
	}
}

func TestCreateCampaignRoadmapFailureStoresNothing(t *testing.T) {
	for _, kind := range []error{types.ErrUpstreamEmptyResponse, types.ErrSchemaParse, types.ErrUpstreamCall} {
		t.Run(kind.Error(), func(t *testing.T) {
			m := metrics.New(prometheus.NewRegistry())
			r := &stubRoadmaps{err: fmt.Errorf("roadmap generation: %w", kind)}
			imgs := &stubImages{}
			o, store := newTestOrchestrator(t, r, imgs, Options{Metrics: m})

			_, err := o.CreateCampaign(context.Background(), validRequest())
			assert.ErrorIs(t, err, kind)
			assert.Nil(t, imgs.items)

			entries, err := os.ReadDir(store.Dir())
			require.NoError(t, err)
			assert.Empty(t, entries)
			assert.Equal(t, 1.0, testutil.ToFloat64(m.Campaigns.WithLabelValues(metrics.OutcomeError)))
		})
	}
}

func TestCreateCampaignStorageFailure(t *testing.T) {
	r := &stubRoadmaps{stages: testStages}
	o := NewOrchestrator(r, &stubImages{}, failingStore{}, Options{})

	_, err := o.CreateCampaign(context.Background(), validRequest())
	assert.ErrorIs(t, err, types.ErrStorage)
}

type failingStore struct{}

func (failingStore) Save(context.Context, *types.Campaign) (string, error) {
	return "", fmt.Errorf("%w: disk full", types.ErrStorage)
}

func (failingStore) Load(context.Context, string) (*types.Campaign, error) {
	return nil, errors.New("unused")
}

func TestCreateCampaignDownscalesInspiration(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 64, 32))))

	r := &stubRoadmaps{stages: testStages}
	o, _ := newTestOrchestrator(t, r, &stubImages{}, Options{MaxImageDim: 16})

	req := validRequest()
	req.InspirationImageBase64 = "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
	_, err := o.CreateCampaign(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, "image/jpeg", r.image.MIMEType)
	cfg, _, err := image.DecodeConfig(bytes.NewReader(r.image.Data))
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Width)
	assert.Equal(t, 8, cfg.Height)
}

func TestGetCampaign(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOrchestrator(t, &stubRoadmaps{stages: testStages}, &stubImages{}, Options{})

	id, err := o.CreateCampaign(ctx, validRequest())
	require.NoError(t, err)

	first, err := o.GetCampaign(ctx, id)
	require.NoError(t, err)
	second, err := o.GetCampaign(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = o.GetCampaign(ctx, "9b1deb4d-3b7d-4bad-9bdd-2b0d7b3dcb6d")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestGenerateFinalLook(t *testing.T) {
	ctx := context.Background()
	imgs := &stubImages{final: "data:image/png;base64,Zm9v"}
	o, store := newTestOrchestrator(t, &stubRoadmaps{stages: testStages}, imgs, Options{})

	id, err := o.CreateCampaign(ctx, validRequest())
	require.NoError(t, err)
	before, err := store.Load(ctx, id)
	require.NoError(t, err)

	look, err := o.GenerateFinalLook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,Zm9v", look)

	require.Len(t, imgs.prompts, 1)
	for _, item := range types.ClothingItems(testStages) {
		assert.Contains(t, imgs.prompts[0], item)
	}
	assert.Contains(t, imgs.prompts[0], "Minimalist")
	assert.Contains(t, imgs.prompts[0], "Black")

	after, err := store.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestGenerateFinalLookUnavailable(t *testing.T) {
	ctx := context.Background()
	o, _ := newTestOrchestrator(t, &stubRoadmaps{stages: testStages}, &stubImages{}, Options{})

	id, err := o.CreateCampaign(ctx, validRequest())
	require.NoError(t, err)

	look, err := o.GenerateFinalLook(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "", look)

	_, err = o.GenerateFinalLook(ctx, "not-a-campaign")
	assert.ErrorIs(t, err, types.ErrNotFound)
}
