package services

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snappost/internal/capture"
	"snappost/internal/config"
	"snappost/internal/detect"
	"snappost/internal/geometry"
	"snappost/internal/layout"
	"snappost/internal/ocr"
	"snappost/internal/variants"
	"snappost/pkg/models"
)

type stubEngine struct {
	observations []ocr.Observation
	err          error
}

func (s stubEngine) Recognize(context.Context, image.Image, ocr.Options) ([]ocr.Observation, error) {
	return s.observations, s.err
}

func (stubEngine) Close() error { return nil }

func newTestService(t *testing.T, engine ocr.Engine) *DefaultPostService {
	t.Helper()
	pipeline := capture.NewPipeline(
		geometry.NewNormalizer(geometry.DefaultMaxWidth),
		detect.NewDetector(detect.None{}, detect.DefaultOptions()),
		engine,
		layout.NewReconstructor(layout.DefaultTolerance),
		ocr.DefaultOptions(),
	)
	cfg := variants.DefaultConfig()
	cfg.MockDelay = 0
	generator, err := variants.New(context.Background(), cfg)
	require.NoError(t, err)
	return NewPostServiceWithDeps(pipeline, generator)
}

func pagePNG(t *testing.T) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, imaging.New(800, 600, color.White), imaging.PNG))
	return bytes.NewReader(buf.Bytes())
}

func TestCaptureThenGenerate(t *testing.T) {
	svc := newTestService(t, stubEngine{observations: []ocr.Observation{
		{Text: "It was a bright cold day in April,", Box: ocr.NormalizedRect{X: 0.1, Y: 0.8, Width: 0.8, Height: 0.05}},
		{Text: "and the clocks were striking thirteen.", Box: ocr.NormalizedRect{X: 0.1, Y: 0.7, Width: 0.8, Height: 0.05}},
		{Text: "7", Box: ocr.NormalizedRect{X: 0.48, Y: 0.05, Width: 0.04, Height: 0.04}},
	}})
	var ps PostService = svc

	excerpt, err := ps.ProcessCapture(context.Background(), pagePNG(t), "1984")
	require.NoError(t, err)
	assert.Equal(t, "It was a bright cold day in April, and the clocks were striking thirteen.", excerpt.Text)
	require.NotNil(t, excerpt.SourceHint)
	assert.Equal(t, "1984", *excerpt.SourceHint)

	posts, err := ps.GeneratePosts(context.Background(), excerpt.Text, "1984", "George Orwell")
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i, tone := range models.AllTones() {
		assert.Equal(t, tone, posts[i].Tone)
		assert.Contains(t, posts[i].Text, "It was a bright cold day in April, and the clock")
	}
	assert.Equal(t, variants.ModeMock, svc.Generator().Mode())
}

func TestProcessCaptureRecognitionFailure(t *testing.T) {
	svc := newTestService(t, stubEngine{err: errors.New("engine down")})

	_, err := svc.ProcessCapture(context.Background(), pagePNG(t), "")

	require.Error(t, err)
	assert.ErrorIs(t, err, capture.ErrRecognitionFailed)
}

func TestGeneratePostsEmptyExcerpt(t *testing.T) {
	svc := newTestService(t, stubEngine{})

	_, err := svc.GeneratePosts(context.Background(), "  \n ", "", "")

	assert.ErrorIs(t, err, variants.ErrEmptyExcerpt)
}

func TestMissingStages(t *testing.T) {
	svc := NewPostServiceWithDeps(nil, nil)

	_, err := svc.ProcessCapture(context.Background(), pagePNG(t), "")
	assert.Error(t, err)

	_, err = svc.GeneratePosts(context.Background(), "text", "", "")
	assert.Error(t, err)
}

func TestCloseRunsInReverseOrder(t *testing.T) {
	var order []int
	svc := NewPostServiceWithDeps(nil, nil)
	svc.closers = []func() error{
		func() error { order = append(order, 1); return errors.New("first") },
		func() error { order = append(order, 2); return nil },
		func() error { order = append(order, 3); return errors.New("third") },
	}

	err := svc.Close()

	assert.Equal(t, []int{3, 2, 1}, order)
	assert.EqualError(t, err, "third")
}

func TestNewPostServiceReportsEngineConfiguration(t *testing.T) {
	cfg := &config.Config{
		GenerationMode:     variants.ModeMock.String(),
		GenerationProvider: string(variants.ProviderOpenAI),
		OCREngine:          config.OCREngineDocumentAI,
		QuadDetector:       config.QuadDetectorNone,
		MaxImageWidth:      geometry.DefaultMaxWidth,
		RowTolerance:       layout.DefaultTolerance,
	}

	_, err := NewPostService(context.Background(), cfg)

	assert.ErrorIs(t, err, ocr.ErrInvalidConfiguration)
}
