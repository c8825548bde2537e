package services

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"snappost/internal/capture"
	"snappost/internal/config"
	"snappost/internal/detect"
	"snappost/internal/geometry"
	"snappost/internal/layout"
	"snappost/internal/logger"
	"snappost/internal/ocr"
	"snappost/internal/variants"
	"snappost/pkg/models"
)

// DefaultPostService implements PostService with a capture pipeline and a
// variant generator, both built once and reused for every call.
type DefaultPostService struct {
	pipeline  *capture.Pipeline
	generator *variants.Generator
	closers   []func() error
	log       zerolog.Logger
}

// NewPostService creates the service described by cfg. The Cloud Vision client
// is created only when the configured engine or detector needs it.
func NewPostService(ctx context.Context, cfg *config.Config) (*DefaultPostService, error) {
	const op = "NewPostService"

	generator, err := variants.New(ctx, cfg.GetGenerationConfig())
	if err != nil {
		return nil, fmt.Errorf("%s: failed to create generator: %w", op, err)
	}

	pipeline, closers, err := NewPipeline(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	svc := NewPostServiceWithDeps(pipeline, generator)
	svc.closers = closers
	return svc, nil
}

// NewCaptureService creates a service with only the capture side configured.
// GeneratePosts fails on the returned service.
func NewCaptureService(ctx context.Context, cfg *config.Config) (*DefaultPostService, error) {
	pipeline, closers, err := NewPipeline(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("NewCaptureService: %w", err)
	}
	svc := NewPostServiceWithDeps(pipeline, nil)
	svc.closers = closers
	return svc, nil
}

// NewPipeline builds the capture pipeline described by cfg and returns the
// cleanup functions for the clients it created.
func NewPipeline(ctx context.Context, cfg *config.Config) (*capture.Pipeline, []func() error, error) {
	var closers []func() error
	var visionClient ocr.Annotator

	needsVision := cfg.OCREngine == config.OCREngineVision || cfg.QuadDetector == config.QuadDetectorVision
	if needsVision {
		client, err := ocr.NewVisionClient(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create Vision client: %w", err)
		}
		visionClient = client
		closers = append(closers, client.Close)
	}

	var engine ocr.Engine
	switch cfg.OCREngine {
	case config.OCREngineTesseract:
		te, err := ocr.NewTesseractEngine()
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		engine = te
	case config.OCREngineDocumentAI:
		de, err := ocr.NewDocumentAIEngine(ctx, cfg.GetDocumentAIConfig())
		if err != nil {
			closeAll(closers)
			return nil, nil, err
		}
		engine = de
	default:
		engine = ocr.NewGoogleVisionEngineWithClient(visionClient)
	}
	closers = append(closers, engine.Close)

	var capability detect.Capability
	switch cfg.QuadDetector {
	case config.QuadDetectorContour:
		cc, err := detect.NewContourCapability()
		if err != nil {
			closeAll(closers)
			return nil, nil, fmt.Errorf("contour detection: %w", err)
		}
		capability = cc
	case config.QuadDetectorNone:
		capability = detect.None{}
	default:
		capability = detect.NewVisionCropHints(visionClient)
	}

	pipeline := capture.NewPipeline(
		geometry.NewNormalizer(cfg.MaxImageWidth),
		detect.NewDetector(capability, cfg.GetDetectOptions()),
		engine,
		layout.NewReconstructor(cfg.RowTolerance),
		cfg.GetRecognitionOptions(),
	)
	return pipeline, closers, nil
}

// NewPostServiceWithDeps creates the service with explicit dependencies.
func NewPostServiceWithDeps(pipeline *capture.Pipeline, generator *variants.Generator) *DefaultPostService {
	return &DefaultPostService{
		pipeline:  pipeline,
		generator: generator,
		log:       logger.WithComponent("post-service"),
	}
}

// ProcessCapture implements PostService.
func (s *DefaultPostService) ProcessCapture(ctx context.Context, image io.Reader, sourceHint string) (*models.Excerpt, error) {
	if s.pipeline == nil {
		return nil, fmt.Errorf("ProcessCapture: capture pipeline not configured")
	}
	return s.pipeline.ProcessReader(ctx, image, sourceHint)
}

// GeneratePosts implements PostService.
func (s *DefaultPostService) GeneratePosts(ctx context.Context, excerpt, bookTitle, author string) ([]models.Variant, error) {
	if s.generator == nil {
		return nil, fmt.Errorf("GeneratePosts: generator not configured")
	}
	return s.generator.Generate(ctx, excerpt, bookTitle, author)
}

// Generator returns the variant generator.
func (s *DefaultPostService) Generator() *variants.Generator {
	return s.generator
}

// Close releases the clients the service created.
func (s *DefaultPostService) Close() error {
	err := closeAll(s.closers)
	if err != nil {
		s.log.Warn().Err(err).Msg("Failed to close service clients")
	}
	return err
}

func closeAll(closers []func() error) error {
	var first error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}
