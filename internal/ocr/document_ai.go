package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	documentai "cloud.google.com/go/documentai/apiv1"
	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/disintegration/imaging"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"snappost/internal/logger"
)

// DocumentAIConfig selects the Document AI OCR processor.
type DocumentAIConfig struct {
	ProjectID   string
	Location    string
	ProcessorID string
	Timeout     time.Duration
}

// ProcessorName returns the full resource name of the processor.
func (c DocumentAIConfig) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", c.ProjectID, c.Location, c.ProcessorID)
}

// DocumentProcessor is the part of the Document AI client used for recognition.
// *documentai.DocumentProcessorClient satisfies it.
type DocumentProcessor interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

// DocumentAIEngine implements Engine using a Document AI OCR processor.
type DocumentAIEngine struct {
	client DocumentProcessor
	closer func() error
	config DocumentAIConfig
	log    zerolog.Logger
}

// NewDocumentAIEngine creates an engine with credentials from the environment.
// ProjectID and ProcessorID are required; Location defaults to "us".
func NewDocumentAIEngine(ctx context.Context, config DocumentAIConfig) (*DocumentAIEngine, error) {
	const op = "NewDocumentAIEngine"

	if config.ProjectID == "" || config.ProcessorID == "" {
		return nil, NewOCRError(op, ErrInvalidConfiguration, "DOCUMENTAI_PROJECT_ID and DOCUMENTAI_PROCESSOR_ID are required")
	}
	if config.Location == "" {
		config.Location = "us"
	}

	var clientOptions []option.ClientOption
	if config.Location != "us" {
		endpoint := fmt.Sprintf("%s-documentai.googleapis.com:443", config.Location)
		clientOptions = append(clientOptions, option.WithEndpoint(endpoint))
	}
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		clientOptions = append(clientOptions, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		clientOptions = append(clientOptions, option.WithCredentialsFile(credFile))
	}

	client, err := documentai.NewDocumentProcessorClient(ctx, clientOptions...)
	if err != nil {
		return nil, WrapOCRError(op, err, fmt.Sprintf("failed to create Document AI client for location: %s", config.Location))
	}

	engine := NewDocumentAIEngineWithClient(client, config)
	engine.closer = client.Close
	return engine, nil
}

// NewDocumentAIEngineWithClient creates an engine with an explicit client.
func NewDocumentAIEngineWithClient(client DocumentProcessor, config DocumentAIConfig) *DocumentAIEngine {
	if config.Location == "" {
		config.Location = "us"
	}
	return &DocumentAIEngine{
		client: client,
		config: config,
		log:    logger.WithComponent("document-ai"),
	}
}

// Recognize implements Engine.
func (d *DocumentAIEngine) Recognize(ctx context.Context, img image.Image, opts Options) ([]Observation, error) {
	const op = "DocumentAIEngine.Recognize"
	startTime := time.Now()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, recognitionFailure(op, err, "failed to encode image")
	}

	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	req := &documentaipb.ProcessRequest{
		Name: d.config.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  buf.Bytes(),
				MimeType: "image/png",
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{
					LanguageHints: languageHints(opts.Languages),
				},
			},
		},
	}

	resp, err := d.client.ProcessDocument(ctx, req)
	if err != nil {
		return nil, recognitionFailure(op, err, "Document AI call failed")
	}
	if resp.GetDocument() == nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, "no document in response")
	}

	observations := documentLines(resp.GetDocument())

	d.log.Debug().
		Int("lines", len(observations)).
		Dur("duration", time.Since(startTime)).
		Msg("Document AI recognition completed")

	return observations, nil
}

// Close closes the Document AI client if the engine created it.
func (d *DocumentAIEngine) Close() error {
	if d.closer != nil {
		return d.closer()
	}
	return nil
}

// documentLines converts the lines of the first page. Document AI reports
// normalized vertices with the origin at the top-left and text anchors as
// character offsets into the document text.
func documentLines(doc *documentaipb.Document) []Observation {
	pages := doc.GetPages()
	if len(pages) == 0 {
		return []Observation{}
	}

	text := []rune(doc.GetText())
	observations := make([]Observation, 0, len(pages[0].GetLines()))
	for _, line := range pages[0].GetLines() {
		layout := line.GetLayout()
		content := strings.TrimSpace(anchorText(text, layout.GetTextAnchor()))
		if content == "" {
			continue
		}
		box, ok := normalizedBounds(layout.GetBoundingPoly().GetNormalizedVertices())
		if !ok {
			continue
		}
		observations = append(observations, Observation{Text: content, Box: box})
	}
	return observations
}

func anchorText(text []rune, anchor *documentaipb.Document_TextAnchor) string {
	var b strings.Builder
	for _, seg := range anchor.GetTextSegments() {
		start, end := seg.GetStartIndex(), seg.GetEndIndex()
		if start < 0 || end > int64(len(text)) || start >= end {
			continue
		}
		b.WriteString(string(text[start:end]))
	}
	return b.String()
}

func normalizedBounds(vertices []*documentaipb.NormalizedVertex) (NormalizedRect, bool) {
	if len(vertices) == 0 {
		return NormalizedRect{}, false
	}
	minX, minY := float64(vertices[0].GetX()), float64(vertices[0].GetY())
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		x, y := float64(v.GetX()), float64(v.GetY())
		minX = min(minX, x)
		maxX = max(maxX, x)
		minY = min(minY, y)
		maxY = max(maxY, y)
	}
	return NormalizedRect{
		X:      minX,
		Y:      1 - maxY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}, true
}
