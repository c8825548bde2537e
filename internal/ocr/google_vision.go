package ocr

import (
	"bytes"
	"context"
	"image"
	"os"
	"strings"
	"time"

	vision "cloud.google.com/go/vision/v2/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/disintegration/imaging"
	"github.com/googleapis/gax-go/v2"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"

	"snappost/internal/logger"
)

// Annotator is the part of the Cloud Vision client used for recognition.
// *vision.ImageAnnotatorClient satisfies it.
type Annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// NewVisionClient creates a Cloud Vision client with credentials from environment.
// It expects either GOOGLE_APPLICATION_CREDENTIALS path or GOOGLE_CREDENTIALS JSON in env.
func NewVisionClient(ctx context.Context) (*vision.ImageAnnotatorClient, error) {
	const op = "NewVisionClient"

	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsJSON([]byte(credJSON)))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_CREDENTIALS")
		}
		return client, nil
	}

	if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		client, err := vision.NewImageAnnotatorClient(ctx, option.WithCredentialsFile(credFile))
		if err != nil {
			return nil, WrapOCRError(op, err, "failed to create client with GOOGLE_APPLICATION_CREDENTIALS")
		}
		return client, nil
	}

	// Try default credentials as fallback
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, WrapOCRError(op, ErrMissingCredentials, "no credentials found in environment")
	}
	return client, nil
}

// GoogleVisionEngine implements Engine using Google Cloud Vision text detection.
type GoogleVisionEngine struct {
	client Annotator
	closer func() error
	log    zerolog.Logger
}

// NewGoogleVisionEngine creates an engine that owns a new Vision client.
func NewGoogleVisionEngine(ctx context.Context) (*GoogleVisionEngine, error) {
	client, err := NewVisionClient(ctx)
	if err != nil {
		return nil, err
	}
	engine := NewGoogleVisionEngineWithClient(client)
	engine.closer = client.Close
	return engine, nil
}

// NewGoogleVisionEngineWithClient creates an engine on a shared client.
// Closing the engine does not close the client.
func NewGoogleVisionEngineWithClient(client Annotator) *GoogleVisionEngine {
	return &GoogleVisionEngine{
		client: client,
		log:    logger.WithComponent("ocr"),
	}
}

// Recognize implements Engine.
func (g *GoogleVisionEngine) Recognize(ctx context.Context, img image.Image, opts Options) ([]Observation, error) {
	const op = "GoogleVisionEngine.Recognize"
	startTime := time.Now()

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, recognitionFailure(op, err, "failed to encode image")
	}

	feature := visionpb.Feature_DOCUMENT_TEXT_DETECTION
	if !opts.Accurate {
		feature = visionpb.Feature_TEXT_DETECTION
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: buf.Bytes()},
				Features: []*visionpb.Feature{{Type: feature}},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: languageHints(opts.Languages),
				},
			},
		},
	}

	resp, err := g.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, recognitionFailure(op, err, "Vision API call failed")
	}
	if len(resp.GetResponses()) == 0 {
		return nil, NewOCRError(op, ErrRecognitionFailed, "no response from Vision API")
	}

	imgResp := resp.GetResponses()[0]
	if imgResp.GetError() != nil {
		return nil, NewOCRError(op, ErrRecognitionFailed, "Vision API error: "+imgResp.GetError().GetMessage())
	}

	bounds := img.Bounds()
	observations := visionLines(imgResp.GetFullTextAnnotation(), bounds.Dx(), bounds.Dy())

	g.log.Debug().
		Int("lines", len(observations)).
		Dur("duration", time.Since(startTime)).
		Msg("Vision text detection completed")

	return observations, nil
}

// Close closes the Vision client if the engine created it.
func (g *GoogleVisionEngine) Close() error {
	if g.closer != nil {
		return g.closer()
	}
	return nil
}

// languageHints reduces BCP-47 tags to the primary language subtags Vision expects.
func languageHints(languages []string) []string {
	var hints []string
	seen := make(map[string]bool)
	for _, lang := range languages {
		primary, _, _ := strings.Cut(lang, "-")
		primary = strings.ToLower(strings.TrimSpace(primary))
		if primary == "" || seen[primary] {
			continue
		}
		seen[primary] = true
		hints = append(hints, primary)
	}
	return hints
}

// lineBuilder accumulates symbols of one text line and their pixel extent.
type lineBuilder struct {
	text   strings.Builder
	bounds image.Rectangle
	empty  bool
}

func newLineBuilder() *lineBuilder {
	return &lineBuilder{empty: true}
}

func (l *lineBuilder) add(symbol *visionpb.Symbol) {
	l.text.WriteString(symbol.GetText())
	r := polyBounds(symbol.GetBoundingBox())
	if l.empty {
		l.bounds = r
		l.empty = false
		return
	}
	l.bounds = unionRect(l.bounds, r)
}

// visionLines splits a full text annotation into line observations using the
// detected breaks attached to each symbol.
func visionLines(annotation *visionpb.TextAnnotation, width, height int) []Observation {
	var observations []Observation
	if width <= 0 || height <= 0 {
		return observations
	}

	line := newLineBuilder()
	flush := func() {
		text := strings.TrimSpace(line.text.String())
		if !line.empty && text != "" {
			observations = append(observations, Observation{
				Text: text,
				Box:  normalizeBox(line.bounds, width, height),
			})
		}
		line = newLineBuilder()
	}

	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				for _, word := range paragraph.GetWords() {
					for _, symbol := range word.GetSymbols() {
						line.add(symbol)

						switch symbol.GetProperty().GetDetectedBreak().GetType() {
						case visionpb.TextAnnotation_DetectedBreak_SPACE,
							visionpb.TextAnnotation_DetectedBreak_SURE_SPACE:
							line.text.WriteByte(' ')
						case visionpb.TextAnnotation_DetectedBreak_HYPHEN:
							line.text.WriteByte('-')
							flush()
						case visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE,
							visionpb.TextAnnotation_DetectedBreak_LINE_BREAK:
							flush()
						}
					}
				}
			}
			flush()
		}
	}

	return observations
}

// polyBounds is the pixel bounding rectangle of a Vision polygon.
func polyBounds(poly *visionpb.BoundingPoly) image.Rectangle {
	var r image.Rectangle
	for i, v := range poly.GetVertices() {
		p := image.Rect(int(v.GetX()), int(v.GetY()), int(v.GetX()), int(v.GetY()))
		if i == 0 {
			r = p
			continue
		}
		r = unionRect(r, p)
	}
	return r
}

// unionRect is like image.Rectangle.Union but keeps zero-area rectangles.
func unionRect(a, b image.Rectangle) image.Rectangle {
	return image.Rectangle{
		Min: image.Pt(min(a.Min.X, b.Min.X), min(a.Min.Y, b.Min.Y)),
		Max: image.Pt(max(a.Max.X, b.Max.X), max(a.Max.Y, b.Max.Y)),
	}
}
