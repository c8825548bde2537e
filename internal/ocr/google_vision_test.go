package ocr

import (
	"context"
	"errors"
	"image"
	"testing"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/googleapis/gax-go/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAnnotator struct {
	resp *visionpb.BatchAnnotateImagesResponse
	err  error
	req  *visionpb.BatchAnnotateImagesRequest
}

func (f *fakeAnnotator) BatchAnnotateImages(_ context.Context, req *visionpb.BatchAnnotateImagesRequest, _ ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error) {
	f.req = req
	return f.resp, f.err
}

func symbol(text string, x0, y0, x1, y1 int32, br visionpb.TextAnnotation_DetectedBreak_BreakType) *visionpb.Symbol {
	s := &visionpb.Symbol{
		Text: text,
		BoundingBox: &visionpb.BoundingPoly{Vertices: []*visionpb.Vertex{
			{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1},
		}},
	}
	if br != visionpb.TextAnnotation_DetectedBreak_UNKNOWN {
		s.Property = &visionpb.TextAnnotation_TextProperty{
			DetectedBreak: &visionpb.TextAnnotation_DetectedBreak{Type: br},
		}
	}
	return s
}

// annotation lays out "Hi yo" on one line and "ok" on the next.
func annotation() *visionpb.TextAnnotation {
	none := visionpb.TextAnnotation_DetectedBreak_UNKNOWN
	return &visionpb.TextAnnotation{
		Pages: []*visionpb.Page{{
			Blocks: []*visionpb.Block{{
				Paragraphs: []*visionpb.Paragraph{{
					Words: []*visionpb.Word{
						{Symbols: []*visionpb.Symbol{
							symbol("H", 10, 10, 20, 30, none),
							symbol("i", 20, 10, 25, 30, visionpb.TextAnnotation_DetectedBreak_SPACE),
						}},
						{Symbols: []*visionpb.Symbol{
							symbol("y", 30, 12, 40, 32, none),
							symbol("o", 40, 12, 50, 32, visionpb.TextAnnotation_DetectedBreak_EOL_SURE_SPACE),
						}},
						{Symbols: []*visionpb.Symbol{
							symbol("o", 10, 50, 20, 70, none),
							symbol("k", 20, 50, 30, 70, none),
						}},
					},
				}},
			}},
		}},
	}
}

func TestVisionLinesSplitsOnBreaks(t *testing.T) {
	lines := visionLines(annotation(), 100, 100)

	require.Len(t, lines, 2)
	assert.Equal(t, "Hi yo", lines[0].Text)
	assert.InDelta(t, 0.1, lines[0].Box.X, 1e-9)
	assert.InDelta(t, 0.4, lines[0].Box.Width, 1e-9)
	assert.InDelta(t, 0.68, lines[0].Box.Y, 1e-9)
	assert.InDelta(t, 0.22, lines[0].Box.Height, 1e-9)

	// Block end flushes the last line.
	assert.Equal(t, "ok", lines[1].Text)
}

func TestVisionLinesHyphenEndsLine(t *testing.T) {
	ann := &visionpb.TextAnnotation{Pages: []*visionpb.Page{{Blocks: []*visionpb.Block{{
		Paragraphs: []*visionpb.Paragraph{{Words: []*visionpb.Word{
			{Symbols: []*visionpb.Symbol{
				symbol("a", 0, 0, 10, 10, visionpb.TextAnnotation_DetectedBreak_HYPHEN),
				symbol("b", 0, 20, 10, 30, visionpb.TextAnnotation_DetectedBreak_LINE_BREAK),
			}},
		}}},
	}}}}}

	lines := visionLines(ann, 100, 100)

	require.Len(t, lines, 2)
	assert.Equal(t, "a-", lines[0].Text)
	assert.Equal(t, "b", lines[1].Text)
}

func TestVisionLinesNilAnnotation(t *testing.T) {
	assert.Empty(t, visionLines(nil, 100, 100))
}

func TestGoogleVisionEngineRecognize(t *testing.T) {
	fake := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{FullTextAnnotation: annotation()}},
	}}
	engine := NewGoogleVisionEngineWithClient(fake)

	obs, err := engine.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 100, 100)), DefaultOptions())

	require.NoError(t, err)
	assert.Len(t, obs, 2)

	r := fake.req.GetRequests()[0]
	assert.Equal(t, visionpb.Feature_DOCUMENT_TEXT_DETECTION, r.GetFeatures()[0].GetType())
	assert.Equal(t, []string{"en"}, r.GetImageContext().GetLanguageHints())
	assert.NoError(t, engine.Close())
}

func TestGoogleVisionEngineFastMode(t *testing.T) {
	fake := &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{
		Responses: []*visionpb.AnnotateImageResponse{{}},
	}}
	opts := DefaultOptions()
	opts.Accurate = false

	obs, err := NewGoogleVisionEngineWithClient(fake).Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)), opts)

	require.NoError(t, err)
	assert.Empty(t, obs)
	assert.Equal(t, visionpb.Feature_TEXT_DETECTION, fake.req.GetRequests()[0].GetFeatures()[0].GetType())
}

func TestGoogleVisionEngineFailures(t *testing.T) {
	tests := []struct {
		name string
		fake *fakeAnnotator
	}{
		{"call failure", &fakeAnnotator{err: context.Canceled}},
		{"empty response", &fakeAnnotator{resp: &visionpb.BatchAnnotateImagesResponse{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			obs, err := NewGoogleVisionEngineWithClient(tt.fake).
				Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 10, 10)), DefaultOptions())

			assert.Nil(t, obs)
			assert.ErrorIs(t, err, ErrRecognitionFailed)

			var ocrErr *OCRError
			assert.True(t, errors.As(err, &ocrErr))
		})
	}
}

func TestTesseractEngineConstructor(t *testing.T) {
	engine, err := NewTesseractEngine()
	if err != nil {
		assert.ErrorIs(t, err, ErrEngineUnavailable)
		return
	}
	assert.NoError(t, engine.Close())
}
