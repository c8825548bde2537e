package detect

import (
	"bytes"
	"context"
	"fmt"
	"image"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"github.com/disintegration/imaging"
	"github.com/googleapis/gax-go/v2"

	"snappost/internal/geometry"
)

// maxCropHints bounds the number of crop hints requested per image.
const maxCropHints = 5

// Annotator is the part of the Cloud Vision client used for crop hints.
// *vision.ImageAnnotatorClient satisfies it.
type Annotator interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// VisionCropHints detects page quadrilaterals with Cloud Vision CROP_HINTS.
type VisionCropHints struct {
	client Annotator
}

// NewVisionCropHints creates a crop hint capability on an existing Vision client.
func NewVisionCropHints(client Annotator) *VisionCropHints {
	return &VisionCropHints{client: client}
}

// Candidates implements Capability.
func (v *VisionCropHints) Candidates(ctx context.Context, img image.Image, opts Options) ([]geometry.Quad, error) {
	const op = "VisionCropHints.Candidates"

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("%s: failed to encode image: %w", op, err)
	}

	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: buf.Bytes()},
				Features: []*visionpb.Feature{
					{
						Type:       visionpb.Feature_CROP_HINTS,
						MaxResults: maxCropHints,
					},
				},
				ImageContext: &visionpb.ImageContext{
					CropHintsParams: &visionpb.CropHintsParams{
						AspectRatios: cropAspectRatios(opts.MinAspectRatio),
					},
				},
			},
		},
	}

	resp, err := v.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: Vision API call failed: %w", op, err)
	}
	if len(resp.GetResponses()) == 0 {
		return nil, fmt.Errorf("%s: no response from Vision API", op)
	}

	imgResp := resp.GetResponses()[0]
	if imgResp.GetError() != nil {
		return nil, fmt.Errorf("%s: Vision API error: %s", op, imgResp.GetError().GetMessage())
	}

	bounds := img.Bounds()
	var quads []geometry.Quad
	for _, hint := range imgResp.GetCropHintsAnnotation().GetCropHints() {
		vertices := hint.GetBoundingPoly().GetVertices()
		if len(vertices) != 4 {
			continue
		}

		var pts [4]geometry.Point
		for i, vtx := range vertices {
			pts[i] = geometry.Point{X: float64(vtx.GetX()), Y: float64(vtx.GetY())}
		}
		corners := geometry.OrderCorners(pts)
		if !withinQuadrature(corners, opts.QuadratureTolerance) {
			continue
		}

		quads = append(quads, geometry.QuadFromPixels(corners, bounds.Dx(), bounds.Dy(), hint.GetConfidence()))
	}

	return quads, nil
}

// cropAspectRatios returns the portrait and landscape page ratios Vision should
// try, never narrower than minAspect.
func cropAspectRatios(minAspect float64) []float32 {
	ratios := []float32{0.7, 1.0, 1.4}
	out := ratios[:0]
	for _, r := range ratios {
		if float64(r) >= minAspect {
			out = append(out, r)
		}
	}
	if len(out) == 0 {
		out = append(out, float32(minAspect))
	}
	return out
}
