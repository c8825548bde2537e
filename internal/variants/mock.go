package variants

import (
	"fmt"

	"github.com/google/uuid"

	"snappost/pkg/models"
)

// mockSnippetLength is how many characters of the excerpt mock posts quote.
const mockSnippetLength = 50

var mockTemplates = map[models.Tone]string{
	models.TonePunchy:       "🚀 Just discovered this game-changing insight: \"%s...\" This completely shifts how I think about success. The implications for our industry are massive. What's your take on this perspective?",
	models.ToneContrarian:   "Unpopular opinion: \"%s...\" Everyone's jumping on this bandwagon, but are we missing the bigger picture? Sometimes conventional wisdom needs challenging. What if we're all wrong about this?",
	models.TonePersonal:     "This passage stopped me in my tracks: \"%s...\" It reminded me of my own journey and the mistakes I've made along the way. Growth comes from embracing these uncomfortable truths. How has this resonated with your experience?",
	models.ToneAnalytical:   "Breaking down this insight: \"%s...\" Three key factors emerge that could reshape our approach: 1) mindset shift 2) practical application 3) long-term impact. Which factor resonates most with your situation?",
	models.ToneOpenQuestion: "Fascinating perspective: \"%s...\" This raises so many questions about our current methods and assumptions. What would happen if we applied this thinking to your field? I'm curious about your thoughts.",
}

// mockVariants builds one templated variant per tone, in tone order.
func mockVariants(excerpt string) []models.Variant {
	snippet := excerpt
	if r := []rune(excerpt); len(r) > mockSnippetLength {
		snippet = string(r[:mockSnippetLength])
	}

	tones := models.AllTones()
	variants := make([]models.Variant, 0, len(tones))
	for _, tone := range tones {
		variants = append(variants, models.Variant{
			ID:   uuid.NewString(),
			Tone: tone,
			Text: models.TruncateVariantText(fmt.Sprintf(mockTemplates[tone], snippet)),
		})
	}
	return variants
}
