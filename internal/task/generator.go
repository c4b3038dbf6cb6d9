package task

import (
	"context"
	"fmt"
	"math"

	"github.com/phrazzld/irmock-api/internal/domain"
)

// ResultGenerator produces the recognition result for a submission.
type ResultGenerator interface {
	Generate(ctx context.Context, submission *domain.Submission) (*domain.Result, error)
}

// DefaultResultItems is the number of recognized items produced when no
// explicit count is configured.
const DefaultResultItems = 2

// SyntheticGenerator returns a fixed list of placeholder items: item1..itemN
// with confidences 0.95, 0.85, ... never dropping below 0.05.
type SyntheticGenerator struct {
	itemCount int
}

// NewSyntheticGenerator creates a generator producing itemCount items.
func NewSyntheticGenerator(itemCount int) *SyntheticGenerator {
	if itemCount <= 0 {
		itemCount = DefaultResultItems
	}
	return &SyntheticGenerator{itemCount: itemCount}
}

// Generate implements ResultGenerator.
func (g *SyntheticGenerator) Generate(ctx context.Context, _ *domain.Submission) (*domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := make([]domain.RecognizedItem, g.itemCount)
	for i := range items {
		confidence := math.Round((0.95-0.10*float64(i))*100) / 100
		if confidence < 0.05 {
			confidence = 0.05
		}
		items[i] = domain.RecognizedItem{
			ItemID:     fmt.Sprintf("item%d", i+1),
			Confidence: confidence,
		}
	}
	return &domain.Result{RecognizedItems: items}, nil
}
