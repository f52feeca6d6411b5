package layout

import (
	"context"

	"golang.org/x/time/rate"
)

type limitedExtractor struct {
	limiter   *rate.Limiter
	extractor Extractor
}

// Limit throttles calls to e. A nil limiter passes calls straight through.
func Limit(l *rate.Limiter, e Extractor) Extractor {
	if l == nil {
		return e
	}

	return &limitedExtractor{
		limiter:   l,
		extractor: e,
	}
}

func (e *limitedExtractor) Extract(ctx context.Context, input File, options *ExtractOptions) (*Layout, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	return e.extractor.Extract(ctx, input, options)
}
