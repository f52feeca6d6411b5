package config

import (
	"context"
	"crypto/tls"
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/0mao0/minerpick/internal/ai"
	"github.com/0mao0/minerpick/internal/convert"
	"github.com/0mao0/minerpick/internal/detector"
	"github.com/0mao0/minerpick/internal/detector/remote"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/layout/gemini"
	"github.com/0mao0/minerpick/internal/layout/mineru"
	"github.com/0mao0/minerpick/internal/layout/pdftext"
	"github.com/0mao0/minerpick/internal/parser"
)

// Provider ids.
const (
	ProviderMineru  = "mineru"
	ProviderPDFText = "pdftext"
	ProviderGemini  = "gemini"
)

// Parsers builds the parser registry. Gemini is only registered when an API
// key is configured.
func (c *Config) Parsers(ctx context.Context, logger *slog.Logger) (*parser.Registry, error) {
	det, err := c.detector(logger)

	if err != nil {
		return nil, err
	}

	extractors := map[string]layout.Extractor{}

	m, err := c.mineruExtractor()

	if err != nil {
		return nil, err
	}

	extractors[ProviderMineru] = m
	extractors[ProviderPDFText] = pdftext.New(pdftext.WithLogger(logger))

	if c.GeminiAPIKey != "" {
		g, err := ai.NewGemini(ctx, c.GeminiAPIKey, c.GeminiModel, ai.WithLogger(logger))

		if err != nil {
			return nil, err
		}

		extractors[ProviderGemini] = gemini.New(g)
	}

	r := parser.NewRegistry()

	for name, e := range extractors {
		r.Register(name, convert.New(convert.Config{
			Provider:  name,
			Extractor: e,
			Detector:  det,
			Logger:    logger,
		}))
	}

	return r, nil
}

func (c *Config) httpClient() *http.Client {
	client := &http.Client{
		Timeout: c.MineruTimeout,
	}

	if c.MineruInsecure {
		client.Transport = &http.Transport{
			Proxy:           http.ProxyFromEnvironment,
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return client
}

func (c *Config) mineruExtractor() (layout.Extractor, error) {
	options := []mineru.Option{
		mineru.WithClient(c.httpClient()),
	}

	if c.MineruAPIKey != "" {
		options = append(options, mineru.WithToken(c.MineruAPIKey))
	}

	e, err := mineru.New(c.MineruAPIURL, options...)

	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter

	if c.MineruLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(c.MineruLimit), 1)
	}

	return layout.Limit(limiter, e), nil
}

func (c *Config) detector(logger *slog.Logger) (detector.Provider, error) {
	if c.DetectorURL == "" {
		return detector.Noop{}, nil
	}

	options := []remote.Option{
		remote.WithClient(c.httpClient()),
		remote.WithConcurrency(c.DetectorConcurrency),
		remote.WithAttempts(c.DetectorAttempts),
		remote.WithLogger(logger),
	}

	if c.DetectorToken != "" {
		options = append(options, remote.WithToken(c.DetectorToken))
	}

	return remote.New(c.DetectorURL, options...)
}
