package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/0mao0/minerpick/internal/convert"
	"github.com/0mao0/minerpick/internal/layout"
	"github.com/0mao0/minerpick/internal/parser"
)

var errInvalidRequest = errors.New("invalid request")

func writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	enc.Encode(v)
}

// writeError answers with {"detail": ...} and a status derived from err.
func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode(err))

	json.NewEncoder(w).Encode(map[string]string{
		"detail": err.Error(),
	})
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, errInvalidRequest),
		errors.Is(err, parser.ErrUnknownProvider),
		errors.Is(err, layout.ErrUnsupported):
		return http.StatusBadRequest

	case errors.Is(err, convert.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, layout.ErrUnavailable):
		return http.StatusBadGateway

	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJson(w, map[string]string{
		"status": "healthy",
	})
}

type configResponse struct {
	MineruAPIURL       string `json:"mineru_api_url"`
	HasMineruAPIKey    bool   `json:"has_mineru_api_key"`
	MineruAPIKeyMasked string `json:"mineru_api_key_masked"`
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	writeJson(w, configResponse{
		MineruAPIURL:       s.cfg.MineruAPIURL,
		HasMineruAPIKey:    s.cfg.MineruAPIKey != "",
		MineruAPIKeyMasked: maskKey(s.cfg.MineruAPIKey),
	})
}

// maskKey keeps the first and last four characters of keys longer than eight.
func maskKey(key string) string {
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}

	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
