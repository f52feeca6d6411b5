package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/0mao0/minerpick/internal/convert"
	"github.com/0mao0/minerpick/internal/parser"
)

type convertRequest struct {
	TaskID   string `json:"task_id"`
	Filename string `json:"filename"`
	Provider string `json:"provider"`

	MineruAPIURL string `json:"mineru_api_url,omitempty"`
	MineruAPIKey string `json:"mineru_api_key,omitempty"`
}

type convertResponse struct {
	TaskID   string `json:"task_id"`
	Provider string `json:"provider"`

	MarkdownURL       string `json:"md_url"`
	ContentListURL    string `json:"content_list_url"`
	ContentTablesURL  string `json:"content_tables_url"`
	RawContentListURL string `json:"raw_content_list_url,omitempty"`
	OutlineURL        string `json:"outline_url,omitempty"`
}

func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	var req convertRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: %w", errInvalidRequest, err))
		return
	}

	taskID := cleanName(req.TaskID)
	filename := cleanName(req.Filename)

	if taskID == "" || filename == "" {
		writeError(w, fmt.Errorf("%w: task_id and filename are required", errInvalidRequest))
		return
	}

	provider := strings.ToLower(strings.TrimSpace(req.Provider))
	if provider == "" {
		provider = s.cfg.DefaultProvider
	}

	pdfPath := filepath.Join(s.cfg.InputDir, filename)

	if _, err := os.Stat(pdfPath); err != nil {
		writeError(w, fmt.Errorf("%w: %s", convert.ErrNotFound, filename))
		return
	}

	p, err := s.cfg.Parsers.Get(provider)

	if err != nil {
		writeError(w, err)
		return
	}

	outDir := filepath.Join(s.cfg.OutputDir, taskID)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		writeError(w, err)
		return
	}

	logger := s.logger.With("task", taskID, "provider", provider, "file", filename)

	if err := copyFile(pdfPath, filepath.Join(outDir, filename)); err != nil {
		logger.Warn("failed to copy source PDF to output directory", "error", err)
	}

	result, err := p.Parse(r.Context(), pdfPath, outDir, &parser.Options{
		APIURL: req.MineruAPIURL,
		APIKey: req.MineruAPIKey,
	})

	if err != nil {
		logger.Error("conversion failed", "error", err)
		writeError(w, err)
		return
	}

	logger.Info("conversion finished", "blocks", result.Blocks, "matched", result.Matched, "unresolved", result.Unresolved)

	writeJson(w, convertResponse{
		TaskID:   taskID,
		Provider: provider,

		MarkdownURL:       resultURL(taskID, result.MarkdownFile),
		ContentListURL:    resultURL(taskID, result.ContentListFile),
		ContentTablesURL:  resultURL(taskID, result.ContentTablesFile),
		RawContentListURL: resultURL(taskID, result.RawContentListFile),
		OutlineURL:        resultURL(taskID, result.OutlineFile),
	})
}

// cleanName reduces a client supplied path to its last element.
func cleanName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))

	switch name {
	case ".", "..", string(filepath.Separator):
		return ""
	}

	return name
}

func resultURL(taskID, file string) string {
	if file == "" {
		return ""
	}

	return path.Join("/results", taskID, filepath.Base(file))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}

	return out.Close()
}
