package server

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/0mao0/minerpick/internal/convert"
)

type uploadResponse struct {
	TaskID   string `json:"task_id"`
	Filename string `json:"filename"`
	PDFURL   string `json:"pdf_url"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("file")

	if err != nil {
		writeError(w, fmt.Errorf("%w: %w", errInvalidRequest, err))
		return
	}

	defer file.Close()

	name := filepath.Base(header.Filename)

	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		writeError(w, fmt.Errorf("%w: only PDF files are allowed", errInvalidRequest))
		return
	}

	name, err = s.saveInput(name, file)

	if err != nil {
		s.logger.Error("failed to save upload", "file", header.Filename, "error", err)
		writeError(w, err)
		return
	}

	taskID := uuid.NewString()

	s.logger.Info("uploaded file", "task", taskID, "file", name, "bytes", header.Size)

	writeJson(w, uploadResponse{
		TaskID:   taskID,
		Filename: name,
		PDFURL:   path.Join("/inputs", name),
	})
}

// saveInput stores r under a name not taken yet in the input directory and
// returns that name.
func (s *Server) saveInput(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(s.cfg.InputDir, 0o755); err != nil {
		return "", err
	}

	for {
		name = convert.UniqueFilename(s.cfg.InputDir, name)

		f, err := os.OpenFile(filepath.Join(s.cfg.InputDir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)

		if errors.Is(err, fs.ErrExist) {
			// lost a race with a concurrent upload of the same name
			continue
		}

		if err != nil {
			return "", err
		}

		if _, err := io.Copy(f, r); err != nil {
			f.Close()
			os.Remove(f.Name())
			return "", err
		}

		return name, f.Close()
	}
}
