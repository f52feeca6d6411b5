package remote

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failAfter struct {
	n int
}

func (w *failAfter) Write(p []byte) (int, error) {
	if len(p) > w.n {
		written := w.n
		w.n = 0
		return written, errors.New("short write")
	}

	w.n -= len(p)
	return len(p), nil
}

func TestWriteForm(t *testing.T) {
	regions := []byte(`[{"id":"t0"}]`)

	var buf bytes.Buffer
	contentType, err := writeForm(&buf, "doc.pdf", []byte("%PDF-1.4"), 2, regions)
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(contentType)
	require.NoError(t, err)

	r := multipart.NewReader(&buf, params["boundary"])

	part, err := r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "file", part.FormName())
	assert.Equal(t, "doc.pdf", part.FileName())

	part, err = r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "page_idx", part.FormName())
	value, err := io.ReadAll(part)
	require.NoError(t, err)
	assert.Equal(t, "2", string(value))

	part, err = r.NextPart()
	require.NoError(t, err)
	assert.Equal(t, "regions", part.FormName())
	value, err = io.ReadAll(part)
	require.NoError(t, err)
	assert.JSONEq(t, string(regions), string(value))

	_, err = r.NextPart()
	assert.ErrorIs(t, err, io.EOF)

	var full bytes.Buffer
	_, err = writeForm(&full, "doc.pdf", []byte("%PDF-1.4"), 2, regions)
	require.NoError(t, err)

	for n := 0; n < full.Len(); n++ {
		_, err := writeForm(&failAfter{n: n}, "doc.pdf", []byte("%PDF-1.4"), 2, regions)
		assert.Error(t, err, "body cut at %d of %d bytes", n, full.Len())
	}
}
