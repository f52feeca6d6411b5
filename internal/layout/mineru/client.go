// Package mineru talks to a MinerU server's /file_parse endpoint.
package mineru

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path"
	"slices"
	"sort"
	"strings"

	"github.com/0mao0/minerpick/internal/layout"
)

var _ layout.Extractor = &Client{}

type Client struct {
	client *http.Client

	url   string
	token string
}

func New(url string, options ...Option) (*Client, error) {
	if NormalizeURL(url) == "" {
		return nil, errors.New("invalid url")
	}

	c := &Client{
		client: http.DefaultClient,

		url: url,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// NormalizeURL trims whitespace, trailing slashes and a trailing /docs, so the
// address of the server's API docs page works as well.
func NormalizeURL(url string) string {
	url = strings.TrimRight(strings.TrimSpace(url), "/")
	url = strings.TrimSuffix(url, "/docs")

	return strings.TrimRight(url, "/")
}

func (c *Client) Extract(ctx context.Context, input layout.File, options *layout.ExtractOptions) (*layout.Layout, error) {
	if options == nil {
		options = new(layout.ExtractOptions)
	}

	if !isSupported(input) {
		return nil, layout.ErrUnsupported
	}

	url := c.url
	if options.URL != "" {
		url = options.URL
	}

	token := c.token
	if options.Token != "" {
		token = options.Token
	}

	var data bytes.Buffer

	contentType, err := writeForm(&data, input)

	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, NormalizeURL(url)+"/file_parse", &data)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", layout.ErrUnavailable, err)
	}

	req.Header.Set("Content-Type", contentType)

	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, fmt.Errorf("%w: %w", layout.ErrUnavailable, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %w", layout.ErrUnavailable, convertError(resp))
	}

	var result ParseResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("%w: %w", layout.ErrInvalidResponse, err)
	}

	content, ok := pickResult(result.Results, input.Name)

	if !ok {
		return nil, fmt.Errorf("%w: no results returned", layout.ErrInvalidResponse)
	}

	elements, raw, err := layout.DecodeContentList(content.ContentList)

	if err != nil {
		return nil, err
	}

	return &layout.Layout{
		Markdown: content.Markdown,
		Elements: layout.DropDiscarded(elements),
		Tables:   layout.DecodeTables(content.ContentTables),
		Raw:      raw,
	}, nil
}

// pickResult returns the entry for the uploaded file. The server keys results
// by file stem; other keys are tried in sorted order.
func pickResult(results map[string]ParseResult, name string) (ParseResult, bool) {
	if len(results) == 0 {
		return ParseResult{}, false
	}

	stem := strings.TrimSuffix(name, path.Ext(name))

	if r, ok := results[stem]; ok {
		return r, true
	}

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return results[keys[0]], true
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func isSupported(input layout.File) bool {
	if input.Name != "" {
		ext := strings.ToLower(path.Ext(input.Name))

		if slices.Contains(SupportedExtensions, ext) {
			return true
		}
	}

	if input.ContentType != "" {
		if slices.Contains(SupportedMimeTypes, input.ContentType) {
			return true
		}
	}

	return false
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	if len(data) == 0 {
		return fmt.Errorf("mineru: %s", resp.Status)
	}

	return fmt.Errorf("mineru: %s - %s", resp.Status, strings.TrimSpace(string(data)))
}

// writeForm encodes the file_parse request body into dst and returns its
// content type.
func writeForm(dst io.Writer, input layout.File) (string, error) {
	w := multipart.NewWriter(dst)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="files"; filename="%s"`, escapeQuotes(input.Name)))
	header.Set("Content-Type", "application/pdf")

	file, err := w.CreatePart(header)

	if err != nil {
		return "", err
	}

	if _, err := io.Copy(file, bytes.NewReader(input.Content)); err != nil {
		return "", err
	}

	fields := [][2]string{
		{"return_middle_json", "false"},
		{"return_content_list", "true"},
		{"return_md", "true"},
	}

	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return "", err
		}
	}

	if err := w.Close(); err != nil {
		return "", err
	}

	return w.FormDataContentType(), nil
}
