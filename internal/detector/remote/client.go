// Package remote calls a table-structure sidecar that renders PDF pages and
// recognizes the cell grid of given table regions.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"
	"golang.org/x/sync/errgroup"

	"github.com/0mao0/minerpick/internal/detector"
	"github.com/0mao0/minerpick/internal/model"
)

var _ detector.Provider = &Client{}

type Client struct {
	client *http.Client
	logger *slog.Logger

	url   string
	token string

	concurrency int
	attempts    uint
	delay       time.Duration
}

func New(url string, options ...Option) (*Client, error) {
	url = strings.TrimRight(strings.TrimSpace(url), "/")

	if url == "" {
		return nil, errors.New("invalid url")
	}

	c := &Client{
		client: http.DefaultClient,
		logger: slog.Default(),

		url: url,

		concurrency: 4,
		attempts:    3,
		delay:       500 * time.Millisecond,
	}

	for _, option := range options {
		option(c)
	}

	return c, nil
}

// Detect sends one request per page. Pages that keep failing are logged and
// skipped; an error is returned only when every page failed.
func (c *Client) Detect(ctx context.Context, pdfPath string, regions []detector.Region) (map[string]model.TableDefinition, error) {
	result := map[string]model.TableDefinition{}

	if len(regions) == 0 {
		return result, nil
	}

	data, err := os.ReadFile(pdfPath)

	if err != nil {
		return nil, err
	}

	name := filepath.Base(pdfPath)

	pages := make(map[int][]detector.Region)
	for _, r := range regions {
		pages[r.Page] = append(pages[r.Page], r)
	}

	order := make([]int, 0, len(pages))
	for p := range pages {
		order = append(order, p)
	}
	sort.Ints(order)

	var (
		mu     sync.Mutex
		errs   []error
		failed int
	)

	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)

	for _, page := range order {
		g.Go(func() error {
			tables, err := c.detectPage(ctx, name, data, page, pages[page])

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				c.logger.Warn("table detection failed", "file", name, "page", page, "error", err)

				failed++
				errs = append(errs, fmt.Errorf("page %d: %w", page, err))
				return nil
			}

			for id, t := range tables {
				result[id] = t
			}

			return nil
		})
	}

	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if failed == len(order) {
		return nil, errors.Join(errs...)
	}

	return result, nil
}

func (c *Client) detectPage(ctx context.Context, name string, data []byte, page int, regions []detector.Region) (map[string]model.TableDefinition, error) {
	var resp DetectResponse

	err := retry.Do(
		func() error {
			r, err := c.post(ctx, name, data, page, regions)

			if err != nil {
				return err
			}

			resp = *r
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
	)

	if err != nil {
		return nil, err
	}

	out := make(map[string]model.TableDefinition, len(regions))

	for _, r := range regions {
		if msg, ok := resp.Errors[r.ID]; ok {
			c.logger.Debug("table region not analyzed", "file", name, "id", r.ID, "error", msg)
			continue
		}

		t, ok := resp.Tables[r.ID]

		if !ok || len(t.Cells) == 0 {
			continue
		}

		t.ID = r.ID
		t.Page = r.Page
		t.Enriched = true

		if t.BBox == (model.BBox{}) {
			t.BBox = r.BBox
		}

		out[r.ID] = t
	}

	return out, nil
}

func (c *Client) post(ctx context.Context, name string, data []byte, page int, regions []detector.Region) (*DetectResponse, error) {
	regionData, err := json.Marshal(regions)

	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	var body bytes.Buffer

	contentType, err := writeForm(&body, name, data, page, regionData)

	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/tables", &body)

	if err != nil {
		return nil, retry.Unrecoverable(err)
	}

	req.Header.Set("Content-Type", contentType)

	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, convertError(resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, retry.Unrecoverable(convertError(resp))
	}

	var result DetectResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, retry.Unrecoverable(err)
	}

	return &result, nil
}

func convertError(resp *http.Response) error {
	data, _ := io.ReadAll(resp.Body)

	if len(data) == 0 {
		return fmt.Errorf("detector: %s", resp.Status)
	}

	return fmt.Errorf("detector: %s - %s", resp.Status, strings.TrimSpace(string(data)))
}

func writeForm(dst io.Writer, name string, data []byte, page int, regions []byte) (string, error) {
	w := multipart.NewWriter(dst)

	file, err := w.CreateFormFile("file", name)

	if err != nil {
		return "", err
	}

	if _, err := file.Write(data); err != nil {
		return "", err
	}

	if err := w.WriteField("page_idx", strconv.Itoa(page)); err != nil {
		return "", err
	}

	if err := w.WriteField("regions", string(regions)); err != nil {
		return "", err
	}

	if err := w.Close(); err != nil {
		return "", err
	}

	return w.FormDataContentType(), nil
}
