// Package client talks to the NLP playground backend over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/iksnae/nlp-playground/internal"
)

const (
	// DefaultBaseURL is where the backend listens in development
	DefaultBaseURL = "http://localhost:8000"

	// DefaultTimeout bounds a single request when the caller sets none
	DefaultTimeout = 2 * time.Minute

	maxErrorBody = 64 << 10
)

// Endpoint paths, relative to the base URL
const (
	PathUpload     = "/upload"
	PathRAGUpload  = "/rag/upload"
	PathTrain      = "/train"
	PathConsult    = "/copilot/consult"
	PathRAGQuery   = "/rag/query"
	PathPreprocess = "/preprocess"
)

// Config holds client configuration
type Config struct {
	BaseURL    string
	Timeout    time.Duration      // zero = DefaultTimeout
	HTTPClient *http.Client       // nil = a client with Timeout
	Logger     *zap.SugaredLogger // nil = the package logger of internal
}

// Client implements internal.Service against the backend HTTP API
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

var _ internal.Service = (*Client)(nil)

// New creates a client with defaults applied.
func New(config Config) *Client {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultTimeout
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: config.Timeout}
	}
	logger := config.Logger
	if logger == nil {
		logger = internal.Logger()
	}
	return &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// BaseURL returns the service root this client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// UploadDataset sends a CSV file as multipart form field "file".
func (c *Client) UploadDataset(ctx context.Context, file internal.Upload) (internal.DatasetUploadResponse, error) {
	var out internal.DatasetUploadResponse
	err := c.upload(ctx, "upload", PathUpload, file, &out)
	return out, err
}

// UploadDocument sends a PDF file for chunking and indexing.
func (c *Client) UploadDocument(ctx context.Context, file internal.Upload) (internal.DocumentUploadResponse, error) {
	var out internal.DocumentUploadResponse
	err := c.upload(ctx, "rag/upload", PathRAGUpload, file, &out)
	return out, err
}

// Train dispatches an experiment and returns the undecoded result body.
func (c *Client) Train(ctx context.Context, req internal.TrainRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.postJSON(ctx, "train", PathTrain, req, &out)
	return out, err
}

// Consult asks the dataset copilot a question.
func (c *Client) Consult(ctx context.Context, req internal.ConsultRequest) (internal.ConsultResponse, error) {
	var out internal.ConsultResponse
	err := c.postJSON(ctx, "consult", PathConsult, req, &out)
	return out, err
}

// QueryDocument asks a question about an indexed document.
func (c *Client) QueryDocument(ctx context.Context, req internal.DocumentQueryRequest) (internal.DocumentQueryResponse, error) {
	var out internal.DocumentQueryResponse
	err := c.postJSON(ctx, "rag/query", PathRAGQuery, req, &out)
	return out, err
}

// Preprocess runs text cleanup over one dataset column.
func (c *Client) Preprocess(ctx context.Context, req internal.PreprocessRequest) (internal.PreprocessResponse, error) {
	var out internal.PreprocessResponse
	err := c.postJSON(ctx, "preprocess", PathPreprocess, req, &out)
	return out, err
}

// Ping checks that the service answers HTTP at all. Any status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.unreachable(err)
	}
	_ = resp.Body.Close()
	return nil
}

func (c *Client) upload(ctx context.Context, op, path string, file internal.Upload, out any) error {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	if _, err := part.Write(file.Data); err != nil {
		return errors.Wrap(err, "write form file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart body")
	}
	return c.do(ctx, op, path, mw.FormDataContentType(), &body, out)
}

func (c *Client) postJSON(ctx context.Context, op, path string, in, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return errors.Wrap(err, "marshal request")
	}
	return c.do(ctx, op, path, "application/json", bytes.NewReader(data), out)
}

func (c *Client) do(ctx context.Context, op, path, contentType string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrapf(ctxErr, "%s request", op)
		}
		return c.unreachable(err)
	}
	defer resp.Body.Close()

	c.logger.Debugw("service call", "op", op, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &internal.ServiceError{Op: op, Status: resp.StatusCode, Detail: parseDetail(raw)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode %s response", op)
	}
	return nil
}

func (c *Client) unreachable(err error) error {
	return errors.WithHint(
		errors.Wrap(err, "service unreachable"),
		"is the service running at "+c.baseURL+"?",
	)
}

// parseDetail extracts the "detail" field of an error body. Non-string
// details come back as compact JSON.
func parseDetail(raw []byte) string {
	var body struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(raw, &body); err != nil || len(body.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(body.Detail, &s); err == nil {
		return s
	}
	if string(body.Detail) == "null" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, body.Detail); err != nil {
		return string(body.Detail)
	}
	return buf.String()
}
