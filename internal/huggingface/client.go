// Package huggingface builds evaluation contexts from the Hugging Face Hub.
package huggingface

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MikeSquared-Agency/Appraise/internal/docquality"
	"github.com/MikeSquared-Agency/Appraise/internal/modelctx"
)

const (
	DefaultBaseURL = "https://huggingface.co"

	// defaultModelBytes stands in for models whose file listing is unavailable.
	defaultModelBytes = 50_000_000

	userAgent = "appraise/0.1"
)

// ModelInfo is the subset of the hub model payload the heuristics read.
type ModelInfo struct {
	ID           string         `json:"id"`
	Downloads    int64          `json:"downloads"`
	Likes        int64          `json:"likes"`
	License      string         `json:"license"`
	Tags         []string       `json:"tags"`
	CardData     map[string]any `json:"cardData"`
	LastModified string         `json:"lastModified"`
}

// FileEntry is one row of a repository tree listing.
type FileEntry struct {
	Type string `json:"type"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	analyzer   docquality.Analyzer
	logger     *slog.Logger
	now        func() time.Time
}

func NewHTTPClient(baseURL, token string, analyzer docquality.Analyzer, logger *slog.Logger) *HTTPClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		analyzer:   analyzer,
		logger:     logger,
		now:        time.Now,
	}
}

// ExtractModelID returns the hub model id ("org/model" or "model") from a
// model page URL, ignoring a trailing slash and any /tree/<revision> suffix.
func ExtractModelID(url string) (string, error) {
	i := strings.Index(url, "huggingface.co/")
	if i < 0 {
		return "", fmt.Errorf("not a hugging face url: %s", url)
	}
	id := strings.TrimRight(url[i+len("huggingface.co/"):], "/")
	if j := strings.Index(id, "/tree/"); j >= 0 {
		id = id[:j]
	}
	if id == "" {
		return "", fmt.Errorf("no model id in url: %s", url)
	}
	return id, nil
}

type response struct {
	status int
	reason string
	body   []byte
	ms     int64
}

func (c *HTTPClient) doReq(ctx context.Context, path string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{
		status: resp.StatusCode,
		reason: http.StatusText(resp.StatusCode),
		body:   body,
		ms:     elapsedMs(start),
	}, nil
}

// FetchModelInfo is the authoritative existence check. Any non-200 status
// is a *modelctx.LookupError; transport failures are returned as is.
func (c *HTTPClient) FetchModelInfo(ctx context.Context, id string) (*ModelInfo, int64, error) {
	resp, err := c.doReq(ctx, "/api/models/"+id)
	if err != nil {
		return nil, 0, fmt.Errorf("hub GET model %s: %w", id, err)
	}
	if resp.status != http.StatusOK {
		return nil, resp.ms, &modelctx.LookupError{Identifier: id, Status: resp.status, Message: resp.reason}
	}
	var info ModelInfo
	if err := json.Unmarshal(resp.body, &info); err != nil {
		return nil, resp.ms, &modelctx.LookupError{Identifier: id, Status: http.StatusInternalServerError, Message: "unexpected JSON payload"}
	}
	return &info, resp.ms, nil
}

// FetchFiles lists the main branch. Best effort: failures yield nil.
func (c *HTTPClient) FetchFiles(ctx context.Context, id string) ([]FileEntry, int64) {
	resp, err := c.doReq(ctx, "/api/models/"+id+"/tree/main")
	if err != nil {
		c.logger.Warn("failed to fetch model files", "identifier", id, "error", err)
		return nil, 0
	}
	if resp.status != http.StatusOK {
		c.logger.Info("model file listing not available", "identifier", id, "status", resp.status)
		return nil, resp.ms
	}
	var files []FileEntry
	if err := json.Unmarshal(resp.body, &files); err != nil {
		c.logger.Warn("unexpected file listing payload", "identifier", id, "error", err)
		return nil, resp.ms
	}
	return files, resp.ms
}

// FetchReadme tries README.md and then README. Best effort: failures yield "".
func (c *HTTPClient) FetchReadme(ctx context.Context, id string) (string, int64) {
	var total int64
	for _, name := range []string{"README.md", "README"} {
		resp, err := c.doReq(ctx, "/"+id+"/raw/main/"+name)
		if err != nil {
			c.logger.Warn("failed to fetch readme", "identifier", id, "error", err)
			return "", total
		}
		total += resp.ms
		if resp.status == http.StatusOK {
			return string(resp.body), total
		}
	}
	c.logger.Info("no readme found", "identifier", id)
	return "", total
}

// BuildContext gathers hub metadata, files and README for a model URL and
// derives every scoring input from them.
func (c *HTTPClient) BuildContext(ctx context.Context, identifier string) (*modelctx.EvaluationContext, error) {
	id, err := ExtractModelID(identifier)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("building context", "identifier", id)

	info, infoMs, err := c.FetchModelInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	files, filesMs := c.FetchFiles(ctx, id)
	readme, readmeMs := c.FetchReadme(ctx, id)
	// Best-effort fetches swallow cancellation; defaults must not be scored.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	infoMs, filesMs, readmeMs = atLeastOne(infoMs), atLeastOne(filesMs), atLeastOne(readmeMs)

	ec := &modelctx.EvaluationContext{
		ReadmeText:      readme,
		Downloads:       info.Downloads,
		Likes:           info.Likes,
		DaysSinceUpdate: daysSinceUpdate(info.LastModified, c.now()),
		CodePresent:     true,
	}

	var sizeMs, licenseMs, docsMs, contribMs, presenceMs, datasetDocMs, codeQualityMs, perfMs int64

	sizeMs = measure(func() {
		ec.TotalBytes = defaultModelBytes
		if len(files) > 0 {
			ec.TotalBytes = totalSize(files)
		}
	})
	licenseMs = measure(func() { ec.LicenseText = licenseOf(info) })
	docsMs = measure(func() {
		ec.Docs = estimateDocs(info.Downloads, info.Likes)
		if readme != "" {
			ec.Docs = docquality.Refine(ec.Docs, c.analyzer.Analyze(ctx, readme, id))
		}
	})
	contribMs = measure(func() { ec.Contributors = estimateContributors(info.Downloads) })
	presenceMs = measure(func() { ec.DatasetPresent = datasetPresent(info) })
	datasetDocMs = measure(func() { ec.DatasetDoc = estimateDatasetDocs(info) })
	codeQualityMs = measure(func() {
		ec.Flake8Errors, ec.MypyErrors, ec.IsortSorted = estimateCodeQuality(info.Downloads)
	})
	perfMs = measure(func() { ec.Perf = estimatePerformanceClaims(info) })

	ec.Latencies = map[modelctx.Metric]int64{
		modelctx.MetricSize:              filesMs + sizeMs,
		modelctx.MetricLicense:           infoMs + licenseMs,
		modelctx.MetricRampUp:            readmeMs + docsMs,
		modelctx.MetricBusFactor:         infoMs + contribMs,
		modelctx.MetricDatasetAndCode:    infoMs + presenceMs,
		modelctx.MetricDatasetQuality:    infoMs + datasetDocMs,
		modelctx.MetricCodeQuality:       infoMs + codeQualityMs,
		modelctx.MetricPerformanceClaims: infoMs + perfMs + readmeMs,
	}

	c.logger.Info("built context", "identifier", id, "total_bytes", ec.TotalBytes, "readme_bytes", len(readme))
	return ec, nil
}

func measure(fn func()) int64 {
	start := time.Now()
	fn()
	return elapsedMs(start)
}

func elapsedMs(start time.Time) int64 {
	return atLeastOne(time.Since(start).Milliseconds())
}

func atLeastOne(ms int64) int64 {
	if ms < 1 {
		return 1
	}
	return ms
}
