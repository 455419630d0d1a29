package docquality

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const maxPromptReadme = 2000

const analysisSchemaJSON = `{
  "type": "object",
  "required": ["documentation_quality", "ease_of_use", "examples_present"],
  "properties": {
    "documentation_quality": {"type": "number", "minimum": 0, "maximum": 1},
    "ease_of_use": {"type": "number", "minimum": 0, "maximum": 1},
    "examples_present": {"type": "boolean"}
  }
}`

var analysisSchema = mustCompileSchema(analysisSchemaJSON, "analysis.schema.json")

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// RemoteAnalyzer asks an OpenAI-compatible chat completions endpoint to rate
// a README. Any transport, status or shape problem falls back to the local
// heuristic so a batch never fails because of it.
type RemoteAnalyzer struct {
	endpoint   string
	apiKey     string
	model      string
	seed       int64
	httpClient *http.Client
	local      *LocalAnalyzer
	logger     *slog.Logger
}

func NewRemoteAnalyzer(cfg Config, local *LocalAnalyzer, logger *slog.Logger) *RemoteAnalyzer {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RemoteAnalyzer{
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		seed:       cfg.Seed,
		httpClient: &http.Client{Timeout: timeout},
		local:      local,
		logger:     logger,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Seed        int64         `json:"seed"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (r *RemoteAnalyzer) Analyze(ctx context.Context, readme, identifier string) Analysis {
	local := r.local.Analyze(ctx, readme, identifier)
	if strings.TrimSpace(readme) == "" {
		return local
	}

	remote, err := r.ask(ctx, readme, identifier)
	if err != nil {
		r.logger.Warn("remote documentation analysis failed, using local analysis",
			"identifier", identifier, "error", err)
		return local
	}

	// The remote model only rates; structural indicators stay local.
	remote.InstallationInstructions = local.InstallationInstructions
	remote.UsageExamples = local.UsageExamples
	remote.CodeBlocks = local.CodeBlocks
	remote.Source = SourceRemote
	return remote
}

func (r *RemoteAnalyzer) ask(ctx context.Context, readme, identifier string) (Analysis, error) {
	body, err := json.Marshal(chatRequest{
		Model: r.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You rate machine learning model documentation. Reply with JSON only."},
			{Role: "user", Content: buildPrompt(readme, identifier)},
		},
		Temperature: 0,
		MaxTokens:   150,
		Seed:        r.seed,
	})
	if err != nil {
		return Analysis{}, err
	}

	data, err := r.doReq(ctx, body)
	if err != nil {
		return Analysis{}, err
	}

	var resp chatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Analysis{}, fmt.Errorf("decode completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Analysis{}, fmt.Errorf("completion has no choices")
	}
	return parseAnswer(resp.Choices[0].Message.Content)
}

func (r *RemoteAnalyzer) doReq(ctx context.Context, body []byte) ([]byte, error) {
	const path = "/v1/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("enhancer POST %s: %d %s", path, resp.StatusCode, string(data))
	}
	return data, nil
}

func buildPrompt(readme, identifier string) string {
	if len(readme) > maxPromptReadme {
		cut := maxPromptReadme
		for cut > 0 && !utf8.RuneStart(readme[cut]) {
			cut--
		}
		readme = readme[:cut]
	}
	return fmt.Sprintf(`Analyze the README of model %q and answer with a JSON object containing:
- "documentation_quality": number between 0 and 1
- "ease_of_use": number between 0 and 1
- "examples_present": boolean

README:
%s`, identifier, readme)
}

// parseAnswer extracts the JSON object from a model answer, tolerating a
// surrounding markdown fence, and validates it against the analysis schema.
func parseAnswer(content string) (Analysis, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	var instance any
	if err := json.Unmarshal([]byte(s), &instance); err != nil {
		return Analysis{}, fmt.Errorf("answer is not JSON: %w", err)
	}
	if err := analysisSchema.Validate(instance); err != nil {
		return Analysis{}, fmt.Errorf("answer rejected: %w", err)
	}

	var a Analysis
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return Analysis{}, fmt.Errorf("decode answer: %w", err)
	}
	return a, nil
}
