// Package generation calls a chat-completions endpoint to draft narrative
// copy for the wizard. One shot per request, no retries: a failed call
// means "no new content" and the caller leaves its fields alone.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"founder-intake/internal/common/config"
	commonerrors "founder-intake/internal/common/errors"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/common/metrics"
	"founder-intake/internal/models"
)

// Mode selects the prompt family.
type Mode string

const (
	ModeNarratives Mode = "narratives"
	ModeIndustry   Mode = "industry"
)

// Suggestions is the problem-mentor output: three problem statements and
// three matching strengths. Short model responses may yield fewer.
type Suggestions struct {
	Problems  []string `json:"problems"`
	Strengths []string `json:"strengths"`
}

// Gateway is the narrative generation client.
type Gateway struct {
	baseURL     string
	apiKey      string
	model       string
	temperature float64
	httpClient  *http.Client
	log         logger.Logger
}

func NewGateway(cfg config.OpenAIConfig, log logger.Logger) *Gateway {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Gateway{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		httpClient:  &http.Client{Timeout: timeout},
		log:         log,
	}
}

// Generate produces narrative text for the given mode.
//
// Batch (targetField empty): one prompt asking for a strict-JSON object
// with the mode's fixed key set. A response that fails to parse is not an
// error; the whole raw text lands under the mode's primary key (pmf for
// narratives, industryFit for industry) so a successful call never
// returns empty.
//
// Single-field (targetField set): plain-text prompt for that field only,
// optional founder guidance appended; the trimmed response is returned
// verbatim under targetField.
func (g *Gateway) Generate(ctx context.Context, mode Mode, draft models.FormDraft, targetField, guidance string) (map[string]string, error) {
	var prompt, primaryKey string
	switch mode {
	case ModeNarratives:
		primaryKey = "pmf"
		if targetField != "" {
			prompt = narrativesFieldPrompt(draft, targetField, guidance)
		} else {
			prompt = narrativesBatchPrompt(draft)
		}
	case ModeIndustry:
		primaryKey = "industryFit"
		if targetField != "" {
			prompt = industryFieldPrompt(draft, targetField, guidance)
		} else {
			prompt = industryBatchPrompt(draft)
		}
	default:
		return nil, fmt.Errorf("unknown generation mode %q", mode)
	}

	content, err := g.complete(ctx, string(mode), prompt)
	if err != nil {
		return nil, err
	}

	if targetField != "" {
		return map[string]string{targetField: content}, nil
	}

	var out map[string]string
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		metrics.GenerationParseFallbacksTotal.WithLabelValues(string(mode)).Inc()
		g.log.Warn("generation response was not valid json, using raw text", map[string]interface{}{
			"mode": string(mode),
		})
		return map[string]string{primaryKey: content}, nil
	}
	return out, nil
}

// SuggestProblems asks the problem mentor for three problem statements
// and three strengths based on the selected category tags. A response
// that fails to parse falls back to a line split: first three non-empty
// lines become problems, the next three strengths.
func (g *Gateway) SuggestProblems(ctx context.Context, tags []string) (Suggestions, error) {
	if len(tags) == 0 {
		return Suggestions{}, commonerrors.NewGenerationFailedError(fmt.Errorf("no tags provided"))
	}

	content, err := g.complete(ctx, "problem-suggestions", problemSuggestionsPrompt(tags))
	if err != nil {
		return Suggestions{}, err
	}

	var out Suggestions
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		metrics.GenerationParseFallbacksTotal.WithLabelValues("problem-suggestions").Inc()
		lines := nonEmptyLines(content)
		out = Suggestions{
			Problems:  sliceRange(lines, 0, 3),
			Strengths: sliceRange(lines, 3, 6),
		}
	}
	return out, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
	Messages    []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// complete performs one chat-completions call and returns the trimmed
// message content. Any transport or non-2xx outcome is a single
// GENERATION_FAILED error.
func (g *Gateway) complete(ctx context.Context, mode, prompt string) (string, error) {
	start := time.Now()
	outcome := "success"
	defer func() {
		metrics.GenerationRequestsTotal.WithLabelValues(mode, outcome).Inc()
		metrics.GenerationDuration.WithLabelValues(mode).Observe(time.Since(start).Seconds())
	}()

	body, err := json.Marshal(chatRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		g.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(
			fmt.Errorf("completion call returned status %d", resp.StatusCode))
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(err)
	}
	if len(parsed.Choices) == 0 {
		outcome = "error"
		return "", commonerrors.NewGenerationFailedError(fmt.Errorf("completion response had no choices"))
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sliceRange(s []string, from, to int) []string {
	if from >= len(s) {
		return nil
	}
	if to > len(s) {
		to = len(s)
	}
	return s[from:to]
}
