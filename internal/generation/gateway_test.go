// internal/generation/gateway_test.go
package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"founder-intake/internal/common/config"
	"founder-intake/internal/common/logger"
	"founder-intake/internal/models"
)

// completionServer fakes the chat-completions endpoint, returning content
// as the single choice and capturing the last request body.
func completionServer(t *testing.T, content string, status int) (*httptest.Server, *map[string]interface{}) {
	t.Helper()
	var lastRequest map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&lastRequest))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		resp := map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"content": content}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(srv.Close)
	return srv, &lastRequest
}

func newTestGateway(url string) *Gateway {
	return NewGateway(config.OpenAIConfig{
		BaseURL:     url,
		APIKey:      "test-key",
		Model:       "gpt-4o-mini",
		Temperature: 0.7,
		TimeoutSec:  5,
	}, logger.NewNop())
}

func TestGenerateNarrativesBatch(t *testing.T) {
	srv, lastReq := completionServer(t,
		`{"pmf":"Strong fit.","biz":"Subscriptions.","vision":"Category leader."}`,
		http.StatusOK)
	g := newTestGateway(srv.URL)

	out, err := g.Generate(context.Background(), ModeNarratives, models.NewFormDraft(), "", "")
	require.NoError(t, err)
	assert.Equal(t, "Strong fit.", out["pmf"])
	assert.Equal(t, "Subscriptions.", out["biz"])
	assert.Equal(t, "Category leader.", out["vision"])

	assert.Equal(t, "gpt-4o-mini", (*lastReq)["model"])
	assert.Equal(t, 0.7, (*lastReq)["temperature"])
	messages := (*lastReq)["messages"].([]interface{})
	require.Len(t, messages, 2)
	system := messages[0].(map[string]interface{})
	assert.Equal(t, "You are a helpful assistant.", system["content"])
	user := messages[1].(map[string]interface{})
	assert.Contains(t, user["content"], `{"pmf": string, "biz": string, "vision": string}`)
}

func TestGenerateBatchParseFallback(t *testing.T) {
	tests := []struct {
		mode       Mode
		primaryKey string
	}{
		{ModeNarratives, "pmf"},
		{ModeIndustry, "industryFit"},
	}
	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			srv, _ := completionServer(t, "Here is some prose, not JSON at all.", http.StatusOK)
			g := newTestGateway(srv.URL)

			out, err := g.Generate(context.Background(), tt.mode, models.NewFormDraft(), "", "")
			require.NoError(t, err, "parse failure is not an error")
			assert.Equal(t, "Here is some prose, not JSON at all.", out[tt.primaryKey])
			assert.Len(t, out, 1)
		})
	}
}

func TestGenerateSingleField(t *testing.T) {
	srv, lastReq := completionServer(t, "  A tight 150-word vision paragraph.  ", http.StatusOK)
	g := newTestGateway(srv.URL)

	out, err := g.Generate(context.Background(), ModeNarratives, models.NewFormDraft(), "vision", "emphasize the telehealth angle")
	require.NoError(t, err)
	assert.Equal(t, "A tight 150-word vision paragraph.", out["vision"], "response is trimmed and verbatim")

	user := (*lastReq)["messages"].([]interface{})[1].(map[string]interface{})
	content := user["content"].(string)
	assert.Contains(t, content, `"vision" section only`)
	assert.Contains(t, content, "max 150 words")
	assert.Contains(t, content, "ADDITIONAL GUIDANCE FROM FOUNDER:\nemphasize the telehealth angle")
}

func TestGenerateSingleFieldNoGuidance(t *testing.T) {
	srv, lastReq := completionServer(t, "text", http.StatusOK)
	g := newTestGateway(srv.URL)

	_, err := g.Generate(context.Background(), ModeIndustry, models.NewFormDraft(), "industryFitAlt", "")
	require.NoError(t, err)

	user := (*lastReq)["messages"].([]interface{})[1].(map[string]interface{})
	assert.NotContains(t, user["content"], "ADDITIONAL GUIDANCE")
}

func TestGenerateServerError(t *testing.T) {
	srv, _ := completionServer(t, "", http.StatusInternalServerError)
	g := newTestGateway(srv.URL)

	_, err := g.Generate(context.Background(), ModeNarratives, models.NewFormDraft(), "", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GENERATION_FAILED")
}

func TestGenerateTransportError(t *testing.T) {
	g := newTestGateway("http://127.0.0.1:1")

	_, err := g.Generate(context.Background(), ModeNarratives, models.NewFormDraft(), "", "")
	require.Error(t, err)
}

func TestGenerateUnknownMode(t *testing.T) {
	g := newTestGateway("http://unused")
	_, err := g.Generate(context.Background(), Mode("haiku"), models.NewFormDraft(), "", "")
	assert.Error(t, err)
}

func TestSuggestProblems(t *testing.T) {
	t.Run("valid json response", func(t *testing.T) {
		srv, lastReq := completionServer(t,
			`{"problems":["p1","p2","p3"],"strengths":["s1","s2","s3"]}`,
			http.StatusOK)
		g := newTestGateway(srv.URL)

		out, err := g.SuggestProblems(context.Background(), []string{"Veterinary Telehealth", "Animal Medicine"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p3"}, out.Problems)
		assert.Equal(t, []string{"s1", "s2", "s3"}, out.Strengths)

		user := (*lastReq)["messages"].([]interface{})[1].(map[string]interface{})
		assert.Contains(t, user["content"], "Tags: Veterinary Telehealth, Animal Medicine.")
	})

	t.Run("line split fallback", func(t *testing.T) {
		lines := "p1\np2\np3\ns1\ns2\ns3"
		srv, _ := completionServer(t, lines, http.StatusOK)
		g := newTestGateway(srv.URL)

		out, err := g.SuggestProblems(context.Background(), []string{"Grooming & Hygiene"})
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p3"}, out.Problems)
		assert.Equal(t, []string{"s1", "s2", "s3"}, out.Strengths)
	})

	t.Run("short response yields fewer, not an error", func(t *testing.T) {
		srv, _ := completionServer(t, "only one\nand two", http.StatusOK)
		g := newTestGateway(srv.URL)

		out, err := g.SuggestProblems(context.Background(), []string{"Pet Insurance & Financing"})
		require.NoError(t, err)
		assert.Equal(t, []string{"only one", "and two"}, out.Problems)
		assert.Empty(t, out.Strengths)
	})

	t.Run("no tags rejected", func(t *testing.T) {
		g := newTestGateway("http://unused")
		_, err := g.SuggestProblems(context.Background(), nil)
		assert.Error(t, err)
	})
}

func TestCompleteSendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		fmt.Fprint(w, `{"choices":[{"message":{"content":"ok"}}]}`)
	}))
	defer srv.Close()

	g := newTestGateway(srv.URL)
	_, err := g.Generate(context.Background(), ModeNarratives, models.NewFormDraft(), "pmf", "")
	require.NoError(t, err)
	assert.Equal(t, "Bearer test-key", gotAuth)
}

func TestPromptsEmbedStartupData(t *testing.T) {
	draft := models.NewFormDraft()
	require.NoError(t, draft.ApplyPatch(map[string]interface{}{"companyName": "PawScale"}))

	for name, prompt := range map[string]string{
		"narratives batch": narrativesBatchPrompt(draft),
		"industry batch":   industryBatchPrompt(draft),
		"narratives field": narrativesFieldPrompt(draft, "pmf", ""),
		"industry field":   industryFieldPrompt(draft, "industryFit", ""),
	} {
		assert.True(t, strings.Contains(prompt, "STARTUP DATA:"), name)
		assert.True(t, strings.Contains(prompt, `"companyName": "PawScale"`), name)
	}
}
