package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/m-mizutani/gatherly/pkg/domain/model/chat"
	"github.com/m-mizutani/gatherly/pkg/domain/types/apperr"
	"github.com/m-mizutani/gatherly/pkg/service/llm"
	"github.com/m-mizutani/gt"
)

type capturedRequest struct {
	Model     string `json:"model"`
	Stream    bool   `json:"stream"`
	MaxTokens int    `json:"max_tokens"`
	Messages  []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newServer(t *testing.T, status int, body string, captured *capturedRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gt.Equal(t, r.URL.Path, "/v1/chat/completions")
		gt.Equal(t, r.Header.Get("Authorization"), "Bearer test-key")

		raw, err := io.ReadAll(r.Body)
		gt.NoError(t, err)
		if captured != nil {
			gt.NoError(t, json.Unmarshal(raw, captured))
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func completion(content string) string {
	resp := map[string]any{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "gpt-3.5-turbo",
		"choices": []any{
			map[string]any{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": "stop",
			},
		},
	}
	raw, _ := json.Marshal(resp)
	return string(raw)
}

func newGateway(t *testing.T, srv *httptest.Server) *llm.Gateway {
	t.Helper()
	g, err := llm.New("test-key", llm.WithBaseURL(srv.URL+"/v1"), llm.WithHTTPClient(srv.Client()))
	gt.NoError(t, err).Required()
	return g
}

func TestGateway_ChatComplete(t *testing.T) {
	ctx := context.Background()
	history := []chat.Message{
		{Role: chat.RoleAssistant, Content: "Hello!"},
		{Role: chat.RoleUser, Content: "Hi, I want to report an issue."},
	}

	t.Run("prepends system prompt", func(t *testing.T) {
		var captured capturedRequest
		srv := newServer(t, http.StatusOK, completion("What issue?"), &captured)

		reply, err := newGateway(t, srv).ChatComplete(ctx, history, "Be brief.")
		gt.NoError(t, err)
		gt.Equal(t, reply, "What issue?")

		gt.Equal(t, captured.Model, llm.DefaultModel)
		gt.False(t, captured.Stream)
		gt.A(t, captured.Messages).Length(3)
		gt.Equal(t, captured.Messages[0].Role, "system")
		gt.Equal(t, captured.Messages[0].Content, "Be brief.")
		gt.Equal(t, captured.Messages[1].Role, "assistant")
		gt.Equal(t, captured.Messages[2].Role, "user")
	})

	t.Run("omits empty system prompt", func(t *testing.T) {
		var captured capturedRequest
		srv := newServer(t, http.StatusOK, completion("ok"), &captured)

		_, err := newGateway(t, srv).ChatComplete(ctx, history, "")
		gt.NoError(t, err)
		gt.A(t, captured.Messages).Length(2)
		gt.Equal(t, captured.Messages[0].Role, "assistant")
	})

	t.Run("no choices returns empty string", func(t *testing.T) {
		srv := newServer(t, http.StatusOK, `{"id":"x","object":"chat.completion","choices":[]}`, nil)

		reply, err := newGateway(t, srv).ChatComplete(ctx, history, "")
		gt.NoError(t, err)
		gt.Equal(t, reply, "")
	})

	t.Run("non-2xx is a gateway error", func(t *testing.T) {
		srv := newServer(t, http.StatusInternalServerError,
			`{"error":{"message":"upstream failure","type":"server_error"}}`, nil)

		_, err := newGateway(t, srv).ChatComplete(ctx, history, "")
		gt.Error(t, err)
		gt.True(t, errors.Is(err, apperr.ErrGateway))
		gt.Equal(t, apperr.KindOf(err), apperr.KindGateway)
	})

	t.Run("custom model", func(t *testing.T) {
		var captured capturedRequest
		srv := newServer(t, http.StatusOK, completion("ok"), &captured)

		g, err := llm.New("test-key", llm.WithBaseURL(srv.URL+"/v1"), llm.WithModel("gpt-4o-mini"))
		gt.NoError(t, err).Required()
		_, err = g.ChatComplete(ctx, history, "")
		gt.NoError(t, err)
		gt.Equal(t, captured.Model, "gpt-4o-mini")
	})
}

func TestGateway_GenerateTitle(t *testing.T) {
	ctx := context.Background()
	history := []chat.Message{
		{Role: chat.RoleUser, Content: "I moved to a new flat."},
		{Role: chat.RoleAssistant, Content: "Thanks, all recorded.\n###GATHERLY_DONE###"},
	}

	var captured capturedRequest
	srv := newServer(t, http.StatusOK, completion(`"Change of Address Request"`), &captured)

	title, err := newGateway(t, srv).GenerateTitle(ctx, history)
	gt.NoError(t, err)
	gt.Equal(t, title, "Change of Address Request")

	gt.True(t, captured.MaxTokens > 0)
	gt.Equal(t, captured.Messages[0].Role, "system")
	for _, m := range captured.Messages {
		gt.False(t, strings.Contains(m.Content, chat.Sentinel))
	}
}

func TestNormalizeTitle(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want string
	}{
		{"quoted", `"Hello"`, "Hello"},
		{"multiline", "First line\nsecond", "First line"},
		{"sentinel", "Done ###GATHERLY_DONE###", "Done"},
		{"empty", "   ", ""},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, llm.NormalizeTitle(tc.in), tc.want)
		})
	}

	long := llm.NormalizeTitle(strings.Repeat("a", 80))
	gt.Equal(t, len([]rune(long)), llm.MaxTitleLength)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := llm.New("")
	gt.Error(t, err)
}
