package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/news"
)

type stubScraper struct {
	articles []news.Article
	err      error
	got      *news.RequestParams
}

func (s *stubScraper) Scrape(_ context.Context, params news.RequestParams) ([]news.Article, error) {
	s.got = &params
	if err := (&params).Validate(); err != nil {
		return nil, err
	}
	return s.articles, s.err
}

func callTool(t *testing.T, s *Server, arguments string) *Response {
	t.Helper()
	params, err := json.Marshal(ToolCallParams{
		Name:      toolScrapeStockNews,
		Arguments: json.RawMessage(arguments),
	})
	require.NoError(t, err)

	req := &Request{JSONRPC: "2.0", ID: "1", Method: "tools/call", Params: params}
	return s.HandleRequest(context.Background(), req)
}

func decodeToolResult(t *testing.T, resp *Response) (text string, isError bool) {
	t.Helper()
	require.NotNil(t, resp)
	require.Nil(t, resp.Error, "tool failures must be results, not protocol errors")

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Content, 1)
	assert.Equal(t, "text", result.Content[0].Type)
	return result.Content[0].Text, result.IsError
}

func TestInitializeAdvertisesTools(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())
	resp := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: "1", Method: "initialize"})

	require.NotNil(t, resp)
	var result struct {
		ProtocolVersion string         `json:"protocolVersion"`
		Capabilities    map[string]any `json:"capabilities"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	assert.Equal(t, protocolVersion, result.ProtocolVersion)
	assert.Contains(t, result.Capabilities, "tools")
}

func TestToolsListContainsScrapeStockNews(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())
	resp := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: "1", Method: "tools/list"})

	var result struct {
		Tools []Tool `json:"tools"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &result))
	require.Len(t, result.Tools, 1)
	assert.Equal(t, toolScrapeStockNews, result.Tools[0].Name)
	assert.Equal(t, "object", result.Tools[0].InputSchema["type"])
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())
	resp := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: "1", Method: "prompts/list"})

	require.NotNil(t, resp)
	require.NotNil(t, resp.Error)
	assert.Equal(t, MethodNotFound, resp.Error.Code)
}

func TestNotificationsGetNoResponse(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())
	resp := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", Method: "notifications/initialized"})
	assert.Nil(t, resp)
}

func TestScrapeToolReturnsArticlesAsJSON(t *testing.T) {
	published := time.Date(2026, time.August, 30, 9, 15, 0, 0, time.UTC)
	stub := &stubScraper{articles: []news.Article{{
		Title:       "Saham ASII Dibuka Menguat",
		URL:         "https://emitennews.com/news/saham-asii-dibuka-menguat",
		Source:      "EmitenNews.com",
		PublishedAt: published,
	}}}
	s := NewServer(stub, zap.NewNop())

	resp := callTool(t, s, `{"source":"emitennews","limit":5}`)
	text, isError := decodeToolResult(t, resp)

	assert.False(t, isError)
	var articles []news.Article
	require.NoError(t, json.Unmarshal([]byte(text), &articles))
	require.Len(t, articles, 1)
	assert.Equal(t, "Saham ASII Dibuka Menguat", articles[0].Title)
	// Timestamps travel as ISO-8601 strings.
	assert.Contains(t, text, "2026-08-30T09:15:00Z")

	require.NotNil(t, stub.got)
	assert.Equal(t, "emitennews", stub.got.Source)
	assert.Equal(t, 5, stub.got.Limit)
}

func TestScrapeToolSurfacesValidationAsToolError(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())

	resp := callTool(t, s, `{"source":"detik"}`)
	text, isError := decodeToolResult(t, resp)

	assert.True(t, isError)
	assert.True(t, strings.HasPrefix(text, "Error:"))
	assert.Contains(t, text, "unknown source")
}

func TestScrapeToolSurfacesScrapeFailureAsToolError(t *testing.T) {
	stub := &stubScraper{err: &news.BrowserLaunchError{
		Tried: []string{"/usr/bin/google-chrome"},
		Err:   errors.New("no browser executable found"),
	}}
	s := NewServer(stub, zap.NewNop())

	resp := callTool(t, s, `{"source":"cnbc"}`)
	text, isError := decodeToolResult(t, resp)

	assert.True(t, isError)
	assert.Contains(t, text, "browser launch failed")
}

func TestUnknownToolIsInvalidParams(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())
	params, _ := json.Marshal(ToolCallParams{Name: "make_coffee"})
	resp := s.HandleRequest(context.Background(), &Request{JSONRPC: "2.0", ID: "1", Method: "tools/call", Params: params})

	require.NotNil(t, resp.Error)
	assert.Equal(t, InvalidParams, resp.Error.Code)
}

func TestServeAnswersOverAStream(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())

	in := strings.NewReader(
		`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n" +
			`{"jsonrpc":"2.0","method":"notifications/initialized"}` + "\n" +
			`{"jsonrpc":"2.0","id":2,"method":"tools/list"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, s.Serve(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "the notification must not produce a response")

	var pong Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &pong))
	assert.Equal(t, json.RawMessage(`"pong"`), pong.Result)
}

func TestServeAnswersMalformedLineOnceAndMovesOn(t *testing.T) {
	s := NewServer(&stubScraper{}, zap.NewNop())

	in := strings.NewReader("{oops\n" +
		`{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n")
	var out bytes.Buffer

	require.NoError(t, s.Serve(context.Background(), in, &out))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2, "one bad line must produce exactly one response")

	var parseErr Response
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &parseErr))
	require.NotNil(t, parseErr.Error)
	assert.Equal(t, ParseError, parseErr.Error.Code)
	assert.Nil(t, parseErr.ID, "a parse error response carries a null id")
	assert.Contains(t, lines[0], `"id":null`)

	// The stream stays usable after the bad line.
	var pong Response
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &pong))
	assert.Equal(t, json.RawMessage(`"pong"`), pong.Result)
}
