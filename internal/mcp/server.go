package mcp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nofendian17/stock-news-mcp/internal/news"
)

const (
	serverName      = "mcp-saham-news"
	serverVersion   = "1.0.0"
	protocolVersion = "2024-11-05"
)

// NewsScraper is the tool's view of the aggregation core.
type NewsScraper interface {
	Scrape(ctx context.Context, params news.RequestParams) ([]news.Article, error)
}

// Server speaks JSON-RPC 2.0 over a reader/writer pair, normally stdio.
type Server struct {
	scraper NewsScraper
	log     *zap.Logger
}

// NewServer builds the protocol server around the scrape core.
func NewServer(scraper NewsScraper, log *zap.Logger) *Server {
	return &Server{scraper: scraper, log: log.Named("mcp")}
}

// maxMessageBytes bounds one incoming message line.
const maxMessageBytes = 4 * 1024 * 1024

// Serve reads newline-delimited requests until EOF or context cancellation.
// Each line is one message, so a malformed line is answered and skipped
// without wedging the rest of the stream. Only compact JSON responses are
// written to w; anything else belongs on stderr.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxMessageBytes)
	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil
		}

		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req Request
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.Warn("unparsable request", zap.Error(err))
			// A parse error has no usable request ID; the response carries
			// a null one.
			resp := &Response{
				JSONRPC: "2.0",
				Error:   &ErrorObject{Code: ParseError, Message: "Failed to parse request"},
			}
			if err := encoder.Encode(resp); err != nil {
				return fmt.Errorf("writing parse-error response: %w", err)
			}
			continue
		}

		resp := s.HandleRequest(ctx, &req)
		if resp == nil || req.ID == nil {
			// Notifications get no response.
			continue
		}
		if err := encoder.Encode(resp); err != nil {
			return fmt.Errorf("writing response: %w", err)
		}
	}
	return scanner.Err()
}

// HandleRequest routes one request. It returns nil for notifications.
func (s *Server) HandleRequest(ctx context.Context, req *Request) *Response {
	switch req.Method {
	case "initialize":
		return s.handleInitialize(req.ID)
	case "tools/list":
		return s.handleToolsList(req.ID)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &Response{JSONRPC: "2.0", ID: req.ID, Result: json.RawMessage(`"pong"`)}
	}

	if req.ID == nil {
		return nil
	}
	return errorResponse(req.ID, MethodNotFound, "Method not found")
}

func (s *Server) handleInitialize(id any) *Response {
	result := map[string]any{
		"protocolVersion": protocolVersion,
		"capabilities": map[string]any{
			"tools": map[string]any{},
		},
		"serverInfo": map[string]any{
			"name":    serverName,
			"version": serverVersion,
		},
	}
	return resultResponse(id, result)
}

func (s *Server) handleToolsList(id any) *Response {
	return resultResponse(id, map[string]any{"tools": allTools()})
}

func (s *Server) handleToolsCall(ctx context.Context, req *Request) (resp *Response) {
	// A panicking tool call must not take the whole service down: only
	// shutdown signals terminate it.
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("tool call panicked", zap.Any("panic", r))
			resp = errorResponse(req.ID, InternalError, fmt.Sprintf("internal error: %v", r))
		}
	}()

	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return errorResponse(req.ID, InvalidParams, "Invalid parameters")
	}

	switch params.Name {
	case toolScrapeStockNews:
		return s.handleScrapeStockNews(ctx, req.ID, params.Arguments)
	default:
		return errorResponse(req.ID, InvalidParams, "Unknown tool: "+params.Name)
	}
}

func (s *Server) handleScrapeStockNews(ctx context.Context, id any, arguments json.RawMessage) *Response {
	requestID := uuid.NewString()
	log := s.log.With(zap.String("requestId", requestID))

	var params news.RequestParams
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &params); err != nil {
			return toolError(id, fmt.Sprintf("invalid arguments: %v", err))
		}
	}

	log.Info("scraping stock news",
		zap.String("source", params.Source),
		zap.Int("limit", params.Limit),
		zap.Strings("keywords", params.Keywords),
		zap.Bool("includeContent", params.IncludeContent))

	articles, err := s.scraper.Scrape(ctx, params)
	if err != nil {
		// Validation and scrape failures are tool results, not protocol
		// failures.
		log.Warn("scrape failed", zap.Error(err))
		return toolError(id, err.Error())
	}

	log.Info("scrape finished", zap.Int("count", len(articles)))

	payload, err := json.MarshalIndent(articles, "", "  ")
	if err != nil {
		return errorResponse(id, InternalError, fmt.Sprintf("marshaling articles: %v", err))
	}
	return resultResponse(id, toolResult(string(payload), false))
}

func toolResult(text string, isError bool) map[string]any {
	return map[string]any{
		"content": []map[string]any{
			{"type": "text", "text": text},
		},
		"isError": isError,
	}
}

func toolError(id any, message string) *Response {
	return resultResponse(id, toolResult("Error: "+message, true))
}

func resultResponse(id any, result any) *Response {
	raw, err := json.Marshal(result)
	if err != nil {
		return errorResponse(id, InternalError, fmt.Sprintf("marshaling result: %v", err))
	}
	return &Response{JSONRPC: "2.0", ID: id, Result: raw}
}

func errorResponse(id any, code int, message string) *Response {
	return &Response{
		JSONRPC: "2.0",
		ID:      id,
		Error:   &ErrorObject{Code: code, Message: message},
	}
}
