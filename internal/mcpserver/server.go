// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes streammark tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/streammark/internal/chapters"
	"github.com/starford/streammark/internal/logbook"
	"github.com/starford/streammark/internal/markservice"
	"github.com/starford/streammark/internal/youtube"
)

const formatURI = "streammark://chapter-format"

// Server wraps the MCP server with streammark tools.
type Server struct {
	mcp *server.MCPServer
	svc *markservice.Service
}

// New creates a new MCP server with all streammark tools registered.
func New(svc *markservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"streammark",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_patterns",
		mcp.WithDescription("List the quick-record memo patterns in display order. Positions are zero-based."),
	), s.listPatterns)

	s.mcp.AddTool(mcp.NewTool("add_pattern",
		mcp.WithDescription("Add a memo pattern. Blank and duplicate patterns are ignored."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Memo label, e.g. 面白かったところ")),
	), s.addPattern)

	s.mcp.AddTool(mcp.NewTool("remove_pattern",
		mcp.WithDescription("Remove the memo pattern at a zero-based position. Out-of-range positions are ignored."),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Zero-based position from list_patterns")),
	), s.removePattern)

	s.mcp.AddTool(mcp.NewTool("record_moment",
		mcp.WithDescription("Record a memo stamped with the current time."),
		mcp.WithString("memo", mcp.Required(), mcp.Description("Memo text")),
	), s.recordMoment)

	s.mcp.AddTool(mcp.NewTool("get_log",
		mcp.WithDescription("Show the recorded moments as [YYYY-MM-DD HH:MM:SS] memo lines."),
		mcp.WithBoolean("json", mcp.Description("Return structured entries instead of text")),
	), s.getLog)

	s.mcp.AddTool(mcp.NewTool("reset_log",
		mcp.WithDescription("Delete every recorded moment. Nothing happens unless confirm is true."),
		mcp.WithBoolean("confirm", mcp.Required(), mcp.Description("Must be true to clear the log")),
	), s.resetLog)

	s.mcp.AddTool(mcp.NewTool("convert_timestamps",
		mcp.WithDescription("Convert the log into YouTube chapter lines relative to the stream's actual start time. "+
			"Read the streammark://chapter-format resource for the output shape."),
		mcp.WithString("url", mcp.Required(), mcp.Description("YouTube watch, embed, live or youtu.be URL")),
		mcp.WithString("api_key", mcp.Description("YouTube Data API key; the saved key is used when empty")),
		mcp.WithString("save_as", mcp.Description("Optional export file name inside the export directory")),
	), s.convertTimestamps)

	s.mcp.AddResource(
		mcp.NewResource(formatURI, "Chapter Line Format",
			mcp.WithResourceDescription("Shape of the lines produced by convert_timestamps."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFormatResource,
	)

	return s
}

// Listen serves MCP over in/out (normally stdin/stdout) until ctx is
// cancelled or in reaches EOF. Protocol errors go to errLog.
func (s *Server) Listen(ctx context.Context, in io.Reader, out io.Writer, errLog *log.Logger) error {
	stdio := server.NewStdioServer(s.mcp)
	if errLog != nil {
		stdio.SetErrorLogger(errLog)
	}
	return stdio.Listen(ctx, in, out)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, _ := json.MarshalIndent(v, "", "  ")
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listPatterns(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Patterns()), nil
}

func (s *Server) addPattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	added, err := s.svc.AddPattern(pattern)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !added {
		return mcp.NewToolResultText("pattern unchanged: blank or already present"), nil
	}
	return jsonResult(s.svc.Patterns()), nil
}

func (s *Server) removePattern(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	index, err := req.RequireInt("index")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.RemovePattern(index); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(s.svc.Patterns()), nil
}

func (s *Server) recordMoment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	memo, err := req.RequireString("memo")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	e, err := s.svc.Record(memo)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(e), nil
}

func (s *Server) getLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	view := s.svc.Log()
	if req.GetBool("json", false) {
		return jsonResult(view.Entries), nil
	}
	if view.Text == "" {
		return mcp.NewToolResultText("log is empty"), nil
	}
	return mcp.NewToolResultText(view.Text), nil
}

func (s *Server) resetLog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	confirm := req.GetBool("confirm", false)
	cleared, err := s.svc.ResetLog(logbook.ConfirmFunc(func(string) bool { return confirm }))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !cleared {
		return mcp.NewToolResultError("log not cleared: pass confirm=true"), nil
	}
	return mcp.NewToolResultText("log cleared"), nil
}

func (s *Server) convertTimestamps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	url, err := req.RequireString("url")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res, err := s.svc.Convert(ctx, markservice.ConvertRequest{
		URL:    url,
		APIKey: req.GetString("api_key", ""),
		SaveAs: req.GetString("save_as", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(convertMessage(err)), nil
	}
	if res.SavedTo != "" {
		return mcp.NewToolResultText(fmt.Sprintf("%s\n\nsaved to %s", res.Text, res.SavedTo)), nil
	}
	return mcp.NewToolResultText(res.Text), nil
}

func convertMessage(err error) string {
	var ve *chapters.ValidationError
	var le *youtube.LookupError
	switch {
	case errors.As(err, &ve):
		return ve.Message
	case errors.Is(err, chapters.ErrBusy):
		return "a conversion is already running; try again shortly"
	case errors.Is(err, youtube.ErrVideoNotFound):
		return "video not found"
	case errors.Is(err, youtube.ErrNotLiveArchive):
		return "live start time unavailable; the video may not be an archived live stream"
	case errors.As(err, &le):
		return le.Message
	default:
		return err.Error()
	}
}

func (s *Server) readFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      formatURI,
			MIMEType: "text/markdown",
			Text:     ChapterFormat,
		},
	}, nil
}
