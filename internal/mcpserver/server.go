// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes note-moving tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/notemover/internal/apperr"
	"github.com/starford/notemover/internal/noteservice"
)

// RulesResourceURI is where the rule format guide is published.
const RulesResourceURI = "notemover://rule-format"

// Server wraps the MCP server with notemover tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all tools registered.
func New(svc *noteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"notemover",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("move_note",
		mcp.WithDescription("Move one note to the folder chosen by the first matching rule. "+
			"Notes whose frontmatter has AutoNoteMover: disable are never moved."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note (e.g. inbox/note.md)")),
	), s.moveNote)

	s.mcp.AddTool(mcp.NewTool("move_all_notes",
		mcp.WithDescription("Apply the rules to every note in the vault and summarize what moved."),
	), s.moveAllNotes)

	s.mcp.AddTool(mcp.NewTool("preview_destination",
		mcp.WithDescription("Show which rule matches a note and where it would go, without moving it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the note")),
	), s.previewDestination)

	s.mcp.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("List the move rules in evaluation order. The first matching rule wins."),
	), s.listRules)

	s.mcp.AddTool(mcp.NewTool("move_history",
		mcp.WithDescription("List recorded move attempts, newest first."),
		mcp.WithString("path", mcp.Description("Only moves from or to this path (empty for all)")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of records (default 50)")),
	), s.moveHistory)

	s.mcp.AddTool(mcp.NewTool("trigger_status",
		mcp.WithDescription("Report whether notes move automatically ([A]) or only on request ([M])."),
	), s.triggerStatus)

	s.mcp.AddResource(
		mcp.NewResource(RulesResourceURI, "Rule Format",
			mcp.WithResourceDescription("How move rules are written and evaluated."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readRuleFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func notFoundOr(err error, path string) *mcp.CallToolResult {
	if errors.Is(err, apperr.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", path))
	}
	return mcp.NewToolResultError(err.Error())
}

func (s *Server) moveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.MoveNote(ctx, path)
	if err != nil {
		return notFoundOr(err, path), nil
	}
	if d.Error != "" {
		out, _ := json.MarshalIndent(d, "", "  ")
		return mcp.NewToolResultError(string(out)), nil
	}
	return jsonResult(d)
}

func (s *Server) moveAllNotes(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sum, err := s.svc.MoveAll(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(sum)
}

func (s *Server) previewDestination(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Preview(ctx, path)
	if err != nil {
		return notFoundOr(err, path), nil
	}
	return jsonResult(p)
}

func (s *Server) listRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Rules(ctx))
}

func (s *Server) moveHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", "")
	limit := req.GetInt("limit", 0)
	recs, err := s.svc.History(ctx, path, limit)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(recs) == 0 {
		return mcp.NewToolResultText("no moves recorded"), nil
	}
	return jsonResult(recs)
}

func (s *Server) triggerStatus(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Status(ctx))
}

func (s *Server) readRuleFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      RulesResourceURI,
			MIMEType: "text/markdown",
			Text:     RuleFormat,
		},
	}, nil
}
