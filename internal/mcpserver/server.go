// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes Raido's workspace index to agents via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/raido/internal/mapservice"
	"github.com/starford/raido/internal/store"
)

// Server wraps the MCP server with Raido tools.
type Server struct {
	mcp *server.MCPServer
	svc *mapservice.Service
}

// New creates a new MCP server with all Raido tools registered.
func New(svc *mapservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Raido",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("get_skeleton",
		mcp.WithDescription("Get the structural skeleton (exports, imports, classes, functions) of a source file. "+
			"Cheap on repeat calls: results are cached until the file changes."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path, absolute or relative to the workspace root")),
	), s.getSkeleton)

	s.mcp.AddTool(mcp.NewTool("map_directory",
		mcp.WithDescription("Enumerate source files and subdirectories without parsing. "+
			"Use get_skeleton afterwards for files of interest."),
		mcp.WithString("path", mcp.Description("Directory path (defaults to the workspace root)")),
		mcp.WithNumber("depth", mcp.Description("Recursion depth (defaults to the configured maximum)")),
	), s.mapDirectory)

	s.mcp.AddTool(mcp.NewTool("get_related_files",
		mcp.WithDescription("Find files connected to the given file through the import graph, "+
			"in both directions, up to the given number of hops."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path to expand from")),
		mcp.WithNumber("depth", mcp.Description("Number of hops (default 1)")),
	), s.getRelatedFiles)

	s.mcp.AddTool(mcp.NewTool("refresh_skeleton",
		mcp.WithDescription("Force a re-parse of a file, discarding all cached state for it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("File path to refresh")),
	), s.refreshSkeleton)

	s.mcp.AddTool(mcp.NewTool("get_stats",
		mcp.WithDescription("Return index statistics: cache occupancy, skeleton and edge counts."),
	), s.getStats)

	s.mcp.AddTool(mcp.NewTool("save_session",
		mcp.WithDescription("Persist agent session state across restarts. State is an opaque JSON string."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Stable identifier for the session")),
		mcp.WithString("name", mcp.Description("Human-readable session name")),
		mcp.WithString("state", mcp.Description("Opaque JSON session state")),
	), s.saveSession)

	s.mcp.AddTool(mcp.NewTool("load_session",
		mcp.WithDescription("Load previously saved session state."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Identifier used when saving")),
	), s.loadSession)

	s.mcp.AddTool(mcp.NewTool("store_artifact",
		mcp.WithDescription("Store a context artifact (summary, plan, analysis) scoped to the workspace or a file."),
		mcp.WithString("artifact_id", mcp.Required(), mcp.Description("Stable identifier for the artifact")),
		mcp.WithString("type", mcp.Description("Artifact type, e.g. summary or plan")),
		mcp.WithString("scope", mcp.Description("Scope, e.g. workspace or a file path")),
		mcp.WithString("content", mcp.Required(), mcp.Description("Artifact content")),
		mcp.WithString("metadata", mcp.Description("Opaque JSON metadata")),
	), s.storeArtifact)

	s.mcp.AddTool(mcp.NewTool("get_artifact",
		mcp.WithDescription("Fetch a previously stored context artifact."),
		mcp.WithString("artifact_id", mcp.Required(), mcp.Description("Identifier used when storing")),
	), s.getArtifact)

	// Resource: skeleton format contract.
	s.mcp.AddResource(
		mcp.NewResource("raido://skeleton-format", "Skeleton Format",
			mcp.WithResourceDescription("Shape of the skeleton JSON returned by get_skeleton."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readSkeletonFormatResource,
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

func (s *Server) getSkeleton(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.GetSkeleton(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("no skeleton for %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) mapDirectory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := req.GetString("path", ".")
	depth := req.GetInt("depth", 0)

	dm, err := s.svc.MapDirectory(ctx, path, depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(dm, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getRelatedFiles(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	depth := req.GetInt("depth", 1)

	related, err := s.svc.RelatedFiles(ctx, path, depth)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(related) == 0 {
		return mcp.NewToolResultText("no related files found"), nil
	}
	return mcp.NewToolResultText(strings.Join(related, "\n")), nil
}

func (s *Server) refreshSkeleton(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	detail, err := s.svc.RefreshSkeleton(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("refresh failed for %s: %v", path, err)), nil
	}
	out, _ := json.MarshalIndent(detail, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Stats(ctx), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) saveSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	saved, err := s.svc.SaveSession(ctx, store.SessionRow{
		ID:    id,
		Name:  req.GetString("name", ""),
		State: req.GetString("state", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("saved: %s (updated %s)", saved.ID, saved.UpdatedAt.Format("2006-01-02 15:04:05"))), nil
}

func (s *Server) loadSession(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	sess, err := s.svc.GetSession(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(sess, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) storeArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("artifact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	saved, err := s.svc.SaveArtifact(ctx, store.ArtifactRow{
		ID:       id,
		Type:     req.GetString("type", ""),
		Scope:    req.GetString("scope", ""),
		Content:  content,
		Metadata: req.GetString("metadata", ""),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("stored: %s", saved.ID)), nil
}

func (s *Server) getArtifact(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("artifact_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	a, err := s.svc.GetArtifact(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	out, _ := json.MarshalIndent(a, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readSkeletonFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "raido://skeleton-format",
			MIMEType: "text/markdown",
			Text:     SkeletonFormatContract,
		},
	}, nil
}
