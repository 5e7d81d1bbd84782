// Package mcpserver exposes the rewriter as MCP tools so editors and agents
// can transform a buffer without touching the filesystem.
package mcpserver

import (
	"context"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/agentic-research/usemodel/internal/rewrite"
)

const defaultFilename = "input.js"

// New builds a server with the rewrite_source and check_source tools.
func New(rw *rewrite.Rewriter, version string) *server.MCPServer {
	s := server.NewMCPServer("usemodel", version, server.WithToolCapabilities(false))
	h := &handlers{rw: rw}

	s.AddTool(mcp.NewTool("rewrite_source",
		mcp.WithDescription("Rewrite destructured useModel and useModelState calls in a JavaScript or TypeScript source into store.useSelector calls. Returns the rewritten source."),
		mcp.WithString("source", mcp.Required(), mcp.Description("File contents to rewrite")),
		mcp.WithString("filename", mcp.Description("Name used to pick the grammar and label diagnostics (default input.js)")),
	), h.rewriteSource)

	s.AddTool(mcp.NewTool("check_source",
		mcp.WithDescription("Report whether a source would be changed by rewrite_source, with any diagnostics."),
		mcp.WithString("source", mcp.Required(), mcp.Description("File contents to check")),
		mcp.WithString("filename", mcp.Description("Name used to pick the grammar and label diagnostics (default input.js)")),
	), h.checkSource)

	return s
}

type handlers struct {
	rw *rewrite.Rewriter
}

func (h *handlers) run(req mcp.CallToolRequest) (*rewrite.Result, string, error) {
	src, err := req.RequireString("source")
	if err != nil {
		return nil, "", err
	}
	name := req.GetString("filename", defaultFilename)
	return h.rw.Rewrite([]byte(src), name), name, nil
}

func (h *handlers) rewriteSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, _, err := h.run(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if res.Err != nil {
		return mcp.NewToolResultError(diagnostics(res)), nil
	}
	return mcp.NewToolResultText(string(res.Output)), nil
}

func (h *handlers) checkSource(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	res, name, err := h.run(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	switch {
	case res.Err != nil:
		b.WriteString(name + ": cannot be rewritten\n")
	case res.Changed:
		b.WriteString(name + ": would rewrite " + plural(res.Sites) + "\n")
	default:
		b.WriteString(name + ": unchanged\n")
	}
	b.WriteString(diagnostics(res))
	return mcp.NewToolResultText(b.String()), nil
}

func diagnostics(res *rewrite.Result) string {
	var b strings.Builder
	for _, d := range res.Diagnostics {
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func plural(n int) string {
	if n == 1 {
		return "1 call site"
	}
	return strconv.Itoa(n) + " call sites"
}
