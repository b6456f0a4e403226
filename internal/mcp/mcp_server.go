// Package mcp provides the Model Context Protocol (MCP) server implementation.
package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/nkaminski/deeprepo/internal/contract"
)

// NewMCPServer initializes and configures the deeprepo MCP server without starting it.
// This is exposed for unit testing.
func NewMCPServer(baseCfg *contract.Config, mgr contract.StoreManager) *server.MCPServer {
	s := server.NewMCPServer(
		"Deeprepo Audit Server",
		"1.0.0",
		server.WithLogging(),
	)

	h := &toolHandler{
		baseCfg: baseCfg,
		mgr:     mgr,
	}

	// --- 1. Tool: detect_boomerangs ---
	s.AddTool(mcp.NewTool("detect_boomerangs",
		mcp.WithDescription("Correlate CI test results with issue events to find boomerang failures: tests that fail, recover, then fail again."),
		mcp.WithString("ci_results", mcp.Description("Path to the CI results JSON feed."), mcp.Required()),
		mcp.WithString("issue_events", mcp.Description("Path to the issue events JSON feed.")),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository used for the isolation signal (optional).")),
		mcp.WithNumber("limit", mcp.Description("Limit the number of findings returned.")),
		mcp.WithNumber("pass_streak", mcp.Description("Consecutive passes required to confirm a recovery. Defaults to 2.")),
	), h.handleDetectBoomerangs)

	// --- 2. Tool: issue_quality ---
	s.AddTool(mcp.NewTool("issue_quality",
		mcp.WithDescription("Aggregate responsiveness statistics for closed failing-test issues."),
		mcp.WithString("issues", mcp.Description("Path to the closed issues JSON feed."), mcp.Required()),
		mcp.WithString("labels", mcp.Description("Comma-separated label filter.")),
		mcp.WithNumber("since_days", mcp.Description("Only include issues closed within this many days when no labels are given.")),
	), h.handleIssueQuality)

	// --- 3. Tool: todo_debt ---
	s.AddTool(mcp.NewTool("todo_debt",
		mcp.WithDescription("Scan generated compute resource files for TODO markers and report technical debt."),
		mcp.WithString("repo_path", mcp.Description("Path to the Git repository."), mcp.Required()),
		mcp.WithString("todo_dir", mcp.Description("Directory under the repository to scan.")),
	), h.handleTodoDebt)

	return s
}

// StartMCPServer starts the deeprepo MCP server.
func StartMCPServer(_ context.Context, baseCfg *contract.Config, mgr contract.StoreManager) error {
	s := NewMCPServer(baseCfg, mgr)
	return server.ServeStdio(s)
}
