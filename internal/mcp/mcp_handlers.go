package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/nkaminski/deeprepo/core"
	"github.com/nkaminski/deeprepo/internal/contract"
)

// toolHandler holds common dependencies for MCP tool handlers.
type toolHandler struct {
	baseCfg *contract.Config
	mgr     contract.StoreManager
}

func (h *toolHandler) handleDetectBoomerangs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("ci_results", ""); p != "" {
		cfg.CIResultsPath = p
	}
	if p := request.GetString("issue_events", ""); p != "" {
		cfg.IssueEventsPath = p
	}
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if l := request.GetInt("limit", 0); l > 0 {
		cfg.ResultLimit = l
	}
	if s := request.GetInt("pass_streak", 0); s > 0 {
		cfg.Detector.PassStreak = s
	}

	if cfg.CIResultsPath == "" {
		return mcp.NewToolResultError("ci_results is required"), nil
	}

	output, err := core.GetBoomerangResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(output, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleIssueQuality(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("issues", ""); p != "" {
		cfg.IssuesPath = p
	}
	if labels := request.GetString("labels", ""); labels != "" {
		cfg.QualityLabels = splitLabels(labels)
	}
	if d := request.GetInt("since_days", 0); d > 0 {
		cfg.QualitySince = d
	}

	if cfg.IssuesPath == "" {
		return mcp.NewToolResultError("issues is required"), nil
	}

	report, err := core.GetQualityResults(ctx, cfg, h.mgr)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("quality analysis failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

func (h *toolHandler) handleTodoDebt(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg := h.baseCfg.Clone()
	if p := request.GetString("repo_path", ""); p != "" {
		cfg.RepoPath = p
	}
	if d := request.GetString("todo_dir", ""); d != "" {
		cfg.TodoDir = d
	}

	if cfg.RepoPath == "" {
		return mcp.NewToolResultError("repo_path is required"), nil
	}

	report, err := core.ScanTodos(ctx, cfg, contract.NewLocalRepoScanner())
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("todo scan failed: %v", err)), nil
	}

	jsonData, _ := json.MarshalIndent(report, "", "  ")
	return mcp.NewToolResultText(string(jsonData)), nil
}

// splitLabels splits a comma-separated label list, trimming whitespace and
// dropping empty entries.
func splitLabels(s string) []string {
	var labels []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
