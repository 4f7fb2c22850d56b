package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"apsconnect/internal/oauth"
)

// successResult wraps a payload in the status envelope the Routes API uses,
// so MCP and HTTP consumers see the same shape.
func successResult(data any) (*mcp.CallToolResult, error) {
	body, err := json.MarshalIndent(map[string]any{
		"status": "success",
		"data":   data,
	}, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

func (s *MCPServer) handleGetToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.flow.Authenticate(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("authentication failed: %v", err)), nil
	}

	return successResult(map[string]any{
		"access_token": rec.AccessToken,
		"token_type":   rec.TokenType,
		"expires_at":   rec.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *MCPServer) handleCheckToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rec, err := s.flow.CurrentToken()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to load token: %v", err)), nil
	}

	if rec == nil {
		return successResult(map[string]any{
			"authenticated": false,
		})
	}

	remaining := oauth.RemainingValidity(rec, time.Now())
	return successResult(map[string]any{
		"authenticated":     remaining > 0,
		"validity":          oauth.BandFor(remaining).String(),
		"expires_at":        rec.ExpiresAt.Format(time.RFC3339),
		"remaining_seconds": int(remaining.Seconds()),
		"has_refresh_token": rec.RefreshToken != "",
	})
}

func (s *MCPServer) handleClearToken(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := s.flow.ClearToken(); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to clear token: %v", err)), nil
	}
	return successResult(map[string]any{"cleared": true})
}

func (s *MCPServer) handleMappingAdd(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	originGUID, err := request.RequireString("origin_guid")
	if err != nil {
		return mcp.NewToolResultError("origin_guid argument is required"), nil
	}
	targetID, err := request.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError("target_id argument is required"), nil
	}
	elementType := request.GetString("element_type", "")

	if err := s.mappings.Add(originGUID, targetID, elementType, nil); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add mapping: %v", err)), nil
	}

	return successResult(map[string]any{
		"origin_guid": originGUID,
		"target_id":   targetID,
	})
}

func (s *MCPServer) handleMappingGet(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	originGUID, err := request.RequireString("origin_guid")
	if err != nil {
		return mcp.NewToolResultError("origin_guid argument is required"), nil
	}

	targetID, ok := s.mappings.TargetID(originGUID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no mapping for origin GUID %s", originGUID)), nil
	}
	return successResult(map[string]any{
		"origin_guid": originGUID,
		"target_id":   targetID,
	})
}

func (s *MCPServer) handleMappingReverse(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetID, err := request.RequireString("target_id")
	if err != nil {
		return mcp.NewToolResultError("target_id argument is required"), nil
	}

	originGUID, ok := s.mappings.OriginGUID(targetID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no mapping for target ID %s", targetID)), nil
	}
	return successResult(map[string]any{
		"origin_guid": originGUID,
		"target_id":   targetID,
	})
}

func (s *MCPServer) handleMappingRemove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	originGUID, err := request.RequireString("origin_guid")
	if err != nil {
		return mcp.NewToolResultError("origin_guid argument is required"), nil
	}

	removed, err := s.mappings.Remove(originGUID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to remove mapping: %v", err)), nil
	}
	return successResult(map[string]any{"removed": removed})
}

func (s *MCPServer) handleMappingStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(s.mappings.Stats())
}

func (s *MCPServer) handleRevitStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.revit.Status(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("routes API is not responding: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *MCPServer) handleRevitModelInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.revit.ModelInfo(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to get model info: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (s *MCPServer) handleRevitListLevels(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	raw, err := s.revit.ListLevels(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list levels: %v", err)), nil
	}
	return mcp.NewToolResultText(string(raw)), nil
}
