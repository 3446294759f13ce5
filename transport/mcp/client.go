package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/tactics-grid/game/engine"
	"github.com/wricardo/tactics-grid/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tactics Grid",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tactics Grid - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Boards are grids of terrain with units standing on them. Select a unit by
interacting with its cell, preview a path by moving the cursor, and interact
with a highlighted cell to walk the unit there.

AVAILABLE TOOLS:
- create_session / list_sessions / get_session: manage boards
- board_state: terrain, units, selection and cursor as an ASCII overlay
- move_cursor: move the cursor to a cell or one step in a direction
- interact: select a unit, commit a move, or deselect
- cancel: drop the current selection
- reset_board: put every unit back on its starting cell
- unit_reach: cells a unit could reach right now
- move_history: committed moves
- list_configs: available boards
- describe_cell: terrain and occupant of one cell
- game_instructions: rules and legend`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordinateProperty(axis string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "integer",
		"description": fmt.Sprintf("Cell %s coordinate (0-based)", axis),
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new board session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "Board config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active board sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	// Board input
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_state",
		Description: "Get the current board with units, selection and cursor",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoardState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_cursor",
		Description: "Move the cursor to a cell (x,y) or one step in a direction. While a unit is selected this previews the path.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x":          coordinateProperty("x"),
				"y":          coordinateProperty("y"),
				"direction": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"up", "down", "left", "right"},
					"description": "Step direction (use instead of x/y)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveCursor)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "interact",
		Description: "Interact with a cell: select the unit on it, move the selected unit there, or deselect. Uses the cursor when x/y are omitted.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x":          coordinateProperty("x"),
				"y":          coordinateProperty("y"),
			},
			Required: []string{"session_id"},
		},
	}, c.handleInteract)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel",
		Description: "Drop the current selection without moving",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_board",
		Description: "Put every unit back on its starting cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "unit_reach",
		Description: "Show every cell a unit could reach with its move range",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit ID from board_state",
				},
			},
			Required: []string{"session_id", "unit_id"},
		},
	}, c.handleUnitReach)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "move_history",
		Description: "Get committed moves with pagination",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Moves per page (default 20)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleMoveHistory)

	// Configuration
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available board configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Rules, controls and the board legend",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Describe the terrain and occupant of one cell",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"x":          coordinateProperty("x"),
				"y":          coordinateProperty("y"),
			},
			Required: []string{"session_id", "x", "y"},
		},
	}, c.handleDescribeCell)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func arguments(request mcp.CallToolRequest) map[string]interface{} {
	if args, ok := request.Params.Arguments.(map[string]interface{}); ok {
		return args
	}
	return map[string]interface{}{}
}

// intArg reads a JSON number argument
func intArg(args map[string]interface{}, name string) (int, bool) {
	switch v := args[name].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	}
	return 0, false
}

// cellArg reads an x/y pair. Both or neither must be present.
func cellArg(args map[string]interface{}) (*engine.Cell, error) {
	x, hasX := intArg(args, "x")
	y, hasY := intArg(args, "y")
	switch {
	case hasX && hasY:
		return &engine.Cell{X: x, Y: y}, nil
	case hasX || hasY:
		return nil, fmt.Errorf("both x and y are required")
	}
	return nil, nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	configID, _ := args["config_id"].(string)

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall(ctx, http.MethodPost, "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\n", session.ID, session.ConfigName)
	if session.BoardState != nil {
		result += "\n" + formatBoardState(session.BoardState)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall(ctx, http.MethodGet, "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		result += fmt.Sprintf("- %s (Config: %s, Created: %s)\n",
			s.ID, s.ConfigName, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var session service.SessionInfo
	err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleBoardState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var state engine.BoardState
	err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoardState(&state)), nil
}

func (c *Client) handleMoveCursor(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	direction, _ := args["direction"].(string)

	cell, err := cellArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	input := service.CursorInput{Cell: cell, Direction: direction}

	var result service.InputResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/cursor"), input, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInputResult(&result)), nil
}

func (c *Client) handleInteract(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	cell, err := cellArg(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body := map[string]interface{}{}
	if cell != nil {
		body["cell"] = cell
	}

	var result service.InputResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/interact"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInputResult(&result)), nil
}

func (c *Client) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var result service.InputResult
	if err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/cancel"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatInputResult(&result)), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := arguments(request)["session_id"].(string)

	var response struct {
		Message string             `json:"message"`
		State   *engine.BoardState `json:"state"`
	}

	err := c.apiCall(ctx, http.MethodPost, sessionPath(sessionID, "/reset"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if response.State != nil {
		result += "\n\n" + formatBoardState(response.State)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleUnitReach(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	unitID, _ := args["unit_id"].(string)

	var reach service.ReachInfo
	err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/units/"+url.PathEscape(unitID)+"/reach"), nil, &reach)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatReach(&reach)), nil
}

func (c *Client) handleMoveHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, http.MethodGet, path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall(ctx, http.MethodGet, "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (config_id: %s)\n  %s\n  Board: %dx%d, Units: %d\n\n",
			config.Name, config.ConfigID, config.Description, config.Columns, config.Rows, config.Units)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Tactics Grid - Instructions

BOARD:
The board is a grid of cells addressed as (x,y), x growing to the right and
y growing downward, both starting at 0. Every cell holds one terrain tile and
at most one unit.

TERRAIN LEGEND:
G  grass     walkable
R  road      walkable
F  forest    walkable
W  water     blocked
M  mountain  blocked
.  void      blocked

OVERLAY MARKS (board_state, unit_reach):
U  a unit
*  a cell the selected unit can reach
o  the previewed path
+  the cursor (drawn last)

SELECTING AND MOVING:
1. interact on a cell holding a unit selects it and highlights its reach.
2. move_cursor over a highlighted cell previews the shortest path.
3. interact on a highlighted cell commits the move. The unit walks the path
   cell by cell; poll board_state until it reports the unit as no longer
   moving.
4. interact on the selected unit again, or cancel, drops the selection.
   Interacting on another unit switches the selection to it.

RULES:
• A unit moves at most its move_range steps, orthogonally only.
• Units never pass through or stop on another unit's cell.
• Blocked terrain is never entered.
• While a unit is walking, input is ignored and reset is refused.`

	return mcp.NewToolResultText(instructions), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := arguments(request)
	sessionID, _ := args["session_id"].(string)
	cell, err := cellArg(args)
	if err != nil || cell == nil {
		return mcp.NewToolResultError("x and y are required"), nil
	}

	var state engine.BoardState
	if err := c.apiCall(ctx, http.MethodGet, sessionPath(sessionID, "/state"), nil, &state); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if cell.X < 0 || cell.X >= state.Columns || cell.Y < 0 || cell.Y >= state.Rows {
		return mcp.NewToolResultError(fmt.Sprintf("Coordinates %s are out of bounds. Board is %dx%d (x 0-%d, y 0-%d)",
			cell, state.Columns, state.Rows, state.Columns-1, state.Rows-1)), nil
	}

	return mcp.NewToolResultText(describeCell(&state, *cell)), nil
}

// Formatting helpers

func formatSessionInfo(session *service.SessionInfo) string {
	result := fmt.Sprintf("Session: %s\nConfig: %s\nCreated: %s\nLast access: %s\n",
		session.ID, session.ConfigName,
		session.CreatedAt.Format(time.RFC3339), session.LastAccessedAt.Format(time.RFC3339))
	if session.BoardState != nil {
		result += "\n" + formatBoardState(session.BoardState)
	}
	return result
}

func unitCells(state *engine.BoardState) []engine.Cell {
	cells := make([]engine.Cell, 0, len(state.Units))
	for _, u := range state.Units {
		cells = append(cells, u.Cell)
	}
	return cells
}

func formatBoardState(state *engine.BoardState) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Board: %s (%dx%d)\n", state.ConfigName, state.Columns, state.Rows)
	fmt.Fprintf(&b, "Selection: %s", state.Selection.State)
	if state.Selection.ActiveUnitID != "" {
		fmt.Fprintf(&b, " [%s]", state.Selection.ActiveUnitID)
	}
	fmt.Fprintf(&b, "\nCursor: %s\nTotal moves: %d\n", state.Cursor, state.TotalMoves)
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	cursor := state.Cursor
	rows := engine.RenderOverlay(state.Terrain, state.Selection.Reachable, state.Selection.Path, unitCells(state), &cursor)
	b.WriteString("\n")
	b.WriteString(formatRows(rows))

	b.WriteString("\nUnits:\n")
	for _, u := range state.Units {
		var flags []string
		if u.Selected {
			flags = append(flags, "selected")
		}
		if u.Moving {
			flags = append(flags, fmt.Sprintf("moving, at %.0f,%.0f px", u.Position.X, u.Position.Y))
		}
		line := fmt.Sprintf("- %s (%s) at %s, range %d", u.ID, u.Name, u.Cell, u.MoveRange)
		if len(flags) > 0 {
			line += " [" + strings.Join(flags, "; ") + "]"
		}
		b.WriteString(line + "\n")
	}

	if n := len(state.Selection.Path); n > 0 {
		fmt.Fprintf(&b, "\nPreview path (%d steps): %s\n", n-1, formatPath(state.Selection.Path))
	}

	return b.String()
}

// formatRows prefixes every row with its y index and adds an x ruler
func formatRows(rows []string) string {
	var b strings.Builder
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	b.WriteString("    ")
	for x := 0; x < width; x++ {
		b.WriteByte(byte('0' + x%10))
	}
	b.WriteString("\n")
	for y, row := range rows {
		fmt.Fprintf(&b, "%3d %s\n", y, row)
	}
	return b.String()
}

func formatPath(path []engine.Cell) string {
	parts := make([]string, len(path))
	for i, c := range path {
		parts[i] = c.String()
	}
	return strings.Join(parts, " -> ")
}

func formatInputResult(result *service.InputResult) string {
	status := "✓ Accepted"
	if !result.Accepted {
		status = "✗ Ignored"
	}
	out := fmt.Sprintf("%s: %s\n", status, result.Message)
	for _, ev := range result.Events {
		out += fmt.Sprintf("  event %s unit=%s cell=%s\n", ev.Type, ev.UnitID, ev.Cell)
	}
	if result.State != nil {
		out += "\n" + formatBoardState(result.State)
	}
	return out
}

func formatReach(reach *service.ReachInfo) string {
	result := fmt.Sprintf("Unit %s at %s, move range %d: %d reachable cells\n\n",
		reach.UnitID, reach.Origin, reach.MoveRange, reach.Count)
	result += formatRows(reach.Overlay)
	return result
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Move History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalMoves)

	if len(history.Moves) == 0 {
		return result + "(no moves yet)\n"
	}
	for _, move := range history.Moves {
		result += fmt.Sprintf("%d. %s %s -> %s (%d steps)\n",
			move.MoveNumber, move.UnitID, move.From, move.To, move.Steps)
	}

	return result
}

func describeCell(state *engine.BoardState, cell engine.Cell) string {
	terrain := engine.Void
	char := "."
	if tiles, err := engine.NewTileMap(state.Terrain, nil); err == nil {
		terrain = tiles.At(cell)
		char = string(state.Terrain[cell.Y][cell.X])
	}

	occupant := "none"
	for _, u := range state.Units {
		if u.Cell == cell {
			occupant = fmt.Sprintf("%s (%s), move range %d", u.ID, u.Name, u.MoveRange)
			if u.Selected {
				occupant += ", selected"
			}
			break
		}
	}

	reachable := false
	for _, c := range state.Selection.Reachable {
		if c == cell {
			reachable = true
			break
		}
	}

	result := fmt.Sprintf(`Cell %s:
Character: %s
Terrain: %s
Walkable: %v
Unit: %s
`, cell, char, terrain, engine.IsWalkable(terrain), occupant)

	if state.Selection.ActiveUnitID != "" {
		result += fmt.Sprintf("Reachable by %s: %v\n", state.Selection.ActiveUnitID, reachable)
	}
	if state.Cursor == cell {
		result += "The cursor is on this cell.\n"
	}
	return result
}
