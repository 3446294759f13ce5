// Package mcp exposes tactics boards to AI agents over the Model Context Protocol.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API and the JSON response is rendered as text, with boards drawn as
// ASCII overlays.
//
// MCP Tools:
//   - create_session, list_sessions, get_session
//   - board_state: terrain with units, reach, path and cursor marks
//   - move_cursor, interact, cancel, reset_board
//   - unit_reach, move_history
//   - list_configs, describe_cell, game_instructions
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
