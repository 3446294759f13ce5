// Package service provides the business logic layer for tactics boards.
//
// The service package implements:
//   - Multi-session board management
//   - Cursor, interact and cancel input routing
//   - Animation ticks that drive each session's walker
//   - Reach queries and move history
//
// Core Interfaces:
//
// GameService is the main service interface used by HTTP, WebSocket and MCP.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager loads and saves board configurations.
//
// Every engine call runs under the service mutex, so a board's selection
// controller only ever sees one input or one tick at a time.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	svc := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := svc.CreateSession(ctx, "skirmish")
//	if err != nil {
//		return err
//	}
//
//	// Select a unit, then confirm a destination
//	svc.Interact(ctx, info.ID, &engine.Cell{X: 1, Y: 3})
//	svc.Interact(ctx, info.ID, &engine.Cell{X: 3, Y: 3})
//
//	// Drive the walk to completion
//	svc.Tick(ctx, 16*time.Millisecond)
package service
