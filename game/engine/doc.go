// Package engine provides the core movement rules for a turn-based tactics board.
//
// The engine package implements:
//   - Grid geometry: cell/pixel conversion, clamping and bounds
//   - Reachability: a breadth-first, range-limited flood fill where occupied
//     and non-walkable cells act as walls
//   - Pathfinding: A* with a Manhattan heuristic, restricted to the reachable set
//   - Occupancy: the UnitRegistry, the only place a unit's cell changes
//   - Selection: the Idle/Selected/Moving state machine driven by cursor,
//     confirm and cancel input and finished by an Animator callback
//
// Usage:
//
//	config, err := engine.LoadBoardConfig("configs/skirmish.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board, err := engine.NewEngine(config, walker)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	board.InteractAt(engine.Cell{X: 1, Y: 3}) // select
//	board.MoveCursor(engine.Cell{X: 3, Y: 3}) // preview a path
//	board.Interact()                          // commit; the walker finishes the move
//
// The engine is single threaded. Moves cannot be cancelled once committed, and a
// walk that never reports completion keeps the board in the moving state.
package engine
