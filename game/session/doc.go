// Package session provides in-memory session management for tactics boards.
//
// Each session owns one engine.GameEngine and the motion.Walker that animates
// its moves. The manager builds both, then hands the engine's grid to the
// walker, so a new session is ready to take input and ticks right away.
//
// Session Identifiers:
//
// Generated IDs are 4 hex characters from crypto/rand. Caller-chosen IDs may
// use letters, digits, '-' and '_'. Lookups are case-insensitive.
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions idle for longer than a given age,
// except sessions with a walk still in flight.
//
// Usage:
//
//	manager := session.NewManager(session.WithMoveSpeed(480), session.WithLogger(logger))
//
//	sess, err := manager.Create("", board)
//	if err != nil {
//		return err
//	}
//	sess, err = manager.Get(sess.ID)
package session
