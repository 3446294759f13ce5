// Package websocket pushes board updates to browser clients.
//
// A central Hub owns every connection. Clients join a session with
// ?session=<id> and receive only that session's messages. The Run goroutine
// owns the client maps; broadcasts are queued on a buffered channel and
// dropped with a warning when the queue is full.
//
// Message Protocol:
//
// Every outgoing frame is one JSON Message:
//   - {"session_id": "ab12", "event": "state_update", "state": {...BoardState}}
//   - {"session_id": "ab12", "event": "move_started", "data": {...Event}}
//
// Event names match engine.EventType values. Clients send input through the
// REST API; inbound frames only keep the connection alive.
//
// Usage:
//
//	hub := websocket.NewHub(websocket.WithLogger(logger))
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(id, state)
//	hub.BroadcastEvents(id, events)
package websocket
