// Package api provides the HTTP REST API for tactics boards.
//
// Endpoints:
//
// Session Management:
//   - POST   /api/sessions                 create ({"config_id": "skirmish"}, body optional)
//   - GET    /api/sessions                 list (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}            session info with board state
//   - DELETE /api/sessions/{id}            delete
//
// Board Input:
//   - GET  /api/sessions/{id}/state               board snapshot
//   - POST /api/sessions/{id}/cursor              {"cell": {"x":1,"y":2}} | {"direction": "up"} | {"pixel": {"x":40,"y":8}}
//   - POST /api/sessions/{id}/interact            {"cell": {...}} or empty to use the cursor
//   - POST /api/sessions/{id}/cancel              drop the selection
//   - POST /api/sessions/{id}/reset               units back to their start cells
//   - GET  /api/sessions/{id}/units/{unit}/reach  reachable cells and an ASCII overlay
//   - GET  /api/sessions/{id}/history             ?page=&limit=&order=
//
// Configuration:
//   - GET  /api/configs          list boards
//   - GET  /api/configs/{name}   board definition
//   - POST /api/configs          save a board (BoardConfig JSON plus optional config_id)
//
// Other:
//   - GET /ws?session={id}   WebSocket stream of state_update and controller events
//   - GET /health
//
// Error Handling:
//
// Errors are JSON objects of the form {"error": "message"}. Missing sessions,
// boards and units map to 404, invalid input to 400, and a reset while a unit
// is walking to 409.
package api
