// Package handler implements the HTTP API of the fluidnet editor.
//
// DiagramHandler exposes one service.Session: components, the parameter
// editor, canvas connections, solving, overlays, notifications, the solve
// journal and exports. Register installs the routes on a ServeMux using
// method patterns.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200,
// 201, 204). Error responses return JSON with {error, details} structure.
// Unknown ids answer 404, unknown component types and misdirected or
// unknown ports answer 400, and busy ports or a save without an open form
// answer 409. A solve always answers 200: solver failures are part of the
// returned outcome.
//
// # Server-Sent Events
//
// The /events endpoint (internal/hub) streams session events so clients can
// follow the diagram, overlays and notifications live.
package handler
