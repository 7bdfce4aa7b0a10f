// Package service coordinates the diagram core for the HTTP and terminal
// front ends.
//
// A Session owns one diagram and everything attached to it: the model, the
// canvas graph, the parameter editor, the result overlays, the notification
// presenter and the solve client. Every intent runs under the session lock,
// so the session behaves as a single event loop. Solve releases the lock
// while the request is in flight; when several solves overlap, the last one
// to resolve determines what is shown.
//
// # Event System
//
// Sessions publish events via EventBus so that connected clients can follow
// the diagram over Server-Sent Events. Publishing never blocks; slow
// subscribers miss events.
package service
