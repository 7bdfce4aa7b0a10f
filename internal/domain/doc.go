// Package domain defines the core types of the fluidnet diagram editor.
//
// The package holds the value types shared by every other layer: component
// type specifications, placed component instances, ports, connections and
// the solve request/response envelope exchanged with the external solver.
//
// # Core Types
//
// ComponentTypeSpec describes a catalogued component type: its editable
// parameters with fallback values and its fixed inlet/outlet counts.
//
// Component is a placed instance of a type. Its Parameters map always holds
// exactly the keys its type declares, and its Connections list is rebuilt
// from the live canvas topology immediately before every solve.
//
// Ports are addressed by identifiers of the form "{componentID}.Inlet{n}" and
// "{componentID}.Outlet{n}". Outlets are connection sources, inlets targets.
//
// Diagram is the request-shaped mapping of component id to Component that is
// serialized as the body of a solve request.
//
// # Errors
//
// UnknownTypeError and NotFoundError report contract violations inside the
// model layer. They are expected never to reach a user through a correctly
// wired front end and are surfaced loudly when they do.
//
// # Design Principles
//
// - No I/O and no third-party dependencies
// - Plain value types that copy cleanly
package domain
