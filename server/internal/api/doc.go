// Package api implements the HTTP surface of the config server.
//
// New(src) returns an http.Handler that serves:
//
//	GET /      — 200, Content-Type: application/json, body = file bytes
//	             500, Content-Type: text/plain, "Error retrieving ConfigMap content"
//	any other  — 404, Content-Type: text/plain, "Not Found" (path is logged)
//
// Non-GET methods on / are treated as an unknown path, and so is / with a
// query string: only the exact request target "/" serves the file. Routing
// is done with chi.
package api
