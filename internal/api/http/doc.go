// Package http exposes ROM sessions over a small JSON API.
//
// Refusals are answered with 403 and the body {"error":"service denied"},
// whatever the cause. Causes are logged and counted, never returned.
package http
