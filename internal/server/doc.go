// Package server exposes grant and signature verification over HTTP.
//
// Routes:
//
//	POST /v1/grants/verify      {"grant": {...}, "issuer": "did:key:..."}
//	POST /v1/signatures/verify  {"did": "...", "message": "<base64>", "signature": "<hex>"}
//	GET  /metrics               Prometheus exposition
//	GET  /healthz
//
// Verification routes are rate limited per client address.
package server
