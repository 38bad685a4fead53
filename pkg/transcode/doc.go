// Package transcode converts responses between JSON and XML wire formats.
//
// # Overview
//
// The gateway negotiates the client-visible format from the Accept header
// (JSON by default, XML on request) and normalizes whatever the downstream
// service returned (JSON, XML, or plain text) into one stable envelope.
// Errors always render as {"error": {code, message, request_id, timestamp,
// details?}} in the negotiated format.
//
// # Usage
//
//	format := transcode.Negotiate(r.Header.Get("Accept"))
//	payload, rootTag := transcode.DecodeBody(resp.Header.Get("Content-Type"), body)
//	transcode.Render(w, format, resp.StatusCode, rootTag, payload)
//
// # Shape Invariants
//
// Every response body is a single object: bare arrays and scalars are wrapped
// under "data", unparseable bodies under "raw". XML map keys are emitted in
// sorted order so the encoding is deterministic.
//
// # Related Packages
//
//   - pkg/gateway: the single choke point that calls Render and RenderError
package transcode
