// Package server implements the MCP (Model Context Protocol) server for
// equipment recognition in game screenshots.
//
// This package provides a JSON-RPC 2.0 server that exposes the detection and
// recognition pipeline through the MCP protocol, so an assistant can find the
// equipment icons in a screenshot, let a user correct the rectangles, and
// identify each icon against the matching service.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Screenshot Information:
//   - equip_image_info: Decode a screenshot and report its metadata
//
// Detection:
//   - equip_detect: Find icons of a category and open an editing session
//
// Rectangle Editing:
//   - equip_rect_add: Add a rectangle the detector missed
//   - equip_rect_update: Move or resize a rectangle
//   - equip_rect_remove: Drop a false positive
//
// Recognition:
//   - equip_recognize: Match every rectangle of a session
//
// Visual Verification:
//   - equip_crop: Return one rectangle as PNG, optionally normalized
//   - equip_annotate: Draw the numbered rectangles over the screenshot
//
// Session Lifecycle:
//   - equip_session_close: Discard a session
//
// # Sessions
//
// equip_detect returns a session id. Every later tool addresses rectangles by
// that session id and the rectangle's own id, which stays stable across
// edits and is never reused. Recognition results are keyed by rectangle id.
//
// # Image Caching
//
// Screenshots are decoded once and cached by path. A screenshot is evicted
// when the last session using it is closed.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// A matching failure for one detection type is not a tool error:
// equip_recognize still succeeds and lists the failed types under
// "failures", with their rectangles absent from "results".
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	srv, err := server.New(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := srv.Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
