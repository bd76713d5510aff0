// Package server implements the MCP (Model Context Protocol) server for the
// loot detector and the contest records behind it.
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
// Detection:
//   - loot_detect: Recognize the items in one screenshot
//   - loot_detect_batch: Recognize items in many screenshots concurrently
//   - loot_templates: List the template library
//   - loot_slot_overlay: Render the sampled slot boxes for calibration
//   - loot_score: Detect and credit the items to a player's active PPE
//
// Contest records:
//   - player_add, player_remove: Manage contest membership
//   - ppe_new, ppe_set_active: Manage a player's PPEs
//   - ppe_add_points: Manual point adjustment
//   - ppe_status: Show a player's PPEs
//   - leaderboard: Rank players by their best PPE
//
// Diagnostics:
//   - ocr_info: Stack-count OCR availability
//
// # Template Caching
//
// The server keeps a template library cache for its lifetime. A library is
// reloaded when any file in its directory is added, removed or modified.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: Additional error details (typically the Go error string)
//
// loot_detect without verbose never fails; problems with the screenshot or
// the templates produce an empty list and a log line on stderr.
//
// # Usage
//
// The server is typically started by an MCP client:
//
//	srv := server.New(config.Default(), logger)
//	if err := srv.Run(); err != nil {
//	    logger.Fatal().Err(err).Msg("server failed")
//	}
package server
