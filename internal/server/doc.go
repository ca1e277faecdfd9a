// Package server implements an MCP (Model Context Protocol) server around the
// town hall export.
//
// The server speaks JSON-RPC 2.0 over stdio, one request per line:
//   - Input: JSON-RPC requests on stdin
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
//   - rathaus_export: Crop and label every large image of a PDF
//   - rathaus_extract_images: Dump the embedded images of a PDF as JPEG
//   - rathaus_page_items: List the image candidates and label spans of a page
//   - rathaus_clean_label: Clean and sanitize a raw label
//   - rathaus_ocr_info: Report whether Tesseract is usable
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with code
// -32000, the message "Tool execution failed" and the Go error string as data.
//
// # Usage
//
//	srv := server.New(server.Options{Logger: log})
//	if err := srv.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
package server
