package server

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/config"
	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/export"
	"github.com/ironsheep/rathaus-crops/internal/label"
	"github.com/ironsheep/rathaus-crops/internal/logging"
	"github.com/ironsheep/rathaus-crops/internal/pdf"
)

// Name is reported as serverInfo.name.
const Name = "rathaus-crops"

// Options configures a Server. Zero fields get defaults.
type Options struct {
	// Open opens PDF documents. Defaults to pdf.Open.
	Open document.Opener

	// Exporter runs rathaus_export and rathaus_extract_images. Defaults to an
	// Exporter without OCR.
	Exporter *export.Exporter

	// Cleaner backs rathaus_clean_label.
	Cleaner *label.Cleaner

	// OCR is reported by rathaus_ocr_info.
	OCR config.OCR

	// OutputDir is used when rathaus_export gets no output_dir.
	OutputDir string

	Version string
	Logger  logrus.FieldLogger
}

// Server handles MCP protocol communication
type Server struct {
	open      document.Opener
	exporter  *export.Exporter
	cleaner   *label.Cleaner
	ocr       config.OCR
	outputDir string
	version   string
	log       logrus.FieldLogger
}

// MCPRequest represents an incoming JSON-RPC request
type MCPRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// MCPResponse represents an outgoing JSON-RPC response
type MCPResponse struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *MCPError   `json:"error,omitempty"`
}

// MCPError represents a JSON-RPC error
type MCPError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// New creates a new MCP server instance
func New(opts Options) *Server {
	s := &Server{
		open:      opts.Open,
		exporter:  opts.Exporter,
		cleaner:   opts.Cleaner,
		ocr:       opts.OCR,
		outputDir: opts.OutputDir,
		version:   opts.Version,
		log:       logging.OrDiscard(opts.Logger),
	}
	if s.open == nil {
		s.open = pdf.Open
	}
	if s.exporter == nil {
		s.exporter = export.New(s.open, export.WithLogger(s.log))
	}
	if s.cleaner == nil {
		s.cleaner = label.NewCleaner(label.DefaultCorrections())
	}
	if s.outputDir == "" {
		s.outputDir = config.DefaultOutputDir
	}
	if s.version == "" {
		s.version = "dev"
	}
	return s
}

// Run serves MCP on stdin and stdout until stdin is closed.
func (s *Server) Run(ctx context.Context) error {
	return s.Serve(ctx, os.Stdin, os.Stdout)
}

// Serve reads requests from r and writes responses to w until r is exhausted
// or ctx is cancelled.
func (s *Server) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	encoder := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var req MCPRequest
		if err := json.Unmarshal(line, &req); err != nil {
			s.log.WithError(err).Warn("failed to parse request")
			continue
		}

		resp := s.handleRequest(ctx, &req)
		if resp != nil {
			if err := encoder.Encode(resp); err != nil {
				s.log.WithError(err).Warn("failed to encode response")
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanner error: %w", err)
	}

	return nil
}

// handleRequest routes requests to appropriate handlers
func (s *Server) handleRequest(ctx context.Context, req *MCPRequest) *MCPResponse {
	s.log.WithField("method", req.Method).Debug("request")

	switch req.Method {
	case "initialize":
		return s.handleInitialize(req)
	case "notifications/initialized":
		return nil
	case "tools/list":
		return s.handleToolsList(req)
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	case "ping":
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  map[string]interface{}{},
		}
	default:
		return &MCPResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Error: &MCPError{
				Code:    -32601,
				Message: fmt.Sprintf("Method not found: %s", req.Method),
			},
		}
	}
}

// handleInitialize responds to the initialize request
func (s *Server) handleInitialize(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"protocolVersion": "2024-11-05",
			"capabilities": map[string]interface{}{
				"tools": map[string]interface{}{},
			},
			"serverInfo": map[string]interface{}{
				"name":    Name,
				"version": s.version,
			},
		},
	}
}
