package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ironsheep/rathaus-crops/internal/document"
	"github.com/ironsheep/rathaus-crops/internal/export"
	"github.com/ironsheep/rathaus-crops/internal/extract"
	"github.com/ironsheep/rathaus-crops/internal/geometry"
	"github.com/ironsheep/rathaus-crops/internal/label"
	"github.com/ironsheep/rathaus-crops/internal/ocr"
)

var errNoPDFPath = errors.New("pdf_path is required")

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "rathaus_export").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		s.log.WithField("tool", params.Name).WithError(err).Warn("tool failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	case "rathaus_export":
		return s.handleExport(ctx, args)
	case "rathaus_extract_images":
		return s.handleExtractImages(ctx, args)
	case "rathaus_page_items":
		return s.handlePageItems(args)
	case "rathaus_clean_label":
		return s.handleCleanLabel(args)
	case "rathaus_ocr_info":
		return s.handleOCRInfo()
	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure it returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// unmarshalArgs decodes tool arguments. Missing arguments decode as {}.
func unmarshalArgs(args json.RawMessage, v interface{}) error {
	if len(args) == 0 {
		return nil
	}
	return json.Unmarshal(args, v)
}

// === Export Handlers ===

type exportArgs struct {
	PDFPath   string `json:"pdf_path"`
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PDFPath == "" {
		return nil, errNoPDFPath
	}
	if a.OutputDir == "" {
		a.OutputDir = s.outputDir
	}
	return s.exporter.Export(ctx, a.PDFPath, a.OutputDir)
}

type extractImagesResult struct {
	Count     int    `json:"count"`
	OutputDir string `json:"output_dir"`
}

func (s *Server) handleExtractImages(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a exportArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PDFPath == "" {
		return nil, errNoPDFPath
	}
	if a.OutputDir == "" {
		a.OutputDir = export.DefaultDumpDir
	}
	n, err := s.exporter.Dump(ctx, a.PDFPath, a.OutputDir)
	if err != nil {
		return nil, err
	}
	return &extractImagesResult{Count: n, OutputDir: a.OutputDir}, nil
}

// === Inspection Handlers ===

type pageItemsArgs struct {
	PDFPath string `json:"pdf_path"`
	Page    int    `json:"page"`
}

type pageImage struct {
	extract.ImageCandidate
	Label    string  `json:"label"`
	Distance float64 `json:"distance,omitempty"`
}

type pageItemsResult struct {
	Page   int             `json:"page"`
	Pages  int             `json:"pages"`
	Bounds geometry.Rect   `json:"bbox"`
	Images []pageImage     `json:"images"`
	Spans  []document.Span `json:"spans"`
}

func (s *Server) handlePageItems(args json.RawMessage) (interface{}, error) {
	var a pageItemsArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	if a.PDFPath == "" {
		return nil, errNoPDFPath
	}
	if a.Page == 0 {
		a.Page = 1
	}

	doc, err := s.open(a.PDFPath)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if a.Page < 1 || a.Page > doc.PageCount() {
		return nil, fmt.Errorf("page %d out of range (document has %d pages)", a.Page, doc.PageCount())
	}
	page, err := doc.Page(a.Page - 1)
	if err != nil {
		return nil, err
	}

	images, spans, err := extract.PageItems(page, s.log)
	if err != nil {
		return nil, err
	}

	res := &pageItemsResult{
		Page:   a.Page,
		Pages:  doc.PageCount(),
		Bounds: page.Bounds(),
		Images: make([]pageImage, 0, len(images)),
		Spans:  spans,
	}
	if res.Spans == nil {
		res.Spans = []document.Span{}
	}
	for _, img := range images {
		item := pageImage{ImageCandidate: img, Label: label.FindNearest(img.Rect, spans)}
		if m := label.Nearest(img.Rect, spans); m.Found {
			item.Distance = m.Distance
		}
		res.Images = append(res.Images, item)
	}
	return res, nil
}

type cleanLabelArgs struct {
	Text string `json:"text"`
}

type cleanLabelResult struct {
	Raw     string `json:"raw"`
	Cleaned string `json:"cleaned"`
	Safe    string `json:"safe"`
}

func (s *Server) handleCleanLabel(args json.RawMessage) (interface{}, error) {
	var a cleanLabelArgs
	if err := unmarshalArgs(args, &a); err != nil {
		return nil, err
	}
	cleaned := s.cleaner.Clean(a.Text)
	return &cleanLabelResult{
		Raw:     a.Text,
		Cleaned: cleaned,
		Safe:    label.Sanitize(cleaned, 0),
	}, nil
}

type ocrInfoResult struct {
	ocr.Info
	Enabled bool `json:"enabled"`
}

func (s *Server) handleOCRInfo() (interface{}, error) {
	return &ocrInfoResult{
		Info:    ocr.GetInfo(s.ocr.Tessdata, s.ocr.Language),
		Enabled: s.ocr.Enabled,
	}, nil
}
