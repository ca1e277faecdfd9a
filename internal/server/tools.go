package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pdfPathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the PDF file",
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name:        "rathaus_export",
			Description: "Crop every image larger than 200x200 points from a PDF, label each crop with the municipality name found left of it (OCR, then vector text, then the page number) and write the crops as numbered PNG files. Stops after 90 files.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pdf_path": pdfPathProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the PNG files. Created if missing. Default export_rathaeuser",
					},
				},
				"required": []string{"pdf_path"},
			},
		},
		{
			Name:        "rathaus_extract_images",
			Description: "Write every embedded image of at least 200x200 pixels as JPEG, scaled down to 1920 pixels wide. No labels are resolved.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pdf_path": pdfPathProperty(),
					"output_dir": map[string]interface{}{
						"type":        "string",
						"description": "Directory for the JPEG files. Default extracted_images",
					},
				},
				"required": []string{"pdf_path"},
			},
		},
		{
			Name:        "rathaus_page_items",
			Description: "List the image candidates and label spans of one page, with the vector-text label each image would get.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"pdf_path": pdfPathProperty(),
					"page": map[string]interface{}{
						"type":        "integer",
						"description": "Page number (1-based). Default 1",
						"default":     1,
					},
				},
				"required": []string{"pdf_path"},
			},
		},
		{
			Name:        "rathaus_clean_label",
			Description: "Clean raw OCR text into a municipality name and show the file-safe form.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"text": map[string]interface{}{
						"type":        "string",
						"description": "Raw label text",
					},
				},
				"required": []string{"text"},
			},
		},
		{
			Name:        "rathaus_ocr_info",
			Description: "Report whether the Tesseract OCR engine is available, with its version and language.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
