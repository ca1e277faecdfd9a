package server

import (
	"context"
	"testing"
)

func TestGetToolDefinitions(t *testing.T) {
	tools := GetToolDefinitions()

	expectedTools := []string{
		"rathaus_export",
		"rathaus_extract_images",
		"rathaus_page_items",
		"rathaus_clean_label",
		"rathaus_ocr_info",
	}

	if len(tools) != len(expectedTools) {
		t.Fatalf("got %d tools, want %d", len(tools), len(expectedTools))
	}

	toolMap := make(map[string]Tool)
	for _, tool := range tools {
		toolMap[tool.Name] = tool
	}
	for _, name := range expectedTools {
		if _, ok := toolMap[name]; !ok {
			t.Errorf("Expected tool %s not found", name)
		}
	}
}

func TestToolDefinitions_Structure(t *testing.T) {
	for _, tool := range GetToolDefinitions() {
		t.Run(tool.Name, func(t *testing.T) {
			if tool.Description == "" {
				t.Error("Tool description is empty")
			}
			if tool.InputSchema["type"] != "object" {
				t.Errorf("InputSchema type: got %v, want 'object'", tool.InputSchema["type"])
			}
			if _, ok := tool.InputSchema["properties"].(map[string]interface{}); !ok {
				t.Error("InputSchema properties should be a map")
			}
		})
	}
}

func TestToolDefinitions_RequiredPDFPath(t *testing.T) {
	needsPDF := map[string]bool{
		"rathaus_export":         true,
		"rathaus_extract_images": true,
		"rathaus_page_items":     true,
	}

	for _, tool := range GetToolDefinitions() {
		if !needsPDF[tool.Name] {
			continue
		}
		t.Run(tool.Name, func(t *testing.T) {
			required, ok := tool.InputSchema["required"].([]string)
			if !ok {
				t.Fatal("required should be a string slice")
			}
			found := false
			for _, r := range required {
				if r == "pdf_path" {
					found = true
				}
			}
			if !found {
				t.Error("pdf_path should be required")
			}

			props := tool.InputSchema["properties"].(map[string]interface{})
			if _, ok := props["pdf_path"]; !ok {
				t.Error("pdf_path property missing")
			}
		})
	}
}

func TestHandleToolsList(t *testing.T) {
	s := New(Options{})
	resp := s.handleRequest(context.Background(), &MCPRequest{JSONRPC: "2.0", ID: 1, Method: "tools/list"})

	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	tools, ok := result["tools"].([]Tool)
	if !ok {
		t.Fatal("tools should be a slice of Tool")
	}
	if len(tools) != len(GetToolDefinitions()) {
		t.Errorf("got %d tools, want %d", len(tools), len(GetToolDefinitions()))
	}
}
