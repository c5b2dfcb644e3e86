package server

import (
	"testing"

	"github.com/ironsheep/image-convolve-mcp/internal/imaging"
)

func toolMap() map[string]Tool {
	m := make(map[string]Tool)
	for _, tool := range GetToolDefinitions() {
		m[tool.Name] = tool
	}
	return m
}

func requiredOf(t *testing.T, tool Tool) map[string]bool {
	t.Helper()
	req, ok := tool.InputSchema["required"]
	if !ok {
		return nil
	}
	list, ok := req.([]string)
	if !ok {
		t.Fatalf("%s: 'required' should be a string slice", tool.Name)
	}
	out := make(map[string]bool, len(list))
	for _, r := range list {
		out[r] = true
	}
	return out
}

func TestGetToolDefinitions(t *testing.T) {
	expected := []string{
		"image_load",
		"image_dimensions",
		"kernel_list",
		"kernel_inspect",
		"image_convolve",
		"image_convolve_probe",
		"image_preprocess",
		"image_edge_detect",
	}

	tools := toolMap()
	if len(tools) != len(expected) {
		t.Errorf("got %d tools, want %d", len(tools), len(expected))
	}
	for _, name := range expected {
		if _, ok := tools[name]; !ok {
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
			props, ok := tool.InputSchema["properties"].(map[string]interface{})
			if !ok {
				t.Fatal("InputSchema properties should be a map")
			}
			for r := range requiredOf(t, tool) {
				if _, ok := props[r]; !ok {
					t.Errorf("required parameter %q has no property", r)
				}
			}
		})
	}
}

func TestToolDefinitions_Required(t *testing.T) {
	tests := []struct {
		tool     string
		required []string
	}{
		{"image_load", []string{"path"}},
		{"image_dimensions", []string{"path"}},
		{"kernel_inspect", []string{"kernel"}},
		{"image_convolve", []string{"path", "kernel"}},
		{"image_convolve_probe", []string{"path", "kernel", "points"}},
		{"image_preprocess", []string{"path"}},
		{"image_edge_detect", []string{"path"}},
	}

	tools := toolMap()
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			got := requiredOf(t, tools[tt.tool])
			if len(got) != len(tt.required) {
				t.Errorf("got %d required parameters, want %d", len(got), len(tt.required))
			}
			for _, r := range tt.required {
				if !got[r] {
					t.Errorf("should require %q", r)
				}
			}
		})
	}
}

func TestToolDefinitions_ConvolveEnums(t *testing.T) {
	props := toolMap()["image_convolve"].InputSchema["properties"].(map[string]interface{})

	tests := []struct {
		prop string
		want []string
	}{
		{"padding", []string{"zero", "edge"}},
		{"viz", []string{"clamp", "normalize", "none"}},
		{"quadrant", imaging.Quadrants},
	}

	for _, tt := range tests {
		t.Run(tt.prop, func(t *testing.T) {
			p, ok := props[tt.prop].(map[string]interface{})
			if !ok {
				t.Fatalf("missing property %s", tt.prop)
			}
			enum, ok := p["enum"].([]string)
			if !ok {
				t.Fatalf("%s: enum should be a string slice", tt.prop)
			}
			if len(enum) != len(tt.want) {
				t.Fatalf("%s: got %v, want %v", tt.prop, enum, tt.want)
			}
			for i := range enum {
				if enum[i] != tt.want[i] {
					t.Errorf("%s[%d]: got %s, want %s", tt.prop, i, enum[i], tt.want[i])
				}
			}
		})
	}

	if _, ok := props["output_path"]; !ok {
		t.Error("image_convolve should accept output_path")
	}
	probeProps := toolMap()["image_convolve_probe"].InputSchema["properties"].(map[string]interface{})
	if _, ok := probeProps["output_path"]; ok {
		t.Error("image_convolve_probe should not accept output_path")
	}
}
