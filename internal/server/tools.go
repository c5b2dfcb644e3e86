package server

import (
	"strings"

	"github.com/ironsheep/image-convolve-mcp/internal/imaging"
	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
)

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the image file",
	}
}

func kernelProperty() map[string]interface{} {
	return map[string]interface{}{
		"type": "string",
		"description": "Preset name (" + strings.Join(kernel.BuiltinNames(), ", ") +
			") or a matrix with rows separated by ';' and values by spaces or commas, e.g. \"1 2 1; 2 4 2; 1 2 1\"",
	}
}

// sourceProperties are shared by every tool that convolves or preprocesses a
// source image.
func sourceProperties() map[string]interface{} {
	return map[string]interface{}{
		"path": pathProperty(),
		"region": map[string]interface{}{
			"type":        "object",
			"description": "Optional source region; (x1,y1) inclusive, (x2,y2) exclusive",
			"properties": map[string]interface{}{
				"x1": map[string]interface{}{"type": "integer"},
				"y1": map[string]interface{}{"type": "integer"},
				"x2": map[string]interface{}{"type": "integer"},
				"y2": map[string]interface{}{"type": "integer"},
			},
			"required": []string{"x1", "y1", "x2", "y2"},
		},
		"quadrant": map[string]interface{}{
			"type":        "string",
			"description": "Optional named source region, ignored when region is given",
			"enum":        imaging.Quadrants,
		},
		"scale": map[string]interface{}{
			"type":        "number",
			"description": "Optional Lanczos rescale of the source before processing. Default 1.0",
			"default":     1.0,
		},
		"grayscale": map[string]interface{}{
			"type":        "boolean",
			"description": "Convert to BT.601 luminance (single channel)",
		},
		"denoise": map[string]interface{}{
			"type":        "boolean",
			"description": "3x3 median filter",
		},
		"binarize": map[string]interface{}{
			"type":        "boolean",
			"description": "Sauvola adaptive threshold",
		},
		"window": map[string]interface{}{
			"type":        "integer",
			"description": "Sauvola window size in pixels. Default 15",
			"default":     15,
		},
		"binarize_k": map[string]interface{}{
			"type":        "number",
			"description": "Sauvola sensitivity k. Default 0.2",
			"default":     0.2,
		},
	}
}

func convolveProperties() map[string]interface{} {
	props := sourceProperties()
	props["kernel"] = kernelProperty()
	props["stride"] = map[string]interface{}{
		"type":        "integer",
		"description": "Step between output samples on both axes. Default 1",
		"default":     1,
	}
	props["padding"] = map[string]interface{}{
		"type":        "string",
		"description": "Out-of-bounds sampling: zero or edge. Default zero",
		"enum":        []string{"zero", "edge"},
		"default":     "zero",
	}
	props["viz"] = map[string]interface{}{
		"type":        "string",
		"description": "Output mapping: clamp to [0,1], normalize min..max to [0,1], or none. Default clamp",
		"enum":        []string{"clamp", "normalize", "none"},
		"default":     "clamp",
	}
	return props
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	convolveWithOutput := convolveProperties()
	convolveWithOutput["output_path"] = map[string]interface{}{
		"type":        "string",
		"description": "Optional file to write instead of returning base64 PNG; format from extension (png, jpg, gif, bmp, tif)",
	}

	probe := convolveProperties()
	probe["points"] = map[string]interface{}{
		"type":        "array",
		"description": "Output pixel coordinates to report",
		"items": map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"x":     map[string]interface{}{"type": "integer"},
				"y":     map[string]interface{}{"type": "integer"},
				"label": map[string]interface{}{"type": "string"},
			},
			"required": []string{"x", "y"},
		},
	}

	preprocessProps := sourceProperties()
	preprocessProps["output_path"] = convolveWithOutput["output_path"]

	return []Tool{
		// Image Information
		{
			Name:        "image_load",
			Description: "Load an image file and return its dimensions, format and the number of channels the convolution engine will see.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of an image file.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},

		// Kernels
		{
			Name:        "kernel_list",
			Description: "List the preset kernels with their size, weight sum and whether they run as two 1D passes.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": map[string]interface{}{},
			},
		},
		{
			Name:        "kernel_inspect",
			Description: "Resolve a preset name or matrix spec and report its weights, sum, separability and 1D factors.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"kernel": kernelProperty(),
				},
				"required": []string{"kernel"},
			},
		},

		// Convolution
		{
			Name:        "image_convolve",
			Description: "Convolve an image with a kernel. Separable kernels run as two 1D passes. Returns the output as base64 PNG or writes it to output_path.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": convolveWithOutput,
				"required":   []string{"path", "kernel"},
			},
		},
		{
			Name:        "image_convolve_probe",
			Description: "Convolve an image and report raw (pre-visualization) and displayed values at selected output pixels.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": probe,
				"required":   []string{"path", "kernel", "points"},
			},
		},
		{
			Name:        "image_preprocess",
			Description: "Apply denoise, Sauvola binarization and grayscale conversion (in that order) without convolving.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": preprocessProps,
				"required":   []string{"path"},
			},
		},
		{
			Name:        "image_edge_detect",
			Description: "Canny edge detection built on the gauss5 and sobel presets. Returns a black and white edge map as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"threshold_low": map[string]interface{}{
						"type":        "integer",
						"description": "Low hysteresis threshold (0-255). Default 50",
						"default":     50,
					},
					"threshold_high": map[string]interface{}{
						"type":        "integer",
						"description": "High hysteresis threshold (0-255). Default 150",
						"default":     150,
					},
				},
				"required": []string{"path"},
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
