package server

import (
	"encoding/json"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"time"

	"github.com/ironsheep/image-convolve-mcp/internal/convolve"
	"github.com/ironsheep/image-convolve-mcp/internal/imaging"
	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/preprocess"
	"github.com/ironsheep/image-convolve-mcp/internal/raster"
)

// Defaults applied to zero-valued tool arguments.
const (
	defaultThresholdLow  = 50
	defaultThresholdHigh = 150
	defaultScale         = 1.0
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_convolve").
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
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	result, err := s.executeTool(params.Name, params.Arguments)
	if err != nil {
		s.logger.Warn("tool failed", slog.String("tool", params.Name), slog.Any("error", err))
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	s.logger.Debug("tool done", slog.String("tool", params.Name), slog.Duration("elapsed", time.Since(start)))

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
func (s *Server) executeTool(name string, args json.RawMessage) (interface{}, error) {
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	switch name {
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	case "kernel_list":
		return s.handleKernelList(args)
	case "kernel_inspect":
		return s.handleKernelInspect(args)

	case "image_convolve":
		return s.handleImageConvolve(args)
	case "image_convolve_probe":
		return s.handleImageConvolveProbe(args)
	case "image_preprocess":
		return s.handleImagePreprocess(args)
	case "image_edge_detect":
		return s.handleImageEdgeDetect(args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response. An empty data string is
// omitted.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	e := &MCPError{Code: code, Message: message}
	if data != "" {
		e.Data = data
	}
	return &MCPResponse{JSONRPC: "2.0", ID: id, Error: e}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Kernel Handlers ===

// kernelInfo describes a kernel for kernel_list and kernel_inspect.
type kernelInfo struct {
	Name      string            `json:"name,omitempty"`
	Width     int               `json:"width"`
	Height    int               `json:"height"`
	Sum       float64           `json:"sum"`
	Spec      string            `json:"spec"`
	Separable bool              `json:"separable"`
	Factors   *kernel.Factors   `json:"factors,omitempty"`
	Weights   [][]float64       `json:"weights,omitempty"`
	Strategy  convolve.Strategy `json:"strategy"`
}

func describeKernel(name string, k *kernel.Kernel, full bool) kernelInfo {
	info := kernelInfo{
		Name:     name,
		Width:    k.Width(),
		Height:   k.Height(),
		Sum:      k.Sum(),
		Spec:     k.String(),
		Strategy: convolve.StrategyFor(k),
	}
	f, ok := k.Separable(convolve.SeparableTolerance)
	info.Separable = ok
	if !full {
		return info
	}
	if ok {
		info.Factors = &f
	}
	info.Weights = make([][]float64, k.Height())
	for i := range info.Weights {
		row := make([]float64, k.Width())
		for j := range row {
			row[j] = k.At(i, j)
		}
		info.Weights[i] = row
	}
	return info
}

type kernelListResult struct {
	Kernels []kernelInfo `json:"kernels"`
}

func (s *Server) handleKernelList(_ json.RawMessage) (interface{}, error) {
	names := kernel.BuiltinNames()
	res := kernelListResult{Kernels: make([]kernelInfo, 0, len(names))}
	for _, name := range names {
		k, err := kernel.Builtin(name)
		if err != nil {
			return nil, err
		}
		res.Kernels = append(res.Kernels, describeKernel(name, k, false))
	}
	return res, nil
}

type kernelInspectArgs struct {
	Kernel string `json:"kernel"`
}

func (s *Server) handleKernelInspect(args json.RawMessage) (interface{}, error) {
	var a kernelInspectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	k, err := kernel.Resolve(a.Kernel)
	if err != nil {
		return nil, err
	}
	name := strings.ToLower(strings.TrimSpace(a.Kernel))
	if _, err := kernel.Builtin(name); err != nil {
		name = ""
	}
	return describeKernel(name, k, true), nil
}

// === Convolution Handlers ===

// regionArgs selects the part of the source image to process. Region wins
// over Quadrant when both are given.
type regionArgs struct {
	Region *struct {
		X1 int `json:"x1"`
		Y1 int `json:"y1"`
		X2 int `json:"x2"`
		Y2 int `json:"y2"`
	} `json:"region,omitempty"`
	Quadrant string  `json:"quadrant,omitempty"`
	Scale    float64 `json:"scale,omitempty"`
}

type preprocessArgs struct {
	Grayscale bool    `json:"grayscale"`
	Denoise   bool    `json:"denoise"`
	Binarize  bool    `json:"binarize"`
	Window    int     `json:"window"`
	BinarizeK float64 `json:"binarize_k"`
}

func (a preprocessArgs) options() preprocess.Options {
	opts := preprocess.DefaultOptions()
	opts.Grayscale = a.Grayscale
	opts.Denoise = a.Denoise
	opts.Binarize = a.Binarize
	if a.Window != 0 {
		opts.WindowSize = a.Window
	}
	if a.BinarizeK != 0 {
		opts.SauvolaK = a.BinarizeK
	}
	return opts
}

type convolveArgs struct {
	Path       string `json:"path"`
	Kernel     string `json:"kernel"`
	Stride     int    `json:"stride"`
	Padding    string `json:"padding"`
	Viz        string `json:"viz"`
	OutputPath string `json:"output_path,omitempty"`
	regionArgs
	preprocessArgs
}

func (a convolveArgs) params() (convolve.Params, error) {
	p := convolve.DefaultParams()
	p.Stride = max(1, a.Stride)
	if a.Padding != "" {
		pad, err := convolve.ParsePadding(a.Padding)
		if err != nil {
			return p, err
		}
		p.Padding = pad
	}
	if a.Viz != "" {
		viz, err := convolve.ParseVizMode(a.Viz)
		if err != nil {
			return p, err
		}
		p.Viz = viz
	}
	return p, nil
}

// convolveResult is returned by image_convolve. Image is omitted when the
// output was written to OutputPath.
type convolveResult struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Channels   int                   `json:"channels"`
	Kernel     string                `json:"kernel"`
	Strategy   convolve.Strategy     `json:"strategy"`
	Stride     int                   `json:"stride"`
	Padding    string                `json:"padding"`
	Viz        string                `json:"viz"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

// loadSource loads path, applies the region selection and preprocessing and
// returns the planar buffer to convolve.
func (s *Server) loadSource(path string, r regionArgs, p preprocessArgs) (*raster.Buffer, error) {
	img, err := s.cache.Load(path)
	if err != nil {
		return nil, err
	}
	img, err = selectRegion(img, r)
	if err != nil {
		return nil, err
	}
	return imaging.ToBuffer(img, p.options())
}

func selectRegion(img image.Image, r regionArgs) (image.Image, error) {
	scale := r.Scale
	if scale == 0 {
		scale = defaultScale
	}
	switch {
	case r.Region != nil:
		return imaging.Crop(img, r.Region.X1, r.Region.Y1, r.Region.X2, r.Region.Y2, scale)
	case r.Quadrant != "":
		return imaging.CropQuadrant(img, r.Quadrant, scale)
	case scale != defaultScale:
		b := img.Bounds()
		return imaging.Crop(img, b.Min.X, b.Min.Y, b.Max.X, b.Max.Y, scale)
	}
	return img, nil
}

func (s *Server) handleImageConvolve(args json.RawMessage) (interface{}, error) {
	var a convolveArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	k, err := kernel.Resolve(a.Kernel)
	if err != nil {
		return nil, err
	}
	p, err := a.params()
	if err != nil {
		return nil, err
	}
	src, err := s.loadSource(a.Path, a.regionArgs, a.preprocessArgs)
	if err != nil {
		return nil, err
	}

	out, err := convolve.Convolve(src, k, p)
	if err != nil {
		return nil, err
	}

	res := &convolveResult{
		Width:    out.Width,
		Height:   out.Height,
		Channels: out.Channels,
		Kernel:   k.String(),
		Strategy: convolve.StrategyFor(k),
		Stride:   p.EffectiveStride(),
		Padding:  p.Padding.String(),
		Viz:      p.Viz.String(),
	}

	if a.OutputPath != "" {
		if err := imaging.Save(out, a.OutputPath); err != nil {
			return nil, err
		}
		res.OutputPath = a.OutputPath
		return res, nil
	}

	res.Image, err = imaging.EncodePNG(out.Image())
	if err != nil {
		return nil, err
	}
	return res, nil
}

type convolveProbeArgs struct {
	convolveArgs
	Points []imaging.LabeledPoint `json:"points"`
}

type convolveProbeResult struct {
	Width    int               `json:"width"`
	Height   int               `json:"height"`
	Channels int               `json:"channels"`
	Strategy convolve.Strategy `json:"strategy"`
	Viz      string            `json:"viz"`
	*imaging.ProbeResult
}

func (s *Server) handleImageConvolveProbe(args json.RawMessage) (interface{}, error) {
	var a convolveProbeArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if len(a.Points) == 0 {
		return nil, fmt.Errorf("at least one point is required")
	}
	k, err := kernel.Resolve(a.Kernel)
	if err != nil {
		return nil, err
	}
	p, err := a.params()
	if err != nil {
		return nil, err
	}
	src, err := s.loadSource(a.Path, a.regionArgs, a.preprocessArgs)
	if err != nil {
		return nil, err
	}

	rawParams := p
	rawParams.Viz = convolve.VizNone
	raw, err := convolve.Convolve(src, k, rawParams)
	if err != nil {
		return nil, err
	}
	display := raw.Clone()
	convolve.Visualize(display, p.Viz)

	probe, err := imaging.Probe(raw, display, a.Points)
	if err != nil {
		return nil, err
	}
	return &convolveProbeResult{
		Width:       raw.Width,
		Height:      raw.Height,
		Channels:    raw.Channels,
		Strategy:    convolve.StrategyFor(k),
		Viz:         p.Viz.String(),
		ProbeResult: probe,
	}, nil
}

type imagePreprocessArgs struct {
	Path       string `json:"path"`
	OutputPath string `json:"output_path,omitempty"`
	regionArgs
	preprocessArgs
}

type preprocessResult struct {
	Width      int                   `json:"width"`
	Height     int                   `json:"height"`
	Channels   int                   `json:"channels"`
	OutputPath string                `json:"output_path,omitempty"`
	Image      *imaging.EncodedImage `json:"image,omitempty"`
}

func (s *Server) handleImagePreprocess(args json.RawMessage) (interface{}, error) {
	var a imagePreprocessArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if !a.options().Enabled() {
		return nil, fmt.Errorf("no preprocessing step selected (grayscale, denoise or binarize)")
	}
	buf, err := s.loadSource(a.Path, a.regionArgs, a.preprocessArgs)
	if err != nil {
		return nil, err
	}

	res := &preprocessResult{Width: buf.Width, Height: buf.Height, Channels: buf.Channels}
	if a.OutputPath != "" {
		if err := imaging.Save(buf, a.OutputPath); err != nil {
			return nil, err
		}
		res.OutputPath = a.OutputPath
		return res, nil
	}
	res.Image, err = imaging.EncodePNG(buf.Image())
	if err != nil {
		return nil, err
	}
	return res, nil
}

type imageEdgeDetectArgs struct {
	Path          string `json:"path"`
	ThresholdLow  int    `json:"threshold_low"`
	ThresholdHigh int    `json:"threshold_high"`
}

func (s *Server) handleImageEdgeDetect(args json.RawMessage) (interface{}, error) {
	var a imageEdgeDetectArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ThresholdLow == 0 {
		a.ThresholdLow = defaultThresholdLow
	}
	if a.ThresholdHigh == 0 {
		a.ThresholdHigh = defaultThresholdHigh
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.EdgeDetect(img, a.ThresholdLow, a.ThresholdHigh)
}
