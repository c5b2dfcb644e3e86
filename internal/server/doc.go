// Package server implements the MCP (Model Context Protocol) server for the
// convolution engine.
//
// The server speaks JSON-RPC 2.0 over stdio:
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
// Image information:
//   - image_load: Load image and get metadata
//   - image_dimensions: Get width and height
//
// Kernels:
//   - kernel_list: Preset kernels with size, sum and separability
//   - kernel_inspect: Weights and 1D factors of a preset or matrix spec
//
// Convolution:
//   - image_convolve: Convolve a (cropped, preprocessed) image
//   - image_convolve_probe: Raw and displayed output values at given pixels
//   - image_preprocess: Denoise, binarize and grayscale without convolving
//   - image_edge_detect: Canny edge map built on the gauss5 and sobel presets
//
// Every image tool accepts a path; the convolving tools also take an optional
// region or quadrant, a scale factor and the preprocessing switches.
//
// # Image Caching
//
// Decoded images are cached by path for the lifetime of the process.
// Cropping, preprocessing and convolution always work on copies.
//
// # Error Handling
//
// Tool failures are returned as JSON-RPC errors with code -32000 and the Go
// error string as data. Malformed tools/call params yield -32602 and unknown
// methods -32601. Every request, failure and tool timing is logged through
// the server's *slog.Logger, which writes to stderr so stdout stays reserved
// for protocol traffic.
//
// # Usage
//
//	srv := server.NewWithLogger(logger)
//	if err := srv.Run(); err != nil {
//	    logger.Error("server stopped", "error", err)
//	}
package server
