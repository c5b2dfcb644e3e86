// Package imaging moves images between files, the MCP tools and the
// convolution engine.
//
// It decodes source files into a shared ImageCache, converts decoded images
// (optionally preprocessed) into planar raster buffers, and turns convolution
// output back into files or inline base64 PNG. It also hosts the image-level
// operations built on the engine: region cropping, output probing and Canny
// edge detection.
//
// # Coordinate System
//
// Pixel coordinates are 0-based with (0,0) at the top-left corner, X growing
// rightward and Y downward. Regions are half-open: (x1,y1) is inclusive,
// (x2,y2) exclusive.
//
// # Formats
//
// Decoding recognises PNG, JPEG, GIF, BMP, TIFF and WebP by content. Save picks
// the encoder from the file extension and supports PNG, JPEG, GIF, BMP and
// TIFF. WebP is read-only.
//
// # Thread Safety
//
// ImageCache is safe for concurrent use. Cached images are never mutated;
// every operation here returns new images or buffers.
package imaging
