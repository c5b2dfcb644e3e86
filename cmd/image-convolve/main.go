package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/ironsheep/image-convolve-mcp/internal/convolve"
	"github.com/ironsheep/image-convolve-mcp/internal/imaging"
	"github.com/ironsheep/image-convolve-mcp/internal/kernel"
	"github.com/ironsheep/image-convolve-mcp/internal/preprocess"
	"github.com/ironsheep/image-convolve-mcp/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// Exit codes of the run command.
const (
	exitUsage   = 1
	exitProcess = 2
)

const logLevelEnv = "IMAGE_CONVOLVE_LOG_LEVEL"

func main() {
	logger := newLogger(os.Stderr, os.Getenv(logLevelEnv))
	convolve.SetLogger(logger)
	server.Version = Version

	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "-v", "version":
			fmt.Printf("%s %s\n", server.Name, Version)
			fmt.Printf("  Build time: %s\n", BuildTime)
			fmt.Printf("  Git commit: %s\n", GitCommit)
			return
		case "--help", "-h", "help":
			printHelp(os.Stdout)
			return
		case "run":
			os.Exit(runCommand(os.Args[2:], os.Stdout, os.Stderr, logger))
		}
	}

	logger.Debug("starting MCP server",
		slog.String("version", Version),
		slog.String("built", BuildTime),
		slog.String("commit", GitCommit))

	srv := server.NewWithLogger(logger)
	if err := srv.Run(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
}

// newLogger returns a text logger on w. Unknown or empty levels mean info.
func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func printHelp(w io.Writer) {
	fmt.Fprintf(w, "%s - image convolution engine and MCP server\n", server.Name)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Usage: %s [options]\n", server.Name)
	fmt.Fprintf(w, "       %s run <input> <output> --kernel <name|spec> [flags]\n", server.Name)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --version, -v    Print version information")
	fmt.Fprintln(w, "  --help, -h       Print this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run flags:")
	newRunFlags(w).fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Kernel presets: %s\n", strings.Join(kernel.BuiltinNames(), ", "))
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug|info|warn|error    Log level (stderr)\n", logLevelEnv)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Without a command the server speaks MCP over stdin/stdout.")
}

// runFlags holds the flags of the run command.
type runFlags struct {
	fs *flag.FlagSet

	kernel    string
	stride    int
	padding   string
	viz       string
	grayscale bool
	denoise   bool
	binarize  bool
	window    int
	binarizeK float64
}

func newRunFlags(output io.Writer) *runFlags {
	defaults := convolve.DefaultParams()
	pre := preprocess.DefaultOptions()

	rf := &runFlags{fs: flag.NewFlagSet("run", flag.ContinueOnError)}
	rf.fs.SetOutput(output)
	rf.fs.StringVar(&rf.kernel, "kernel", "", "preset name or matrix spec such as \"1 2 1; 2 4 2; 1 2 1\" (required)")
	rf.fs.IntVar(&rf.stride, "stride", defaults.Stride, "step between output samples; values below 1 mean 1")
	rf.fs.StringVar(&rf.padding, "padding", defaults.Padding.String(), "out-of-bounds sampling: zero or edge")
	rf.fs.StringVar(&rf.viz, "viz", defaults.Viz.String(), "output mapping: clamp, normalize or none")
	rf.fs.BoolVar(&rf.grayscale, "grayscale", false, "convert to BT.601 luminance before convolving")
	rf.fs.BoolVar(&rf.denoise, "denoise", false, "3x3 median filter before convolving")
	rf.fs.BoolVar(&rf.binarize, "binarize", false, "Sauvola adaptive threshold before convolving")
	rf.fs.IntVar(&rf.window, "window", pre.WindowSize, "Sauvola window size")
	rf.fs.Float64Var(&rf.binarizeK, "binarize-k", pre.SauvolaK, "Sauvola sensitivity k")
	return rf
}

// parse accepts flags before, between and after the positional arguments.
func (rf *runFlags) parse(args []string) ([]string, error) {
	var positional []string
	for {
		if err := rf.fs.Parse(args); err != nil {
			return nil, err
		}
		rest := rf.fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

func (rf *runFlags) params() (convolve.Params, error) {
	p := convolve.DefaultParams()
	p.Stride = rf.stride

	pad, err := convolve.ParsePadding(rf.padding)
	if err != nil {
		return p, err
	}
	p.Padding = pad

	viz, err := convolve.ParseVizMode(rf.viz)
	if err != nil {
		return p, err
	}
	p.Viz = viz
	return p, nil
}

func (rf *runFlags) options() preprocess.Options {
	return preprocess.Options{
		Grayscale:  rf.grayscale,
		Denoise:    rf.denoise,
		Binarize:   rf.binarize,
		SauvolaK:   rf.binarizeK,
		WindowSize: rf.window,
	}
}

var errUsage = errors.New("usage")

// runCommand executes the one-shot CLI and returns the process exit code.
func runCommand(args []string, stdout, stderr io.Writer, logger *slog.Logger) int {
	rf := newRunFlags(stderr)
	positional, err := rf.parse(args)
	if err == nil {
		err = validate(rf, positional)
	}
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		fmt.Fprintf(stderr, "usage: %s run <input> <output> --kernel <name|spec> [flags]\n", server.Name)
		return exitUsage
	}

	k, err := kernel.Resolve(rf.kernel)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}
	p, err := rf.params()
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return exitUsage
	}

	input, output := positional[0], positional[1]
	src, err := imaging.LoadBuffer(imaging.NewImageCache(), input, rf.options())
	if err != nil {
		logger.Error("failed to load input", slog.String("path", input), slog.Any("error", err))
		return exitProcess
	}

	out, err := convolve.Convolve(src, k, p)
	if err != nil {
		logger.Error("convolution failed", slog.Any("error", err))
		return exitProcess
	}
	if err := imaging.Save(out, output); err != nil {
		logger.Error("failed to write output", slog.String("path", output), slog.Any("error", err))
		return exitProcess
	}

	fmt.Fprintf(stdout, "Wrote: %s (%dx%d, c=%d)\n", output, out.Width, out.Height, out.Channels)
	return 0
}

func validate(rf *runFlags, positional []string) error {
	switch {
	case len(positional) != 2:
		return fmt.Errorf("%w: expected <input> <output>, got %d arguments", errUsage, len(positional))
	case rf.kernel == "":
		return fmt.Errorf("%w: --kernel is required", errUsage)
	}
	return nil
}
