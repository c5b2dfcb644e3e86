package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeInput(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x * 10), uint8(y * 10), 128, 255})
		}
	}
	path := filepath.Join(t.TempDir(), "in.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create input: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("failed to encode input: %v", err)
	}
	return path
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestRunFlags_Parse(t *testing.T) {
	rf := newRunFlags(io.Discard)
	positional, err := rf.parse([]string{"--stride", "2", "in.png", "--kernel", "box3", "out.png", "--grayscale", "--binarize-k=0.3"})
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if diff := cmp.Diff([]string{"in.png", "out.png"}, positional); diff != "" {
		t.Errorf("positional mismatch (-want +got):\n%s", diff)
	}
	if rf.kernel != "box3" || rf.stride != 2 || !rf.grayscale || rf.binarizeK != 0.3 {
		t.Errorf("flags not applied: %+v", rf)
	}
	if rf.window != 15 || rf.padding != "zero" || rf.viz != "clamp" {
		t.Errorf("defaults not applied: %+v", rf)
	}
}

func TestRunCommand(t *testing.T) {
	in := writeInput(t, 9, 7)
	out := filepath.Join(t.TempDir(), "out.png")

	var stdout, stderr bytes.Buffer
	code := runCommand([]string{in, out, "--kernel", "gauss5", "--stride", "2", "--padding", "edge", "--grayscale"},
		&stdout, &stderr, discardLogger())
	if code != 0 {
		t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
	}

	want := "Wrote: " + out + " (5x4, c=1)\n"
	if stdout.String() != want {
		t.Errorf("stdout: got %q, want %q", stdout.String(), want)
	}
	if _, err := os.Stat(out); err != nil {
		t.Errorf("output not written: %v", err)
	}
}

func TestRunCommand_StrideBelowOne(t *testing.T) {
	in := writeInput(t, 4, 3)

	for _, stride := range []string{"0", "-2"} {
		t.Run(stride, func(t *testing.T) {
			out := filepath.Join(t.TempDir(), "out.png")
			var stdout, stderr bytes.Buffer
			code := runCommand([]string{in, out, "--kernel", "box3", "--stride", stride}, &stdout, &stderr, discardLogger())
			if code != 0 {
				t.Fatalf("exit code %d, stderr: %s", code, stderr.String())
			}
			want := "Wrote: " + out + " (4x3, c=3)\n"
			if stdout.String() != want {
				t.Errorf("stdout: got %q, want %q", stdout.String(), want)
			}
		})
	}
}

func TestRunCommand_Errors(t *testing.T) {
	in := writeInput(t, 4, 4)
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"no arguments", nil, exitUsage},
		{"missing kernel", []string{in, filepath.Join(dir, "a.png")}, exitUsage},
		{"one positional", []string{in, "--kernel", "box3"}, exitUsage},
		{"bad kernel", []string{in, filepath.Join(dir, "b.png"), "--kernel", "1 2; 3"}, exitUsage},
		{"bad padding", []string{in, filepath.Join(dir, "c.png"), "--kernel", "box3", "--padding", "wrap"}, exitUsage},
		{"unknown flag", []string{in, filepath.Join(dir, "e.png"), "--kernel", "box3", "--fast"}, exitUsage},
		{"missing input", []string{filepath.Join(dir, "none.png"), filepath.Join(dir, "f.png"), "--kernel", "box3"}, exitProcess},
		{"unsupported output", []string{in, filepath.Join(dir, "g.xyz"), "--kernel", "box3"}, exitProcess},
		{"bad window", []string{in, filepath.Join(dir, "h.png"), "--kernel", "box3", "--binarize", "--window", "0"}, exitProcess},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			if got := runCommand(tt.args, &stdout, &stderr, discardLogger()); got != tt.want {
				t.Errorf("exit code: got %d, want %d (stderr: %s)", got, tt.want, stderr.String())
			}
			if stdout.Len() != 0 {
				t.Errorf("unexpected stdout: %q", stdout.String())
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		level string
		want  slog.Level
	}{
		{"", slog.LevelInfo},
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			l := newLogger(io.Discard, tt.level)
			if !l.Enabled(context.Background(), tt.want) {
				t.Errorf("level %s should be enabled", tt.want)
			}
			if tt.want > slog.LevelDebug && l.Enabled(context.Background(), tt.want-4) {
				t.Errorf("level below %s should be disabled", tt.want)
			}
		})
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	printHelp(&buf)
	for _, s := range []string{"run <input> <output>", "-kernel", "-binarize-k", "sobel_x", logLevelEnv} {
		if !strings.Contains(buf.String(), s) {
			t.Errorf("help should mention %q", s)
		}
	}
}
