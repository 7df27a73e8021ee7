package ocr

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeCommand struct {
	calls [][]string
	run   func(name string, args []string) ([]byte, []byte, error)
}

func (f *fakeCommand) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, append([]string{name}, args...))
	if f.run == nil {
		return nil, nil, nil
	}
	return f.run(name, args)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.Set(1, 1, color.White)
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

// pdftoppmWriting fakes pdftoppm by writing one PNG per page number.
func pdftoppmWriting(t *testing.T, pageNumbers ...string) func(string, []string) ([]byte, []byte, error) {
	return func(_ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		for _, n := range pageNumbers {
			writePNG(t, prefix+"-"+n+".png")
		}
		return nil, nil, nil
	}
}

func newTestRenderer(t *testing.T, cmd CommandRunner) *PopplerRenderer {
	r := NewPopplerRenderer(cmd, discardLogger())
	r.TempDir = t.TempDir()
	r.diskFree = func(string) (uint64, error) { return 1 << 40, nil }
	return r
}

func TestPopplerRenderer_OrdersPagesNumerically(t *testing.T) {
	cmd := &fakeCommand{}
	cmd.run = pdftoppmWriting(t, "1", "10", "2")
	r := newTestRenderer(t, cmd)

	pages, cleanup, err := r.Render(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer cleanup()

	if len(pages) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(pages))
	}
	want := []string{"page-1.png", "page-2.png", "page-10.png"}
	for i, p := range pages {
		if filepath.Base(p.Path) != want[i] {
			t.Fatalf("page %d: expected %s, got %s", i, want[i], filepath.Base(p.Path))
		}
		if p.PageIndex != i {
			t.Fatalf("page %d: unexpected index %d", i, p.PageIndex)
		}
	}

	args := strings.Join(cmd.calls[0], " ")
	if !strings.HasPrefix(args, "pdftoppm -r 300 -png ") {
		t.Fatalf("unexpected pdftoppm invocation: %s", args)
	}
}

func TestPopplerRenderer_CleanupRemovesDirectory(t *testing.T) {
	cmd := &fakeCommand{}
	cmd.run = pdftoppmWriting(t, "1")
	r := newTestRenderer(t, cmd)

	pages, cleanup, err := r.Render(context.Background(), []byte("%PDF-1.4"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	dir := filepath.Dir(pages[0].Path)
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Fatalf("expected render dir removed, stat err = %v", err)
	}
}

func TestPopplerRenderer_SeparateDirectoriesPerPass(t *testing.T) {
	cmd := &fakeCommand{}
	cmd.run = pdftoppmWriting(t, "1")
	r := newTestRenderer(t, cmd)

	a, cleanA, err := r.Render(context.Background(), []byte("a"))
	if err != nil {
		t.Fatal(err)
	}
	defer cleanA()
	b, cleanB, err := r.Render(context.Background(), []byte("b"))
	if err != nil {
		t.Fatal(err)
	}
	defer cleanB()

	if filepath.Dir(a[0].Path) == filepath.Dir(b[0].Path) {
		t.Fatal("expected each pass to use its own directory")
	}
}

func TestPopplerRenderer_NoPages(t *testing.T) {
	r := newTestRenderer(t, &fakeCommand{})

	_, cleanup, err := r.Render(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages, got %v", err)
	}
	if cleanup == nil {
		t.Fatal("expected cleanup even on failure")
	}
	_ = cleanup()
}

func TestPopplerRenderer_CommandFailure(t *testing.T) {
	cmd := &fakeCommand{run: func(string, []string) ([]byte, []byte, error) {
		return nil, []byte("Syntax Error: Couldn't find trailer dictionary"), errors.New("exit status 1")
	}}
	r := newTestRenderer(t, cmd)

	_, cleanup, err := r.Render(context.Background(), []byte("junk"))
	if err == nil || !strings.Contains(err.Error(), "trailer dictionary") {
		t.Fatalf("expected pdftoppm stderr in error, got %v", err)
	}
	_ = cleanup()
}

func TestPopplerRenderer_MaxPagesAndTIFF(t *testing.T) {
	cmd := &fakeCommand{}
	r := newTestRenderer(t, cmd)
	r.MaxPages = 2
	r.Format = "tiff"
	r.DPI = 150

	_, cleanup, err := r.Render(context.Background(), []byte("%PDF-1.4"))
	if !errors.Is(err, ErrNoPages) {
		t.Fatalf("expected ErrNoPages from empty fake, got %v", err)
	}
	_ = cleanup()

	args := strings.Join(cmd.calls[0], " ")
	if !strings.Contains(args, "-r 150 -tiff -l 2 ") {
		t.Fatalf("unexpected pdftoppm invocation: %s", args)
	}
}

func TestPopplerRenderer_RejectsUndecodablePage(t *testing.T) {
	cmd := &fakeCommand{run: func(_ string, args []string) ([]byte, []byte, error) {
		prefix := args[len(args)-1]
		return nil, nil, os.WriteFile(prefix+"-1.png", []byte("not an image"), 0o600)
	}}
	r := newTestRenderer(t, cmd)

	_, cleanup, err := r.Render(context.Background(), []byte("%PDF-1.4"))
	if err == nil || !strings.Contains(err.Error(), "page 1") {
		t.Fatalf("expected decode error for page 1, got %v", err)
	}
	_ = cleanup()
}

func TestPageNumber(t *testing.T) {
	tests := []struct {
		path string
		want int
	}{
		{"/tmp/x/page-1.png", 1},
		{"/tmp/x/page-007.png", 7},
		{"/tmp/x/page-12.tif", 12},
		{"/tmp/x/other.png", 0},
	}
	for _, tt := range tests {
		if got := pageNumber(tt.path); got != tt.want {
			t.Errorf("pageNumber(%q) = %d, want %d", tt.path, got, tt.want)
		}
	}
}
