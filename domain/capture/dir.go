package capture

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
)

var frameExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true, ".tif": true, ".tiff": true,
}

// DirGrabber replays the image files of a directory in lexical order.
// When Loop is false Grab returns io.EOF after the last file.
type DirGrabber struct {
	Loop bool

	mu    sync.Mutex
	files []string
	next  int
}

// NewDirGrabber lists the image files in dir.
func NewDirGrabber(dir string, loop bool) (*DirGrabber, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read frames dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !frameExts[strings.ToLower(filepath.Ext(e.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("%s: %w", dir, ErrNoFrames)
	}
	sort.Strings(files)
	return &DirGrabber{Loop: loop, files: files}, nil
}

// Len returns the number of frames in one pass.
func (g *DirGrabber) Len() int { return len(g.files) }

// Current returns the path of the frame most recently returned by Grab.
func (g *DirGrabber) Current() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.next == 0 {
		return ""
	}
	return g.files[g.next-1]
}

func (g *DirGrabber) Grab() (*image.RGBA, error) {
	g.mu.Lock()
	if g.next >= len(g.files) {
		if !g.Loop {
			g.mu.Unlock()
			return nil, io.EOF
		}
		g.next = 0
	}
	path := g.files[g.next]
	g.next++
	g.mu.Unlock()

	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode frame %s: %w", path, err)
	}
	return toRGBA(img), nil
}

func (g *DirGrabber) Close() error { return nil }

var _ Grabber = (*DirGrabber)(nil)
