package image

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/ch55x-tools/ch559flash/protocol"
)

// Image is a sized, random-access byte source. Chunks are read by offset,
// so the same Image can be written, verified and written again.
type Image struct {
	name string
	size int
	r    io.ReaderAt
	c    io.Closer
}

// Open opens the raw image at path. The path must name a regular file.
//
// Example:
//
//	img, err := image.Open("blink.bin")
func Open(path string) (*Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, &protocol.Error{Kind: protocol.NotARegularFile, Detail: path}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	return &Image{name: path, size: int(info.Size()), r: f, c: f}, nil
}

// New wraps r as an image of size bytes. If r holds fewer than size bytes
// the missing chunk surfaces as an unexpected end of file during programming.
func New(name string, r io.ReaderAt, size int) *Image {
	img := &Image{name: name, size: size, r: r}
	if c, ok := r.(io.Closer); ok {
		img.c = c
	}
	return img
}

// FromBytes returns an in-memory image of data.
func FromBytes(data []byte) *Image {
	return New("memory", bytes.NewReader(data), len(data))
}

// Name returns the path or label of the image.
func (img *Image) Name() string {
	return img.name
}

// Size returns the image length in bytes.
func (img *Image) Size() int {
	return img.size
}

// ReadChunk fills p with the image bytes starting at offset. A short image
// is reported as an UnexpectedEndOfFile error carrying offset.
func (img *Image) ReadChunk(p []byte, offset int) error {
	n, err := img.r.ReadAt(p, int64(offset))
	if n == len(p) {
		return nil
	}
	if err == nil || err == io.EOF {
		return &protocol.Error{
			Kind:      protocol.UnexpectedEndOfFile,
			Offset:    offset,
			HasOffset: true,
			Detail:    fmt.Sprintf("read %d of %d bytes", n, len(p)),
		}
	}
	return fmt.Errorf("read %s: %w", img.name, err)
}

// Close releases the underlying file, if any.
func (img *Image) Close() error {
	if img.c == nil {
		return nil
	}
	return img.c.Close()
}
