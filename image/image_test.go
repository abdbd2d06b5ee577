package image

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ch55x-tools/ch559flash/protocol"
)

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "blink.bin")
	data := []byte{0x02, 0x00, 0x06, 0x80, 0xFE}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Close()

	if img.Size() != len(data) {
		t.Errorf("Size() = %d, want %d", img.Size(), len(data))
	}
	if img.Name() != path {
		t.Errorf("Name() = %q, want %q", img.Name(), path)
	}

	got := make([]byte, len(data))
	if err := img.ReadChunk(got, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("ReadChunk = % 02X, want % 02X", got, data)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name     string
		path     string
		wantKind protocol.Kind
	}{
		{
			name:     "directory",
			path:     dir,
			wantKind: protocol.NotARegularFile,
		},
		{
			name:     "missing",
			path:     filepath.Join(dir, "missing.bin"),
			wantKind: protocol.KindUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(tt.path)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if protocol.KindOf(err) != tt.wantKind {
				t.Errorf("kind = %v, want %v", protocol.KindOf(err), tt.wantKind)
			}
		})
	}
}

func TestReadChunkShortImage(t *testing.T) {
	img := New("short", bytes.NewReader([]byte{1, 2, 3}), 8)

	p := make([]byte, 8)
	err := img.ReadChunk(p, 0x38)
	if !errors.Is(err, protocol.UnexpectedEndOfFile) {
		t.Fatalf("error = %v, want UnexpectedEndOfFile", err)
	}

	var e *protocol.Error
	if !errors.As(err, &e) || !e.HasOffset || e.Offset != 0x38 {
		t.Errorf("offset not carried: %#v", err)
	}
}

func TestFromBytes(t *testing.T) {
	img := FromBytes(make([]byte, 0x400))
	if img.Size() != 0x400 {
		t.Errorf("Size() = %d, want 0x400", img.Size())
	}
	if err := img.Close(); err != nil {
		t.Errorf("Close() = %v", err)
	}
}

func TestReadChunkRandomAccess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "fw.bin")
	data := []byte("0123456789abcdef")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	img, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer img.Close()

	for pass := 0; pass < 2; pass++ {
		for _, off := range []int{0, 8} {
			p := make([]byte, 8)
			if err := img.ReadChunk(p, off); err != nil {
				t.Fatalf("pass %d offset %d: %v", pass, off, err)
			}
			if !bytes.Equal(p, data[off:off+8]) {
				t.Errorf("pass %d offset %d: got %q, want %q", pass, off, p, data[off:off+8])
			}
		}
	}

	p := make([]byte, 4)
	if err := img.ReadChunk(p, 4); err != nil || string(p) != "4567" {
		t.Errorf("ReadChunk(4) = %q, %v", p, err)
	}
}

func TestReadChunkPartialTail(t *testing.T) {
	img := New("tail", bytes.NewReader([]byte{1, 2, 3, 4, 5}), 8)

	p := make([]byte, 4)
	if err := img.ReadChunk(p, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := img.ReadChunk(p, 4)
	if !errors.Is(err, protocol.UnexpectedEndOfFile) {
		t.Fatalf("error = %v, want UnexpectedEndOfFile", err)
	}
}
