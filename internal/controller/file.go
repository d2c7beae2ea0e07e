package controller

import (
	"bytes"
	"io"
	"os"
	"path/filepath"

	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/dataurl"
)

// File is what a file picker hands to SelectImage.
type File interface {
	Name() string
	MIMEType() string
	Open() (io.ReadCloser, error)
}

type memFile struct {
	name string
	mime string
	data []byte
}

// BytesFile wraps in-memory content, e.g. a browser File already read
// into an ArrayBuffer. An empty mime is sniffed from the content.
func BytesFile(name, mime string, data []byte) File {
	if mime == "" {
		mime = dataurl.DetectMIME(data)
	}
	return &memFile{name: name, mime: mime, data: data}
}

func (f *memFile) Name() string     { return f.name }
func (f *memFile) MIMEType() string { return f.mime }

func (f *memFile) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(f.data)), nil
}

type diskFile struct {
	path string
	mime string
}

// OpenFile returns a File for path with its MIME type sniffed from the
// first bytes, since the filesystem carries no content type.
func OpenFile(path string) (File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	head := make([]byte, 3072)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, err
	}

	return &diskFile{path: path, mime: dataurl.DetectMIME(head[:n])}, nil
}

func (f *diskFile) Name() string     { return filepath.Base(f.path) }
func (f *diskFile) MIMEType() string { return f.mime }

func (f *diskFile) Open() (io.ReadCloser, error) {
	return os.Open(f.path)
}
