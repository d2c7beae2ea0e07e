//go:build js && wasm

package dom

import (
	"bytes"
	"fmt"
	"io"
	"syscall/js"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// browserFile is a picked File read only when the controller opens it,
// after the MIME check has passed.
type browserFile struct {
	value    js.Value
	maxBytes int64
}

func (f browserFile) Name() string     { return f.value.Get("name").String() }
func (f browserFile) MIMEType() string { return f.value.Get("type").String() }

func (f browserFile) Open() (io.ReadCloser, error) {
	if size := int64(f.value.Get("size").Float()); f.maxBytes > 0 && size > f.maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", entity.ErrImageTooLarge, f.maxBytes)
	}

	data, err := readFile(f.value)
	if err != nil {
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}
