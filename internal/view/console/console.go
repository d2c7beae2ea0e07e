// Package console is a non-interactive view that prints form updates to a terminal.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
)

var (
	colorRed    = color.New(color.FgRed, color.Bold)
	colorGreen  = color.New(color.FgGreen, color.Bold)
	colorYellow = color.New(color.FgYellow)
	colorCyan   = color.New(color.FgCyan)
)

type View struct {
	mu      sync.Mutex
	out     io.Writer
	alerts  []string
	preview string
	result  string
}

func New(out io.Writer) *View {
	return &View{out: out}
}

func (v *View) ShowPreview(src string, downloadable bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.preview = src
	if downloadable {
		v.result = src
		colorGreen.Fprintf(v.out, "watermarked: %s\n", src)
		return
	}
	v.result = ""
	colorCyan.Fprintf(v.out, "preview: %s\n", abbreviate(src))
}

func (v *View) ShowReadout(field controller.Field, value int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	fmt.Fprintf(v.out, "%s = %d\n", field, value)
}

func (v *View) SetLoading(loading bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if loading {
		colorYellow.Fprintln(v.out, "applying watermark...")
	}
}

func (v *View) Alert(message string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, message)
	colorRed.Fprintf(v.out, "error: %s\n", message)
}

// Alerts returns every message reported so far.
func (v *View) Alerts() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]string(nil), v.alerts...)
}

// ResultURL is the download target, empty until a watermark succeeded.
func (v *View) ResultURL() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.result
}

// data URLs are megabytes long; show only the header
func abbreviate(src string) string {
	if strings.HasPrefix(src, "data:") && len(src) > 48 {
		return src[:48] + "..."
	}
	return src
}
