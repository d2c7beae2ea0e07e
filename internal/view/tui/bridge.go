// Package tui is a bubbletea rendition of the watermark form.
package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
)

type previewMsg struct {
	src          string
	downloadable bool
}

type readoutMsg struct {
	field controller.Field
	value int
}

type loadingMsg bool

type alertMsg string

type savedMsg string

// Bridge implements controller.View by forwarding every call to the
// running program as a message. Calls made before Attach are dropped.
type Bridge struct {
	mu      sync.Mutex
	program *tea.Program
}

func (b *Bridge) Attach(p *tea.Program) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.program = p
}

func (b *Bridge) send(msg tea.Msg) {
	b.mu.Lock()
	p := b.program
	b.mu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

func (b *Bridge) ShowPreview(src string, downloadable bool) {
	b.send(previewMsg{src: src, downloadable: downloadable})
}

func (b *Bridge) ShowReadout(field controller.Field, value int) {
	b.send(readoutMsg{field: field, value: value})
}

func (b *Bridge) SetLoading(loading bool) {
	b.send(loadingMsg(loading))
}

func (b *Bridge) Alert(message string) {
	b.send(alertMsg(message))
}
