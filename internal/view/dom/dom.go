//go:build js && wasm

// Package dom binds the watermark form controller to the browser page.
package dom

import (
	"context"
	"errors"
	"strconv"
	"syscall/js"

	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
)

// Element ids of web/index.html.
const (
	idImageInput     = "imageInput"
	idWatermarkText  = "watermarkText"
	idFontSizeRange  = "fontSizeRange"
	idFontSizeValue  = "fontSizeValue"
	idOpacityRange   = "opacityRange"
	idOpacityValue   = "opacityValue"
	idColorPicker    = "colorPicker"
	idAngleRange     = "angleRange"
	idAngleValue     = "angleValue"
	idImagePreview   = "imagePreview"
	idDownloadArea   = "downloadArea"
	idDownloadButton = "downloadBtn"
	idLoadingOverlay = "loadingOverlay"
)

// View renders controller updates into the page.
type View struct {
	window         js.Value
	document       js.Value
	preview        js.Value
	downloadArea   js.Value
	downloadButton js.Value
	loadingOverlay js.Value
	readouts       map[controller.Field]js.Value
}

func NewView(document js.Value) *View {
	byID := func(id string) js.Value {
		return document.Call("getElementById", id)
	}
	return &View{
		window:         js.Global(),
		document:       document,
		preview:        byID(idImagePreview),
		downloadArea:   byID(idDownloadArea),
		downloadButton: byID(idDownloadButton),
		loadingOverlay: byID(idLoadingOverlay),
		readouts: map[controller.Field]js.Value{
			controller.FieldFontSize: byID(idFontSizeValue),
			controller.FieldOpacity:  byID(idOpacityValue),
			controller.FieldAngle:    byID(idAngleValue),
		},
	}
}

func (v *View) ShowPreview(src string, downloadable bool) {
	v.preview.Set("innerHTML", "")
	img := v.document.Call("createElement", "img")
	img.Set("src", src)
	v.preview.Call("appendChild", img)

	if downloadable {
		v.downloadArea.Get("style").Set("display", "block")
		v.downloadButton.Set("href", src)
	} else {
		v.downloadArea.Get("style").Set("display", "none")
	}
}

func (v *View) ShowReadout(field controller.Field, value int) {
	if el, ok := v.readouts[field]; ok {
		el.Set("textContent", strconv.Itoa(value))
	}
}

func (v *View) SetLoading(loading bool) {
	display := "none"
	if loading {
		display = "flex"
	}
	v.loadingOverlay.Get("style").Set("display", display)
}

func (v *View) Alert(message string) {
	v.window.Call("alert", message)
}

// Binding owns the event listeners registered on the page.
type Binding struct {
	ctrl     *controller.Controller
	document js.Value
	funcs    []js.Func
	remove   []func()
}

// Bind registers input listeners that drive ctrl. Release undoes it.
func Bind(ctx context.Context, ctrl *controller.Controller, document js.Value) *Binding {
	b := &Binding{ctrl: ctrl, document: document}

	b.listen(idImageInput, "change", func(el js.Value) {
		files := el.Get("files")
		if files.Get("length").Int() == 0 {
			return
		}
		file := browserFile{value: files.Index(0), maxBytes: ctrl.MaxImageBytes()}
		// js.Func callbacks must not block, file reading and the request run on their own goroutine
		go ctrl.SelectImage(ctx, file)
	})
	b.listen(idWatermarkText, "input", func(el js.Value) {
		ctrl.SetText(el.Get("value").String())
	})
	b.listen(idFontSizeRange, "input", func(el js.Value) {
		ctrl.SetFontSize(intValue(el))
	})
	b.listen(idOpacityRange, "input", func(el js.Value) {
		ctrl.SetOpacity(intValue(el))
	})
	b.listen(idAngleRange, "input", func(el js.Value) {
		ctrl.SetAngle(intValue(el))
	})
	b.listen(idColorPicker, "input", func(el js.Value) {
		ctrl.SetColor(el.Get("value").String())
	})
	return b
}

func (b *Binding) listen(id, event string, handle func(el js.Value)) {
	el := b.document.Call("getElementById", id)
	if el.IsNull() || el.IsUndefined() {
		println("watermark form: missing element #" + id)
		return
	}

	fn := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		handle(el)
		return nil
	})
	el.Call("addEventListener", event, fn)
	b.funcs = append(b.funcs, fn)
	b.remove = append(b.remove, func() {
		el.Call("removeEventListener", event, fn)
	})
}

// Release removes the listeners and frees their callbacks.
func (b *Binding) Release() {
	for _, remove := range b.remove {
		remove()
	}
	for _, fn := range b.funcs {
		fn.Release()
	}
	b.funcs = nil
	b.remove = nil
}

func intValue(el js.Value) int {
	v, err := strconv.Atoi(el.Get("value").String())
	if err != nil {
		return 0
	}
	return v
}

// readFile waits for File.arrayBuffer() and copies the bytes into Go memory.
func readFile(file js.Value) ([]byte, error) {
	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)

	onOK := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		buf := js.Global().Get("Uint8Array").New(args[0])
		data := make([]byte, buf.Get("length").Int())
		js.CopyBytesToGo(data, buf)
		done <- result{data: data}
		return nil
	})
	defer onOK.Release()

	onErr := js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		msg := "failed to read file"
		if len(args) > 0 && args[0].Truthy() {
			msg = args[0].Call("toString").String()
		}
		done <- result{err: errors.New(msg)}
		return nil
	})
	defer onErr.Release()

	file.Call("arrayBuffer").Call("then", onOK, onErr)
	r := <-done
	return r.data, r.err
}
