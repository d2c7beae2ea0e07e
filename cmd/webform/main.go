//go:build js && wasm

// webform runs the watermark form controller inside the browser.
// Build with GOOS=js GOARCH=wasm and serve it next to web/index.html.
package main

import (
	"context"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/controller"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/watermarkapi"
	"github.com/ds124wfegd/WB_L3/watermark/internal/view/dom"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	origin := js.Global().Get("location").Get("origin").String()
	client, err := watermarkapi.NewClient(origin,
		watermarkapi.WithLogger(logrus.WithField("component", "watermarkapi")),
	)
	if err != nil {
		logrus.Fatalf("error creating watermark client: %s", err.Error())
	}

	document := js.Global().Get("document")
	view := dom.NewView(document)
	ctrl := controller.New(client, view,
		controller.WithLogger(logrus.WithField("component", "form")),
	)

	ctx, cancel := context.WithCancel(context.Background())
	binding := dom.Bind(ctx, ctrl, document)

	// pagehide is the last event a page is guaranteed to see
	var unload js.Func
	unload = js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		ctrl.Close()
		cancel()
		binding.Release()
		unload.Release()
		return nil
	})
	js.Global().Call("addEventListener", "pagehide", unload)

	logrus.WithField("origin", origin).Info("Watermark form ready")
	select {}
}
