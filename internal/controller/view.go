package controller

import (
	"io"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
)

// Field identifies a slider with a numeric readout.
type Field string

const (
	FieldFontSize Field = "fontSize"
	FieldOpacity  Field = "opacity"
	FieldAngle    Field = "angle"
)

// View is the UI the controller drives. Implementations must be safe to
// call from any goroutine: debounced submits run on timer goroutines.
type View interface {
	// ShowPreview replaces the preview image. downloadable is true only for
	// a watermarked result, and the download control then targets src.
	ShowPreview(src string, downloadable bool)
	ShowReadout(field Field, value int)
	SetLoading(loading bool)
	// Alert reports an error to the user and is expected to be noticed
	// before the next interaction.
	Alert(message string)
}

// ResultSaver persists a downloaded result.
type ResultSaver interface {
	Save(result entity.Result, contentType string, body io.Reader) (string, error)
}
