package database

import (
	"io"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/storage"
)

// ResultRepository keeps downloaded results: the image under results/ and
// a JSON sidecar with the parameters under metadata/.
type ResultRepository interface {
	Save(result entity.Result, contentType string, body io.Reader) (string, error)
	FindByID(id string) (*entity.Result, error)
	Delete(id string) error
}

type fileResultRepository struct {
	storage storage.FileStorage
}
