package database

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/dataurl"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/storage"
)

type resultMetadata struct {
	entity.Result
	File        string `json:"file"`
	ContentType string `json:"content_type"`
}

func NewResultRepository(storage storage.FileStorage) ResultRepository {
	return &fileResultRepository{storage: storage}
}

func (r *fileResultRepository) Save(result entity.Result, contentType string, body io.Reader) (string, error) {
	if result.ID == "" {
		return "", fmt.Errorf("%w: result without id", entity.ErrInvalidInput)
	}

	mediaType := contentType
	if parsed, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = parsed
	}
	file := filepath.Join("results", result.ID+dataurl.Extension(mediaType))

	location, err := r.storage.Save(file, body)
	if err != nil {
		return "", err
	}

	data, err := json.MarshalIndent(resultMetadata{
		Result:      result,
		File:        file,
		ContentType: mediaType,
	}, "", "  ")
	if err != nil {
		return "", err
	}
	if _, err := r.storage.Save(r.getMetadataPath(result.ID), bytes.NewReader(data)); err != nil {
		return "", err
	}

	return location, nil
}

func (r *fileResultRepository) FindByID(id string) (*entity.Result, error) {
	meta, err := r.readMetadata(id)
	if err != nil || meta == nil {
		return nil, err
	}
	return &meta.Result, nil
}

func (r *fileResultRepository) Delete(id string) error {
	meta, err := r.readMetadata(id)
	if err != nil {
		return err
	}
	if meta != nil {
		if err := r.storage.Delete(meta.File); err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	if err := r.storage.Delete(r.getMetadataPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (r *fileResultRepository) readMetadata(id string) (*resultMetadata, error) {
	path := r.getMetadataPath(id)
	if !r.storage.Exists(path) {
		return nil, nil
	}

	reader, err := r.storage.Get(path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var meta resultMetadata
	if err := json.NewDecoder(reader).Decode(&meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

func (r *fileResultRepository) getMetadataPath(id string) string {
	return filepath.Join("metadata", id+".json")
}
