package controller

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ds124wfegd/WB_L3/watermark/internal/entity"
	"github.com/ds124wfegd/WB_L3/watermark/internal/pkg/dataurl"
)

// SelectImage loads f as the image to watermark. Non-image files are
// rejected with an alert and leave the form untouched. When watermark text
// is already present the image is submitted right away, skipping the
// debounce delay.
func (c *Controller) SelectImage(ctx context.Context, f File) error {
	if !dataurl.IsImage(f.MIMEType()) {
		c.view.Alert(entity.ErrNotImage.Error())
		return entity.ErrNotImage
	}

	url, err := c.readImage(f)
	if err != nil {
		c.view.Alert(err.Error())
		return err
	}

	c.mu.Lock()
	c.image = url
	c.imageName = f.Name()
	c.downloadable = false
	text := c.params.Text
	c.mu.Unlock()

	c.log.WithFields(logrus.Fields{
		"file": f.Name(),
		"mime": f.MIMEType(),
		"size": len(url),
	}).Debug("Image selected")

	c.view.ShowPreview(url, false)

	if strings.TrimSpace(text) != "" {
		c.Submit(ctx)
	}
	return nil
}

func (c *Controller) readImage(f File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", fmt.Errorf("open %s: %w", f.Name(), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, c.maxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", f.Name(), err)
	}
	if len(data) == 0 {
		return "", entity.ErrEmptyImageData
	}
	if int64(len(data)) > c.maxImageBytes {
		return "", fmt.Errorf("%w: limit is %d bytes", entity.ErrImageTooLarge, c.maxImageBytes)
	}
	return dataurl.Encode(f.MIMEType(), data), nil
}

func (c *Controller) SetText(text string) {
	c.mu.Lock()
	c.params.Text = text
	c.mu.Unlock()

	c.ScheduleSubmit()
}

// SetFontSize stores v clamped to the slider range and returns the stored value.
func (c *Controller) SetFontSize(v int) int {
	return c.setNumber(FieldFontSize, v)
}

func (c *Controller) SetOpacity(v int) int {
	return c.setNumber(FieldOpacity, v)
}

func (c *Controller) SetAngle(v int) int {
	return c.setNumber(FieldAngle, v)
}

func (c *Controller) setNumber(field Field, v int) int {
	c.mu.Lock()
	switch field {
	case FieldFontSize:
		v = entity.Clamp(v, entity.MinFontSize, entity.MaxFontSize)
		c.params.FontSize = v
	case FieldOpacity:
		v = entity.Clamp(v, entity.MinOpacity, entity.MaxOpacity)
		c.params.Opacity = v
	case FieldAngle:
		v = entity.Clamp(v, entity.MinAngle, entity.MaxAngle)
		c.params.Angle = v
	}
	c.mu.Unlock()

	c.view.ShowReadout(field, v)
	c.ScheduleSubmit()
	return v
}

// SetColor accepts a #rrggbb color. Anything else is rejected without
// scheduling a submit.
func (c *Controller) SetColor(color string) error {
	if !entity.IsHexColor(color) {
		return fmt.Errorf("%w: %q", entity.ErrInvalidColor, color)
	}

	c.mu.Lock()
	c.params.Color = strings.ToLower(color)
	c.mu.Unlock()

	c.ScheduleSubmit()
	return nil
}

// ScheduleSubmit replaces any pending submit with one that runs after the
// debounce delay.
func (c *Controller) ScheduleSubmit() {
	c.debouncer.Trigger(func() {
		if !c.Validate() {
			return
		}
		c.Submit(c.ctx)
	})
}

// Validate reports whether an image is selected and the text is not blank.
func (c *Controller) Validate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.validLocked()
}

func (c *Controller) validLocked() bool {
	return c.image != "" && strings.TrimSpace(c.params.Text) != ""
}

// Submit sends the current form to the watermarking server. It is dropped
// when the form is incomplete or a request is already in flight. Failures
// are alerted; the loading indicator and the in-flight flag are always
// cleared before Submit returns.
func (c *Controller) Submit(ctx context.Context) (Outcome, error) {
	c.mu.Lock()
	if !c.validLocked() {
		c.mu.Unlock()
		return Dropped, entity.ErrNotReady
	}
	if c.processing {
		c.mu.Unlock()
		c.log.Debug("Submit dropped, request in flight")
		return Dropped, entity.ErrProcessing
	}
	c.processing = true
	params := c.params
	params.Text = strings.TrimSpace(params.Text)
	req := entity.NewWatermarkRequest(c.image, params)
	source := c.imageName
	c.mu.Unlock()

	c.view.SetLoading(true)
	defer func() {
		c.view.SetLoading(false)
		c.mu.Lock()
		c.processing = false
		c.mu.Unlock()
	}()

	log := c.log.WithFields(logrus.Fields{
		"text":     params.Text,
		"fontSize": params.FontSize,
		"opacity":  params.Opacity,
		"color":    params.Color,
		"angle":    params.Angle,
	})

	resp, err := c.client.Apply(ctx, req)
	if err != nil {
		log.WithError(err).Warn("Watermark request failed")
		c.view.Alert("request failed: " + err.Error())
		return Failed, err
	}

	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = "unknown error"
		}
		log.WithField("error", msg).Warn("Watermark server rejected the request")
		c.view.Alert(entity.ErrWatermarkFailed.Error() + ": " + msg)
		return Failed, fmt.Errorf("%w: %s", entity.ErrWatermarkFailed, msg)
	}

	now := c.clock.Now()
	result := &entity.Result{
		ID:        uuid.New().String(),
		URL:       CacheBust(resp.ImageURL, now),
		Source:    source,
		Params:    params,
		CreatedAt: now,
	}

	c.mu.Lock()
	c.result = result
	c.downloadable = true
	c.mu.Unlock()

	log.WithField("image_url", result.URL).Info("Watermark applied")
	c.view.ShowPreview(result.URL, true)
	return Succeeded, nil
}

// Download saves the current result through saver and returns where it went.
func (c *Controller) Download(ctx context.Context, saver ResultSaver) (string, error) {
	c.mu.Lock()
	if c.result == nil || !c.downloadable {
		c.mu.Unlock()
		return "", entity.ErrNoResult
	}
	result := *c.result
	c.mu.Unlock()

	body, contentType, err := c.client.Fetch(ctx, result.URL)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", result.URL, err)
	}
	defer body.Close()

	location, err := saver.Save(result, contentType, body)
	if err != nil {
		return "", fmt.Errorf("save result: %w", err)
	}
	c.log.WithField("location", location).Info("Result downloaded")
	return location, nil
}

// CacheBust appends t=<unix millis> so a reused result path is never served
// from cache.
func CacheBust(url string, now time.Time) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + "t=" + strconv.FormatInt(now.UnixMilli(), 10)
}

// IsSilent reports whether err is a precondition drop that should not be
// shown to the user.
func IsSilent(err error) bool {
	return errors.Is(err, entity.ErrNotReady) || errors.Is(err, entity.ErrProcessing)
}
