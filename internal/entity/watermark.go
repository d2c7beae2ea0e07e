package entity

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Slider bounds of the form controls.
const (
	MinFontSize = 1
	MaxFontSize = 50
	MinOpacity  = 0
	MaxOpacity  = 100
	MinAngle    = 0
	MaxAngle    = 360

	DefaultFontSize = 10
	DefaultOpacity  = 50
	DefaultAngle    = 45
	DefaultColor    = "#000000"
)

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Params is the watermark configuration edited through the form.
type Params struct {
	Text     string `json:"text"`
	FontSize int    `json:"fontSize"`
	Opacity  int    `json:"opacity"`
	Color    string `json:"color"`
	Angle    int    `json:"angle"`
}

func DefaultParams() Params {
	return Params{
		FontSize: DefaultFontSize,
		Opacity:  DefaultOpacity,
		Color:    DefaultColor,
		Angle:    DefaultAngle,
	}
}

// IsHexColor reports whether s has the #rrggbb form a color picker produces.
func IsHexColor(s string) bool {
	return hexColor.MatchString(s)
}

// Clamp limits v to [lo, hi] the way a range input does.
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// WatermarkRequest is the body of POST /api/watermark.
type WatermarkRequest struct {
	Image    string `json:"image" binding:"required"`
	Text     string `json:"text" binding:"required"`
	FontSize int    `json:"fontSize"`
	Opacity  int    `json:"opacity"`
	Color    string `json:"color"`
	Angle    int    `json:"angle"`
}

// UnmarshalJSON takes fontSize, opacity and angle either as numbers or as
// numeric strings, which is how range inputs report their value.
func (r *WatermarkRequest) UnmarshalJSON(data []byte) error {
	type plain WatermarkRequest
	var aux struct {
		plain
		FontSize formNumber `json:"fontSize"`
		Opacity  formNumber `json:"opacity"`
		Angle    formNumber `json:"angle"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	*r = WatermarkRequest(aux.plain)
	r.FontSize = int(aux.FontSize)
	r.Opacity = int(aux.Opacity)
	r.Angle = int(aux.Angle)
	return nil
}

// formNumber is an int that also decodes from a JSON string like "45".
type formNumber int

func (n *formNumber) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("%w: %q is not a number", ErrInvalidInput, raw)
	}
	*n = formNumber(v)
	return nil
}

func NewWatermarkRequest(image string, p Params) WatermarkRequest {
	return WatermarkRequest{
		Image:    image,
		Text:     p.Text,
		FontSize: p.FontSize,
		Opacity:  p.Opacity,
		Color:    p.Color,
		Angle:    p.Angle,
	}
}

func (r WatermarkRequest) Params() Params {
	return Params{
		Text:     r.Text,
		FontSize: r.FontSize,
		Opacity:  r.Opacity,
		Color:    r.Color,
		Angle:    r.Angle,
	}
}

type WatermarkResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"image_url,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Result is a successfully watermarked image as seen by the client.
type Result struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	Source    string    `json:"source,omitempty"`
	Params    Params    `json:"params"`
	CreatedAt time.Time `json:"created_at"`
}

// WatermarkEvent is the audit record published for every forwarded request.
type WatermarkEvent struct {
	ID         string        `json:"id"`
	RequestID  string        `json:"request_id,omitempty"`
	Params     Params        `json:"params"`
	ImageBytes int           `json:"image_bytes"`
	Success    bool          `json:"success"`
	Error      string        `json:"error,omitempty"`
	ImageURL   string        `json:"image_url,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}
