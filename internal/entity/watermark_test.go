package entity

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClamp(t *testing.T) {
	tests := []struct {
		name     string
		v, lo, hi int
		expected int
	}{
		{"below", -5, MinOpacity, MaxOpacity, MinOpacity},
		{"inside", 42, MinOpacity, MaxOpacity, 42},
		{"above", 400, MinAngle, MaxAngle, MaxAngle},
		{"lower bound", MinFontSize, MinFontSize, MaxFontSize, MinFontSize},
		{"upper bound", MaxFontSize, MinFontSize, MaxFontSize, MaxFontSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Clamp(tt.v, tt.lo, tt.hi))
		})
	}
}

func TestIsHexColor(t *testing.T) {
	assert.True(t, IsHexColor("#000000"))
	assert.True(t, IsHexColor("#FFaa00"))
	assert.False(t, IsHexColor("000000"))
	assert.False(t, IsHexColor("#fff"))
	assert.False(t, IsHexColor("#gggggg"))
	assert.False(t, IsHexColor(""))
}

func TestRequestRoundTripsParams(t *testing.T) {
	p := Params{Text: "hi", FontSize: 20, Opacity: 30, Color: "#ff0000", Angle: 90}
	req := NewWatermarkRequest("data:image/png;base64,AA", p)

	assert.Equal(t, "data:image/png;base64,AA", req.Image)
	assert.Equal(t, p, req.Params())
}

func TestDefaultParams(t *testing.T) {
	p := DefaultParams()
	assert.Empty(t, p.Text)
	assert.Equal(t, 10, p.FontSize)
	assert.Equal(t, 50, p.Opacity)
	assert.Equal(t, "#000000", p.Color)
	assert.Equal(t, 45, p.Angle)
}

func TestWatermarkRequestAcceptsStringNumbers(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"numbers", `{"image":"data:image/png;base64,AA","text":"Hi","fontSize":12,"opacity":30,"color":"#ff0000","angle":90}`},
		{"strings", `{"image":"data:image/png;base64,AA","text":"Hi","fontSize":"12","opacity":"30","color":"#ff0000","angle":"90"}`},
		{"padded strings", `{"image":"data:image/png;base64,AA","text":"Hi","fontSize":" 12 ","opacity":"30","color":"#ff0000","angle":"90"}`},
		{"mixed", `{"image":"data:image/png;base64,AA","text":"Hi","fontSize":"12","opacity":30,"color":"#ff0000","angle":"90"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req WatermarkRequest
			require.NoError(t, json.Unmarshal([]byte(tt.body), &req))
			assert.Equal(t, WatermarkRequest{
				Image:    "data:image/png;base64,AA",
				Text:     "Hi",
				FontSize: 12,
				Opacity:  30,
				Color:    "#ff0000",
				Angle:    90,
			}, req)
		})
	}
}

func TestWatermarkRequestRejectsNonNumericStrings(t *testing.T) {
	var req WatermarkRequest
	err := json.Unmarshal([]byte(`{"image":"x","text":"Hi","fontSize":"big"}`), &req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestWatermarkRequestMissingNumbersStayZero(t *testing.T) {
	var req WatermarkRequest
	require.NoError(t, json.Unmarshal([]byte(`{"image":"x","text":"Hi","opacity":null}`), &req))
	assert.Equal(t, 0, req.FontSize)
	assert.Equal(t, 0, req.Opacity)

	// encoding stays numeric
	data, err := json.Marshal(WatermarkRequest{Image: "x", Text: "Hi", FontSize: 5})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"fontSize":5`)
}
