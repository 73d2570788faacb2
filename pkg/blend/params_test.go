package blend

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseYes(t *testing.T) {
	assert.True(t, ParseYes("yes"))
	assert.True(t, ParseYes("YES"))
	assert.True(t, ParseYes(" Yes "))
	assert.False(t, ParseYes("y"))
	assert.False(t, ParseYes("no"))
	assert.False(t, ParseYes(""))
}

func TestParseKeyColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{"spaces", "255 0 128", color.RGBA{R: 255, G: 0, B: 128, A: 255}, false},
		{"commas", "1,2,3", color.RGBA{R: 1, G: 2, B: 3, A: 255}, false},
		{"hex", "#ff00aa", color.RGBA{R: 255, G: 0, B: 170, A: 255}, false},
		{"two tokens", "255 0", color.RGBA{}, true},
		{"four tokens", "1 2 3 4", color.RGBA{}, true},
		{"too big", "256 0 0", color.RGBA{}, true},
		{"negative", "0 -1 0", color.RGBA{}, true},
		{"not a number", "a b c", color.RGBA{}, true},
		{"empty", "", color.RGBA{}, true},
		{"bad hex", "#zzzzzz", color.RGBA{}, true},
		{"auto without watermark", "auto", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseKeyColor(tt.input, nil)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Equal(t, "The transparency color input is invalid.", err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRGB(t *testing.T) {
	got, err := ParseRGB("255 0 128")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 255, G: 0, B: 128, A: 255}, got)

	for _, input := range []string{"#ff00ff", "auto", "1,2,3", "1  2 3", " 1 2 3", "1 2", "1 2 3 4", "1 2 256", "1\t2 3", ""} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRGB(input)
			require.ErrorIs(t, err, ErrInvalidParameter)
			assert.Equal(t, "The transparency color input is invalid.", err.Error())
		})
	}
}

func TestParseKeyColor_Auto(t *testing.T) {
	wm := solid(16, 16, color.RGBA{R: 250, G: 0, B: 250, A: 255})

	got, err := ParseKeyColor("auto", wm)
	require.NoError(t, err)
	assert.Equal(t, uint8(255), got.A)
	assert.Greater(t, got.R, uint8(200))
	assert.Less(t, got.G, uint8(50))
	assert.Greater(t, got.B, uint8(200))
}

func TestParseWeight(t *testing.T) {
	tests := []struct {
		input   string
		want    int
		wantErr string
	}{
		{"0", 0, ""},
		{"100", 100, ""},
		{" 42 ", 42, ""},
		{"101", 0, "The transparency percentage is out of range."},
		{"-1", 0, "The transparency percentage is out of range."},
		{"fifty", 0, "The transparency percentage isn't an integer number."},
		{"", 0, "The transparency percentage isn't an integer number."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseWeight(tt.input)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMethod(t *testing.T) {
	mode, err := ParseMethod("single")
	require.NoError(t, err)
	assert.Equal(t, PlacementFixed, mode)

	mode, err = ParseMethod("grid")
	require.NoError(t, err)
	assert.Equal(t, PlacementTiled, mode)

	_, err = ParseMethod("tile")
	require.ErrorIs(t, err, ErrInvalidParameter)
	assert.Equal(t, "The position method input is invalid.", err.Error())
}

func TestParsePosition(t *testing.T) {
	base := NewGrid(10, 8)
	wm := NewGrid(4, 4)

	tests := []struct {
		input   string
		want    Placement
		wantErr string
	}{
		{"0 0", Fixed(0, 0), ""},
		{"6 4", Fixed(6, 4), ""},
		{"3,2", Fixed(3, 2), ""},
		{"7 0", Placement{}, "The position input is out of range."},
		{"0 5", Placement{}, "The position input is out of range."},
		{"-1 0", Placement{}, "The position input is out of range."},
		{"1", Placement{}, "The position input is invalid."},
		{"1 2 3", Placement{}, "The position input is invalid."},
		{"x 2", Placement{}, "The position input is invalid."},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePosition(tt.input, base, wm)
			if tt.wantErr != "" {
				require.ErrorIs(t, err, ErrInvalidParameter)
				assert.Equal(t, tt.wantErr, err.Error())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
