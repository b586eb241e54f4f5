package advisor

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/intillasense/internal/farm"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func illinoisContext(t *testing.T) farm.Context {
	t.Helper()
	c, err := farm.DefaultCatalog()
	require.NoError(t, err)
	p, ok := c.Profile(farm.Illinois)
	require.True(t, ok)
	return farm.Context{
		FarmID:      p.ID,
		Name:        p.Name,
		Location:    p.Location,
		Acreage:     p.Acreage,
		Coordinates: p.Coordinates,
		Equipment:   p.Equipment,
		CropHistory: p.CropHistory,
		SoilWeather: "Drummer silty clay loam, poorly drained.",
	}
}

func TestBuildSystemInstructionWithFarm(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.October, 3, 9, 0, 0, 0, time.UTC)
	got := BuildSystemInstruction(illinoisContext(t), now)

	for _, want := range []string{
		"Friday, October 3, 2025",
		"Illinois Farm",
		`"acreage": 14.6`,
		`"totalCost": 803`,
		"John Deere 2730 Combination Ripper",
		"Drummer silty clay loam, poorly drained.",
		"repeat it verbatim",
	} {
		assert.Contains(t, got, want)
	}
	assert.NotContains(t, got, "No farm data is available")
}

func TestBuildSystemInstructionWithoutFarm(t *testing.T) {
	t.Parallel()

	got := BuildSystemInstruction(farm.Context{}, time.Date(2025, time.March, 1, 0, 0, 0, 0, time.UTC))
	assert.Contains(t, got, "No farm data is available")
	assert.NotContains(t, got, "## SOIL AND WEATHER NOTES")
	assert.Contains(t, got, "March 1, 2025")
}

func TestSystemPromptModeNote(t *testing.T) {
	t.Parallel()

	structured := systemPrompt(Request{Mode: ModeStructured})
	text := systemPrompt(Request{Mode: ModeText})
	assert.True(t, strings.HasSuffix(structured, structuredReplyNote))
	assert.True(t, strings.HasSuffix(text, textReplyNote))
}

func TestBuildHistoryMessage(t *testing.T) {
	t.Parallel()

	got, err := BuildHistoryMessage(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	history := []json.RawMessage{
		json.RawMessage(`{"role":"user","text":"When should I till?"}`),
		json.RawMessage(`{"role":"assistant","recommendation":{"primaryOption":{"method":"Strip-till"}}}`),
	}
	got, err = BuildHistoryMessage(history)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got, historyMessagePrefix))
	assert.Contains(t, got, `"When should I till?"`)
	assert.Contains(t, got, `"Strip-till"`)

	_, err = BuildHistoryMessage([]json.RawMessage{json.RawMessage(`{"role":`)})
	assert.ErrorIs(t, err, ErrInvalidHistory)
}

func TestParseMode(t *testing.T) {
	t.Parallel()

	m, err := ParseMode("", ModeStructured)
	require.NoError(t, err)
	assert.Equal(t, ModeStructured, m)

	m, err = ParseMode("text", ModeStructured)
	require.NoError(t, err)
	assert.Equal(t, ModeText, m)

	_, err = ParseMode("xml", ModeStructured)
	assert.Error(t, err)
}

func TestParseImage(t *testing.T) {
	t.Parallel()

	b64 := base64.StdEncoding.EncodeToString(pngHeader)

	tests := []struct {
		name    string
		payload string
		wantNil bool
		wantErr bool
	}{
		{name: "sentinel", payload: NoImage, wantNil: true},
		{name: "empty", payload: "", wantNil: true},
		{name: "raw base64", payload: b64},
		{name: "raw base64 without padding", payload: strings.TrimRight(b64, "=")},
		{name: "wrapped base64", payload: b64[:10] + "\n" + b64[10:]},
		{name: "data url", payload: "data:image/png;base64," + b64},
		{name: "data url not base64", payload: "data:image/png,abc", wantErr: true},
		{name: "garbage", payload: "%%%not-base64%%%", wantErr: true},
		{name: "not an image", payload: base64.StdEncoding.EncodeToString([]byte("hello farmer")), wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			img, err := ParseImage(tc.payload)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrInvalidImage)
				return
			}
			require.NoError(t, err)
			if tc.wantNil {
				assert.Nil(t, img)
				return
			}
			require.NotNil(t, img)
			assert.Equal(t, "image/png", img.MIMEType)
			assert.Equal(t, pngHeader, img.Data)
			assert.Equal(t, "data:image/png;base64,"+b64, img.DataURL())
		})
	}
}
