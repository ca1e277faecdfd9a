package label

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixed(text string) func() (string, error) {
	return func() (string, error) { return text, nil }
}

func TestResolve_PriorityOrder(t *testing.T) {
	tests := []struct {
		name       string
		ocr        string
		vector     string
		wantText   string
		wantSource Source
	}{
		{"ocr wins", "Köln", "Bonn", "Köln", SourceOCR},
		{"vector when ocr empty", "", "Bonn", "Bonn", SourceVectorText},
		{"fallback when vector unnamed", "", Unnamed, "Rathaus_Seite_2", SourceFallback},
		{"unnamed from ocr is skipped", Unnamed, "Bonn", "Bonn", SourceVectorText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve([]Strategy{
				{Source: SourceOCR, Label: fixed(tt.ocr)},
				{Source: SourceVectorText, Label: fixed(tt.vector)},
				{Source: SourceFallback, Label: fixed(PageFallback(1))},
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantText, got.Text)
			assert.Equal(t, tt.wantSource, got.Source)
		})
	}
}

func TestResolve_StopsAtFirstAnswer(t *testing.T) {
	called := false
	_, err := Resolve([]Strategy{
		{Source: SourceOCR, Label: fixed("Köln")},
		{Source: SourceVectorText, Label: func() (string, error) {
			called = true
			return "Bonn", nil
		}},
	})
	require.NoError(t, err)
	assert.False(t, called)
}

func TestResolve_Error(t *testing.T) {
	boom := errors.New("render failed")
	_, err := Resolve([]Strategy{
		{Source: SourceOCR, Label: func() (string, error) { return "", boom }},
		{Source: SourceFallback, Label: fixed("x")},
	})
	assert.ErrorIs(t, err, boom)
}

func TestResolve_NoAnswer(t *testing.T) {
	got, err := Resolve(nil)
	require.NoError(t, err)
	assert.Equal(t, Candidate{}, got)
}

func TestSource_String(t *testing.T) {
	assert.Equal(t, "ocr", SourceOCR.String())
	assert.Equal(t, "vector-text", SourceVectorText.String())
	assert.Equal(t, "fallback", SourceFallback.String())
	assert.Equal(t, "Source(9)", Source(9).String())
}
