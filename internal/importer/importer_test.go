package importer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDetectCSVDelimiter(t *testing.T) {
	tests := []struct {
		name string
		data string
		want rune
	}{
		{"comma", "a,b,c\n1,2,3\n", ','},
		{"semicolon", "a;b;c\n1;2;3\n", ';'},
		{"tab", "a\tb\tc\n1\t2\t3\n", '\t'},
		{"pipe", "a|b|c\n1|2|3\n", '|'},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectCSVDelimiter([]byte(tt.data)))
		})
	}
}

func TestDetectColumns_HeaderAliases(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Name", "W", "H", "Qty", "Rotate"})

	assert.True(t, hasHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Width)
	assert.Equal(t, 2, mapping.Height)
	assert.Equal(t, 3, mapping.Quantity)
	assert.Equal(t, 4, mapping.Rotation)
}

func TestDetectColumns_NoHeaderFallsBackToPositional(t *testing.T) {
	mapping, hasHeader := DetectColumns([]string{"Side Panel", "600", "400", "2"})

	assert.False(t, hasHeader)
	assert.Equal(t, 0, mapping.Label)
	assert.Equal(t, 1, mapping.Width)
}

func TestImportCSV_WithHeader(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label,Width,Height,Quantity,Rotation\n"+
			"Side Panel,600,400,2,yes\n"+
			"Top,500,300,1,locked\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 2)

	assert.Equal(t, "Side Panel", result.Parts[0].Label)
	assert.Equal(t, 600.0, result.Parts[0].Width)
	assert.Equal(t, 2, result.Parts[0].Quantity)
	assert.True(t, result.Parts[0].RotationAllowed)

	assert.Equal(t, "Top", result.Parts[1].Label)
	assert.False(t, result.Parts[1].RotationAllowed)
}

func TestImportCSV_SemicolonDelimiter(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label;Width;Height;Quantity\n"+
			"Panel;600;400;2\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 600.0, result.Parts[0].Width)

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "semicolon") {
			found = true
		}
	}
	assert.True(t, found, "delimiter detection should be surfaced as a warning")
}

func TestImportCSV_InvalidRowsReported(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label,Width,Height,Quantity\n"+
			"Good,600,400,2\n"+
			"BadWidth,abc,400,1\n"+
			"NegativeQty,600,400,-1\n")

	result := ImportCSV(path)

	assert.Len(t, result.Parts, 1)
	assert.Len(t, result.Errors, 2)
}

func TestImportCSV_UnknownRotationWarns(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label,Width,Height,Quantity,Rotation\n"+
			"Panel,600,400,2,sideways\n")

	result := ImportCSV(path)

	require.Len(t, result.Parts, 1)
	assert.True(t, result.Parts[0].RotationAllowed, "unknown rotation defaults to allowed")

	found := false
	for _, w := range result.Warnings {
		if strings.Contains(w, "sideways") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := writeTempFile(t, "empty.csv", "")

	result := ImportCSV(path)

	assert.Empty(t, result.Parts)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "empty")
}

func TestImportCSV_MissingRequiredColumns(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label,Width\nPanel,600\n")

	result := ImportCSV(path)

	assert.Empty(t, result.Parts)
	require.NotEmpty(t, result.Errors)
	assert.Contains(t, result.Errors[0], "Height")
}

func TestImportCSVFromReader(t *testing.T) {
	data := "Label,Width,Height,Quantity\nPanel,600,400,3\n"

	result := ImportCSVFromReader(strings.NewReader(data), ',')

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 3, result.Parts[0].Quantity)
}

func TestImportCSV_EmptyLabelGetsGenerated(t *testing.T) {
	path := writeTempFile(t, "parts.csv",
		"Label,Width,Height,Quantity\n"+
			",600,400,1\n")

	result := ImportCSV(path)

	require.Len(t, result.Parts, 1)
	assert.Equal(t, "Part 1", result.Parts[0].Label)
}

func TestImportCSV_PositionalWithoutQuantityDefaultsToOne(t *testing.T) {
	path := writeTempFile(t, "parts.csv", "Panel,600,400\n")

	result := ImportCSV(path)

	require.Empty(t, result.Errors)
	require.Len(t, result.Parts, 1)
	assert.Equal(t, 1, result.Parts[0].Quantity)
}
