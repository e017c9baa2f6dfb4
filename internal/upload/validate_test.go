package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abune-media/media-service/internal/models"
)

func TestValidateFileAccepts(t *testing.T) {
	tests := []struct {
		category models.MediaCategory
		ext      string
	}{
		{models.CategoryVideo, ".mp4"},
		{models.CategoryVideo, ".MKV"},
		{models.CategoryAudio, ".mp3"},
		{models.CategoryBook, ".pdf"},
		{models.CategoryBook, ".epub"},
		{models.CategoryOther, ".png"},
	}
	for _, tt := range tests {
		assert.NoError(t, ValidateFile(tt.category, tt.ext, 1024), "%s %s", tt.category, tt.ext)
	}
}

func TestValidateFileRejectsExtension(t *testing.T) {
	err := ValidateFile(models.CategoryVideo, ".exe", 1024)
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	// The error message names the accepted formats.
	assert.NotEmpty(t, verr.Accepted)
	assert.Contains(t, err.Error(), ".mp4")
}

func TestValidateFileRejectsSize(t *testing.T) {
	err := ValidateFile(models.CategoryVideo, ".mp4", MaxUploadSize+1)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "exceeds"))

	require.NoError(t, ValidateFile(models.CategoryVideo, ".mp4", MaxUploadSize))

	err = ValidateFile(models.CategoryAudio, ".mp3", 0)
	require.Error(t, err)
}

func TestValidateFileUnknownCategory(t *testing.T) {
	err := ValidateFile(models.MediaCategory("hologram"), ".mp4", 1024)
	require.Error(t, err)
}

func TestCategoryFromString(t *testing.T) {
	assert.Equal(t, models.CategoryVideo, models.CategoryFromString("video"))
	assert.Equal(t, models.CategoryAudio, models.CategoryFromString("music"))
	assert.Equal(t, models.CategoryBook, models.CategoryFromString("document"))
	assert.Equal(t, models.CategoryOther, models.CategoryFromString("whatever"))
}
