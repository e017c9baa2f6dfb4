package transcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProfileByName(t *testing.T) {
	for _, name := range []string{"low", "mobile", "medium", "high"} {
		p, err := ProfileByName(name)
		require.NoError(t, err)
		assert.Equal(t, name, p.Name)
		assert.Positive(t, p.MaxSizeBytes)
		assert.Positive(t, p.TargetHeight)
		assert.NotEmpty(t, p.VideoBitrate)
		assert.NotEmpty(t, p.AudioBitrate)
	}

	_, err := ProfileByName("ultra")
	require.Error(t, err)
}

func TestProfileByNameIgnoresCase(t *testing.T) {
	for _, name := range []string{"Mobile", "HIGH", "Low", "mEdIuM"} {
		p, err := ProfileByName(name)
		require.NoError(t, err, "name %q", name)
		assert.Equal(t, strings.ToLower(name), p.Name)
	}
}

func TestNeedsCompressionThreshold(t *testing.T) {
	mobile, err := ProfileByName("mobile")
	require.NoError(t, err)
	require.Equal(t, int64(100<<20), mobile.MaxSizeBytes)

	// Compression triggers strictly above the threshold.
	assert.False(t, mobile.NeedsCompression(10_000_000))
	assert.False(t, mobile.NeedsCompression(mobile.MaxSizeBytes))
	assert.True(t, mobile.NeedsCompression(mobile.MaxSizeBytes+1))
	assert.True(t, mobile.NeedsCompression(150<<20))
}

func TestProfilesOrderedByQuality(t *testing.T) {
	low, _ := ProfileByName("low")
	mobile, _ := ProfileByName("mobile")
	medium, _ := ProfileByName("medium")
	high, _ := ProfileByName("high")

	assert.Less(t, low.MaxSizeBytes, mobile.MaxSizeBytes)
	assert.Less(t, mobile.MaxSizeBytes, medium.MaxSizeBytes)
	assert.Less(t, medium.MaxSizeBytes, high.MaxSizeBytes)
	assert.Less(t, low.TargetHeight, high.TargetHeight)
}

func TestDefaultProfile(t *testing.T) {
	assert.Equal(t, "mobile", DefaultProfile().Name)
}
