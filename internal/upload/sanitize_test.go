package upload

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sermon.mp4", "sermon.mp4"},
		{"My Holy Week Sermon.mp4", "My_Holy_Week_Sermon.mp4"},
		{"weird   spaces!!.mp3", "weird_spaces.mp3"},
		{"__already__underscored__.pdf", "already_underscored.pdf"},
		{"dots.in.name.mkv", "dots_in_name.mkv"},
		{"UPPER.MP4", "UPPER.mp4"},
		{"(parens) & symbols #1.wav", "parens_symbols_1.wav"},
		{"---keep-dashes---.ogg", "---keep-dashes---.ogg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFileName(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	inputs := []string{
		"sermon.mp4",
		"My Holy Week Sermon (final) v2.mp4",
		"  lots \t of whitespace .pdf",
		"символы и ደብዳቤ.mp3",
		"!!!.docx",
		"name-without-extension",
	}
	for _, in := range inputs {
		once := SanitizeFileName(in)
		twice := SanitizeFileName(once)
		assert.Equal(t, once, twice, "input %q", in)
	}
}

func TestSanitizePreservesExtension(t *testing.T) {
	for _, in := range []string{"a b.mp4", "x!.PDF", "noise###.webm"} {
		got := SanitizeFileName(in)
		wantExt := strings.ToLower(in[strings.LastIndex(in, "."):])
		assert.True(t, strings.HasSuffix(got, wantExt), "got %q want suffix %q", got, wantExt)
	}
}

func TestSanitizeEmptyBase(t *testing.T) {
	assert.Equal(t, "file.mp4", SanitizeFileName("!!!.mp4"))
}

func TestValidateFileName(t *testing.T) {
	require.NoError(t, ValidateFileName("sermon.mp4"))
	require.NoError(t, ValidateFileName("concert recording.mp3"))

	bad := []string{
		"",
		"   ",
		strings.Repeat("a", 256) + ".mp4",
		"bad/slash.mp4",
		`back\slash.mp4`,
		"quest?ion.mp4",
		"aster*isk.mp4",
		"pipe|name.mp4",
		"CON.mp4",
		"lpt1.txt",
		"NUL",
		"ctrl\x01char.mp4",
	}
	for _, name := range bad {
		err := ValidateFileName(name)
		require.Error(t, err, "name %q", name)
		var verr *ValidationError
		assert.ErrorAs(t, err, &verr, "name %q", name)
	}
}

func TestValidateFileNameReservedOnlyAsStem(t *testing.T) {
	// CONCERT starts with CON but is not reserved.
	require.NoError(t, ValidateFileName("CONCERT.mp4"))
	require.NoError(t, ValidateFileName("AUXILIARY.pdf"))
}
