package transcode

import (
	"fmt"
	"strings"
)

// Profile bundles the compression threshold and encode parameters for one
// quality level. An upload at or below MaxSizeBytes is stored as-is; anything
// larger is transcoded with the profile's parameters.
type Profile struct {
	Name         string
	MaxSizeBytes int64
	VideoBitrate string // ffmpeg -b:v value, e.g. "800k"
	AudioBitrate string // ffmpeg -b:a value
	TargetHeight int    // vertical resolution, width follows aspect
	CRF          int    // quality factor, lower is better
}

var profiles = map[string]Profile{
	"low": {
		Name:         "low",
		MaxSizeBytes: 50 << 20,
		VideoBitrate: "400k",
		AudioBitrate: "64k",
		TargetHeight: 360,
		CRF:          32,
	},
	"mobile": {
		Name:         "mobile",
		MaxSizeBytes: 100 << 20,
		VideoBitrate: "800k",
		AudioBitrate: "96k",
		TargetHeight: 480,
		CRF:          28,
	},
	"medium": {
		Name:         "medium",
		MaxSizeBytes: 500 << 20,
		VideoBitrate: "1500k",
		AudioBitrate: "128k",
		TargetHeight: 720,
		CRF:          26,
	},
	"high": {
		Name:         "high",
		MaxSizeBytes: 2 << 30,
		VideoBitrate: "4000k",
		AudioBitrate: "192k",
		TargetHeight: 1080,
		CRF:          23,
	},
}

// ProfileByName looks up a quality profile; names are matched lowercase.
func ProfileByName(name string) (Profile, error) {
	p, ok := profiles[strings.ToLower(name)]
	if !ok {
		return Profile{}, fmt.Errorf("unknown quality profile %q", name)
	}
	return p, nil
}

// DefaultProfile is used when the upload does not name one.
func DefaultProfile() Profile {
	return profiles["mobile"]
}

// NeedsCompression reports whether a video of the given size exceeds the
// profile threshold. Equality stores the original.
func (p Profile) NeedsCompression(sizeBytes int64) bool {
	return sizeBytes > p.MaxSizeBytes
}
