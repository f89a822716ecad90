package encode

import "github.com/bilgisen/picreel/internal/models"

// Profile is the output resolution and rate for an orientation.
type Profile struct {
	Width   int `json:"width"`
	Height  int `json:"height"`
	FPS     int `json:"fps"`
	BitRate int `json:"bit_rate"`
}

const (
	defaultFPS     = 30
	defaultBitRate = 2_500_000
)

var profiles = map[models.Orientation]Profile{
	models.OrientationLandscape: {Width: 1280, Height: 720, FPS: defaultFPS, BitRate: defaultBitRate},
	models.OrientationPortrait:  {Width: 720, Height: 1280, FPS: defaultFPS, BitRate: defaultBitRate},
}

// ProfileFor returns the profile for o, defaulting to landscape.
func ProfileFor(o models.Orientation) Profile {
	if p, ok := profiles[o]; ok {
		return p
	}
	return profiles[models.OrientationLandscape]
}
