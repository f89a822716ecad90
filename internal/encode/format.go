// Package encode negotiates a container format and records rendered frames
// plus the mixed narration into a finished video.
package encode

import "errors"

// ErrUnsupportedFormat means no preferred format can be produced on this host.
var ErrUnsupportedFormat = errors.New("no supported video format, update ffmpeg or the runtime")

// Format is one container and codec combination.
type Format struct {
	Name       string `json:"name"`
	Container  string `json:"container"`
	VideoCodec string `json:"video_codec"`
	AudioCodec string `json:"audio_codec,omitempty"`
	MimeType   string `json:"mime_type"`
	Ext        string `json:"ext"`
}

// HasAudio reports whether the format carries the narration track.
func (f Format) HasAudio() bool {
	return f.AudioCodec != ""
}

var (
	FormatMP4 = Format{
		Name: "mp4-h264-aac", Container: "mp4", VideoCodec: "h264", AudioCodec: "aac",
		MimeType: "video/mp4", Ext: "mp4",
	}
	FormatWebMVP9 = Format{
		Name: "webm-vp9-opus", Container: "webm", VideoCodec: "vp9", AudioCodec: "opus",
		MimeType: "video/webm", Ext: "webm",
	}
	FormatWebMVP8 = Format{
		Name: "webm-vp8-vorbis", Container: "webm", VideoCodec: "vp8", AudioCodec: "vorbis",
		MimeType: "video/webm", Ext: "webm",
	}
	// FormatAVI is the silent last resort written in-process.
	FormatAVI = Format{
		Name: "avi-mjpeg", Container: "avi", VideoCodec: "mjpeg",
		MimeType: "video/x-msvideo", Ext: "avi",
	}
)

// Preferences is the default order in which formats are tried.
var Preferences = []Format{FormatMP4, FormatWebMVP9, FormatWebMVP8, FormatAVI}

// CapabilityFunc reports whether the platform can produce f.
type CapabilityFunc func(f Format) bool

// Negotiate returns the first format in prefs that supported accepts.
func Negotiate(prefs []Format, supported CapabilityFunc) (Format, error) {
	if supported == nil {
		return Format{}, ErrUnsupportedFormat
	}
	for _, f := range prefs {
		if supported(f) {
			return f, nil
		}
	}
	return Format{}, ErrUnsupportedFormat
}

// FormatByName looks up a format in Preferences.
func FormatByName(name string) (Format, bool) {
	for _, f := range Preferences {
		if f.Name == name {
			return f, true
		}
	}
	return Format{}, false
}
