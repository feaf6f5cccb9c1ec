package domain

import "strings"

// StreamDescriptor is one downloadable track of a source: video-only,
// audio-only, or muxed. Zero values mean the source did not report the field.
type StreamDescriptor struct {
	StreamID     string
	Container    string
	HasVideo     bool
	HasAudio     bool
	HeightPx     int
	AudioBitrate int
	DirectURL    string
}

// Muxed reports whether the stream carries both tracks and can be fetched
// without a local merge step.
func (d StreamDescriptor) Muxed() bool {
	return d.HasVideo && d.HasAudio && d.DirectURL != ""
}

// Catalog is the stream listing for one source URL, scoped to a single job
// attempt. It is re-fetched per attempt and never cached across jobs.
type Catalog struct {
	Title     string
	Duration  float64
	Thumbnail string
	Streams   []StreamDescriptor
}

// Find returns the descriptor matching streamID, if any.
func (c Catalog) Find(streamID string) (StreamDescriptor, bool) {
	for _, d := range c.Streams {
		if d.StreamID == streamID {
			return d, true
		}
	}
	return StreamDescriptor{}, false
}

var audioContainers = map[string]bool{
	"mp3":  true,
	"m4a":  true,
	"aac":  true,
	"opus": true,
	"ogg":  true,
	"oga":  true,
	"wav":  true,
	"flac": true,
}

// IsAudioContainer reports whether the container tag names an audio-only
// format.
func IsAudioContainer(container string) bool {
	return audioContainers[strings.ToLower(strings.TrimSpace(container))]
}
