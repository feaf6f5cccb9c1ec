// Package selection decides how a requested stream maps onto downloadable
// tracks. SelectPlan is pure: same catalog and request always produce the
// same plan or the same error.
package selection

import (
	"mergeq/internal/domain"
)

// Request narrows a catalog down to one fetch plan. TargetHeight is an
// optional hint (0 means none) used only when a companion video track has to
// be picked for an audio-only request.
type Request struct {
	StreamID     string
	Container    string
	TargetHeight int
}

// SelectPlan maps (requested stream, desired container, catalog) to a fetch
// plan. All returned errors are deterministic and attempt-independent.
func SelectPlan(catalog domain.Catalog, req Request) (domain.FetchPlan, error) {
	requested, ok := catalog.Find(req.StreamID)
	if !ok {
		return nil, domain.ErrFormatNotFound
	}

	switch {
	case requested.Muxed():
		return domain.DirectFetch{StreamID: requested.StreamID}, nil

	case requested.HasAudio && !requested.HasVideo:
		if domain.IsAudioContainer(req.Container) {
			return domain.AudioExtract{
				StreamID:        requested.StreamID,
				TargetContainer: req.Container,
			}, nil
		}
		// Video output requested from an audio-only stream: find a video
		// track to merge under it.
		video, ok := bestVideo(catalog, req.Container, req.TargetHeight)
		if !ok {
			return nil, domain.ErrVideoUnavailable
		}
		return domain.VideoPlusAudioMerge{
			VideoStreamID: video.StreamID,
			AudioStreamID: requested.StreamID,
		}, nil

	case requested.HasVideo && !requested.HasAudio:
		audio, ok := bestAudio(catalog)
		if !ok {
			return nil, domain.ErrNoAudioAvailable
		}
		return domain.VideoPlusAudioMerge{
			VideoStreamID: requested.StreamID,
			AudioStreamID: audio.StreamID,
		}, nil

	case requested.HasVideo && requested.HasAudio:
		// Muxed but with no direct URL: treat like video-only and remux
		// with the best audio so the output is complete.
		audio, ok := bestAudio(catalog)
		if !ok {
			return nil, domain.ErrNoAudioAvailable
		}
		return domain.VideoPlusAudioMerge{
			VideoStreamID: requested.StreamID,
			AudioStreamID: audio.StreamID,
		}, nil

	default:
		return nil, domain.ErrUnsupportedStream
	}
}

// bestAudio returns the audio-capable descriptor with the highest bitrate
// across the whole catalog. Ties resolve to the first encountered.
func bestAudio(catalog domain.Catalog) (domain.StreamDescriptor, bool) {
	var best domain.StreamDescriptor
	found := false
	for _, d := range catalog.Streams {
		if !d.HasAudio {
			continue
		}
		if !found || d.AudioBitrate > best.AudioBitrate {
			best = d
			found = true
		}
	}
	return best, found
}

// bestVideo picks a video-capable descriptor, preferring the requested
// container. With a target height it takes the nearest height at or above the
// target; without one it takes the highest height available.
func bestVideo(catalog domain.Catalog, container string, targetHeight int) (domain.StreamDescriptor, bool) {
	candidates := make([]domain.StreamDescriptor, 0, len(catalog.Streams))
	for _, d := range catalog.Streams {
		if d.HasVideo && d.Container == container {
			candidates = append(candidates, d)
		}
	}
	if len(candidates) == 0 {
		for _, d := range catalog.Streams {
			if d.HasVideo {
				candidates = append(candidates, d)
			}
		}
	}
	if len(candidates) == 0 {
		return domain.StreamDescriptor{}, false
	}

	if targetHeight > 0 {
		var best domain.StreamDescriptor
		found := false
		for _, d := range candidates {
			if d.HeightPx < targetHeight {
				continue
			}
			if !found || d.HeightPx < best.HeightPx {
				best = d
				found = true
			}
		}
		if found {
			return best, true
		}
	}

	best := candidates[0]
	for _, d := range candidates[1:] {
		if d.HeightPx > best.HeightPx {
			best = d
		}
	}
	return best, true
}
