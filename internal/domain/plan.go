package domain

// FetchPlan is the decided sequence of external operations needed to satisfy
// a job: one or two fetches plus an optional local mux. The set of shapes is
// closed; the pipeline switches exhaustively over the three variants.
type FetchPlan interface {
	fetchPlan()
}

// DirectFetch downloads a muxed stream straight to the output path.
type DirectFetch struct {
	StreamID string
}

// AudioExtract downloads a single stream with audio extraction/transcode
// flags targeting the named audio container.
type AudioExtract struct {
	StreamID        string
	TargetContainer string
}

// VideoPlusAudioMerge downloads a video track and an audio track to separate
// temporary files, then muxes them locally into the output container.
type VideoPlusAudioMerge struct {
	VideoStreamID string
	AudioStreamID string
}

func (DirectFetch) fetchPlan()         {}
func (AudioExtract) fetchPlan()        {}
func (VideoPlusAudioMerge) fetchPlan() {}
