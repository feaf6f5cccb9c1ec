package fetch

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

type fakeRunner struct {
	err   error
	calls [][]string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, append([]string{name}, args...))
	return r.err
}

type libCall struct {
	sourceURL string
	selector  string
	ext       string
	outPath   string
}

func newTestFetcher(run *fakeRunner, executable string, libErr error) (*StreamFetcher, *[]libCall) {
	f := New(run, executable, zerolog.Nop())
	calls := &[]libCall{}
	f.libFetch = func(ctx context.Context, sourceURL, selector, ext, outPath string) error {
		*calls = append(*calls, libCall{sourceURL: sourceURL, selector: selector, ext: ext, outPath: outPath})
		return libErr
	}
	return f, calls
}

func TestFetchBinarySucceedsWithoutFallback(t *testing.T) {
	run := &fakeRunner{}
	f, libCalls := newTestFetcher(run, "/usr/bin/yt-dlp", nil)

	if err := f.Fetch(context.Background(), "https://example.com/v", "137", "/tmp/out.mp4"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(run.calls) != 1 {
		t.Fatalf("expected one binary call, got %d", len(run.calls))
	}
	args := strings.Join(run.calls[0], " ")
	if !strings.Contains(args, "-f 137") || !strings.Contains(args, "-o /tmp/out.mp4") {
		t.Fatalf("unexpected binary args: %s", args)
	}
	if len(*libCalls) != 0 {
		t.Fatalf("fallback ran despite binary success: %v", *libCalls)
	}
}

func TestFetchFallsBackWhenBinaryFails(t *testing.T) {
	run := &fakeRunner{err: errors.New("exit status 1")}
	f, libCalls := newTestFetcher(run, "/usr/bin/yt-dlp", nil)

	if err := f.Fetch(context.Background(), "https://example.com/v", "137", "/tmp/out.mp4"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(run.calls) != 1 {
		t.Fatalf("expected one binary attempt, got %d", len(run.calls))
	}
	if len(*libCalls) != 1 {
		t.Fatalf("expected one fallback call, got %d", len(*libCalls))
	}
	call := (*libCalls)[0]
	if call.selector != "itag=137" || call.ext != "mp4" || call.outPath != "/tmp/out.mp4" {
		t.Fatalf("fallback options mismatch: %+v", call)
	}
}

func TestFetchSurfacesLastErrorWhenAllFail(t *testing.T) {
	run := &fakeRunner{err: errors.New("exit status 1")}
	libErr := errors.New("no playable streams")
	f, _ := newTestFetcher(run, "/usr/bin/yt-dlp", libErr)

	err := f.Fetch(context.Background(), "https://example.com/v", "137", "/tmp/out.mp4")
	if !errors.Is(err, libErr) {
		t.Fatalf("expected last strategy error, got %v", err)
	}
}

func TestFetchWithoutBinaryUsesOnlyFallback(t *testing.T) {
	run := &fakeRunner{err: errors.New("must not run")}
	f, libCalls := newTestFetcher(run, "", nil)

	if err := f.Fetch(context.Background(), "https://example.com/v", "22", "/tmp/out.mp4"); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(run.calls) != 0 {
		t.Fatalf("binary ran despite empty executable path")
	}
	if len(*libCalls) != 1 || (*libCalls)[0].selector != "itag=22" {
		t.Fatalf("fallback call mismatch: %v", *libCalls)
	}
}

func TestFetchAudioBinaryArgsAndFallbackOptions(t *testing.T) {
	run := &fakeRunner{err: errors.New("exit status 1")}
	f, libCalls := newTestFetcher(run, "/usr/bin/yt-dlp", nil)

	if err := f.FetchAudio(context.Background(), "https://example.com/v", "140", "mp3", "/tmp/out.mp3"); err != nil {
		t.Fatalf("FetchAudio: %v", err)
	}
	args := strings.Join(run.calls[0], " ")
	if !strings.Contains(args, "-x") || !strings.Contains(args, "--audio-format mp3") {
		t.Fatalf("unexpected binary args: %s", args)
	}
	call := (*libCalls)[0]
	if call.selector != "itag=140" || call.ext != "mp3" {
		t.Fatalf("fallback options mismatch: %+v", call)
	}
}
