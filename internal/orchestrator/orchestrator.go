// Package orchestrator ties the generation pipeline together: it reads the
// credential, runs the image or video flow, maintains the in-progress
// placeholder in history, and enforces the single-submission rule. Errors
// pass through with their kinds intact so the caller can route configuration
// problems to the settings surface.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opensourcejay/cameo-go/internal/history"
	"github.com/opensourcejay/cameo-go/internal/imageutil"
	"github.com/opensourcejay/cameo-go/internal/mediaapi"
	"github.com/opensourcejay/cameo-go/internal/notify"
	"github.com/opensourcejay/cameo-go/internal/settings"
	"github.com/opensourcejay/cameo-go/internal/videojob"
)

// ErrBusy is returned when a submission arrives while another generation is
// still in flight. One generation at a time, enforced here rather than by
// the caller's submit button.
var ErrBusy = errors.New("a generation is already in flight")

// DefaultVideoSeconds is the video duration when the request names none.
const DefaultVideoSeconds = 5

// ImageAPI is the slice of the media client the image flow needs.
type ImageAPI interface {
	GenerateImage(ctx context.Context, cred mediaapi.Credential, prompt string) (*mediaapi.ImageResult, error)
	EditImage(ctx context.Context, cred mediaapi.Credential, prompt string, ref, mask *imageutil.ReferenceImage) (*mediaapi.ImageResult, error)
}

// VideoRunner runs one video job to a terminal state.
type VideoRunner interface {
	Run(ctx context.Context, cred mediaapi.Credential, prompt string, seconds int) (*videojob.Result, error)
}

// Request describes one user submission.
type Request struct {
	Prompt    string
	Kind      history.MediaKind
	Reference *imageutil.ReferenceImage // image kind only; triggers the edit flow
	Mask      *imageutil.ReferenceImage // optional, only with Reference
	Seconds   int                       // video kind only; 0 means DefaultVideoSeconds
}

// Orchestrator coordinates one generation at a time.
type Orchestrator struct {
	settings *settings.Repository
	images   ImageAPI
	videos   VideoRunner
	notifier *notify.Notifier
	history  *history.Store
	mediaDir string
	inFlight atomic.Bool
}

func New(repo *settings.Repository, images ImageAPI, videos VideoRunner, notifier *notify.Notifier, hist *history.Store, mediaDir string) *Orchestrator {
	return &Orchestrator{
		settings: repo,
		images:   images,
		videos:   videos,
		notifier: notifier,
		history:  hist,
		mediaDir: mediaDir,
	}
}

// Generate runs req to completion and returns the terminal history record.
// A placeholder record with the final record's ID is added to history for
// the duration of the run and replaced in place on success, or discarded on
// failure.
func (o *Orchestrator) Generate(ctx context.Context, req Request) (*history.MediaRecord, error) {
	if !o.inFlight.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer o.inFlight.Store(false)

	id := history.NewRecordID()
	placeholder := history.MediaRecord{
		ID:         id,
		Prompt:     req.Prompt,
		Kind:       req.Kind,
		CreatedAt:  time.UnixMilli(id),
		IsProgress: true,
	}
	if err := o.history.Add(placeholder); err != nil {
		return nil, err
	}

	url, err := o.run(ctx, req, id)
	if err != nil {
		o.history.Discard(id)
		return nil, err
	}

	terminal := history.MediaRecord{
		ID:        id,
		Prompt:    req.Prompt,
		Kind:      req.Kind,
		URL:       url,
		CreatedAt: time.UnixMilli(id),
	}
	if err := o.history.Add(terminal); err != nil {
		// The media exists even if persistence degraded to nothing.
		log.Warn().Err(err).Msg("Generated media could not be recorded in history")
	}
	return &terminal, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request, id int64) (string, error) {
	switch req.Kind {
	case history.KindVideo:
		return o.runVideo(ctx, req, id)
	default:
		return o.runImage(ctx, req)
	}
}

// runImage performs plain generation, or the edit flow with its single
// generation fallback when a reference image is attached.
func (o *Orchestrator) runImage(ctx context.Context, req Request) (string, error) {
	cred, err := o.credential(settings.KindImage)
	if err != nil {
		return "", err
	}

	if req.Reference == nil {
		result, err := o.images.GenerateImage(ctx, cred, req.Prompt)
		if err != nil {
			return "", err
		}
		return result.URL, nil
	}

	result, editErr := o.images.EditImage(ctx, cred, req.Prompt, req.Reference, req.Mask)
	if editErr == nil {
		return result.URL, nil
	}

	// One fallback, never more. The edit error is deliberately not chained:
	// the caller sees the fallback's outcome.
	log.Debug().Err(editErr).Msg("Image edit failed, falling back to plain generation")
	o.notifier.Publish(notify.LevelWarning, "Image edit failed; generated a new image from the prompt instead")

	result, err = o.images.GenerateImage(ctx, cred, req.Prompt)
	if err != nil {
		return "", err
	}
	return result.URL, nil
}

// runVideo drives the poller and writes the fetched content next to the rest
// of the local media.
func (o *Orchestrator) runVideo(ctx context.Context, req Request, id int64) (string, error) {
	cred, err := o.credential(settings.KindVideo)
	if err != nil {
		return "", err
	}

	seconds := req.Seconds
	if seconds <= 0 {
		seconds = DefaultVideoSeconds
	}

	result, err := o.videos.Run(ctx, cred, req.Prompt, seconds)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(o.mediaDir, 0o700); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	path := filepath.Join(o.mediaDir, fmt.Sprintf("video-%d.mp4", id))
	if err := os.WriteFile(path, result.Content, 0o600); err != nil {
		return "", fmt.Errorf("save video: %w", err)
	}
	log.Info().Str("path", path).Str("jobId", result.JobID).Msg("Video saved")
	return path, nil
}

// credential loads the per-kind credential at call time; it is never cached.
func (o *Orchestrator) credential(kind settings.Kind) (mediaapi.Credential, error) {
	cred, err := o.settings.Get(kind)
	if err != nil {
		return mediaapi.Credential{}, err
	}
	return mediaapi.Credential{APIKey: cred.APIKey, Endpoint: cred.Endpoint, Model: cred.Model}, nil
}
