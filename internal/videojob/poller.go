// Package videojob runs the submit/poll/fetch state machine for video
// generation. A job moves Submitting → Polling → Succeeded | Failed |
// TimedOut | Cancelled; the terminal states are never left once entered.
package videojob

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opensourcejay/cameo-go/internal/mediaapi"
	"github.com/opensourcejay/cameo-go/internal/mediaerr"
)

// Polling bounds: 120 checks, 5 seconds apart, 10 minutes total.
const (
	DefaultPollInterval = 5 * time.Second
	DefaultMaxAttempts  = 120
)

// API is the slice of the media client the poller needs.
type API interface {
	SubmitVideoJob(ctx context.Context, cred mediaapi.Credential, prompt string, seconds int) (*mediaapi.VideoJob, error)
	PollVideoJob(ctx context.Context, cred mediaapi.Credential, jobID string) (*mediaapi.VideoJobStatus, error)
	FetchVideoContent(ctx context.Context, cred mediaapi.Credential, generationID string) ([]byte, error)
}

// Poller drives one video job from submission to content retrieval.
type Poller struct {
	api      API
	interval time.Duration
	attempts int
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval overrides the wait between polls.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) { p.interval = d }
}

// WithMaxAttempts overrides the poll attempt bound.
func WithMaxAttempts(n int) Option {
	return func(p *Poller) { p.attempts = n }
}

func New(api API, opts ...Option) *Poller {
	p := &Poller{api: api, interval: DefaultPollInterval, attempts: DefaultMaxAttempts}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Result is the terminal outcome of a successful run.
type Result struct {
	JobID        string
	GenerationID string
	Content      []byte
}

// Run submits the job and polls until a terminal state. ctx is consulted
// before every wait and every network call; cancellation surfaces as a
// Cancelled error. On success exactly one content fetch is performed — a
// failed fetch reports ContentFetchFailed while the job itself stays
// logically succeeded (Result carries the generation id either way).
func (p *Poller) Run(ctx context.Context, cred mediaapi.Credential, prompt string, seconds int) (*Result, error) {
	job, err := p.api.SubmitVideoJob(ctx, cred, prompt, seconds)
	if err != nil {
		return nil, err
	}

	log.Info().Str("jobId", job.ID).Int("maxAttempts", p.attempts).Msg("Polling for video generation completion")
	for attempt := 1; attempt <= p.attempts; attempt++ {
		select {
		case <-ctx.Done():
			return nil, mediaerr.Wrap(mediaerr.KindCancelled, "video generation cancelled", ctx.Err())
		case <-time.After(p.interval):
		}

		status, err := p.api.PollVideoJob(ctx, cred, job.ID)
		if err != nil {
			return nil, err
		}
		log.Debug().
			Str("jobId", job.ID).
			Str("status", status.Status).
			Int("attempt", attempt).
			Msg("Video generation status")

		switch status.Status {
		case mediaapi.StatusSucceeded:
			return p.fetchContent(ctx, cred, job.ID, status)

		case mediaapi.StatusFailed:
			msg := "video generation failed"
			if status.Error != nil && status.Error.Message != "" {
				msg = fmt.Sprintf("video generation failed: %s", status.Error.Message)
			}
			return nil, mediaerr.New(mediaerr.KindGenerationFailed, msg)
		}
		// queued/running and any unknown status keep polling.
	}

	return nil, mediaerr.New(mediaerr.KindGenerationTimedOut,
		fmt.Sprintf("video generation timed out after %d checks", p.attempts))
}

// fetchContent validates the success payload and performs the single content
// fetch. A succeeded status without generation data is a protocol violation,
// not a retry condition.
func (p *Poller) fetchContent(ctx context.Context, cred mediaapi.Credential, jobID string, status *mediaapi.VideoJobStatus) (*Result, error) {
	if len(status.Generations) == 0 {
		return nil, mediaerr.New(mediaerr.KindMalformedSuccessResponse,
			"no generations in succeeded response")
	}
	generationID := status.Generations[0].ID
	if generationID == "" {
		return nil, mediaerr.New(mediaerr.KindMalformedSuccessResponse,
			"no generation ID in succeeded response")
	}

	log.Info().Str("jobId", jobID).Str("generationId", generationID).Msg("Video generation completed, fetching content")
	content, err := p.api.FetchVideoContent(ctx, cred, generationID)
	if err != nil {
		return &Result{JobID: jobID, GenerationID: generationID},
			mediaerr.Wrap(mediaerr.KindContentFetchFailed, "failed to fetch video content", err)
	}

	log.Info().Str("jobId", jobID).Int("bytes", len(content)).Msg("Video content retrieved")
	return &Result{JobID: jobID, GenerationID: generationID, Content: content}, nil
}
