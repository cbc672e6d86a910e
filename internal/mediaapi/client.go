// Package mediaapi is the HTTP client for the media-generation provider. It
// resolves request URLs through the endpoint package, attaches the credential
// per call, and maps non-2xx responses into the closed error taxonomy in the
// mediaerr package. No retries happen at this layer; retry and fallback
// policy lives with the callers.
package mediaapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/opensourcejay/cameo-go/internal/endpoint"
	"github.com/opensourcejay/cameo-go/internal/imageutil"
	"github.com/opensourcejay/cameo-go/internal/jsonutil"
	"github.com/opensourcejay/cameo-go/internal/mediaerr"
)

// Credential carries what a single request needs. Read from settings at call
// time, never cached inside the client.
type Credential struct {
	APIKey   string
	Endpoint string
	Model    string
}

// Video submissions are fixed-format: one 1080p landscape variant.
const (
	videoModel    = "sora"
	videoVariants = 1
	videoHeight   = 1080
	videoWidth    = 1920

	imageSize  = "1024x1024"
	imageCount = 1

	defaultTimeout = 120 * time.Second
)

// Provider job statuses.
const (
	StatusQueued    = "queued"
	StatusRunning   = "running"
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Client issues the submit, poll and content-fetch calls.
type Client struct {
	httpClient *http.Client
}

// NewClient builds a client around hc; nil selects a default client with a
// generous timeout (content fetches pull whole video files).
func NewClient(hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{httpClient: hc}
}

// --- Response types ---

// ImageResult is the outcome of a generation or edit call. URL is either an
// inline data URL (base64 responses) or the provider-hosted URL.
type ImageResult struct {
	URL string
}

type imageResponse struct {
	Data []struct {
		B64JSON string `json:"b64_json"`
		URL     string `json:"url"`
	} `json:"data"`
}

// VideoJob is the provider's handle for an accepted submission.
type VideoJob struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Generation is one produced artifact inside a succeeded job.
type Generation struct {
	ID string `json:"id"`
}

// JobError is the provider's failure detail on a failed job.
type JobError struct {
	Message string `json:"message"`
}

// VideoJobStatus is one poll response. Generations is only populated on
// success; Error only on failure.
type VideoJobStatus struct {
	ID          string       `json:"id"`
	Status      string       `json:"status"`
	Generations []Generation `json:"generations"`
	Error       *JobError    `json:"error"`
}

// --- Image operations ---

type imageGenerationRequest struct {
	Prompt  string `json:"prompt"`
	N       int    `json:"n"`
	Size    string `json:"size"`
	Quality string `json:"quality,omitempty"`
}

// GenerateImage submits a plain text-to-image request.
func (c *Client) GenerateImage(ctx context.Context, cred Credential, prompt string) (*ImageResult, error) {
	reqURL, err := endpoint.Resolve(cred.Endpoint, endpoint.GenerateImage, cred.Model)
	if err != nil {
		return nil, err
	}

	payload := imageGenerationRequest{
		Prompt:  prompt,
		N:       imageCount,
		Size:    imageSize,
		Quality: imageQuality(cred.Model),
	}

	log.Info().Str("endpoint", reqURL).Str("model", cred.Model).Msg("Starting image generation")
	body, err := c.postJSON(ctx, reqURL, cred, payload)
	if err != nil {
		return nil, err
	}
	return parseImageResult(body, reqURL)
}

// EditImage submits an edit-with-reference request as multipart form data.
// mask may be nil.
func (c *Client) EditImage(ctx context.Context, cred Credential, prompt string, ref, mask *imageutil.ReferenceImage) (*ImageResult, error) {
	reqURL, err := endpoint.Resolve(cred.Endpoint, endpoint.EditImage, cred.Model)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	if err := form.WriteField("prompt", prompt); err != nil {
		return nil, fmt.Errorf("build edit form: %w", err)
	}
	if err := writeFormImage(form, "image", ref); err != nil {
		return nil, err
	}
	if mask != nil {
		if err := writeFormImage(form, "mask", mask); err != nil {
			return nil, err
		}
	}
	form.WriteField("n", strconv.Itoa(imageCount))
	form.WriteField("size", imageSize)
	if q := imageQuality(cred.Model); q != "" {
		form.WriteField("quality", q)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("build edit form: %w", err)
	}

	log.Info().Str("endpoint", reqURL).Bool("hasMask", mask != nil).Msg("Starting image edit")
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, &buf)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	name, value := endpoint.AuthHeader(cred.Endpoint, cred.APIKey)
	req.Header.Set(name, value)
	req.Header.Set("Content-Type", form.FormDataContentType())

	body, err := c.do(req, reqURL)
	if err != nil {
		return nil, err
	}
	return parseImageResult(body, reqURL)
}

// imageQuality returns the quality parameter for model, or "" when the model
// family does not accept one.
func imageQuality(model string) string {
	if model == "" || strings.EqualFold(model, endpoint.DefaultImageModel) {
		return ""
	}
	return "high"
}

func writeFormImage(form *multipart.Writer, field string, ref *imageutil.ReferenceImage) error {
	w, err := form.CreateFormFile(field, ref.Name)
	if err != nil {
		return fmt.Errorf("build edit form: %w", err)
	}
	if _, err := w.Write(ref.Data); err != nil {
		return fmt.Errorf("build edit form: %w", err)
	}
	return nil
}

func parseImageResult(body []byte, reqURL string) (*ImageResult, error) {
	resp, err := jsonutil.Decode[imageResponse](body)
	if err != nil {
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "unreadable image response", Endpoint: reqURL, Cause: err}
	}
	if len(resp.Data) == 0 {
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "no images were generated in the response", Endpoint: reqURL}
	}
	first := resp.Data[0]
	if first.B64JSON != "" {
		return &ImageResult{URL: imageutil.DataURL(first.B64JSON)}, nil
	}
	if first.URL != "" {
		return &ImageResult{URL: first.URL}, nil
	}
	return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "no image data found in the response", Endpoint: reqURL}
}

// --- Video operations ---

type videoSubmitRequest struct {
	Model    string `json:"model"`
	Prompt   string `json:"prompt"`
	NSeconds int    `json:"n_seconds"`
	Variants int    `json:"n_variants"`
	Height   int    `json:"height"`
	Width    int    `json:"width"`
}

// SubmitVideoJob starts a video generation and returns the provider job.
func (c *Client) SubmitVideoJob(ctx context.Context, cred Credential, prompt string, seconds int) (*VideoJob, error) {
	reqURL, err := endpoint.Resolve(cred.Endpoint, endpoint.GenerateVideo, "")
	if err != nil {
		return nil, err
	}

	payload := videoSubmitRequest{
		Model:    videoModel,
		Prompt:   prompt,
		NSeconds: seconds,
		Variants: videoVariants,
		Height:   videoHeight,
		Width:    videoWidth,
	}

	log.Info().Str("endpoint", reqURL).Int("seconds", seconds).Msg("Submitting video generation job")
	body, err := c.postJSON(ctx, reqURL, cred, payload)
	if err != nil {
		return nil, err
	}

	job, err := jsonutil.Decode[VideoJob](body)
	if err != nil {
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "unreadable job response", Endpoint: reqURL, Cause: err}
	}
	if job.ID == "" {
		return nil, &mediaerr.Error{Kind: mediaerr.KindMissingJobID, Message: "no video generation job ID in response", Endpoint: reqURL}
	}
	log.Info().Str("jobId", job.ID).Msg("Video generation job submitted")
	return &job, nil
}

// PollVideoJob fetches the current status of jobID. The poll URL is derived
// from the configured submission endpoint, not resolved independently.
func (c *Client) PollVideoJob(ctx context.Context, cred Credential, jobID string) (*VideoJobStatus, error) {
	statusURL := endpoint.DeriveStatusURL(cred.Endpoint, jobID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	name, value := endpoint.AuthHeader(cred.Endpoint, cred.APIKey)
	req.Header.Set(name, value)

	body, err := c.do(req, statusURL)
	if err != nil {
		return nil, err
	}

	status, err := jsonutil.Decode[VideoJobStatus](body)
	if err != nil {
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "unreadable status response", Endpoint: statusURL, Cause: err}
	}
	return &status, nil
}

// FetchVideoContent retrieves the finished video as raw bytes.
func (c *Client) FetchVideoContent(ctx context.Context, cred Credential, generationID string) ([]byte, error) {
	contentURL := endpoint.DeriveContentURL(cred.Endpoint, generationID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, contentURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	name, value := endpoint.AuthHeader(cred.Endpoint, cred.APIKey)
	req.Header.Set(name, value)

	log.Debug().Str("endpoint", contentURL).Msg("Fetching video content")
	return c.do(req, contentURL)
}

// --- Internal helpers ---

func (c *Client) postJSON(ctx context.Context, reqURL string, cred Credential, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, reqURL, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	name, value := endpoint.AuthHeader(cred.Endpoint, cred.APIKey)
	req.Header.Set(name, value)
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, reqURL)
}

// do executes the request and returns the body of a 2xx response, or a typed
// error for anything else.
func (c *Client) do(req *http.Request, reqURL string) ([]byte, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, &mediaerr.Error{Kind: mediaerr.KindCancelled, Message: "request cancelled", Endpoint: reqURL, Cause: err}
		}
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "request failed", Endpoint: reqURL, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	log.Debug().
		Str("endpoint", reqURL).
		Int("statusCode", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("Provider response")
	if err != nil {
		return nil, &mediaerr.Error{Kind: mediaerr.KindProviderError, Message: "read response", Endpoint: reqURL, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyStatus(resp.StatusCode, body, reqURL)
	}
	return body, nil
}

// classifyStatus maps an HTTP failure into the error taxonomy, pulling a
// human message from the body when one is present.
func classifyStatus(status int, body []byte, reqURL string) *mediaerr.Error {
	switch status {
	case http.StatusUnauthorized:
		return &mediaerr.Error{Kind: mediaerr.KindAuthenticationFailed, StatusCode: status, Endpoint: reqURL,
			Message: "authentication failed, verify the API key"}
	case http.StatusForbidden:
		return &mediaerr.Error{Kind: mediaerr.KindAccessForbidden, StatusCode: status, Endpoint: reqURL,
			Message: "access forbidden, check the API key permissions"}
	case http.StatusNotFound:
		return &mediaerr.Error{Kind: mediaerr.KindNotFound, StatusCode: status, Endpoint: reqURL,
			Message: fmt.Sprintf("resource not found at %s, verify the endpoint and deployment", reqURL)}
	case http.StatusTooManyRequests:
		return &mediaerr.Error{Kind: mediaerr.KindRateLimited, StatusCode: status, Endpoint: reqURL,
			Message: "rate limit exceeded, wait and try again"}
	default:
		msg := jsonutil.ErrorMessage(body)
		if msg == "" {
			msg = http.StatusText(status)
		}
		return &mediaerr.Error{Kind: mediaerr.KindProviderError, StatusCode: status, Endpoint: reqURL, Message: msg}
	}
}
