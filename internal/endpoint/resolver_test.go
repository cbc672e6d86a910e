package endpoint

import (
	"strings"
	"testing"

	"github.com/opensourcejay/cameo-go/internal/mediaerr"
)

func TestResolvePassthrough(t *testing.T) {
	// Endpoints that already carry the full resource path come back unchanged.
	tests := []struct {
		name string
		raw  string
		op   Operation
	}{
		{
			"image deployments url with version",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/generations?api-version=2024-10-01-preview",
			GenerateImage,
		},
		{
			"image foundry v1 url",
			"https://res.eastus.inference.ai.azure.com/v1/images/generations",
			GenerateImage,
		},
		{
			"image generic path",
			"https://gateway.example.com/images/generations",
			GenerateImage,
		},
		{
			"edit url with version",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/edits?api-version=2024-10-01-preview",
			EditImage,
		},
		{
			"video jobs url with version",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs?api-version=2024-10-01-preview",
			GenerateVideo,
		},
		{
			"video foundry url",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations",
			GenerateVideo,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw, tt.op, "")
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.raw {
				t.Errorf("expected passthrough, got %s", got)
			}
		})
	}
}

func TestResolveFromBase(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		op    Operation
		model string
		want  string
	}{
		{
			"image openai base default model",
			"https://res.openai.azure.com",
			GenerateImage, "",
			"https://res.openai.azure.com/openai/deployments/dall-e-3/images/generations?api-version=2024-10-01-preview",
		},
		{
			"image openai base named model",
			"https://res.openai.azure.com/",
			GenerateImage, "gpt-image-1",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/generations?api-version=2024-10-01-preview",
		},
		{
			"image foundry base",
			"https://res.eastus.inference.ai.azure.com",
			GenerateImage, "gpt-image-1",
			"https://res.eastus.inference.ai.azure.com/v1/images/generations",
		},
		{
			"edit openai base",
			"https://res.openai.azure.com",
			EditImage, "gpt-image-1",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/edits?api-version=2024-10-01-preview",
		},
		{
			"edit rewrites generations endpoint",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/generations?api-version=2024-10-01-preview",
			EditImage, "",
			"https://res.openai.azure.com/openai/deployments/gpt-image-1/images/edits?api-version=2024-10-01-preview",
		},
		{
			"video openai base",
			"https://res.openai.azure.com",
			GenerateVideo, "",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs?api-version=2024-10-01-preview",
		},
		{
			"video base with openai segment",
			"https://res.openai.azure.com/openai",
			GenerateVideo, "",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs?api-version=2024-10-01-preview",
		},
		{
			"video foundry base",
			"https://res.eastus.inference.ai.azure.com",
			GenerateVideo, "",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.raw, tt.op, tt.model)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestResolveInvalidEndpoint(t *testing.T) {
	for _, raw := range []string{"not a url", "://missing-scheme", "relative/path"} {
		_, err := Resolve(raw, GenerateImage, "")
		if !mediaerr.IsKind(err, mediaerr.KindInvalidEndpoint) {
			t.Errorf("%q: expected InvalidEndpoint, got %v", raw, err)
		}
	}
}

func TestDeriveStatusURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"job-style endpoint preserves query",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs?api-version=2024-10-01-preview",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs/job-1?api-version=2024-10-01-preview",
		},
		{
			"generic generations endpoint",
			"https://res.openai.azure.com/video/generations?api-version=2024-10-01-preview",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs/job-1?api-version=2024-10-01-preview",
		},
		{
			"generic generations endpoint on foundry",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations?foo=1",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations/job-1",
		},
		{
			"base-only endpoint",
			"https://res.openai.azure.com/",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs/job-1?api-version=2024-10-01-preview",
		},
		{
			"base-only with openai v1 segment",
			"https://res.openai.azure.com/openai/v1/",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs/job-1?api-version=2024-10-01-preview",
		},
		{
			"base-only foundry",
			"https://res.eastus.inference.ai.azure.com",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations/job-1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveStatusURL(tt.raw, "job-1"); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestDeriveContentURL(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			"job-style endpoint",
			"https://res.openai.azure.com/openai/v1/video/generations/jobs?api-version=2024-10-01-preview",
			"https://res.openai.azure.com/openai/v1/video/generations/gen-9/content/video?api-version=2024-10-01-preview",
		},
		{
			"base-only endpoint",
			"https://res.openai.azure.com",
			"https://res.openai.azure.com/openai/v1/video/generations/gen-9/content/video?api-version=2024-10-01-preview",
		},
		{
			"base-only foundry",
			"https://res.eastus.inference.ai.azure.com/",
			"https://res.eastus.inference.ai.azure.com/v1/video/generations/gen-9/content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveContentURL(tt.raw, "gen-9"); got != tt.want {
				t.Errorf("got  %s\nwant %s", got, tt.want)
			}
		})
	}
}

func TestAuthHeaderName(t *testing.T) {
	tests := []struct {
		endpoint string
		want     string
	}{
		{"https://res.openai.azure.com", HeaderAPIKey},
		{"https://res.cognitiveservices.azure.com/openai", HeaderAPIKey},
		{"https://RES.OPENAI.AZURE.COM", HeaderAPIKey},
		{"https://res.eastus.inference.ai.azure.com", HeaderAuthorization},
		{"https://workspace.ml.azure.com/score", HeaderAuthorization},
		{"https://totally-unknown.example.com", HeaderAPIKey},
	}
	for _, tt := range tests {
		if got := AuthHeaderName(tt.endpoint); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.endpoint, got, tt.want)
		}
	}
}

func TestAuthHeaderValue(t *testing.T) {
	name, value := AuthHeader("https://res.eastus.inference.ai.azure.com", "sk-1")
	if name != HeaderAuthorization || !strings.HasPrefix(value, "Bearer ") {
		t.Errorf("expected bearer header, got %s=%s", name, value)
	}

	name, value = AuthHeader("https://res.openai.azure.com", "sk-1")
	if name != HeaderAPIKey || value != "sk-1" {
		t.Errorf("expected api-key header, got %s=%s", name, value)
	}
}
