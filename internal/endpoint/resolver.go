// Package endpoint turns a user-supplied provider endpoint into concrete
// request URLs. Users paste anything from a bare resource host to a fully
// resolved URL with path and api-version, so resolution is pattern-driven:
// an already-complete endpoint passes through unchanged, a partial one is
// classified into a provider family and completed from that family's path
// template. All functions here are pure.
package endpoint

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/opensourcejay/cameo-go/internal/mediaerr"
)

// Operation identifies which provider resource a URL is resolved for.
type Operation int

const (
	GenerateImage Operation = iota
	EditImage
	GenerateVideo
)

func (op Operation) String() string {
	switch op {
	case GenerateImage:
		return "generate-image"
	case EditImage:
		return "edit-image"
	case GenerateVideo:
		return "generate-video"
	}
	return "unknown"
}

const (
	// DefaultAPIVersion is appended to openai-deployments family URLs.
	DefaultAPIVersion = "2024-10-01-preview"

	// DefaultImageModel is the deployment used when the credential names none.
	DefaultImageModel = "dall-e-3"

	// foundryMarker identifies the inference-gateway provider family, which
	// uses /v1/ paths and no api-version query parameter.
	foundryMarker = "inference.ai.azure.com"
)

// familyRule is one entry in the ordered provider-family table. The first
// matching rule wins; the last rule matches everything.
type familyRule struct {
	name       string
	match      func(endpoint string) bool
	imagePath  string // joined under base for image ops; %s is the resource
	versioned  bool   // whether api-version is appended
	modelInURL bool   // whether the deployment name appears in the path
}

var families = []familyRule{
	{
		name:       "foundry-v1",
		match:      func(e string) bool { return strings.Contains(e, foundryMarker) },
		imagePath:  "v1/%s",
		versioned:  false,
		modelInURL: false,
	},
	{
		name:       "openai-deployments",
		match:      func(string) bool { return true },
		imagePath:  "openai/deployments/%s/%s",
		versioned:  true,
		modelInURL: true,
	},
}

func classify(endpoint string) familyRule {
	for _, f := range families {
		if f.match(endpoint) {
			return f
		}
	}
	return families[len(families)-1]
}

// normalizeBase validates the raw endpoint as a URL and returns it with a
// trailing slash so path templates can be joined directly.
func normalizeBase(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", mediaerr.Wrap(mediaerr.KindInvalidEndpoint,
			fmt.Sprintf("endpoint %q is not a valid URL", raw), err)
	}
	base := u.String()
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base, nil
}

// Resolve produces the request URL for op from a raw endpoint string. An
// endpoint that already carries the full resource path is returned unchanged
// so paths are never double-appended. model is only consulted for image
// operations in the openai-deployments family.
func Resolve(raw string, op Operation, model string) (string, error) {
	switch op {
	case GenerateImage:
		if strings.Contains(raw, "/images/generations") {
			return raw, nil
		}
		return buildImageURL(raw, "images/generations", model)

	case EditImage:
		if strings.Contains(raw, "/images/edits") {
			return raw, nil
		}
		// A generations endpoint converts to its sibling edits endpoint.
		if strings.Contains(raw, "/images/generations") {
			return strings.Replace(raw, "/images/generations", "/images/edits", 1), nil
		}
		return buildImageURL(raw, "images/edits", model)

	case GenerateVideo:
		if strings.Contains(raw, "/video/generations") {
			return raw, nil
		}
		return buildVideoSubmitURL(raw)
	}
	return "", mediaerr.New(mediaerr.KindInvalidEndpoint,
		fmt.Sprintf("unsupported operation %v", op))
}

func buildImageURL(raw, resource, model string) (string, error) {
	base, err := normalizeBase(raw)
	if err != nil {
		return "", err
	}
	fam := classify(raw)
	if !fam.modelInURL {
		return base + fmt.Sprintf(fam.imagePath, resource), nil
	}
	if model == "" {
		model = DefaultImageModel
	}
	u := base + fmt.Sprintf(fam.imagePath, model, resource)
	if fam.versioned {
		u += "?api-version=" + DefaultAPIVersion
	}
	return u, nil
}

func buildVideoSubmitURL(raw string) (string, error) {
	base, err := normalizeBase(raw)
	if err != nil {
		return "", err
	}
	switch {
	case strings.Contains(raw, foundryMarker):
		return base + "v1/video/generations", nil
	case strings.Contains(raw, "/openai/"):
		// Base already includes the /openai/ segment.
		return base + "v1/video/generations/jobs?api-version=" + DefaultAPIVersion, nil
	default:
		return base + "openai/v1/video/generations/jobs?api-version=" + DefaultAPIVersion, nil
	}
}
