package endpoint

import "strings"

// Status and content URLs for a video job cannot be resolved independently —
// the job id only exists after submission. They are derived from the raw
// submission endpoint through an ordered fallback chain over three endpoint
// shapes:
//
//  1. job-style: the endpoint names /video/generations/jobs with an
//     api-version query; the id is spliced into the path, query preserved.
//  2. generic-generations-style: the endpoint names /video/generations with
//     some query; everything before that segment is the effective base.
//  3. base-only: the endpoint is a bare base URL; the full path is built the
//     same way submission URLs are.

// DeriveStatusURL returns the poll URL for jobID given the raw submission
// endpoint the user configured.
func DeriveStatusURL(raw, jobID string) string {
	// Shape 1: complete job endpoint with version query.
	if strings.Contains(raw, "/video/generations/jobs") && strings.Contains(raw, "?api-version=") {
		return strings.Replace(raw, "/video/generations/jobs?", "/video/generations/jobs/"+jobID+"?", 1)
	}

	// Shape 2: generic generations endpoint with a query string.
	if strings.Contains(raw, "/video/generations") && strings.Contains(raw, "?") {
		base := strings.SplitN(raw, "/video/generations", 2)[0]
		if strings.Contains(raw, foundryMarker) {
			return base + "/v1/video/generations/" + jobID
		}
		return base + "/openai/v1/video/generations/jobs/" + jobID + "?api-version=" + DefaultAPIVersion
	}

	// Shape 3: base-only endpoint.
	base := strings.TrimSuffix(raw, "/")
	switch {
	case strings.Contains(raw, foundryMarker):
		return base + "/v1/video/generations/" + jobID
	case strings.Contains(raw, "/openai/v1/"):
		return base + "/video/generations/jobs/" + jobID + "?api-version=" + DefaultAPIVersion
	default:
		return base + "/openai/v1/video/generations/jobs/" + jobID + "?api-version=" + DefaultAPIVersion
	}
}

// DeriveContentURL returns the binary content URL for a finished generation
// given the raw submission endpoint.
func DeriveContentURL(raw, generationID string) string {
	// Shape 1: complete job endpoint with version query.
	if strings.Contains(raw, "/video/generations/jobs") && strings.Contains(raw, "?api-version=") {
		return strings.Replace(raw, "/video/generations/jobs?",
			"/video/generations/"+generationID+"/content/video?", 1)
	}

	// Shape 2: generic generations endpoint with a query string.
	if strings.Contains(raw, "/video/generations") && strings.Contains(raw, "?") {
		base := strings.SplitN(raw, "/video/generations", 2)[0]
		if strings.Contains(raw, foundryMarker) {
			return base + "/v1/video/generations/" + generationID + "/content"
		}
		return base + "/openai/v1/video/generations/" + generationID + "/content/video?api-version=" + DefaultAPIVersion
	}

	// Shape 3: base-only endpoint.
	base := strings.TrimSuffix(raw, "/") + "/"
	switch {
	case strings.Contains(raw, foundryMarker):
		return base + "v1/video/generations/" + generationID + "/content"
	case strings.Contains(raw, "/openai/v1/"):
		return base + "video/generations/" + generationID + "/content/video?api-version=" + DefaultAPIVersion
	default:
		return base + "openai/v1/video/generations/" + generationID + "/content/video?api-version=" + DefaultAPIVersion
	}
}
