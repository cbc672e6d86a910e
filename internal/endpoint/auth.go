package endpoint

import "strings"

// Auth header names used by the provider families.
const (
	HeaderAPIKey        = "api-key"
	HeaderAuthorization = "Authorization"
)

// authRule maps a host marker to the header scheme that host expects.
// Evaluated in order; extend by appending rules.
type authRule struct {
	marker string
	header string
}

var authRules = []authRule{
	// Managed cognitive-service and managed OpenAI hosts take a plain key.
	{"cognitiveservices.azure.com", HeaderAPIKey},
	{"openai.azure.com", HeaderAPIKey},
	// Inference-gateway and managed-ML hosts take a bearer token.
	{"inference.ai.azure.com", HeaderAuthorization},
	{"ml.azure.com", HeaderAuthorization},
}

// AuthHeaderName classifies an endpoint into the auth header its host
// expects. Unrecognized hosts default to the api-key scheme.
func AuthHeaderName(endpoint string) string {
	lower := strings.ToLower(endpoint)
	for _, r := range authRules {
		if strings.Contains(lower, r.marker) {
			return r.header
		}
	}
	return HeaderAPIKey
}

// AuthHeader returns the header name and value carrying apiKey for endpoint.
func AuthHeader(endpoint, apiKey string) (name, value string) {
	if AuthHeaderName(endpoint) == HeaderAuthorization {
		return HeaderAuthorization, "Bearer " + apiKey
	}
	return HeaderAPIKey, apiKey
}
