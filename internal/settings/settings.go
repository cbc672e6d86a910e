// Package settings stores provider credentials, one per media kind. Records
// are read from the key-value store at request time and never cached, so a
// settings change takes effect on the next generation.
package settings

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/opensourcejay/cameo-go/internal/kvstore"
	"github.com/opensourcejay/cameo-go/internal/mediaerr"
)

// Kind selects which credential a call operates on.
type Kind string

const (
	KindImage Kind = "image"
	KindVideo Kind = "video"
)

// Storage keys, kept compatible with earlier releases.
const (
	imageConfigKey = "azure_image_config"
	videoConfigKey = "azure_video_config"
)

// Credential is the per-kind provider configuration. Model is only meaningful
// for the image kind, where it names the deployment to target.
type Credential struct {
	APIKey   string `json:"apiKey"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model,omitempty"`
}

// Repository reads and writes credentials through the key-value store.
type Repository struct {
	store kvstore.Store
}

func NewRepository(store kvstore.Store) *Repository {
	return &Repository{store: store}
}

func storageKey(kind Kind) string {
	if kind == KindVideo {
		return videoConfigKey
	}
	return imageConfigKey
}

// Get returns the stored credential for kind. Absence, partial population and
// malformed stored JSON each map to a distinct configuration error kind so the
// caller can route the user to settings.
func (r *Repository) Get(kind Kind) (*Credential, error) {
	raw, ok, err := r.store.Get(storageKey(kind))
	if err != nil {
		return nil, fmt.Errorf("read %s settings: %w", kind, err)
	}
	if !ok {
		return nil, mediaerr.New(mediaerr.KindNotConfigured,
			fmt.Sprintf("%s API settings not configured", kind))
	}

	var cred Credential
	if err := json.Unmarshal(raw, &cred); err != nil {
		log.Warn().Str("kind", string(kind)).Err(err).Msg("Stored credential is not valid JSON")
		return nil, mediaerr.Wrap(mediaerr.KindIncomplete,
			fmt.Sprintf("invalid %s API settings, please reconfigure", kind), err)
	}
	if cred.APIKey == "" || cred.Endpoint == "" {
		return nil, mediaerr.New(mediaerr.KindIncomplete,
			fmt.Sprintf("%s API settings incomplete, check the API key and endpoint", kind))
	}
	return &cred, nil
}

// Set validates and persists a credential.
func (r *Repository) Set(kind Kind, cred Credential) error {
	if cred.APIKey == "" || cred.Endpoint == "" {
		return mediaerr.New(mediaerr.KindIncomplete,
			fmt.Sprintf("%s API settings require both an API key and an endpoint", kind))
	}
	raw, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("encode %s settings: %w", kind, err)
	}
	if err := r.store.Set(storageKey(kind), raw); err != nil {
		return fmt.Errorf("persist %s settings: %w", kind, err)
	}
	log.Info().Str("kind", string(kind)).Str("endpoint", cred.Endpoint).Msg("Credential saved")
	return nil
}
