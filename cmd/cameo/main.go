// Command cameo generates images and videos from text prompts against an
// Azure-OpenAI-shaped media provider, keeping results in a local history.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/opensourcejay/cameo-go/internal/config"
	"github.com/opensourcejay/cameo-go/internal/history"
	"github.com/opensourcejay/cameo-go/internal/kvstore"
	"github.com/opensourcejay/cameo-go/internal/logging"
	"github.com/opensourcejay/cameo-go/internal/mediaapi"
	"github.com/opensourcejay/cameo-go/internal/mediaerr"
	"github.com/opensourcejay/cameo-go/internal/notify"
	"github.com/opensourcejay/cameo-go/internal/orchestrator"
	"github.com/opensourcejay/cameo-go/internal/settings"
	"github.com/opensourcejay/cameo-go/internal/videojob"
)

// app holds the wired pipeline shared by all subcommands.
type app struct {
	cfg      *config.Config
	settings *settings.Repository
	history  *history.Store
	orch     *orchestrator.Orchestrator
	notifier *notify.Notifier
}

var rootCmd = &cobra.Command{
	Use:   "cameo",
	Short: "Creative AI media engine orchestrator",
	Long: `cameo turns a text prompt into a generated image or video using your
configured media provider, and keeps the results in a local history.

Examples:
  cameo config set image --endpoint https://myres.openai.azure.com --api-key KEY --model gpt-image-1
  cameo image "a red fox in fresh snow"
  cameo image "replace the sky with aurora" --reference photo.png
  cameo video "waves rolling onto a beach at dusk" --duration 10
  cameo history list`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		reportError(err)
		os.Exit(1)
	}
}

// newApp wires the pipeline. Called by subcommands that need it rather than
// in a persistent pre-run so `config`/`help` stay independent of the data dir.
func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Init(cfg.LogLevel)

	store, err := kvstore.NewFileStore(cfg.StoreDir(), cfg.StorageQuotaBytes)
	if err != nil {
		return nil, err
	}

	hist := history.NewStore(store)
	if err := hist.Load(); err != nil {
		return nil, err
	}

	repo := settings.NewRepository(store)
	client := mediaapi.NewClient(nil)
	poller := videojob.New(client,
		videojob.WithInterval(cfg.PollInterval),
		videojob.WithMaxAttempts(cfg.PollAttempts))

	notifier := notify.New()
	notifier.Subscribe(func(n notify.Notice) {
		fmt.Fprintf(os.Stderr, "notice: %s\n", n.Message)
	})

	return &app{
		cfg:      cfg,
		settings: repo,
		history:  hist,
		orch:     orchestrator.New(repo, client, poller, notifier, hist, cfg.MediaDir()),
		notifier: notifier,
	}, nil
}

// reportError routes configuration problems to a settings pointer and prints
// everything else as a full diagnostic. Routing is by error kind, never by
// message text.
func reportError(err error) {
	if mediaerr.IsConfigError(err) {
		fmt.Fprintf(os.Stderr, "Configuration needed: %v\n", err)
		fmt.Fprintln(os.Stderr, "Run `cameo config set image|video --endpoint ... --api-key ...` first.")
		return
	}
	if kind := mediaerr.KindOf(err); kind != "" {
		fmt.Fprintf(os.Stderr, "Generation failed (%s): %v\n", kind, err)
		return
	}
	log.Error().Err(err).Msg("Command failed")
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}
