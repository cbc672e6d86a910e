package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opensourcejay/cameo-go/internal/mediaerr"
	"github.com/opensourcejay/cameo-go/internal/settings"
)

var (
	endpointFlag string
	apiKeyFlag   string
	modelFlag    string
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage provider credentials",
}

var configSetCmd = &cobra.Command{
	Use:   "set <image|video>",
	Short: "Store the endpoint and API key for a media kind",
	Args:  cobra.ExactArgs(1),
	RunE:  runConfigSet,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the stored configuration (keys masked)",
	RunE:  runConfigShow,
}

func init() {
	configSetCmd.Flags().StringVar(&endpointFlag, "endpoint", "", "Provider endpoint URL (base or fully resolved)")
	configSetCmd.Flags().StringVar(&apiKeyFlag, "api-key", "", "Provider API key")
	configSetCmd.Flags().StringVar(&modelFlag, "model", "", "Image model deployment (image kind only)")
	configSetCmd.MarkFlagRequired("endpoint")
	configSetCmd.MarkFlagRequired("api-key")
	configCmd.AddCommand(configSetCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func credentialKind(arg string) (settings.Kind, error) {
	switch strings.ToLower(arg) {
	case "image":
		return settings.KindImage, nil
	case "video":
		return settings.KindVideo, nil
	}
	return "", fmt.Errorf("unknown media kind %q (expected image or video)", arg)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	kind, err := credentialKind(args[0])
	if err != nil {
		return err
	}

	a, err := newApp()
	if err != nil {
		return err
	}

	cred := settings.Credential{APIKey: apiKeyFlag, Endpoint: endpointFlag, Model: modelFlag}
	if err := a.settings.Set(kind, cred); err != nil {
		return err
	}
	fmt.Printf("Saved %s credential for %s\n", kind, cred.Endpoint)
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	for _, kind := range []settings.Kind{settings.KindImage, settings.KindVideo} {
		cred, err := a.settings.Get(kind)
		switch {
		case mediaerr.IsKind(err, mediaerr.KindNotConfigured):
			fmt.Printf("%-5s  not configured\n", kind)
			continue
		case err != nil:
			fmt.Printf("%-5s  %v\n", kind, err)
			continue
		}
		line := fmt.Sprintf("%-5s  endpoint=%s  api-key=%s", kind, cred.Endpoint, maskKey(cred.APIKey))
		if cred.Model != "" {
			line += "  model=" + cred.Model
		}
		fmt.Println(line)
	}
	return nil
}

func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}
