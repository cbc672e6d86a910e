package main

import (
	"encoding/base64"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/ncruces/zenity"
	"github.com/spf13/cobra"

	"github.com/opensourcejay/cameo-go/internal/history"
	"github.com/opensourcejay/cameo-go/internal/imageutil"
	"github.com/opensourcejay/cameo-go/internal/orchestrator"
)

var (
	referenceFlag string
	maskFlag      string
	pickFlag      bool
	imageOutFlag  string
)

var imageCmd = &cobra.Command{
	Use:   "image \"prompt\"",
	Short: "Generate an image, or edit one when a reference is attached",
	Args:  cobra.ExactArgs(1),
	RunE:  runImage,
}

func init() {
	imageCmd.Flags().StringVarP(&referenceFlag, "reference", "r", "", "Reference image to edit instead of generating from scratch")
	imageCmd.Flags().StringVar(&maskFlag, "mask", "", "Mask image for selective edits (requires --reference)")
	imageCmd.Flags().BoolVar(&pickFlag, "pick", false, "Choose the reference image through a file dialog")
	imageCmd.Flags().StringVarP(&imageOutFlag, "output", "o", "", "Write the resulting image to this file")
	rootCmd.AddCommand(imageCmd)
}

func runImage(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	refPath := referenceFlag
	if pickFlag && refPath == "" {
		refPath, err = zenity.SelectFile(
			zenity.Title("Select reference image"),
			zenity.FileFilters{
				{Name: "Images", Patterns: []string{"*.png", "*.jpg", "*.jpeg", "*.webp"}},
			},
		)
		if err != nil {
			return fmt.Errorf("select reference image: %w", err)
		}
	}

	req := orchestrator.Request{Prompt: args[0], Kind: history.KindImage}
	if refPath != "" {
		req.Reference, err = loadImageFile(refPath)
		if err != nil {
			return err
		}
	}
	if maskFlag != "" {
		if req.Reference == nil {
			return fmt.Errorf("--mask requires --reference")
		}
		req.Mask, err = loadImageFile(maskFlag)
		if err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rec, err := a.orch.Generate(ctx, req)
	if err != nil {
		return err
	}

	if imageOutFlag != "" {
		if err := saveImage(rec.URL, imageOutFlag); err != nil {
			return err
		}
		fmt.Printf("Saved image to %s\n", imageOutFlag)
		return nil
	}
	fmt.Println(displayURL(rec.URL))
	return nil
}

func loadImageFile(path string) (*imageutil.ReferenceImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return imageutil.Load(filepath.Base(path), data)
}

// saveImage writes an image result to disk. Inline data URLs are decoded;
// provider-hosted URLs are left to the user (the link is printed instead).
func saveImage(url, out string) error {
	const prefix = "data:image/png;base64,"
	if !strings.HasPrefix(url, prefix) {
		return fmt.Errorf("result is a remote URL, download it directly: %s", url)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(url, prefix))
	if err != nil {
		return fmt.Errorf("decode image data: %w", err)
	}
	if err := os.WriteFile(out, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	return nil
}

// displayURL keeps inline data URLs from flooding the terminal.
func displayURL(url string) string {
	if len(url) > 96 && strings.HasPrefix(url, "data:") {
		return fmt.Sprintf("%s... (%d bytes inline; use --output to save)", url[:96], len(url))
	}
	return url
}
