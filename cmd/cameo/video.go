package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/opensourcejay/cameo-go/internal/history"
	"github.com/opensourcejay/cameo-go/internal/orchestrator"
)

var (
	durationFlag int
	videoOutFlag string
)

var videoCmd = &cobra.Command{
	Use:   "video \"prompt\"",
	Short: "Generate a video (submits a job and waits for completion)",
	Long: `Generate a video from a text prompt. The job is submitted to the provider
and polled until it finishes, which can take up to ten minutes. Ctrl-C
cancels the wait.`,
	Args: cobra.ExactArgs(1),
	RunE: runVideo,
}

func init() {
	videoCmd.Flags().IntVarP(&durationFlag, "duration", "d", orchestrator.DefaultVideoSeconds, "Video duration in seconds")
	videoCmd.Flags().StringVarP(&videoOutFlag, "output", "o", "", "Copy the finished video to this file")
	rootCmd.AddCommand(videoCmd)
}

func runVideo(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	rec, err := a.orch.Generate(ctx, orchestrator.Request{
		Prompt:  args[0],
		Kind:    history.KindVideo,
		Seconds: durationFlag,
	})
	if err != nil {
		return err
	}

	if videoOutFlag != "" {
		if err := copyFile(rec.URL, videoOutFlag); err != nil {
			return err
		}
		fmt.Printf("Saved video to %s\n", videoOutFlag)
		return nil
	}
	fmt.Println(rec.URL)
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %s: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copy to %s: %w", dst, err)
	}
	return nil
}
