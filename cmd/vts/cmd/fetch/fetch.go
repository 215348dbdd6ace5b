package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"

	"video-transcript/internal/api/v1/dto"
	"video-transcript/internal/app"
	"video-transcript/internal/config"
)

var (
	configPath string
	diarize    bool
	outputDir  string
	quiet      bool
)

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to yaml config file")
	Cmd.Flags().BoolVarP(&diarize, "diarize", "d", false, "identify speakers in the transcript")
	Cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory to write transcript files into")
	Cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the progress bar")
}

// Cmd represents the fetch command
var Cmd = &cobra.Command{
	Use:   "fetch <url> [url...]",
	Short: "Fetch transcripts for one or more video URLs",
	Long: `Fetch transcripts for one or more video URLs.

Each video goes through the normal acquisition chain: captions first,
audio transcription as the fallback, optional speaker identification.
One text file per video is written into the output directory.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(configPath)
		if err != nil {
			return err
		}
		apiKeys, err := config.GetAPIKeys()
		if err != nil {
			return err
		}

		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		application, err := app.InitializeApplication(settings, apiKeys, logger)
		if err != nil {
			return err
		}
		defer application.Close()

		if err := os.MkdirAll(outputDir, os.ModePerm); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		progress := mpb.New(mpb.WithOutput(progressWriter()))
		bar := progress.AddBar(int64(len(args)),
			mpb.PrependDecorators(
				decor.Name("fetching "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(decor.Percentage()),
		)

		failures := 0
		for _, url := range args {
			if err := fetchOne(cmd.Context(), application, url); err != nil {
				fmt.Fprintf(os.Stderr, "%s: %v\n", url, err)
				failures++
			}
			bar.Increment()
		}
		progress.Wait()

		if failures > 0 {
			return fmt.Errorf("%d of %d videos failed", failures, len(args))
		}
		return nil
	},
}

func fetchOne(ctx context.Context, application *app.Application, url string) error {
	resp, err := application.Service.Acquire(ctx, &dto.AcquireTranscriptRequest{
		URL:         url,
		Diarization: diarize,
	})
	if err != nil {
		return err
	}

	outPath := filepath.Join(outputDir, resp.Filename)
	if err := os.WriteFile(outPath, []byte(resp.Transcript), 0o644); err != nil {
		return fmt.Errorf("write transcript: %w", err)
	}
	fmt.Printf("%s (source: %s)\n", outPath, resp.Source)
	return nil
}

func progressWriter() io.Writer {
	if quiet {
		return io.Discard
	}
	return os.Stderr
}
