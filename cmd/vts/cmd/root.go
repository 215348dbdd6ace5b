package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"video-transcript/cmd/vts/cmd/export"
	"video-transcript/cmd/vts/cmd/fetch"
	"video-transcript/cmd/vts/cmd/serve"
	"video-transcript/cmd/vts/cmd/version"
)

var Verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vts",
	Short: "Acquire speaker-attributed transcripts for videos",
	Long: `vts turns a video URL into a timestamped transcript.
- Captions are used when the video has them
- Otherwise the audio is downloaded and transcribed locally
- Speaker identification can be layered on top on request
Results are cached in sqlite and served over an HTTP API or the CLI.`,
	TraverseChildren: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serve.Cmd)
	rootCmd.AddCommand(fetch.Cmd)
	rootCmd.AddCommand(export.Cmd)
	rootCmd.AddCommand(version.Cmd)

	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "V", false, "verbose output")
}
