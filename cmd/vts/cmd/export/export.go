package export

import (
	"fmt"

	"github.com/spf13/cobra"

	"video-transcript/internal/app"
	"video-transcript/internal/app/export"
	"video-transcript/internal/config"
)

var (
	configPath     string
	outputFilePath string
	limit          int
)

func init() {
	Cmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "path to yaml config file")
	Cmd.Flags().StringVarP(&outputFilePath, "outputFilePath", "o", "", "set outputFilePath")
	Cmd.Flags().IntVarP(&limit, "limit", "l", 0, "maximum number of transcripts to export (0 = all)")

	Cmd.MarkFlagRequired("outputFilePath")
}

// Cmd represents the export command
var Cmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored transcripts to excel",
	Long: `Export stored transcripts to excel.

Reads the transcript store configured in the yaml config (sqlite by
default) and writes one row per transcript, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		settings, err := config.LoadSettings(configPath)
		if err != nil {
			return err
		}
		dao, err := app.OpenDAO(settings)
		if err != nil {
			return err
		}
		if dao == nil {
			return fmt.Errorf("no transcript storage configured, nothing to export")
		}
		defer dao.Close()

		fetchLimit := limit
		if fetchLimit <= 0 {
			fetchLimit = 10000
		}
		records, err := dao.List(fetchLimit, 0)
		if err != nil {
			return err
		}

		if err := export.ToExcel(records, outputFilePath); err != nil {
			return err
		}
		fmt.Printf("export finished, %d transcripts written to %v\n", len(records), outputFilePath)
		return nil
	},
}
