package main

import (
	_ "embed"
	"os"
	"time"

	"notion-tools/config"
	"notion-tools/utils"

	"github.com/spf13/cobra"
)

//goland:noinspection GoUnnecessarilyExportedIdentifiers
var AppVersion = "1.0"

//go:embed config.yaml
var defaultConfigData []byte

func main() {
	rootCommand := &cobra.Command{
		Use:           "notion-tools",
		Short:         "Convert Notion Markdown & CSV exports into clean Obsidian vaults",
		Version:       AppVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCommand.AddCommand(convertCommand())

	if err := rootCommand.Execute(); err != nil {
		utils.ConsoleAndLogPrintf("Error: %v", err)
		os.Exit(1)
	}
}

func convertCommand() *cobra.Command {
	var outputPath string
	var keepAllCSV bool
	var noFrontmatter bool

	command := &cobra.Command{
		Use:   "convert <export.zip>",
		Short: "Expand a Notion export archive and clean it into an Obsidian vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(defaultConfigData)

			if err != nil {
				return err
			}

			err = utils.SetupLogger(c.LogFilePath)

			if err != nil {
				return err
			}

			ctx := &Context{
				Config: c,
				DB:     initDb(c),
			}

			debugFormat := ""

			if c.IsDebug {
				debugFormat = " (debug)"
			}

			utils.ConsoleAndLogPrintf("Notion Tools version %s%s", AppVersion, debugFormat)
			startTime := time.Now()

			err = ctx.Convert(args[0], outputPath, ConvertOptions{
				KeepAllCSV:      keepAllCSV,
				SkipFrontmatter: noFrontmatter,
			})

			if err != nil {
				return err
			}

			utils.ConsoleAndLogPrintf("Finished in %s", utils.FormatDuration(time.Since(startTime)))
			return nil
		},
	}

	command.Flags().StringVarP(&outputPath, "output", "o", "./notion-export", "output folder for the converted vault")
	command.Flags().BoolVar(&keepAllCSV, "keep-all-csv", false, "keep both the filtered and the _all CSV export of each database")
	command.Flags().BoolVar(&noFrontmatter, "no-frontmatter", false, "skip YAML frontmatter and .base view generation")

	return command
}
