package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gatherly/pkg/cli/config"
	"github.com/urfave/cli/v3"
)

// CmdGenerateConfig returns the generate-config command
func CmdGenerateConfig() *cli.Command {
	return &cli.Command{
		Name:    "generate-config",
		Aliases: []string{"g"},
		Usage:   "Generate configuration file templates",
		Commands: []*cli.Command{
			cmdGenerateLLMCatalog(),
		},
	}
}

func cmdGenerateLLMCatalog() *cli.Command {
	var (
		outputPath string
		force      bool
	)

	return &cli.Command{
		Name:  "llm",
		Usage: "Generate the LLM model catalog template",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file path",
				Value:       "llm.yaml",
				Destination: &outputPath,
			},
			&cli.BoolFlag{
				Name:        "force",
				Aliases:     []string{"f"},
				Usage:       "Overwrite existing file",
				Destination: &force,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if _, err := os.Stat(outputPath); err == nil && !force {
				return goerr.New("file already exists, use --force to overwrite", goerr.V("path", outputPath))
			}

			if err := config.GenerateConfigFile(outputPath); err != nil {
				return err
			}

			ctxlog.From(ctx).Info("LLM catalog template generated", "path", outputPath)
			fmt.Printf("✅ LLM catalog template generated: %s\n", outputPath)
			fmt.Println("\nNext steps:")
			fmt.Println("1. List the models your endpoint serves and pick the chat and title defaults")
			fmt.Println("2. Set the API key with --llm-api-key or GATHERLY_LLM_API_KEY")
			fmt.Println("3. Use --llm-config to load the catalog")

			return nil
		},
	}
}
