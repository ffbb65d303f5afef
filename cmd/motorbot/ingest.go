package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sandevgo/motorbot/internal/config"
	"github.com/sandevgo/motorbot/internal/providers/llm"
	"github.com/sandevgo/motorbot/internal/providers/pinecone"
	"github.com/sandevgo/motorbot/internal/service/ingest"
	"github.com/sandevgo/motorbot/pkg/log"
)

var ingestFile string

var ingestCmd = &cobra.Command{
	Use:   "ingest [text...]",
	Short: "Add knowledge snippets to the similarity index",
	Long: `Embeds text snippets and stores them in the vector index so the engine
can answer free-form questions from them. Snippets come from the
arguments, from --file (one snippet per line), or from stdin.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		if err := initEnv(ctx, config.GetRuntimePath()); err != nil {
			logger.Fatal().Err(err).Msg("failed to init env")
		}

		appCfg := config.NewAppConfig(ctx)
		pineconeCfg := config.NewPineconeConfig(ctx)

		_, embedder, err := llm.NewProvider(ctx, appCfg)
		if err != nil {
			return err
		}
		index := pinecone.NewClient(pineconeCfg.Endpoint, pineconeCfg.APIKey)
		ingestor := ingest.New(embedder, index, appCfg.MaxRetries)

		snippets, err := collectSnippets(args)
		if err != nil {
			return err
		}
		if len(snippets) == 0 {
			return fmt.Errorf("nothing to ingest")
		}

		for _, snippet := range snippets {
			id, err := ingestor.Ingest(ctx, snippet)
			if err != nil {
				return fmt.Errorf("ingest %q: %w", snippet, err)
			}
			fmt.Printf("%s\t%s\n", id, snippet)
		}
		return nil
	},
}

func collectSnippets(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}

	var reader *bufio.Scanner
	if ingestFile != "" {
		f, err := os.Open(ingestFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		reader = bufio.NewScanner(f)
	} else {
		reader = bufio.NewScanner(os.Stdin)
	}

	var snippets []string
	for reader.Scan() {
		line := strings.TrimSpace(reader.Text())
		if line != "" {
			snippets = append(snippets, line)
		}
	}
	return snippets, reader.Err()
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "read snippets from a file, one per line")
	rootCmd.AddCommand(ingestCmd)
}
