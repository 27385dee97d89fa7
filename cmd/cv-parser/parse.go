package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/cv-parser/internal/runtime"
)

var parseCmd = &cobra.Command{
	Use:   "parse <file.pdf>",
	Short: "Parse a local resume PDF and print the structured record",
	Args:  cobra.ExactArgs(1),
	RunE:  parseFile,
}

func init() {
	rootCmd.AddCommand(parseCmd)
	parseCmd.Flags().Int64("id", 1, "document id to log the run under")
	parseCmd.Flags().Bool("pretty", false, "indent the JSON output")
}

func parseFile(cmd *cobra.Command, args []string) error {
	cfg, logger := setup(cmd)
	id, _ := cmd.Flags().GetInt64("id")
	pretty, _ := cmd.Flags().GetBool("pretty")

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}
	if len(data) == 0 {
		return fmt.Errorf("%s is empty", args[0])
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := runtime.Open(ctx, cfg, logger, runtime.WithoutContentStore())
	if err != nil {
		return fmt.Errorf("open resources: %w", err)
	}
	defer func() { _ = res.Close(context.Background()) }()

	out, err := res.Processor.Parse(ctx, id, data)
	if err != nil {
		return err
	}
	if pretty {
		var buf bytes.Buffer
		if err := json.Indent(&buf, []byte(out), "", "  "); err == nil {
			out = buf.String()
		}
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
