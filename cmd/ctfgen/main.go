package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"ctfboard/internal/config"
	"ctfboard/internal/generator"
	"ctfboard/internal/logger"
)

func main() {
	cfg := config.Load()
	slog.SetDefault(logger.New(os.Stderr, cfg.LogLevel))

	if err := run(os.Args[1:], cfg.ChallengesDir, os.Stdout); err != nil {
		slog.Error("generation failed", "error", err)
		os.Exit(1)
	}
}

// run generates challenges as described by args and prints one "<id> <kind>" line per challenge.
func run(args []string, defaultDir string, out io.Writer) error {
	fs := pflag.NewFlagSet("ctfgen", pflag.ContinueOnError)
	dir := fs.StringP("dir", "d", defaultDir, "directory holding generated challenges")
	kindName := fs.StringP("type", "t", string(generator.KindWeb), "challenge type: "+kindList())
	count := fs.IntP("count", "n", 1, "number of challenges to generate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	kind, err := generator.ParseKind(*kindName)
	if err != nil {
		return err
	}
	if *count < 1 {
		return fmt.Errorf("count must be positive, got %d", *count)
	}
	if err := os.MkdirAll(*dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", *dir, err)
	}

	gen := generator.New(*dir)
	for i := 0; i < *count; i++ {
		result, err := gen.Generate(kind)
		if err != nil {
			return err
		}
		slog.Info("challenge generated", "id", result.ID, "kind", string(result.Kind), "dir", result.Dir)
		fmt.Fprintf(out, "%s %s\n", result.ID, result.Kind)
	}
	return nil
}

func kindList() string {
	names := make([]string, 0, len(generator.Kinds()))
	for _, k := range generator.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}
