package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"
	"github.com/tokenscript-lang/tsi/internal/interpreter"
	"github.com/tokenscript-lang/tsi/internal/resolver"
	"github.com/tokenscript-lang/tsi/internal/specs"
)

// tokenPackEntry is one token's raw source inside a pack file; Tokens is a
// sequence (not a map) specifically so input order survives YAML decoding,
// since resolver.Resolve uses that order to break resolution ties (spec
// §4.8).
type tokenPackEntry struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
}

type tokenPack struct {
	Tokens []tokenPackEntry `yaml:"tokens"`
}

var resolveCmd = &cobra.Command{
	Use:   "resolve <pack.yaml>",
	Short: "Resolve a batch of interdependent token expressions",
	Long: `Resolve reads a token pack (a YAML list of {name, source} entries) and
evaluates every token, automatically ordering evaluation by dependency and
reporting per-token errors without aborting the rest of the batch.`,
	Args: cobra.ExactArgs(1),
	RunE: runResolve,
}

var resolveSpecsPath string

func init() {
	rootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().StringVar(&resolveSpecsPath, "specs", "", "load a spec pack (YAML) registering extra units/colors/functions before resolving")
}

func runResolve(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read pack %s: %w", args[0], err)
	}

	var pack tokenPack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return fmt.Errorf("failed to parse pack %s: %w", args[0], err)
	}

	names := make([]string, len(pack.Tokens))
	sources := make(map[string]string, len(pack.Tokens))
	for i, t := range pack.Tokens {
		names[i] = t.Name
		sources[t.Name] = t.Source
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "resolving %d token(s)\n", len(names))
	}

	it := interpreter.New(nil, nil, nil)
	if resolveSpecsPath != "" {
		packData, err := os.ReadFile(resolveSpecsPath)
		if err != nil {
			return fmt.Errorf("failed to read spec pack %s: %w", resolveSpecsPath, err)
		}
		specPack, err := specs.DecodePackYAML(packData)
		if err != nil {
			return fmt.Errorf("failed to parse spec pack %s: %w", resolveSpecsPath, err)
		}
		if err := specs.ApplyPack(specPack, it); err != nil {
			return fmt.Errorf("failed to apply spec pack %s: %w", resolveSpecsPath, err)
		}
	}

	result := resolver.ResolveWithInterpreter(names, sources, it)

	doc, err := result.ToJSON(names)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	var pretty bytes.Buffer
	if err := json.Indent(&pretty, doc, "", "  "); err != nil {
		return fmt.Errorf("failed to format result: %w", err)
	}
	fmt.Fprintln(os.Stdout, pretty.String())

	for _, w := range result.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(result.Errors) > 0 {
		return fmt.Errorf("%d of %d token(s) failed to resolve", len(result.Errors), len(names))
	}
	return nil
}
