package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tokenscript-lang/tsi/internal/diag"
	"github.com/tokenscript-lang/tsi/internal/interpreter"
	"github.com/tokenscript-lang/tsi/internal/lexer"
	"github.com/tokenscript-lang/tsi/internal/parser"
	"github.com/tokenscript-lang/tsi/internal/specs"
)

var (
	interpretExpr      string
	dumpAST            bool
	interpretSpecsPath string
)

var interpretCmd = &cobra.Command{
	Use:   "interpret [file]",
	Short: "Evaluate a single TokenScript expression or script",
	Long: `Evaluate one TokenScript body from a file or inline expression and print
its resolved value.

Examples:
  tsi interpret -e "16 * 1.5px"
  tsi interpret -e "rgb(255, 0, 0).to.hex()"
  tsi interpret token.ts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInterpret,
}

func init() {
	rootCmd.AddCommand(interpretCmd)
	interpretCmd.Flags().StringVarP(&interpretExpr, "eval", "e", "", "evaluate inline code instead of reading from file")
	interpretCmd.Flags().BoolVar(&dumpAST, "dump-ast", false, "print the parsed AST instead of evaluating it")
	interpretCmd.Flags().StringVar(&interpretSpecsPath, "specs", "", "load a spec pack (YAML) registering extra units/colors/functions before evaluating")
}

func runInterpret(_ *cobra.Command, args []string) error {
	var input, filename string
	switch {
	case interpretExpr != "":
		input, filename = interpretExpr, "<eval>"
	case len(args) == 1:
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read file %s: %w", args[0], err)
		}
		input, filename = string(content), args[0]
	default:
		return fmt.Errorf("either provide a file path or use -e for inline code")
	}

	l := lexer.New(input)
	p := parser.New(l)
	prog, err := p.ParseInline()
	if len(l.Errors()) > 0 {
		lerr := l.Errors()[0]
		se := &diag.SourceError{Source: input, Pos: lerr.Pos, Message: lerr.Message}
		fmt.Fprintln(os.Stderr, se.Format(true))
		return fmt.Errorf("lexing %s failed", filename)
	}
	if err != nil {
		if perr, ok := err.(*parser.Error); ok {
			se := &diag.SourceError{Source: input, Pos: perr.Token.Pos, Message: perr.Message}
			fmt.Fprintln(os.Stderr, se.Format(true))
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		return fmt.Errorf("parsing %s failed", filename)
	}

	if dumpAST {
		fmt.Println(prog.String())
		return nil
	}

	it := interpreter.New(nil, nil, nil)
	if interpretSpecsPath != "" {
		packData, err := os.ReadFile(interpretSpecsPath)
		if err != nil {
			return fmt.Errorf("failed to read spec pack %s: %w", interpretSpecsPath, err)
		}
		pack, err := specs.DecodePackYAML(packData)
		if err != nil {
			return fmt.Errorf("failed to parse spec pack %s: %w", interpretSpecsPath, err)
		}
		if err := specs.ApplyPack(pack, it); err != nil {
			return fmt.Errorf("failed to apply spec pack %s: %w", interpretSpecsPath, err)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "references: %v\n", prog.ReferenceNames())
	}
	result, err := it.Run(prog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "evaluation error: %s\n", err)
		return fmt.Errorf("evaluating %s failed", filename)
	}

	fmt.Println(result.String())
	return nil
}
