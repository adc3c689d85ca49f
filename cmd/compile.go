package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/somc-project/somc/internal/codec"
	"github.com/somc-project/somc/internal/config"
	"github.com/somc-project/somc/internal/stylesheet"
)

// compileOutput is the JSON output schema for the compile command.
type compileOutput struct {
	Version      string                   `json:"version"`
	Summary      codec.Summary            `json:"summary"`
	BinaryPath   string                   `json:"binary_path,omitempty"`
	FallbackPath string                   `json:"fallback_path,omitempty"`
	FallbackMap  []codec.FallbackMapEntry `json:"fallback_map,omitempty"`
}

// NewCompileCmd creates the compile subcommand: parse -> classify ->
// resolve tokens -> build graph -> propagate contamination -> assemble
// manifests -> intern pool -> emit tiers, over one or more stylesheet
// sources (§6.5).
func NewCompileCmd(reader config.FileReader) *cobra.Command {
	var tokensPath, diffPath, outDir string
	var reportMode, jsonMode, binaryMode bool

	cmd := &cobra.Command{
		Use:          "compile <source>...",
		Short:        "Compile stylesheet sources into a binary artifact",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(cmd, reader, args, tokensPath, diffPath, outDir, reportMode, jsonMode, binaryMode)
		},
	}

	cmd.Flags().StringVar(&tokensPath, "tokens", "", "external token table (JSON or YAML) merged before classification")
	cmd.Flags().StringVar(&diffPath, "diff", "", "previous summary JSON/YAML for watch-mode callers to diff against")
	cmd.Flags().StringVar(&outDir, "out", ".", "directory to write .bsom/.fallback.css artifacts into")
	cmd.Flags().BoolVar(&reportMode, "report", false, "print a human-readable summary to stdout")
	cmd.Flags().BoolVar(&jsonMode, "json", false, "print the summary record as JSON to stdout")
	cmd.Flags().BoolVar(&binaryMode, "binary", true, "write the binary artifact and fallback files")

	return cmd
}

func runCompile(cmd *cobra.Command, reader config.FileReader, sources []string, tokensPath, diffPath, outDir string, reportMode, jsonMode, binaryMode bool) error {
	ctx := cmd.Context()

	var external map[string]string
	if tokensPath != "" {
		table, err := config.LoadTokenTable(ctx, reader, tokensPath)
		if err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("loading token table: %w", err)}
		}
		external = table
	}

	if diffPath != "" {
		// The core only loads and exposes the previous snapshot; diffing
		// against it is a CLI-layer concern outside this package's scope
		// (§1, §6.5).
		if _, err := config.LoadDiffSnapshot(ctx, reader, diffPath); err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("loading diff snapshot: %w", err)}
		}
	}

	var merged []byte
	for _, path := range sources {
		data, err := reader.ReadFile(ctx, path)
		if err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("reading source %s: %w", path, err)}
		}
		merged = append(merged, data...)
		merged = append(merged, '\n')
	}

	analyzer := stylesheet.NewAnalyzer(nil)
	var res *stylesheet.Result
	if external != nil {
		res = analyzer.AnalyzeWithExternalTokens(merged, external)
	} else {
		res = analyzer.Analyze(merged)
	}

	binary := codec.Emit(res)
	fallbackText := codec.FallbackText(res)
	fallbackMap := codec.FallbackMap(res)

	out := compileOutput{
		Version: "1",
		Summary: codec.BuildSummary(res, sources, len(binary), len(fallbackText), time.Now().UTC()),
	}

	if binaryMode {
		binPath := outDir + "/output.bsom"
		fallbackPath := outDir + "/output.fallback.css"
		if err := os.WriteFile(binPath, binary, 0o644); err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("writing binary artifact: %w", err)}
		}
		if err := os.WriteFile(fallbackPath, []byte(fallbackText), 0o644); err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("writing fallback artifact: %w", err)}
		}
		out.BinaryPath = binPath
		out.FallbackPath = fallbackPath
		out.FallbackMap = fallbackMap
	}

	if jsonMode {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(out); err != nil {
			return &ExitCodeError{Code: 2, Err: fmt.Errorf("encoding output: %w", err)}
		}
	} else if reportMode || !binaryMode {
		printReport(cmd, out.Summary)
	}

	if out.Summary.RuleCounts[stylesheet.Nondeterministic.String()] > 0 {
		return &ExitCodeError{Code: 1, Silent: true}
	}
	return nil
}

func printReport(cmd *cobra.Command, s codec.Summary) {
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "rules: %d static, %d deterministic, %d nondeterministic\n",
		s.RuleCounts[stylesheet.Static.String()],
		s.RuleCounts[stylesheet.Deterministic.String()],
		s.RuleCounts[stylesheet.Nondeterministic.String()])
	fmt.Fprintf(w, "boundaries: %d\n", s.BoundaryCount)
	fmt.Fprintf(w, "binary size: %d bytes, fallback size: %d bytes\n", s.BinarySize, s.FallbackSize)
	for _, warn := range s.Warnings {
		fmt.Fprintf(w, "warning: %s: %s\n", warn.Kind, warn.Message)
	}
}
