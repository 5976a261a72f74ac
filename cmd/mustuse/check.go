package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mustuse/internal/diag"
	"mustuse/internal/diagfmt"
	"mustuse/internal/driver"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] [<file.mu.toml|file.mub|directory>]",
	Short: "Check call sites against must-use annotations",
	Long: `Check loads hierarchy dumps, propagates must-use annotations across
override families and reports every call site that discards a result it was
required to use. Without an argument the dump paths come from mustuse.toml.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Bool("no-warnings", false, "ignore warnings in diagnostics")
	checkCmd.Flags().Bool("warnings-as-errors", false, "treat warnings as errors")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().Bool("with-notes", false, "include provenance notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	checkCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")
}

// runCheck executes the "check" command: it collects dump inputs from the
// argument or the project manifest, runs the analysis, renders diagnostics in
// the chosen format and exits with a non-zero status when errors remain.
func runCheck(cmd *cobra.Command, args []string) error {
	// Получаем флаги
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}

	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}

	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	noWarnings, err := cmd.Flags().GetBool("no-warnings")
	if err != nil {
		return fmt.Errorf("failed to get no-warnings flag: %w", err)
	}

	warningsAsErrors, err := cmd.Flags().GetBool("warnings-as-errors")
	if err != nil {
		return fmt.Errorf("failed to get warnings-as-errors flag: %w", err)
	}

	if noWarnings && warningsAsErrors {
		return fmt.Errorf("no-warnings and warnings-as-errors flags cannot be used together")
	}

	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}

	fullPath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}

	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}

	uiFlag, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := readUIMode(uiFlag)
	if err != nil {
		return err
	}

	// Входы: аргумент командной строки либо манифест. Манифест также даёт
	// дефолты для jobs/max-diagnostics/warnings-as-errors, явные флаги сильнее.
	var roots []string
	if len(args) == 1 {
		roots = []string{args[0]}
	} else {
		manifest, ok, err := loadProjectManifest(".")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%s", noMustuseTomlMessage)
		}
		roots, err = resolveManifestInputs(manifest)
		if err != nil {
			return err
		}
		check := manifest.Config.Check
		if !cmd.Flags().Changed("format") && check.Format != "" {
			format = check.Format
		}
		if jobs == 0 && check.Jobs > 0 {
			jobs = check.Jobs
		}
		if !cmd.Root().PersistentFlags().Changed("max-diagnostics") && check.MaxDiagnostics > 0 {
			maxDiagnostics = check.MaxDiagnostics
		}
		if !cmd.Flags().Changed("warnings-as-errors") && check.WarningsAsErrors {
			warningsAsErrors = true
		}
	}

	switch format {
	case "pretty", "json", "short":
		// supported
	default:
		return fmt.Errorf("unknown format: %s", format)
	}

	var paths []string
	for _, root := range roots {
		expanded, err := driver.CollectInputs(root)
		if err != nil {
			return fmt.Errorf("failed to collect inputs: %w", err)
		}
		paths = append(paths, expanded...)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no dump files found")
	}

	req := driver.Request{
		Paths:          paths,
		Jobs:           jobs,
		MaxDiagnostics: maxDiagnostics,
	}

	cleanup, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	// TUI только для pretty в терминале; машинные форматы идут без него.
	var result driver.Result
	if format == "pretty" && shouldUseTUI(mode, quiet) {
		result, err = runAnalyzeWithUI(cmd.Context(), "mustuse check", req)
	} else {
		result, err = driver.Analyze(cmd.Context(), req)
	}
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if noWarnings {
		result.Bag.DropWarnings()
	}
	if warningsAsErrors {
		result.Bag.PromoteWarnings()
	}

	pathMode := diagfmt.PathModeAuto
	if fullPath {
		pathMode = diagfmt.PathModeAbsolute
	}

	colorFlag, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	useColor := colorFlag == "on" || (colorFlag == "auto" && isTerminal(os.Stdout))

	switch format {
	case "pretty":
		diagfmt.Pretty(os.Stdout, result.Bag, result.FileSet, diagfmt.PrettyOpts{
			Color:     useColor,
			PathMode:  pathMode,
			ShowNotes: withNotes,
		})
	case "short":
		output := diag.FormatShortDiagnostics(result.Bag.Items(), result.FileSet, withNotes)
		if output != "" {
			fmt.Fprintln(os.Stdout, output)
		}
	case "json":
		jsonOpts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         pathMode,
			IncludeNotes:     withNotes,
		}
		if err := diagfmt.JSON(os.Stdout, result.Bag, result.FileSet, jsonOpts); err != nil {
			return fmt.Errorf("failed to format diagnostics: %w", err)
		}
	}

	if showTimings {
		printPhaseTimings(os.Stderr, result.Timing)
	}

	if result.Bag.HasErrors() {
		// Suppress cobra usage output on diagnostic errors
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		return fmt.Errorf("") // Silent error - diagnostics already printed
	}
	return nil
}
