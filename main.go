package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"envdiff/internal/config"
	"envdiff/internal/envfile"
	"envdiff/internal/model"
	"envdiff/internal/report"
	"envdiff/internal/session"
	"envdiff/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"
	"github.com/tcnksm/go-latest"
)

func checkUpdate(currentVer string) {
	githubTag := &latest.GithubTag{
		Owner:      "envdiff",
		Repository: "envdiff",
	}

	res, err := latest.Check(githubTag, currentVer)
	if err != nil {
		return // Silently fail
	}

	if res.Outdated {
		fmt.Printf("\n✨ A new version is available: %s (you have %s)\n", res.Current, currentVer)
		fmt.Println("👉 Download it from https://github.com/envdiff/envdiff/releases")
	} else if pflag.Lookup("update").Changed {
		fmt.Printf("✅ You are using the latest version: %s\n", currentVer)
	}
}

func main() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: envdiff [options] [file ...]\n\n")
		fmt.Fprintf(os.Stderr, "envdiff compares .env-style files side by side, lets you edit values\n")
		fmt.Fprintf(os.Stderr, "interactively, and writes changes back without touching comments,\n")
		fmt.Fprintf(os.Stderr, "ordering, or formatting. With no files given, .env* in the current\n")
		fmt.Fprintf(os.Stderr, "directory are compared.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  envdiff .env .env.production   # Start TUI mode\n")
		fmt.Fprintf(os.Stderr, "  envdiff --report               # Print diff report to stdout\n")
		fmt.Fprintf(os.Stderr, "  envdiff -r -o diff.txt a b     # Save report to file\n")
		fmt.Fprintf(os.Stderr, "  envdiff --json a b             # Output diff as JSON\n")
	}

	jsonFlag := pflag.BoolP("json", "j", false, "Output the diff as JSON")
	reportFlag := pflag.BoolP("report", "r", false, "Generate a plain-text diff report (CLI mode)")
	outputFlag := pflag.StringP("output", "o", "", "Save report to the specified file (combined with --report)")
	verboseFlag := pflag.BoolP("verbose", "v", false, "Include identical keys in the report")
	versionFlag := pflag.BoolP("version", "V", false, "Print version information")
	updateFlag := pflag.BoolP("update", "u", false, "Check for latest version")
	helpFlag := pflag.BoolP("help", "h", false, "Show this help message")
	pflag.Parse()

	if *helpFlag {
		pflag.Usage()
		return
	}

	if *versionFlag {
		fmt.Printf("envdiff version %s\n", model.Version)
		return
	}

	if *updateFlag {
		checkUpdate(model.Version)
		return
	}

	paths, err := resolvePaths(pflag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *reportFlag {
		runReportMode(paths, *outputFlag, *verboseFlag)
		return
	}

	if *jsonFlag {
		runJsonMode(paths)
		return
	}

	// Default: TUI
	runTuiMode(paths)
}

// resolvePaths falls back to .env* discovery in the current directory when
// no files are given on the command line.
func resolvePaths(args []string) ([]string, error) {
	if len(args) > 0 {
		paths := make([]string, 0, len(args))
		for _, a := range args {
			paths = append(paths, envfile.ExpandTilde(a))
		}
		return paths, nil
	}

	matches, err := filepath.Glob(".env*")
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range matches {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			paths = append(paths, p)
		}
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files given and no .env* files found here")
	}
	sort.Strings(paths)
	return paths, nil
}

func runReportMode(paths []string, outputFile string, verbose bool) {
	s, err := session.Load(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	text := report.Generate(s.Files, s.GroundRows(), verbose)

	if outputFile != "" {
		err := os.WriteFile(outputFile, []byte(text), 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing report to %s: %v\n", outputFile, err)
			os.Exit(1)
		}
		fmt.Printf("Report saved to %s\n", outputFile)
	} else {
		fmt.Println(text)
	}
}

func runJsonMode(paths []string) {
	s, err := session.Load(paths)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(report.BuildJSON(s.Files, s.GroundRows()))
}

func runTuiMode(paths []string) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: bad config file, using defaults: %v\n", err)
		cfg = config.Default()
	}

	m := tui.InitialModel(paths, cfg)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Printf("Alas, there's been an error: %v", err)
		os.Exit(1)
	}
}
