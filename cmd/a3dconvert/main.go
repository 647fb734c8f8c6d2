package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"a3dconvert/internal/batch"
	"a3dconvert/internal/config"
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: a3dconvert [flags] input.dae [output.a3d]\n       a3dconvert [flags] -dir src [-out dst]\n\n")
		flag.PrintDefaults()
	}

	// CLI flags
	configFile := flag.String("config", "", "Path to config.json file")
	output := flag.String("o", "", "Output archive (default: input with .a3d extension)")
	sourceDir := flag.String("dir", "", "Convert every .dae file under this directory")
	outputDir := flag.String("out", "", "Output directory for -dir (default: source directory)")
	textures := flag.Bool("textures", false, "Embed referenced images as RGBA allocations")
	manifest := flag.String("manifest", "", "Write a JSON manifest of the converted archives")
	quiet := flag.Bool("quiet", false, "Only print errors")

	flag.Parse()

	// Load config
	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	flags := config.Flags{
		Output:        *output,
		SourceDir:     *sourceDir,
		OutputDir:     *outputDir,
		Manifest:      *manifest,
		EmbedTextures: *textures,
		Quiet:         *quiet,
	}
	switch flag.NArg() {
	case 0:
	case 1:
		flags.Input = flag.Arg(0)
	case 2:
		flags.Input = flag.Arg(0)
		if flags.Output == "" {
			flags.Output = flag.Arg(1)
		}
	default:
		flag.Usage()
		os.Exit(2)
	}

	// CLI flags override config file
	cfg.Resolve(flags)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(2)
	}

	var out io.Writer = os.Stdout
	if cfg.Quiet {
		out = io.Discard
	}
	batchCfg := batch.Config{
		EmbedTextures: cfg.EmbedTextures,
		Out:           out,
		Err:           os.Stderr,
	}

	var results []batch.Result
	if cfg.Batch() {
		jobs, err := batch.Jobs(cfg.SourceDir, cfg.OutputDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(jobs) == 0 {
			fmt.Fprintf(out, "No .dae files in %s.\n", cfg.SourceDir)
			os.Exit(0)
		}
		fmt.Fprintf(out, "Files: %d\n", len(jobs))
		fmt.Fprintf(out, "Output: %s\n", cfg.OutputDir)
		fmt.Fprintln(out, "------------------------------------------------------------")
		results = batch.Run(batchCfg, jobs)
	} else {
		results = []batch.Result{batch.Convert(batchCfg, batch.Job{Source: cfg.Input, Output: cfg.Output})}
	}

	// Count results
	success, failed := 0, 0
	var errors []batch.Result
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failed++
			errors = append(errors, r)
		}
	}

	if cfg.Batch() {
		fmt.Fprintln(out, "------------------------------------------------------------")
		fmt.Fprintf(out, "Converted: %d/%d\n", success, len(results))
	}
	if len(errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nFailed (%d):\n", failed)
		limit := min(len(errors), 20)
		for _, e := range errors[:limit] {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", e.Source, e.Error)
		}
	}

	// Write manifest
	if cfg.Manifest != "" {
		os.MkdirAll(filepath.Dir(cfg.Manifest), 0755)
		if err := batch.WriteManifest(cfg.Manifest, results); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
		} else {
			fmt.Fprintf(out, "Manifest: %s\n", cfg.Manifest)
		}
	}

	if failed > 0 {
		os.Exit(1)
	}
}
