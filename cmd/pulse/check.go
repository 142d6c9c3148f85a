package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/pulselang/pulse/cmd/pulse/internal/config"
	"github.com/pulselang/pulse/cmd/pulse/internal/ui"
	"github.com/pulselang/pulse/pkg/compiler"
)

func newCheckCommand() *cobra.Command {
	var src string

	cmd := &cobra.Command{
		Use:   "check [files...]",
		Short: "Type-check components without writing output",
		Long:  `Compiles every .pulse file and reports diagnostics without writing any files.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(src, args)
		},
	}

	cmd.Flags().StringVar(&src, "src", "", "Source directory (default from pulse.yml)")

	return cmd
}

func runCheck(src string, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load pulse.yml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}
	if src == "" {
		src = cfg.SrcDir
	}

	files := args
	if len(files) == 0 {
		files, err = findPulseFiles(src)
		if err != nil {
			return err
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no .pulse files found under %s", src)
	}

	totalErrors := 0
	for _, file := range files {
		source, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", file, err)
		}

		result := compiler.Compile(string(source), compiler.Options{
			Runtime:     cfg.Runtime,
			Filename:    file,
			ScopeStyles: cfg.Scoped(),
		})
		if !result.Success {
			fmt.Println(ui.FileHeader(file))
			ui.RenderDiagnostics(os.Stdout, file, string(source), result.Errors)
			totalErrors += len(result.Errors)
		}
	}

	ui.RenderSummary(os.Stdout, len(files), totalErrors)
	if totalErrors > 0 {
		return fmt.Errorf("check failed with %d error(s)", totalErrors)
	}
	return nil
}
