package main

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pulselang/pulse/cmd/pulse/internal/config"
	"github.com/pulselang/pulse/cmd/pulse/internal/ui"
	"github.com/pulselang/pulse/internal/cache"
	"github.com/pulselang/pulse/pkg/compiler"
)

func newBuildCommand() *cobra.Command {
	var output string
	var src string
	var sourcemap bool
	var runtime string
	var noCache bool

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Compile all components for production",
		Long:  `Compiles every .pulse file under the source directory into JavaScript ES modules.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(src, output, runtime, sourcemap, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output directory (default from pulse.yml)")
	cmd.Flags().StringVar(&src, "src", "", "Source directory (default from pulse.yml)")
	cmd.Flags().BoolVar(&sourcemap, "sourcemap", false, "Generate source maps")
	cmd.Flags().StringVar(&runtime, "runtime", "", "Runtime module specifier")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "Bypass the build cache")

	return cmd
}

func runBuild(src, output, runtime string, sourcemap, noCache bool) error {
	cfg, err := config.Load(".")
	if err != nil {
		log.Printf("⚠️  Failed to load pulse.yml: %v (using defaults)", err)
		cfg = config.DefaultConfig()
	}

	// CLI flags take precedence over pulse.yml
	if src == "" {
		src = cfg.SrcDir
	}
	if output == "" {
		output = cfg.OutDir
	}
	if runtime == "" {
		runtime = cfg.Runtime
	}
	if !sourcemap {
		sourcemap = cfg.SourceMap
	}

	var buildCache *cache.Cache
	if !noCache {
		buildCache, err = cache.New(cache.DefaultConfig())
		if err != nil {
			log.Printf("⚠️  Failed to initialize build cache: %v", err)
		} else {
			defer buildCache.Close()
		}
	}

	files, err := findPulseFiles(src)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .pulse files found under %s", src)
	}

	if err := os.MkdirAll(output, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	totalErrors := 0
	for _, file := range files {
		n, err := compileFile(file, src, output, buildCache, compiler.Options{
			Runtime:     runtime,
			SourceMap:   sourcemap,
			ScopeStyles: cfg.Scoped(),
		})
		if err != nil {
			return err
		}
		totalErrors += n
	}

	ui.RenderSummary(os.Stdout, len(files), totalErrors)
	if totalErrors > 0 {
		return fmt.Errorf("build failed with %d error(s)", totalErrors)
	}

	reportOutputSize(output)
	return nil
}

// compileFile compiles one .pulse file into the output directory, keeping
// the source's path relative to srcDir. It returns the diagnostic count.
func compileFile(file, srcDir, outDir string, buildCache *cache.Cache, opts compiler.Options) (int, error) {
	source, err := os.ReadFile(file)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", file, err)
	}

	rel, err := filepath.Rel(srcDir, file)
	if err != nil {
		rel = filepath.Base(file)
	}
	opts.Filename = filepath.ToSlash(rel)

	outBase := strings.TrimSuffix(rel, ".pulse")
	jsPath := filepath.Join(outDir, outBase+".js")
	mapPath := jsPath + ".map"
	if err := os.MkdirAll(filepath.Dir(jsPath), 0755); err != nil {
		return 0, err
	}

	cacheKey := ""
	if buildCache != nil {
		cacheKey = cache.Key("js", opts.Filename, opts.Runtime,
			fmt.Sprintf("%t/%t", opts.SourceMap, opts.ScopeStyles), string(source))
		if code, ok := buildCache.Get(cacheKey); ok {
			if err := os.WriteFile(jsPath, code, 0644); err != nil {
				return 0, err
			}
			if opts.SourceMap {
				if m, ok := buildCache.Get(cacheKey + "-map"); ok {
					if err := os.WriteFile(mapPath, m, 0644); err != nil {
						return 0, err
					}
				}
			}
			return 0, nil
		}
	}

	result := compiler.Compile(string(source), opts)
	if !result.Success {
		fmt.Println(ui.FileHeader(opts.Filename))
		ui.RenderDiagnostics(os.Stdout, opts.Filename, string(source), result.Errors)
		return len(result.Errors), nil
	}

	if err := os.WriteFile(jsPath, []byte(result.Code), 0644); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", jsPath, err)
	}

	var mapData []byte
	if opts.SourceMap && result.Map != nil {
		mapData, err = json.Marshal(result.Map)
		if err != nil {
			return 0, fmt.Errorf("failed to encode source map for %s: %w", file, err)
		}
		if err := os.WriteFile(mapPath, mapData, 0644); err != nil {
			return 0, fmt.Errorf("failed to write %s: %w", mapPath, err)
		}
	}

	if buildCache != nil {
		buildCache.Put(cacheKey, []byte(result.Code), file)
		if mapData != nil {
			buildCache.Put(cacheKey+"-map", mapData, file)
		}
	}

	return 0, nil
}

// findPulseFiles returns all .pulse files under dir, sorted for
// deterministic build order.
func findPulseFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") || d.Name() == "node_modules" {
				if path != dir {
					return filepath.SkipDir
				}
			}
			return nil
		}
		if strings.HasSuffix(path, ".pulse") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)
	return files, nil
}

func reportOutputSize(output string) {
	var totalSize int64
	filepath.Walk(output, func(path string, info os.FileInfo, err error) error {
		if err == nil && !info.IsDir() {
			totalSize += info.Size()
		}
		return nil
	})
	log.Printf("✨ Build output: %s (%s)", output, formatSize(totalSize))
}

func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
