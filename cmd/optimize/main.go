package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/archive"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/bundle"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/config"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/optimize"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/watcher"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (JSON or YAML)")
	bundleDir := flag.String("bundle", "", "Asset bundle directory (default: current directory)")
	analysisFile := flag.String("analysis", "", "Skeleton analyzer output JSON (default: <bundle>/analysis.json)")
	outputArchive := flag.String("out", "", "Output archive path (default: <bundle>/optimized.zip)")
	buffer := flag.Float64("buffer", 0, "Headroom percentage added to measured requirements")
	sprites := flag.Bool("sprites", false, "Unpack atlas regions into individual sprites first")
	watch := flag.Bool("watch", false, "Re-run whenever the bundle directory changes")

	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}
	cfg.Resolve(config.Flags{
		BundleDir:     *bundleDir,
		AnalysisFile:  *analysisFile,
		OutputArchive: *outputArchive,
		BufferPercent: *buffer,
	})
	if *sprites {
		cfg.UnpackSprites = true
	}

	fmt.Printf("Spine Asset Optimizer\n")
	fmt.Printf("Bundle: %s, Buffer: %g%%\n", cfg.BundleDir, cfg.BufferPercent)
	fmt.Printf("Output: %s\n", cfg.OutputArchive)
	fmt.Println("------------------------------------------------------------")

	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if !*watch {
			os.Exit(1)
		}
	}

	if *watch {
		w, err := watcher.New(cfg.BundleDir, 500*time.Millisecond, func() {
			fmt.Println("Bundle changed, re-running...")
			if err := run(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			}
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer w.Close()

		fmt.Printf("Watching %s (Ctrl-C to stop)\n", cfg.BundleDir)
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
	}
}

func run(cfg config.Config) error {
	start := time.Now()

	b, err := bundle.Load(cfg.BundleDir, cfg.AnalysisFile, cfg.UnpackSprites)
	if err != nil {
		return err
	}
	images := b.Images()
	fmt.Printf("Loaded: %d images, %d regions, %d animations\n",
		len(images), len(b.Regions), len(b.Analyses))

	tasks, warnings := optimize.Calculate(b.Analyses, images, cfg.BufferPercent)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	resizeCount := 0
	for _, task := range tasks {
		if task.Resize {
			resizeCount++
		}
	}
	fmt.Printf("Tasks: %d (%d to resize, %d unreferenced images dropped)\n",
		len(tasks), resizeCount, len(images)-len(tasks))

	data, err := archive.Generate(tasks, func(done, total int) {
		if done%25 == 0 || done == total {
			fmt.Printf("  [%d/%d]\n", done, total)
		}
	})
	if err != nil {
		return err
	}

	if err := os.WriteFile(cfg.OutputArchive, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.OutputArchive, err)
	}

	manifestPath := filepath.Join(filepath.Dir(cfg.OutputArchive), "manifest.json")
	if err := archive.WriteManifest(manifestPath, tasks); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: manifest write failed: %v\n", err)
	}

	fmt.Printf("Done in %.1fs: %s (%d bytes)\n",
		time.Since(start).Seconds(), cfg.OutputArchive, len(data))
	return nil
}
