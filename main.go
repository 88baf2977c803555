package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/edward-yakop/go-apkwatch/internal/app"
	"github.com/edward-yakop/go-apkwatch/internal/misc"
)

func main() {
	args := app.ArgsList{}
	flag.StringVar(&args.Config,
		"config", "apkwatch.yaml",
		"optional YAML config file")
	flag.StringVar(&args.Output,
		"output", "",
		"path of the downloaded package (overrides config)")
	flag.StringVar(&args.Cache,
		"cache", "",
		"path of the version cache file (overrides config)")
	flag.BoolVar(&args.Verbose,
		"verbose", false,
		"verbose output trace log")
	flag.Parse()

	misc.SetDefaultLog(os.Stderr, misc.LogLevel(args.Verbose))

	cfg, err := app.ParseOption(args)
	if err != nil {
		fmt.Println("--------------------------------------------")
		fmt.Printf("Error: %s\n", err)
		fmt.Println("--------------------------------------------")
		fmt.Println("Usage:")
		flag.PrintDefaults()
		os.Exit(2)
	}

	fmt.Printf("      Page: %s\n", cfg.PageURL)
	fmt.Printf("  Download: %s\n", cfg.DownloadURL)
	fmt.Printf("     Cache: %s\n", cfg.CachePath)
	fmt.Printf("    Output: %s\n", cfg.OutputPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := app.Main(ctx, cfg)
	stop()
	os.Exit(code)
}
