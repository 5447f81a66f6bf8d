package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/api"
	"github.com/Dzazaleo/Spine-Asset-Optimizer-v1/internal/config"
)

func main() {
	configFile := flag.String("config", "", "Path to config file (JSON or YAML)")
	listen := flag.String("listen", "", "Listen address (default :8080)")
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
	cfg.Resolve(config.Flags{Listen: *listen})

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	api.NewServer().Register(e)

	fmt.Printf("Spine Asset Optimizer API listening on %s\n", cfg.Listen)
	if err := e.Start(cfg.Listen); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}
