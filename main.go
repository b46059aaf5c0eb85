package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/poles/common"
	"github.com/pkg/profile"
	"go.uber.org/zap"
)

// Config holds the command line options.
type Config struct {
	Scene   string
	Debug   bool
	Watch   bool
	Profile string
}

func parseFlags(args []string) (Config, error) {
	var cfg Config
	fs := flag.NewFlagSet("poles", flag.ContinueOnError)
	fs.StringVar(&cfg.Scene, "scene", "demo.yaml", "scene file in prefabs/")
	fs.BoolVar(&cfg.Debug, "debug", false, "enable debug logging and overlay")
	fs.BoolVar(&cfg.Watch, "watch", false, "reload the scene when prefab files change")
	fs.StringVar(&cfg.Profile, "profile", "", "write a profile: cpu or mem")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	switch cfg.Profile {
	case "", "cpu", "mem":
	default:
		return Config{}, fmt.Errorf("unknown profile mode %q", cfg.Profile)
	}
	return cfg, nil
}

func startProfile(mode string) interface{ Stop() } {
	switch mode {
	case "cpu":
		return profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		return profile.Start(profile.MemProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	}
	return nil
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	logger := newLogger(cfg.Debug)
	defer func() { _ = logger.Sync() }()

	if p := startProfile(cfg.Profile); p != nil {
		defer p.Stop()
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth, common.BaseHeight)
	ebiten.SetWindowTitle("poles")
	ebiten.SetTPS(common.TPS)

	game, err := NewGame(cfg, logger)
	if err != nil {
		logger.Fatal("start game", zap.Error(err))
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		logger.Error("game exited", zap.Error(err))
	}
}
