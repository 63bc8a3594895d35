package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/easyswim/engine"
)

func main() {
	configPath := flag.String("config", "", "yaml config file (embedded defaults when empty)")
	scriptPath := flag.String("script", "", "tengo scenario to drive the controller")
	watch := flag.Bool("watch", false, "reload -config when it changes on disk")
	flag.Parse()

	cfg, err := engine.LoadConfig(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	var watcher *engine.ConfigWatcher
	if *watch && *configPath != "" {
		watcher, err = engine.WatchConfig(*configPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	game, err := NewGame(cfg, *scriptPath, watcher)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	ebiten.SetTPS(cfg.TickRate)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("easyswim")

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
