package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"geballer-core/internal/domain"
	"geballer-core/internal/engine"
	"geballer-core/internal/infrastructure/storage"
	"geballer-core/internal/navigation"
	"geballer-core/internal/network"
	"geballer-core/internal/server"
	"geballer-core/internal/version"
	"geballer-core/pkg/dungeon"
	"geballer-core/pkg/logger"

	"github.com/faiface/pixel"
)

func init() {
	logger.Init()
}

// spawn: стартовая точка агента.
type spawn struct {
	id     string
	at     pixel.Vec
	facing float64
}

func main() {
	// 1. Парсинг конфигурации
	cfg := engine.NewConfig()
	var scenePath, mapsDir string
	var seed int64
	flag.StringVar(&scenePath, "scene", "", "Path to a YAML scene (empty: generate a dungeon)")
	flag.Int64Var(&seed, "seed", 0, "Dungeon master seed (0 for random)")
	flag.DurationVar(&cfg.Tick, "tick", cfg.Tick, "Simulation step")
	flag.Int64Var(&cfg.Workers, "workers", cfg.Workers, "Concurrent path searches")
	flag.IntVar(&cfg.Droids, "droids", cfg.Droids, "Droids in a generated dungeon")
	flag.BoolVar(&cfg.Explore, "explore", true, "Idle droids explore on their own")
	flag.StringVar(&mapsDir, "maps", "maps", "Where learned maps are saved on shutdown")
	flag.Parse()

	logger.Log.Info("Starting Geballer core...")
	logger.Log.Info(version.String())

	if seed != 0 {
		cfg.Seed = seed
		logger.Log.Infof("Using explicit Master Seed: %d", seed)
	} else {
		logger.Log.Infof("Using random Master Seed: %d", cfg.Seed)
	}

	port := os.Getenv("GEBALLER_PORT")
	if port == "" {
		port = "8080"
	}

	// 2. Уровень и стартовые точки
	store := storage.NewSceneStore(mapsDir)
	level, spawns, err := loadLevel(cfg, store, scenePath)
	if err != nil {
		logger.Log.Fatal("Failed to prepare level: ", err)
	}

	// 3. Мир
	pool := navigation.NewPool(cfg.Workers, nil)
	hub := network.NewBroadcaster()
	world := engine.NewWorld(cfg, level, pool, hub)
	for _, s := range spawns {
		if _, err := world.Spawn(s.id, s.at, s.facing); err != nil {
			logger.Log.Fatal("Failed to spawn agent: ", err)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go world.Run(ctx)

	// 4. Запуск сервера
	srv := server.New(world, hub, port)
	if err := srv.Run(ctx); err != nil {
		logger.Log.Fatal("Server start error: ", err)
	}

	logger.Log.Info("Shutting down...")
	pool.Close()

	// Сохраняем карты всех агентов
	for _, id := range world.AgentIDs() {
		lvl, segments, entities, ok := world.Memory(id)
		if !ok {
			continue
		}
		path, err := store.SaveMap(id, storage.MapScene(lvl.ID, lvl.Bounds, segments, entities))
		if err != nil {
			logger.Log.WithError(err).WithField("agent", id).Error("Failed to save map")
			continue
		}
		logger.Log.WithField("agent", id).Infof("Map saved to %s", path)
	}

	logger.Log.Info("Done.")
}

// loadLevel читает сцену или, если путь пуст, генерирует подземелье.
func loadLevel(cfg engine.Config, store *storage.SceneStore, scenePath string) (*domain.Level, []spawn, error) {
	if scenePath != "" {
		abs, err := filepath.Abs(scenePath)
		if err != nil {
			return nil, nil, err
		}
		sc, err := store.Load(abs)
		if err != nil {
			return nil, nil, err
		}
		if len(sc.Agents) == 0 {
			return nil, nil, fmt.Errorf("scene %s has no agents", scenePath)
		}
		level, err := sc.Build()
		if err != nil {
			return nil, nil, err
		}
		spawns := make([]spawn, 0, len(sc.Agents))
		for _, a := range sc.Agents {
			spawns = append(spawns, spawn{id: a.ID, at: a.At.Vec(), facing: a.Facing})
		}
		logger.Log.Infof("Scene %s loaded: %d walls, %d items", scenePath, len(level.Walls), len(level.Items()))
		return level, spawns, nil
	}

	params := dungeon.DefaultParams()
	params.Width, params.Height = cfg.Width, cfg.Height
	params.Rooms, params.Droids = cfg.Rooms, cfg.Droids

	start := time.Now()
	level, points, err := dungeon.Generate(1, cfg.Seed, params)
	if err != nil {
		return nil, nil, err
	}
	spawns := make([]spawn, 0, len(points))
	for i, p := range points {
		spawns = append(spawns, spawn{id: fmt.Sprintf("droid-%d", i+1), at: p})
	}
	logger.Log.Infof("Dungeon generated in %s: %d walls, %d items", time.Since(start), len(level.Walls), len(level.Items()))
	return level, spawns, nil
}
