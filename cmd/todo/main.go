package main

import (
	"fmt"
	"io"
	"os"

	"todoapp/internal/config"
	"todoapp/internal/logging"
	"todoapp/internal/storage"
	"todoapp/internal/theme"
	"todoapp/internal/todo"
	"todoapp/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Printf("%v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := config.ResolveConfigPath()
	cfg, err := config.LoadOrCreate(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	opts := logging.DefaultOptions()
	opts.Level = cfg.LogLevel
	logger, logFile, err := logging.OpenFile(cfg.LogFile, opts)
	if err != nil {
		return fmt.Errorf("failed to open log: %w", err)
	}
	defer logFile.Close()

	kv, closer, err := openKV(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer closer.Close()
	logger.Info("starting", "config", configPath, "db", cfg.DBPath)
	if db, ok := kv.(*storage.Store); ok {
		keys, err := db.Keys()
		if err != nil {
			logger.Warn("list stored keys", "err", err)
		} else {
			logger.Debug("stored keys", "keys", keys)
		}
	}

	store := todo.New(kv, todo.WithLogger(logger.WithPrefix("tasks")), todo.WithFilter(cfg.Filter()))
	store.Initialize()
	th := theme.New(kv, theme.WithLogger(logger.WithPrefix("theme")), theme.WithMode(cfg.ThemeMode()))
	th.Initialize()

	if err := ui.Run(store, th, cfg, logger); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func openKV(dbPath string) (storage.KV, io.Closer, error) {
	if dbPath == config.MemoryDB {
		return storage.NewMemory(), io.NopCloser(nil), nil
	}
	s, err := storage.Open(dbPath)
	if err != nil {
		return nil, nil, err
	}
	return s, s, nil
}
