package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ivlev/albumscript/internal/config"
	"github.com/ivlev/albumscript/internal/engine"
	"github.com/ivlev/albumscript/internal/history"
	applog "github.com/ivlev/albumscript/internal/log"
	"github.com/ivlev/albumscript/internal/system"
	"github.com/ivlev/albumscript/internal/version"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Resolve(args)
	if errors.Is(err, flag.ErrHelp) {
		usage()
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Ошибка конфигурации: %v\n", err)
		return 2
	}
	applog.Init(cfg.Log)
	defer applog.Close()
	log := applog.WithComponent("main")

	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	for _, d := range []string{"input/scripts", "output"} {
		if err := os.MkdirAll(d, 0755); err != nil {
			log.Warn("не удалось создать папку", "dir", d, "err", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *history.Store
	if cfg.HistoryDB != "" {
		if store, err = history.Open(ctx, cfg.HistoryDB); err != nil {
			log.Warn("история запусков недоступна", "err", err)
			store = nil
		} else {
			defer store.Close()
		}
	}

	if cfg.History > 0 {
		if store == nil {
			fmt.Fprintln(os.Stderr, "[-] История запусков не ведется (-history-db пуст)")
			return 1
		}
		runs, err := store.Recent(ctx, cfg.History)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[-] Ошибка чтения истории: %v\n", err)
			return 1
		}
		for _, r := range runs {
			fmt.Println(r.Line())
		}
		return 0
	}

	if cfg.ScriptPath == "" {
		latest, err := system.FindLatestScript("input/scripts")
		if err != nil {
			fmt.Fprintf(os.Stderr, "[-] Ошибка: %v. Положите скрипт альбома в input/scripts/\n", err)
			return 1
		}
		cfg.ScriptPath = latest
		fmt.Printf("[*] Выбран скрипт: %s\n", cfg.ScriptPath)
	}

	if cfg.OutputVideo != "" {
		if cfg.VideoEncoder == "" {
			cfg.VideoEncoder = system.GetBestH264Encoder()
			if cfg.VideoEncoder != "libx264" {
				fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", cfg.VideoEncoder)
			}
		}
		if cfg.Quality == 0 {
			cfg.Quality = system.DefaultQuality(cfg.VideoEncoder)
		}
		if cfg.Workers == 0 {
			cfg.Workers = system.RecommendedWorkers()
		}
	}
	cfg.BuildVersion = version.String()

	project := engine.NewProject(cfg)
	project.History = store
	if _, err := project.Run(ctx); err != nil {
		log.Error("run failed", "script", cfg.ScriptPath, "err", err)
		fmt.Fprintf(os.Stderr, "[-] Ошибка проекта: %v\n", err)
		return 1
	}
	fmt.Println("[+++] Успех!")
	return 0
}

func usage() {
	cfg := config.Defaults()
	fs := flag.NewFlagSet("albumscript", flag.ContinueOnError)
	cfg.Bind(fs)
	fs.SetOutput(os.Stderr)
	fmt.Fprintf(os.Stderr, "albumscript %s\n\nИспользование: albumscript [флаги] [скрипт]\n\n", version.String())
	fs.PrintDefaults()
}
