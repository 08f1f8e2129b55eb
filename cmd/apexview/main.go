package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/ivlev/apexscroll/internal/config"
	"github.com/ivlev/apexscroll/internal/engine"
	"github.com/ivlev/apexscroll/internal/system"
	"github.com/ivlev/apexscroll/internal/viewer"
)

func main() {
	configPtr := flag.String("config", "", "YAML-конфиг (если пусто, используются значения по умолчанию)")
	framesPtr := flag.String("frames", "", "Папка с кадрами, заменяет frames.folder")
	pdfPtr := flag.String("pdf", "", "Брать кадры из страниц PDF вместо папки")
	verbosePtr := flag.Bool("v", false, "Отладочные логи")

	flag.Parse()

	level := slog.LevelInfo
	if *verbosePtr {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := config.Default()
	if *configPtr != "" {
		loaded, err := config.Load(*configPtr)
		if err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		cfg = loaded
	}
	if *framesPtr != "" {
		cfg.Frames.Folder = *framesPtr
	}
	if *pdfPtr != "" {
		cfg.Frames.Source = config.SourcePDF
		cfg.Frames.PDFPath = *pdfPtr
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	system.InitResourceLimits(uint64(cfg.Frames.Count) + 256)

	loader, err := engine.OpenLoader(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer loader.Close()

	fmt.Printf("[*] Загрузка %d кадров из %s\n", cfg.Frames.Count, describeSource(cfg))
	fmt.Println("[*] Колесо/PgUp/PgDn: прокрутка, 1-3: переход к разделу, F3: статистика, Esc: выход")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := viewer.Run(ctx, cfg, loader, logger); err != nil {
		log.Fatalf("[-] Ошибка просмотра: %v", err)
	}
}

func describeSource(cfg *config.Config) string {
	if cfg.Frames.Source == config.SourcePDF {
		return cfg.Frames.PDFPath
	}
	return cfg.Frames.Folder
}
