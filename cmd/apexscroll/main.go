package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"time"

	"github.com/ivlev/apexscroll/internal/config"
	"github.com/ivlev/apexscroll/internal/director"
	"github.com/ivlev/apexscroll/internal/engine"
	"github.com/ivlev/apexscroll/internal/surface"
	"github.com/ivlev/apexscroll/internal/system"
	"github.com/ivlev/apexscroll/internal/video"
)

var buildVersion = "dev"

func main() {
	configPtr := flag.String("config", "", "YAML-конфиг (если пусто, используются значения по умолчанию)")
	framesPtr := flag.String("frames", "", "Папка с кадрами, заменяет frames.folder")
	countPtr := flag.Int("count", 0, "Количество кадров, заменяет frames.count")
	pdfPtr := flag.String("pdf", "", "Брать кадры из страниц PDF вместо папки (\"latest\": самый свежий файл в input/pdf/)")
	dpiPtr := flag.Int("dpi", 0, "DPI рендера PDF")
	widthPtr := flag.Float64("width", 0, "Логическая ширина")
	heightPtr := flag.Float64("height", 0, "Логическая высота")
	dprPtr := flag.Float64("dpr", 0, "Плотность пикселей (DPR)")
	fpsPtr := flag.Int("fps", 0, "FPS превью")
	durationPtr := flag.Float64("duration", 0, "Длительность превью в секундах")
	workersPtr := flag.Int("workers", 0, "Потоки загрузки кадров (по умолчанию: число CPU)")
	scriptPtr := flag.String("script", "", "YAML-сценарий прокрутки или \"latest\" для самого свежего файла в scripts/")
	writeScriptPtr := flag.Bool("write-script", false, "Записать сценарий по умолчанию в scripts/ и выйти")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто и нет -frames-out, генерируется автоматически в output/)")
	framesOutPtr := flag.String("frames-out", "", "Папка для PNG-кадров превью (если пусто, не пишутся)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	statsPtr := flag.Bool("stats", false, "Вывести отчет о производительности")
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
		fmt.Printf("[*] Конфиг: %s\n", *configPtr)
	}
	cfg.BuildVersion = buildVersion

	// Flags given on the command line win over the file
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "frames":
			cfg.Frames.Folder = *framesPtr
		case "count":
			cfg.Frames.Count = *countPtr
		case "pdf":
			cfg.Frames.Source = config.SourcePDF
			cfg.Frames.PDFPath = *pdfPtr
			if *pdfPtr == "latest" {
				latest, err := system.FindLatestFile("input/pdf", ".pdf")
				if err != nil {
					log.Fatalf("[-] Ошибка: %v. Положите PDF в input/pdf/", err)
				}
				cfg.Frames.PDFPath = latest
				fmt.Printf("[*] Выбран файл: %s\n", latest)
			}
		case "dpi":
			cfg.Frames.DPI = *dpiPtr
		case "width":
			cfg.Surface.Width = *widthPtr
		case "height":
			cfg.Surface.Height = *heightPtr
		case "dpr":
			cfg.Surface.PixelRatio = *dprPtr
		case "fps":
			cfg.Preview.FPS = *fpsPtr
		case "duration":
			cfg.Preview.Duration = *durationPtr
		case "workers":
			cfg.Frames.Workers = *workersPtr
		case "script":
			cfg.Preview.Script = *scriptPtr
		case "output":
			cfg.Preview.OutputVideo = *outputPtr
		case "frames-out":
			cfg.Preview.OutputDir = *framesOutPtr
		case "quality":
			cfg.Preview.Quality = *qualityPtr
		case "stats":
			cfg.Preview.ShowStats = *statsPtr
		}
	})

	if *writeScriptPtr {
		os.MkdirAll("scripts", 0755)
		path := director.GenerateScriptPath("scripts")
		if err := director.WriteScript(director.DefaultScript(cfg.Preview.Duration), path); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
		fmt.Printf("[+++] Успех! Сценарий сохранен: %s\n", path)
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	// Every frame is opened at once during loading
	system.InitResourceLimits(uint64(cfg.Frames.Count) + 256)

	var script *director.Script
	switch cfg.Preview.Script {
	case "":
	case "latest":
		path, err := director.FindLatestScript("scripts")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Сначала запустите с -write-script", err)
		}
		cfg.Preview.Script = path
		fallthrough
	default:
		s, err := director.ReadScript(cfg.Preview.Script)
		if err != nil {
			log.Fatalf("[-] Ошибка чтения сценария: %v", err)
		}
		script = s
		fmt.Printf("[*] Используется сценарий: %s\n", cfg.Preview.Script)
	}

	if cfg.Preview.OutputVideo == "" && cfg.Preview.OutputDir == "" {
		os.MkdirAll("output", 0755)
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.Preview.OutputVideo = filepath.Join("output", fmt.Sprintf("apex_preview_%s.mp4", timestamp))
	}

	loader, err := engine.OpenLoader(cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer loader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sink, err := openSinks(ctx, cfg)
	if err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}

	preview := engine.NewPreview(cfg, loader, script, sink)
	preview.Log = logger
	report, err := preview.Run(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Fatalf("[-] Прервано")
		}
		log.Fatalf("[-] Ошибка превью: %v", err)
	}

	if cfg.Preview.ShowStats {
		report.Collect()
		fmt.Print(report.String())
	}
	if cfg.Preview.OutputVideo != "" {
		fmt.Printf("[+++] Успех! Результат: %s\n", cfg.Preview.OutputVideo)
	}
	if cfg.Preview.OutputDir != "" {
		fmt.Printf("[+++] Успех! Кадры: %s\n", cfg.Preview.OutputDir)
	}
}

// openSinks turns the preview outputs into one sink
func openSinks(ctx context.Context, cfg *config.Config) (video.Sink, error) {
	var sinks video.Multi

	if cfg.Preview.OutputDir != "" {
		dir := filepath.Join(cfg.Preview.OutputDir, "frames_"+time.Now().Format("2006-01-02_15-04-05"))
		cfg.Preview.OutputDir = dir
		seq, err := video.NewPNGSequence(ctx, dir, runtime.NumCPU())
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, seq)
	}

	if cfg.Preview.OutputVideo != "" {
		encoderName := cfg.Preview.Encoder
		if encoderName == "" {
			encoderName = system.GetBestH264Encoder()
			if encoderName != "libx264" {
				fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
			}
		}
		quality := cfg.Preview.Quality
		if quality == 0 {
			quality = system.DefaultQuality(encoderName)
		}

		w, h := surface.BackingDimensions(cfg.Surface.Width, cfg.Surface.Height, cfg.Surface.PixelRatio)
		enc, err := video.NewFFmpegEncoder(ctx, video.Params{
			Width:   w,
			Height:  h,
			FPS:     cfg.Preview.FPS,
			Encoder: encoderName,
			Quality: quality,
			Output:  cfg.Preview.OutputVideo,
		})
		if err != nil {
			sinks.Close()
			return nil, err
		}
		sinks = append(sinks, enc)
	}

	return sinks, nil
}
