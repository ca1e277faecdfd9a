package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/rathaus-crops/internal/config"
	"github.com/ironsheep/rathaus-crops/internal/export"
	"github.com/ironsheep/rathaus-crops/internal/label"
	"github.com/ironsheep/rathaus-crops/internal/logging"
	"github.com/ironsheep/rathaus-crops/internal/ocr"
	"github.com/ironsheep/rathaus-crops/internal/pdf"
	"github.com/ironsheep/rathaus-crops/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("rathaus-export - crop and label town hall photos from a PDF")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  rathaus-export [export] <pdf> [outdir]   Write labeled PNG crops (default outdir export_rathaeuser)")
	fmt.Println("  rathaus-export images <pdf> [outdir]     Dump embedded images as JPEG (default outdir extracted_images)")
	fmt.Println("  rathaus-export serve                     Run the MCP server on stdin/stdout")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version, -v    Print version information")
	fmt.Println("  --help, -h       Print this help message")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  RATHAUS_CONFIG=<file>        YAML configuration file")
	fmt.Println("  RATHAUS_LOG_LEVEL=debug      Log level (debug, info, warn, error)")
	fmt.Println("  RATHAUS_OCR=off              Disable OCR labels")
	fmt.Println("  RATHAUS_OCR_LANG=deu         Tesseract language")
	fmt.Println("  RATHAUS_TESSDATA=<dir>       Tesseract tessdata directory")
	fmt.Println("  RATHAUS_CORRECTIONS=<file>   YAML table of OCR corrections")
	fmt.Println("  RATHAUS_OUTPUT=<dir>         Default output directory for export")
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	switch args[0] {
	case "--version", "-v", "version":
		fmt.Printf("rathaus-export %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	}

	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// stdout is reserved for the MCP protocol in serve mode
	log, err := logging.New(cfg.LogLevel, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, args); err != nil {
		log.WithError(err).Error("failed")
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *logrus.Logger, args []string) error {
	c := cleaner(cfg, log)
	exporter, err := newExporter(cfg, c, log)
	if err != nil {
		return err
	}

	switch args[0] {
	case "serve":
		log.WithFields(logrus.Fields{
			"version": Version,
			"built":   BuildTime,
			"commit":  GitCommit,
		}).Debug("starting MCP server")
		srv := server.New(server.Options{
			Open:      pdf.Open,
			Exporter:  exporter,
			Cleaner:   c,
			OCR:       cfg.OCR,
			OutputDir: cfg.OutputDir,
			Version:   Version,
			Logger:    log,
		})
		return srv.Run(ctx)

	case "images":
		if len(args) < 2 {
			return errors.New("images: missing PDF path")
		}
		outDir := export.DefaultDumpDir
		if len(args) > 2 {
			outDir = args[2]
		}
		n, err := exporter.Dump(ctx, args[1], outDir)
		if err != nil {
			return err
		}
		fmt.Printf("%d images written to %s\n", n, outDir)
		return nil

	case "export":
		args = args[1:]
		if len(args) == 0 {
			return errors.New("export: missing PDF path")
		}
	}

	outDir := cfg.OutputDir
	if len(args) > 1 {
		outDir = args[1]
	}
	res, err := exporter.Export(ctx, args[0], outDir)
	if err != nil {
		return err
	}
	fmt.Printf("%d images written to %s\n", res.Count, outDir)
	return nil
}

func newExporter(cfg config.Config, c *label.Cleaner, log *logrus.Logger) (*export.Exporter, error) {
	opts := []export.Option{
		export.WithLogger(log),
		export.WithCleaner(c),
	}

	if cfg.OCR.Enabled {
		engine, err := ocr.NewTesseract(cfg.OCR.Tessdata)
		switch {
		case errors.Is(err, ocr.ErrOCRNotEnabled):
			log.Warn("built without OCR support, labels come from vector text only")
		case err != nil:
			return nil, err
		default:
			loc := ocr.NewLocator(engine, ocr.DefaultOptions(cfg.OCR.Language), log)
			opts = append(opts, export.WithOCR(loc))
		}
	}

	return export.New(pdf.Open, opts...), nil
}

// cleaner returns the OCR label cleaner. A broken correction table falls back
// to the built-in one.
func cleaner(cfg config.Config, log *logrus.Logger) *label.Cleaner {
	if cfg.Corrections == "" {
		return label.NewCleaner(label.DefaultCorrections())
	}
	corrections, err := label.LoadCorrections(cfg.Corrections)
	if err != nil {
		log.WithError(err).Warn("using built-in corrections")
		return label.NewCleaner(label.DefaultCorrections())
	}
	log.WithFields(logrus.Fields{"file": cfg.Corrections, "entries": len(corrections)}).Debug("loaded corrections")
	return label.NewCleaner(corrections)
}
