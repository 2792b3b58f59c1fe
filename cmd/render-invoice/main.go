// Command render-invoice renders one invoice JSON file to PDF without a server.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/garyjia/invoice-studio/internal/application/service"
	"github.com/garyjia/invoice-studio/internal/config"
	"github.com/garyjia/invoice-studio/internal/container"
	"github.com/garyjia/invoice-studio/internal/domain/entity"
	"github.com/garyjia/invoice-studio/internal/i18n"
	"github.com/garyjia/invoice-studio/pkg/utils"
)

func main() {
	var (
		configPath  = flag.String("config", "configs/config.yaml", "path to the YAML configuration file")
		inPath      = flag.String("in", "", "invoice JSON file")
		profilePath = flag.String("profile", "", "company profile JSON file (defaults to render.company)")
		langFlag    = flag.String("lang", "en", "document language: en or ja")
		outDir      = flag.String("out", ".", "output directory")
		withPreview = flag.Bool("preview", false, "also write a PNG of the first page")
		verbose     = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	logger, err := utils.NewCLILogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *inPath == "" {
		fmt.Fprintln(os.Stderr, "render-invoice: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	written, err := run(context.Background(), options{
		configPath:  *configPath,
		inPath:      *inPath,
		profilePath: *profilePath,
		lang:        *langFlag,
		outDir:      *outDir,
		preview:     *withPreview,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "render-invoice: %v\n", err)
		os.Exit(1)
	}
	for _, path := range written {
		fmt.Println(path)
	}
}

type options struct {
	configPath  string
	inPath      string
	profilePath string
	lang        string
	outDir      string
	preview     bool
}

func run(ctx context.Context, opts options, logger *zap.Logger) ([]string, error) {
	lang, err := i18n.ParseLanguage(opts.lang)
	if err != nil {
		return nil, fmt.Errorf("invalid -lang %q: %w", opts.lang, err)
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}
	containerCfg := cfg.ToContainerConfig()

	var inv entity.Invoice
	if err := readJSON(opts.inPath, &inv); err != nil {
		return nil, err
	}
	if inv.Country.IsValid() {
		inv.Country = inv.Country.Normalize()
	}
	if err := service.ValidateInvoice(&inv); err != nil {
		return nil, err
	}

	var profile *entity.CompanyProfile
	if opts.profilePath != "" {
		profile = &entity.CompanyProfile{}
		if err := readJSON(opts.profilePath, profile); err != nil {
			return nil, err
		}
	}

	renderer, err := container.ProvideRenderer(&containerCfg.Render, containerCfg.Storage.UploadDir, logger)
	if err != nil {
		return nil, err
	}

	doc, err := renderer.Assembler.Render(ctx, &inv, lang, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to render invoice: %w", err)
	}
	if n := doc.Fallbacks(); n > 0 {
		logger.Warn("Some text was drawn without the CJK font", zap.Int("fragments", n))
	}

	if err := os.MkdirAll(opts.outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	pdfPath := filepath.Join(opts.outDir, doc.Filename)
	if err := os.WriteFile(pdfPath, doc.Bytes, 0644); err != nil {
		return nil, fmt.Errorf("failed to write pdf: %w", err)
	}
	written := []string{pdfPath}

	if opts.preview {
		png, err := renderer.Thumbnailer.FirstPage(doc.Bytes)
		if err != nil {
			return written, fmt.Errorf("failed to build preview: %w", err)
		}
		pngPath := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + ".png"
		if err := os.WriteFile(pngPath, png, 0644); err != nil {
			return written, fmt.Errorf("failed to write preview: %w", err)
		}
		written = append(written, pngPath)
	}

	logger.Info("Invoice rendered",
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("language", string(lang)),
		zap.Int("pages", doc.Pages),
		zap.Int("bytes", len(doc.Bytes)))
	return written, nil
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
