package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/wb-go/wbf/zlog"

	"github.com/aliskhannn/photowatermark/internal/config"
	"github.com/aliskhannn/photowatermark/internal/fonts"
	"github.com/aliskhannn/photowatermark/internal/library"
	"github.com/aliskhannn/photowatermark/internal/processor"
	templaterepo "github.com/aliskhannn/photowatermark/internal/repository/template"
	"github.com/aliskhannn/photowatermark/internal/storage/local"
	"github.com/aliskhannn/photowatermark/internal/watermark"
)

func main() {
	opts, err := parseOptions(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	zlog.Init()
	if err := (config.Log{Level: opts.logLevel}).ApplyLevel(); err != nil {
		zlog.Logger.Warn().Err(err).Msg("keeping default log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	res, err := run(ctx, opts)
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("batch export failed")
		os.Exit(1)
	}
	if res.Failed > 0 {
		os.Exit(1)
	}
}

// run expands the inputs and exports them one file at a time. Inputs that
// cannot be loaded are reported as failed items of the result.
func run(ctx context.Context, opts options) (processor.BatchResult, error) {
	wm := opts.watermark
	if opts.template != "" {
		t, err := templaterepo.NewFileStore(opts.templatesPath).GetTemplate(ctx, opts.template)
		if err != nil {
			return processor.BatchResult{}, fmt.Errorf("template %q: %w", opts.template, err)
		}
		wm = opts.overlay(t.Watermark)
	}

	files, err := expandInputs(opts.inputs)
	if err != nil {
		return processor.BatchResult{}, err
	}
	zlog.Logger.Info().Int("files", len(files)).Msg("inputs expanded")

	dirs := config.Fonts{Dirs: opts.fontDirs, UseSystem: opts.systemFonts}.SearchDirs()
	p := processor.New(local.NewStorage(), watermark.New(fonts.NewResolver(dirs)))

	res := p.ExportFiles(ctx, files, opts.export, &wm, func(percent int, message string) {
		zlog.Logger.Info().Int("percent", percent).Msg(message)
	})
	for _, item := range res.Items {
		if !item.OK {
			zlog.Logger.Warn().Str("source", item.Path).Msg(item.Message)
		}
	}

	return res, nil
}

// expandInputs replaces every directory among inputs with the supported
// images below it. Other inputs are kept as given.
func expandInputs(inputs []string) ([]string, error) {
	var files []string
	for _, in := range inputs {
		st, err := os.Stat(in)
		if err != nil || !st.IsDir() {
			files = append(files, in)
			continue
		}
		paths, err := library.ScanFolder(in)
		if err != nil {
			return nil, err
		}
		files = append(files, paths...)
	}
	return files, nil
}
