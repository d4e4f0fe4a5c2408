// Package app runs the interactive raylib viewer.
package app

import (
	"fmt"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/philipparndt/printview/internal/config"
	"github.com/philipparndt/printview/internal/document"
	"github.com/philipparndt/printview/internal/logger"
	"github.com/philipparndt/printview/internal/render/rlgl"
	"go.uber.org/zap"
)

const windowTitle = "printview"

type App struct {
	cfg      *config.Config
	doc      *document.Document
	renderer *rlgl.Renderer
	log      *zap.Logger

	background rl.Color

	Interaction InteractionState
	FileWatch   FileWatchState
	UI          UIState
}

// Run opens a window showing path and blocks until it is closed
func Run(cfg *config.Config, path string) error {
	log := logger.Named("app")

	flags := uint32(rl.FlagWindowResizable | rl.FlagWindowHighdpi)
	if cfg.Window.MSAA {
		flags |= rl.FlagMsaa4xHint
	}
	rl.SetConfigFlags(flags) // Must be before InitWindow
	rl.SetTraceLogLevel(rl.LogWarning)
	rl.InitWindow(int32(cfg.Window.Width), int32(cfg.Window.Height), windowTitle)
	defer rl.CloseWindow()
	rl.SetTargetFPS(int32(cfg.Window.FPSLimit))
	rl.SetExitKey(rl.KeyNull)

	renderer := rlgl.New()
	app := &App{
		cfg:        cfg,
		doc:        document.New(renderer, cfg),
		renderer:   renderer,
		log:        log,
		background: toRaylib(config.MustColor(cfg.Colors.Background, defaultBackground)),
		FileWatch: FileWatchState{
			changed: make(chan string, 1),
			loaded:  make(chan loadResult, 1),
		},
	}

	start := time.Now()
	if err := app.doc.Open(path, nil); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer app.doc.Close()
	log.Info("model loaded", zap.String("path", path), zap.Duration("elapsed", time.Since(start)))
	app.analyze()
	rl.SetWindowTitle(app.doc.Title(windowTitle))

	if cfg.Watch.Enabled {
		if err := app.setupFileWatcher(); err != nil {
			log.Warn("auto reload not available", zap.Error(err))
		} else {
			defer app.FileWatch.fileWatcher.Close()
		}
	}

	for !rl.WindowShouldClose() {
		if app.handleInput() {
			break
		}

		app.pollReload()

		width := rl.GetScreenWidth()
		height := rl.GetScreenHeight()

		rl.BeginDrawing()
		rl.ClearBackground(app.background)

		app.renderer.BeginFrame(width, height)
		app.doc.Scene().Display(width, height)
		app.doc.Scene().ClearDirty()
		app.renderer.FlushLabels()

		app.drawUI()

		rl.EndDrawing()
	}

	if app.doc.Scene().ModelModified() {
		log.Warn("closing with unsaved changes", zap.String("path", app.doc.Path()))
	}
	return nil
}

// setStatus shows a transient message in the status line
func (app *App) setStatus(format string, args ...any) {
	app.UI.status = fmt.Sprintf(format, args...)
	app.UI.statusAt = time.Now()
}

// reportError logs err and shows it in the status line
func (app *App) reportError(action string, err error) {
	app.log.Error(action+" failed", zap.Error(err))
	app.setStatus("%s failed: %v", action, err)
}
