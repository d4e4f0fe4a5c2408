package app

import (
	"fmt"
	"time"

	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/pkg/analysis"
	"github.com/philipparndt/printview/pkg/watcher"
	"go.uber.org/zap"
)

// setupFileWatcher watches the open file and flags it for reloading
func (app *App) setupFileWatcher() error {
	fw, err := watcher.NewFileWatcher(app.cfg.Watch.Debounce, app.log.Named("watcher"))
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Runs on the watcher goroutine; the main loop picks the path up
	callback := func(changedFile string) {
		select {
		case app.FileWatch.changed <- changedFile:
		default:
		}
	}

	files := app.doc.Sources()
	if err := fw.Watch(files, callback); err != nil {
		fw.Close()
		return fmt.Errorf("failed to watch files: %w", err)
	}

	fw.Start()
	app.FileWatch.fileWatcher = fw
	app.log.Info("watching files for changes", zap.Strings("paths", files))

	return nil
}

// pollReload starts pending reloads and applies finished ones.
// Must be called on the main thread.
func (app *App) pollReload() {
	select {
	case path := <-app.FileWatch.changed:
		app.log.Info("file changed", zap.String("path", path))
		app.FileWatch.needsReload = true
	default:
	}

	if app.FileWatch.needsReload && !app.FileWatch.isLoading {
		app.FileWatch.needsReload = false
		app.reloadModel()
	}

	select {
	case result := <-app.FileWatch.loaded:
		app.applyLoadedModel(result)
	default:
	}
}

// reloadModel parses the open file in the background
func (app *App) reloadModel() {
	if app.FileWatch.isLoading {
		return
	}

	app.FileWatch.isLoading = true
	app.FileWatch.loadingStartTime = time.Now()
	app.log.Debug("reloading model")

	go func() {
		m, err := app.doc.Reload()
		app.FileWatch.loaded <- loadResult{model: m, err: err}
	}()
}

// applyLoadedModel swaps in a reloaded model, keeping the camera
func (app *App) applyLoadedModel(result loadResult) {
	app.FileWatch.isLoading = false
	if result.err != nil {
		app.reportError("reload", result.err)
		return
	}

	app.doc.Show(result.model)
	app.analyze()

	elapsed := time.Since(app.FileWatch.loadingStartTime)
	app.log.Info("model reloaded", zap.Duration("elapsed", elapsed))
	app.setStatus("Reloaded in %.2fs", elapsed.Seconds())
}

// analyze refreshes the statistics shown in the HUD
func (app *App) analyze() {
	app.UI.meshInfo = nil
	app.UI.layerInfo = nil

	switch m := app.doc.Scene().Model().(type) {
	case *model.Mesh:
		app.UI.meshInfo = analysis.AnalyzeMesh(m.Vertices())
	case *model.Toolpath:
		app.UI.layerInfo = analysis.AnalyzeToolpath(m.Layers())
	}
}
