package app

import (
	"time"

	"github.com/philipparndt/printview/internal/model"
	"github.com/philipparndt/printview/pkg/analysis"
	"github.com/philipparndt/printview/pkg/watcher"
)

// InteractionState holds mouse drag state
type InteractionState struct {
	dragging bool
	panning  bool // Shift held when the drag started
	lastX    float64
	lastY    float64
}

// FileWatchState holds file watching and reload state
type FileWatchState struct {
	fileWatcher      *watcher.FileWatcher
	changed          chan string // Paths reported by the watcher
	loaded           chan loadResult
	needsReload      bool
	isLoading        bool
	loadingStartTime time.Time
}

// loadResult is produced by the background loader and applied on the main thread
type loadResult struct {
	model model.Model
	err   error
}

// UIState holds HUD state
type UIState struct {
	showHelp  bool
	status    string
	statusAt  time.Time
	meshInfo  *analysis.MeasurementResult
	layerInfo *analysis.ToolpathResult
}
