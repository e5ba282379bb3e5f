package watcher

import "path/filepath"

// ChangeAnalysis describes what changed and which reload steps need to run
type ChangeAnalysis struct {
	ReloadEvents   bool
	ReloadAliases  bool
	ReloadFeatures bool
	ChangedFiles   []string
}

// Watched names the files a dashboard reloads from
type Watched struct {
	Data      string
	Aliases   string
	Countries string
}

// Files returns the configured paths, skipping empty ones
func (w Watched) Files() []string {
	var files []string
	for _, p := range []string{w.Data, w.Aliases, w.Countries} {
		if p != "" {
			files = append(files, p)
		}
	}
	return files
}

// AnalyzeChanges determines which reload steps are needed for a change batch
func AnalyzeChanges(event ChangeEvent, w Watched) *ChangeAnalysis {
	analysis := &ChangeAnalysis{
		ChangedFiles: event.Paths,
	}

	for _, p := range event.Paths {
		switch {
		case samePath(p, w.Data):
			// New events invalidate every graph and aggregate
			analysis.ReloadEvents = true
		case samePath(p, w.Aliases):
			analysis.ReloadAliases = true
		case samePath(p, w.Countries):
			// New features need the resolver rebuilt as well
			analysis.ReloadFeatures = true
			analysis.ReloadAliases = true
		}
	}

	return analysis
}

func samePath(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	if errA != nil || errB != nil {
		return filepath.Clean(a) == filepath.Clean(b)
	}
	return absA == absB
}
