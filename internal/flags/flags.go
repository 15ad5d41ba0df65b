// Package flags holds the feature switches read from the flags section of
// the configuration. A registry is read-only once built.
package flags

import (
	"maps"
	"slices"

	"github.com/zjrosen/hues/internal/log"
)

const (
	// FlagFullRescan makes edits rescan the whole buffer instead of only the
	// lines under the selections.
	FlagFullRescan = "full-rescan"

	// FlagNoMoveDefer stops cursor movement from postponing a pending pass.
	FlagNoMoveDefer = "no-move-defer"
)

// Known maps every flag hues understands to a one-line description.
var Known = map[string]string{
	FlagFullRescan:  "edits rescan the whole buffer",
	FlagNoMoveDefer: "cursor movement does not postpone a pending pass",
}

// Registry answers whether a flag is on.
type Registry struct {
	flags map[string]bool
}

// New builds a registry from the configured values. Names hues does not
// know are logged and dropped.
func New(configured map[string]bool) *Registry {
	r := &Registry{flags: make(map[string]bool, len(configured))}
	for name, on := range configured {
		if _, ok := Known[name]; !ok {
			log.Warn(log.CatConfig, "Ignoring unknown feature flag", "flag", name)
			continue
		}
		r.flags[name] = on
	}
	log.Debug(log.CatConfig, "Feature flags initialized", "enabled", r.EnabledNames())
	return r
}

// Enabled reports whether name is on. Unknown names and a nil registry
// report false.
func (r *Registry) Enabled(name string) bool {
	if r == nil {
		return false
	}
	return r.flags[name]
}

// EnabledNames returns the flags that are on, sorted.
func (r *Registry) EnabledNames() []string {
	if r == nil {
		return nil
	}
	var names []string
	for name, on := range r.flags {
		if on {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// All returns a copy of the configured known flags.
func (r *Registry) All() map[string]bool {
	if r == nil {
		return map[string]bool{}
	}
	return maps.Clone(r.flags)
}
