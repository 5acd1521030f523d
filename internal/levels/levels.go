// internal/levels/levels.go
//
// Difficulty presets offered to the player (e.g. easy=3, medium=10, hard=100).
//
// Initialization behavior (Init):
//   1. If LEVELS_FILE is set, presets are read from that file.
//   2. Otherwise the embedded assets/levels.txt is used.
//
// File format: one "<name> <upper bound>" pair per line; blank lines and
// lines starting with '#' are ignored, malformed lines are skipped.
//
// Environment variables:
//   LEVELS_FILE=/path/to/levels.txt

package levels

import (
	"bufio"
	"errors"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/robalobadob/numberguess/assets"
)

// Preset is a named difficulty.
type Preset struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

var (
	initOnce   sync.Once
	presets    []Preset          // ascending by level
	byName     map[string]Preset // lowercase name → preset
	initialErr error
)

// Init loads presets exactly once.
// Returns an error if no usable preset was found.
func Init() error {
	initOnce.Do(func() {
		var lines []string
		var err error
		if path := os.Getenv("LEVELS_FILE"); path != "" {
			lines, err = readLevelFile(path)
		} else {
			lines, err = assets.LevelsList()
		}
		if err != nil {
			initialErr = err
			return
		}
		presets = Parse(lines)
		byName = make(map[string]Preset, len(presets))
		for _, p := range presets {
			byName[p.Name] = p
		}
		if len(presets) == 0 {
			initialErr = errors.New("levels: no presets defined")
		}
	})
	return initialErr
}

// Parse converts "name bound" lines into presets sorted by level.
// The first definition of a name wins.
func Parse(lines []string) []Preset {
	seen := make(map[string]bool)
	var out []Preset
	for _, line := range lines {
		f := strings.Fields(strings.TrimSpace(line))
		if len(f) != 2 || strings.HasPrefix(f[0], "#") {
			continue
		}
		n, err := strconv.Atoi(f[1])
		if err != nil || n < 1 {
			continue
		}
		name := strings.ToLower(f[0])
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, Preset{Name: name, Level: n})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// readLevelFile loads raw lines from a presets file.
func readLevelFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		out = append(out, sc.Text())
	}
	return out, sc.Err()
}

// Presets returns a copy of the loaded presets.
func Presets() []Preset {
	return append([]Preset(nil), presets...)
}

// Lookup finds a preset by name (case-insensitive).
func Lookup(name string) (Preset, bool) {
	p, ok := byName[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Count returns the number of loaded presets.
func Count() int { return len(presets) }
