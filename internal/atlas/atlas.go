// Package atlas parses the line-oriented texture atlas descriptor that
// maps named sprite regions to packing coordinates inside page images.
package atlas

import (
	"strconv"
	"strings"
)

// Region is one named sub-image packed into a texture page.
type Region struct {
	Page           string
	Name           string
	Rotated        bool
	X, Y           int
	Width, Height  int
	OriginalWidth  int
	OriginalHeight int
	OffsetX        int
	OffsetY        int
	Index          int
}

// knownKeys is the closed set of property keys the format defines.
// A colon line whose key is not in this set is a region name, not a
// property.
var knownKeys = map[string]bool{
	"rotate": true,
	"xy":     true,
	"size":   true,
	"orig":   true,
	"offset": true,
	"index":  true,
	"format": true,
	"filter": true,
	"repeat": true,
	"bounds": true,
	"split":  true,
	"pad":    true,
}

// Parse scans the atlas text in a single forward pass and returns the
// regions keyed by name. It never fails: unknown keys are ignored,
// malformed values keep the field's default, and on a name collision
// the last occurrence wins.
func Parse(content string) map[string]Region {
	regions := make(map[string]Region)

	page := ""
	var cur *Region

	flush := func() {
		if cur != nil {
			regions[cur.Name] = *cur
			cur = nil
		}
	}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		// A blank line closes the current page block.
		if line == "" {
			flush()
			page = ""
			continue
		}

		// First non-empty line of a block names the page.
		if page == "" {
			page = line
			continue
		}

		if idx := strings.Index(line, ":"); idx >= 0 {
			key := strings.TrimSpace(line[:idx])
			if knownKeys[key] {
				if cur != nil {
					applyProperty(cur, key, strings.TrimSpace(line[idx+1:]))
				}
				// With no region in progress this is page-level
				// metadata (size, format, filter...) and is dropped.
				continue
			}
		}

		// Anything else starts a new region.
		flush()
		cur = &Region{Page: page, Name: line, Index: -1}
	}

	flush()
	return regions
}

func applyProperty(r *Region, key, value string) {
	switch key {
	case "rotate":
		r.Rotated = value == "true"
	case "xy":
		r.X, r.Y = parsePair(value)
	case "size":
		r.Width, r.Height = parsePair(value)
	case "orig":
		r.OriginalWidth, r.OriginalHeight = parsePair(value)
	case "offset":
		r.OffsetX, r.OffsetY = parsePair(value)
	case "index":
		r.Index = parseInt(value, -1)
	}
	// Remaining known keys (format, filter, repeat, bounds, split,
	// pad) carry no geometry this pipeline uses.
}

func parsePair(value string) (int, int) {
	parts := strings.SplitN(value, ",", 2)
	if len(parts) != 2 {
		return 0, 0
	}
	return parseInt(parts[0], 0), parseInt(parts[1], 0)
}

// parseInt is best-effort: a malformed token leaves the default in
// place rather than rejecting the file.
func parseInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return n
}
