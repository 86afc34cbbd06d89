package model

// Version is the lstree release, overridable with
// -ldflags "-X lstree/internal/model.Version=1.2.3".
var Version = "0.3.0"

// Listing represents one directory visited by a walk.
type Listing struct {
	Path  string   // Display path (root argument joined with Name)
	Name  string   // Slash-separated name inside the walked FS ("." for the root)
	Depth int      // 0 for the root
	Dirs  []string // Subdirectory entry names, enumeration order
	Files []string // Non-directory entry names, enumeration order
}

// Summary aggregates a set of listings for reports and status lines.
type Summary struct {
	Dirs        int
	Files       int
	MaxDepth    int
	BusiestDir  string // Directory holding the most files
	BusiestSize int
	EmptyDirs   int // Directories with neither files nor subdirectories
}

// Summarize computes a Summary over listings.
func Summarize(listings []Listing) Summary {
	var s Summary
	s.BusiestSize = -1
	for _, l := range listings {
		s.Dirs++
		s.Files += len(l.Files)
		if l.Depth > s.MaxDepth {
			s.MaxDepth = l.Depth
		}
		if len(l.Files) > s.BusiestSize {
			s.BusiestSize = len(l.Files)
			s.BusiestDir = l.Path
		}
		if len(l.Files) == 0 && len(l.Dirs) == 0 {
			s.EmptyDirs++
		}
	}
	if s.BusiestSize < 0 {
		s.BusiestSize = 0
	}
	return s
}
