package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconDir     = "▸" // Directory with children
	IconLeaf    = "·" // Directory without subdirectories
	IconEmpty   = "∅" // Directory with no entries at all
	IconFile    = " " // Space (files get no icon to reduce noise)
	IconDeepest = "↓" // Marks the deepest level in the summary
)

// DirIcon picks the icon for a listing.
func DirIcon(l Listing) string {
	switch {
	case len(l.Dirs) == 0 && len(l.Files) == 0:
		return IconEmpty
	case len(l.Dirs) == 0:
		return IconLeaf
	default:
		return IconDir
	}
}
