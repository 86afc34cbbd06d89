package model

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// FilePreview holds the first lines of a file shown next to a listing
type FilePreview struct {
	Path      string   // File that was read
	Lines     []string // Up to MaxLines lines from the top of the file
	MaxLines  int      // Requested line count
	Truncated bool     // Whether the file has more lines than returned
	Binary    bool     // Whether a NUL byte was seen (content not shown)
	ErrorMsg  string   // Error message if file couldn't be read
}

// ExpandTilde expands a leading ~ to the user's home directory.
func ExpandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			return home
		}
	}
	return path
}

// PreviewFile reads at most maxLines lines from the top of filePath
func PreviewFile(filePath string, maxLines int) FilePreview {
	result := FilePreview{
		Path:     filePath,
		MaxLines: maxLines,
	}
	if maxLines < 1 {
		result.ErrorMsg = fmt.Sprintf("Line count %d out of range", maxLines)
		return result
	}

	file, err := os.Open(ExpandTilde(filePath))
	if err != nil {
		result.ErrorMsg = fmt.Sprintf("Could not read file: %v", err)
		return result
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.IndexByte(line, 0) >= 0 {
			result.Binary = true
			result.Lines = nil
			return result
		}
		if len(result.Lines) == maxLines {
			result.Truncated = true
			break
		}
		result.Lines = append(result.Lines, line)
	}

	if err := scanner.Err(); err != nil {
		result.ErrorMsg = fmt.Sprintf("Error reading file: %v", err)
	}
	return result
}
