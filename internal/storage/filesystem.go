package storage

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var audioExtensions = map[string]bool{
	".mp3": true, ".wav": true, ".m4a": true, ".flac": true,
	".ogg": true, ".opus": true, ".webm": true,
}

// unsafeChars matches everything not allowed in a stored file name.
var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// IsAudioFile reports whether the name has an accepted audio extension.
func IsAudioFile(name string) bool {
	return audioExtensions[strings.ToLower(filepath.Ext(name))]
}

// AudioExtensions returns the accepted extensions without the leading dot,
// for error messages.
func AudioExtensions() []string {
	exts := make([]string, 0, len(audioExtensions))
	for ext := range audioExtensions {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	return exts
}

// SafeFileName strips path components and replaces unsafe characters, so an
// uploaded name can be used on disk. Returns "" when nothing usable remains.
func SafeFileName(name string) string {
	name = filepath.Base(name)
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.Trim(name, "._")
	if name == "" || name == "." || name == ".." {
		return ""
	}
	return name
}

// ResolveWithin joins name onto dir and rejects path traversal outside dir.
func ResolveWithin(dir, name string) (string, error) {
	full := filepath.Join(dir, name)
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	absFull, err := filepath.Abs(full)
	if err != nil {
		return "", err
	}
	if absFull != absDir && !strings.HasPrefix(absFull, absDir+string(filepath.Separator)) {
		return "", os.ErrPermission
	}
	return full, nil
}
