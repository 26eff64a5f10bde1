package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

var unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// GenerateUniqueFilename builds a collision-free file name inside dir from
// the original upload name.
func GenerateUniqueFilename(dir, original string) string {
	base := filepath.Base(original)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = unsafeFilenameChars.ReplaceAllString(stem, "_")
	if stem == "" {
		stem = "upload"
	}

	name := fmt.Sprintf("%s_%d%s", stem, time.Now().UnixNano(), ext)
	for i := 1; fileExists(filepath.Join(dir, name)); i++ {
		name = fmt.Sprintf("%s_%d_%d%s", stem, time.Now().UnixNano(), i, ext)
	}
	return name
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
