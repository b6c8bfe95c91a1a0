package archive

import (
	"strings"
)

// extensionFormats maps a lowercase file extension to the archive format it
// signals. Unknown extensions are treated as regular files, never opened as
// archives.
var extensionFormats = map[string]Format{
	".zip": FormatZip,

	".tar":     FormatTar,
	".tar.gz":  FormatTar,
	".tgz":     FormatTar,
	".tar.bz2": FormatTar,
	".tbz2":    FormatTar,

	".rar": FormatRar,
}

// Detect returns the archive format signaled by path's extension, and
// whether one was recognized at all.
func Detect(path string) (Format, bool) {
	lower := strings.ToLower(path)
	for _, suffix := range []string{".tar.gz", ".tar.bz2"} {
		if strings.HasSuffix(lower, suffix) {
			return extensionFormats[suffix], true
		}
	}
	for ext, format := range extensionFormats {
		if strings.HasSuffix(lower, ext) {
			return format, true
		}
	}
	return "", false
}
