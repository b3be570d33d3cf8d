package batch

import (
	"path"
	"strings"
)

// Tag derives the provenance tag of a file: its base name without prefix
// and suffix. An empty suffix strips the file extension. When stripping
// leaves nothing the base name is returned unchanged. Both slash styles
// separate directories.
//
//	Tag(`C:\in\CentralReport12-13.csv`, "CentralReport", "") == "12-13"
func Tag(file, prefix, suffix string) string {
	base := path.Base(strings.ReplaceAll(file, `\`, "/"))
	if suffix == "" {
		suffix = path.Ext(base)
	}

	tag := strings.TrimPrefix(base, prefix)
	tag = strings.TrimSuffix(tag, suffix)
	if tag == "" {
		return base
	}
	return tag
}
