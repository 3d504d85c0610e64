package obs

import "strings"

var idCollections = map[string]bool{
	"tasks":         true,
	"teams":         true,
	"organizations": true,
	"languages":     true,
	"users":         true,
}

// CanonicalPath collapses resource ids into a placeholder so metric label
// cardinality stays bounded. Query strings are stripped.
func CanonicalPath(path string) string {
	if i := strings.Index(path, "?"); i >= 0 {
		path = path[:i]
	}
	if path == "" {
		return "/"
	}
	parts := strings.Split(path, "/")
	for i := 1; i < len(parts); i++ {
		if i >= 2 && idCollections[parts[i-1]] && parts[i] != "" {
			parts[i] = ":id"
		}
	}
	return strings.Join(parts, "/")
}
