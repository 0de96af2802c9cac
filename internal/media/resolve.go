package media

import "strings"

// Resolve turns an asset path from the job store into a fetchable URL.
// Empty input yields "" (no media). Absolute http(s) URLs pass through;
// anything else is rooted at base.
func Resolve(base, path string) string {
	if path == "" {
		return ""
	}
	if IsAbsolute(path) {
		return path
	}
	base = strings.TrimRight(base, "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

func IsAbsolute(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Resolver binds Resolve to one API origin.
type Resolver struct {
	Base string
}

func NewResolver(base string) Resolver {
	return Resolver{Base: base}
}

func (r Resolver) Resolve(path string) string {
	return Resolve(r.Base, path)
}

func (r Resolver) ResolveAll(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if u := r.Resolve(p); u != "" {
			out = append(out, u)
		}
	}
	return out
}
