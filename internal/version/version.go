package version

import "strings"

// Value is set at build time with -ldflags "-X shorts-studio/internal/version.Value=v1.2.3".
var Value = "dev"

func String() string {
	v := strings.TrimSpace(Value)
	if v == "" {
		return "dev"
	}
	return v
}
