// Command check_arch_boundaries enforces which internal packages may import
// each other. Run it from the module root:
//
//	go run ./scripts
//
// The same check runs under `go test ./scripts`.
package main

import (
	"fmt"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const modulePrefix = "shorts-studio/internal/"

var allowed = map[string]map[string]bool{
	"cli": {
		"config":    true,
		"logging":   true,
		"media":     true,
		"model":     true,
		"studio":    true,
		"studioapi": true,
		"version":   true,
	},
	"studio": {
		"model":     true,
		"studioapi": true,
	},
	"studioapi": {
		"model":   true,
		"version": true,
	},
	"logging": {
		"config": true,
	},
	"config":  {},
	"media":   {},
	"model":   {},
	"version": {},
}

func main() {
	violations, err := checkBoundaries(".", allowed)
	if err != nil {
		fmt.Fprintf(os.Stderr, "boundary walk failed: %v\n", err)
		os.Exit(1)
	}
	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "architecture boundary violations detected:")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "- %s\n", v)
		}
		os.Exit(1)
	}
	fmt.Println("architecture boundary check: OK")
}

// checkBoundaries walks root/internal and reports every non-test import of a
// sibling package that rules does not allow.
func checkBoundaries(root string, rules map[string]map[string]bool) ([]string, error) {
	var violations []string
	internalDir := filepath.Join(root, "internal")
	err := filepath.WalkDir(internalDir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}

		rel, err := filepath.Rel(internalDir, path)
		if err != nil {
			return err
		}
		srcPkg := strings.Split(filepath.ToSlash(rel), "/")[0]
		if srcPkg == "" || !strings.Contains(filepath.ToSlash(rel), "/") {
			return nil
		}
		allowMap, ok := rules[srcPkg]
		if !ok {
			violations = append(violations, fmt.Sprintf("%s: unknown source package %q", rel, srcPkg))
			return nil
		}

		file, err := parser.ParseFile(token.NewFileSet(), path, nil, parser.ImportsOnly)
		if err != nil {
			return err
		}
		for _, imp := range file.Imports {
			tgtPkg, ok := targetPackage(strings.Trim(imp.Path.Value, "\""))
			if !ok || tgtPkg == srcPkg {
				continue
			}
			if !allowMap[tgtPkg] {
				violations = append(violations, fmt.Sprintf("%s: %s -> %s is forbidden", rel, srcPkg, tgtPkg))
			}
		}
		return nil
	})
	return violations, err
}

func targetPackage(importPath string) (string, bool) {
	rest, ok := strings.CutPrefix(importPath, modulePrefix)
	if !ok || rest == "" {
		return "", false
	}
	return strings.Split(rest, "/")[0], true
}
