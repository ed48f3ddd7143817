// Copyright (c) 2026 Blog Team
// Blog - REST blog back end
// This source code is licensed under the MIT license found in the LICENSE file.

// i18n-linter checks the locale files against the message IDs used in the
// Go sources. It fails when a locale lacks a key of the primary locale or
// when the code uses a key no locale defines; unused keys are reported as
// warnings.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultLocalesDir = "internal/i18n/locales"
	defaultPrimary    = "en.yaml"
)

// Report is the outcome of one lint run.
type Report struct {
	// Used holds every key found in the sources; only keys passed to T
	// directly can be Undefined.
	Used      map[string]struct{}
	Undefined []string
	Orphaned  []string
	// Missing maps a locale file to the primary keys it lacks.
	Missing map[string][]string
}

// Failed reports whether the run found blocking issues.
func (r Report) Failed() bool {
	return len(r.Undefined) > 0 || len(r.Missing) > 0
}

func main() {
	root := flag.String("root", ".", "project root")
	locales := flag.String("locales", defaultLocalesDir, "locale directory, relative to root")
	primary := flag.String("primary", defaultPrimary, "primary locale file")
	flag.Parse()

	rep, err := Lint(*root, filepath.Join(*root, *locales), *primary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "i18n-linter: %v\n", err)
		os.Exit(1)
	}
	Print(os.Stdout, rep)
	if rep.Failed() {
		os.Exit(1)
	}
}

// Lint compares the keys used below root with the locale files.
func Lint(root, localesDir, primary string) (Report, error) {
	rep := Report{Missing: map[string][]string{}}

	called, used, err := findUsedKeys(root)
	if err != nil {
		return rep, fmt.Errorf("scan sources: %w", err)
	}
	rep.Used = used

	primaryKeys, err := loadKeysFromLocale(filepath.Join(localesDir, primary))
	if err != nil {
		return rep, fmt.Errorf("load primary locale %s: %w", primary, err)
	}
	for key := range called {
		if _, ok := primaryKeys[key]; !ok {
			rep.Undefined = append(rep.Undefined, key)
		}
	}
	for key := range primaryKeys {
		if _, ok := used[key]; !ok {
			rep.Orphaned = append(rep.Orphaned, key)
		}
	}
	sort.Strings(rep.Undefined)
	sort.Strings(rep.Orphaned)

	files, err := filepath.Glob(filepath.Join(localesDir, "*.yaml"))
	if err != nil {
		return rep, err
	}
	for _, file := range files {
		if filepath.Base(file) == primary {
			continue
		}
		keys, err := loadKeysFromLocale(file)
		if err != nil {
			return rep, fmt.Errorf("load %s: %w", file, err)
		}
		var missing []string
		for key := range primaryKeys {
			if _, ok := keys[key]; !ok {
				missing = append(missing, key)
			}
		}
		if len(missing) > 0 {
			sort.Strings(missing)
			rep.Missing[filepath.Base(file)] = missing
		}
	}
	return rep, nil
}

// Print writes a human readable summary of rep.
func Print(w io.Writer, rep Report) {
	fmt.Fprintf(w, "Found %d translation keys used in source code.\n", len(rep.Used))
	for _, key := range rep.Undefined {
		fmt.Fprintf(w, "  - Undefined: %s\n", key)
	}
	locales := make([]string, 0, len(rep.Missing))
	for file := range rep.Missing {
		locales = append(locales, file)
	}
	sort.Strings(locales)
	for _, file := range locales {
		for _, key := range rep.Missing[file] {
			fmt.Fprintf(w, "  - Missing in %s: %s\n", file, key)
		}
	}
	for _, key := range rep.Orphaned {
		fmt.Fprintf(w, "  - Orphaned: %s\n", key)
	}
	if !rep.Failed() && len(rep.Orphaned) == 0 {
		fmt.Fprintln(w, "All translation files are consistent.")
	}
}

// keyRe matches T("key") calls as well as bare literals shaped like message
// IDs ("auth.required"), which covers keys passed around in variables.
var keyRe = regexp.MustCompile(`\bT\("([^"]+)"|"([a-z]+\.[a-z_]+(?:\.[a-z_]+)*)"`)

// findUsedKeys scans the non-test Go files below root and returns the keys
// passed to T and, as a superset, every key-shaped literal. The tools
// directory is skipped.
func findUsedKeys(root string) (called, keys map[string]struct{}, err error) {
	called = make(map[string]struct{})
	keys = make(map[string]struct{})
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != root && (name == "tools" || strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") || strings.HasSuffix(path, "_test.go") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		for _, m := range keyRe.FindAllStringSubmatch(string(content), -1) {
			switch {
			case m[1] != "":
				called[m[1]] = struct{}{}
				keys[m[1]] = struct{}{}
			case m[2] != "":
				keys[m[2]] = struct{}{}
			}
		}
		return nil
	})
	return called, keys, err
}

// loadKeysFromLocale reads a YAML file and returns a flat map of its keys.
func loadKeysFromLocale(path string) (map[string]struct{}, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var data map[string]interface{}
	if err := yaml.Unmarshal(content, &data); err != nil {
		return nil, err
	}
	keys := make(map[string]struct{})
	flattenYAML("", data, keys)
	return keys, nil
}

// flattenYAML turns nested maps into dot-separated keys.
func flattenYAML(prefix string, node interface{}, keys map[string]struct{}) {
	switch v := node.(type) {
	case map[string]interface{}:
		for k, val := range v {
			next := k
			if prefix != "" {
				next = prefix + "." + k
			}
			flattenYAML(next, val, keys)
		}
	default:
		if prefix != "" {
			keys[prefix] = struct{}{}
		}
	}
}
