// Command depscheck fails when the planning core imports transport or service
// packages. Run it from the module root.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
)

const module = "beta-than-ever/planner"

type packageInfo struct {
	ImportPath string
	Imports    []string
}

// rule forbids packages under Scope from importing anything with one of the
// Forbidden prefixes.
type rule struct {
	Scope     string
	Forbidden []string
}

var rules = []rule{
	{
		Scope: module + "/internal/planner",
		Forbidden: []string{
			module + "/internal/net",
			module + "/internal/app",
			module + "/internal/problem",
			module + "/cmd",
			"net/http",
			"github.com/gorilla/websocket",
			"github.com/spf13/cobra",
		},
	},
	{
		Scope: module + "/internal/wall",
		Forbidden: []string{
			module + "/internal/planner",
			module + "/logging",
		},
	},
	{
		Scope: module + "/internal/climber",
		Forbidden: []string{
			module + "/internal/planner",
			module + "/logging",
		},
	},
}

func main() {
	cmd := exec.Command("go", "list", "-json", "./internal/...")
	cmd.Env = os.Environ()
	output, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Stderr.Write(exitErr.Stderr)
		}
		fmt.Fprintf(os.Stderr, "depscheck: failed to list packages: %v\n", err)
		os.Exit(1)
	}

	pkgs, err := decodePackages(bytes.NewReader(output))
	if err != nil {
		fmt.Fprintf(os.Stderr, "depscheck: failed to decode package info: %v\n", err)
		os.Exit(1)
	}

	if violations := check(pkgs, rules); len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "depscheck: found forbidden imports:")
		for _, violation := range violations {
			fmt.Fprintf(os.Stderr, "  %s\n", violation)
		}
		os.Exit(1)
	}
}

// decodePackages reads the concatenated JSON objects `go list -json` prints.
func decodePackages(r io.Reader) ([]packageInfo, error) {
	decoder := json.NewDecoder(r)
	var pkgs []packageInfo
	for {
		var pkg packageInfo
		if err := decoder.Decode(&pkg); err != nil {
			if errors.Is(err, io.EOF) {
				return pkgs, nil
			}
			return nil, err
		}
		pkgs = append(pkgs, pkg)
	}
}

func check(pkgs []packageInfo, rules []rule) []string {
	var violations []string
	for _, pkg := range pkgs {
		for _, r := range rules {
			if !hasPathPrefix(pkg.ImportPath, r.Scope) {
				continue
			}
			for _, imp := range pkg.Imports {
				for _, forbidden := range r.Forbidden {
					if hasPathPrefix(imp, forbidden) {
						violations = append(violations, fmt.Sprintf("%s -> %s", pkg.ImportPath, imp))
					}
				}
			}
		}
	}
	sort.Strings(violations)
	return violations
}

// hasPathPrefix matches whole path elements, so "net/http" does not match
// "net/httptest".
func hasPathPrefix(path, prefix string) bool {
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}
