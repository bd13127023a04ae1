package core

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// TestOnlyCoreSelectsPersistenceDrivers ensures that concrete persistence
// drivers are wired exclusively through the core storage factory. Everything
// else must work against the domain.PersistentStore interface.
func TestOnlyCoreSelectsPersistenceDrivers(t *testing.T) {
	driverPrefix := "shipcore/internal/infra/persistence"
	allowed := []string{
		"shipcore/internal/core",
		"shipcore/internal/infra/persistence",
	}

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "shipcore/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	isAllowed := func(path string) bool {
		for _, prefix := range allowed {
			if path == prefix || strings.HasPrefix(path, prefix+"/") {
				return true
			}
		}
		return false
	}

	seen := make(map[string]struct{})
	for _, pkg := range pkgs {
		if isAllowed(pkg.PkgPath) {
			continue
		}
		for importPath := range pkg.Imports {
			if importPath == driverPrefix || strings.HasPrefix(importPath, driverPrefix+"/") {
				seen[pkg.PkgPath+": "+importPath] = struct{}{}
			}
		}
	}

	if len(seen) > 0 {
		violations := make([]string, 0, len(seen))
		for v := range seen {
			violations = append(violations, v)
		}
		sort.Strings(violations)
		for _, v := range violations {
			t.Errorf("forbidden import of persistence driver: %s", v)
		}
		t.Fatalf("found %d forbidden imports of persistence drivers", len(violations))
	}
}
