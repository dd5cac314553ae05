package helpers

import (
	"path/filepath"
	"runtime"
)

// ScenarioPath resolves a scenario shipped in the repository's scenarios
// directory, independent of the package the test runs in
func ScenarioPath(name string) string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(file), "..", "..")
	return filepath.Join(root, "scenarios", name+".yaml")
}
