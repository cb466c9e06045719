package confkit

import (
	"os"
	"path/filepath"
	"runtime"
	"sync"

	"github.com/joho/godotenv"
)

var dotenvOnce sync.Once

// LoadDotenvOnce loads a .env file into the process environment. ENV_FILE
// names an explicit file; otherwise every .env between this package and the
// module root is tried. Existing variables win unless DOTENV_OVERLOAD=1.
// NO_DOTENV=1 disables loading entirely.
func LoadDotenvOnce() {
	dotenvOnce.Do(loadDotenv)
}

func loadDotenv() {
	if os.Getenv("NO_DOTENV") == "1" {
		return
	}

	load := godotenv.Load
	if os.Getenv("DOTENV_OVERLOAD") == "1" {
		load = godotenv.Overload
	}

	if envFile := os.Getenv("ENV_FILE"); envFile != "" {
		_ = load(envFile)
		return
	}

	found := walkUp(func(dir string) bool {
		_ = load(filepath.Join(dir, ".env"))
		return isModuleRoot(dir)
	})
	if !found {
		_ = load(".env")
	}
}

// ProjectRoot locates the module root by walking up from this source file
// until a directory holds go.mod or .git. Falls back to the working directory.
func ProjectRoot() (string, error) {
	var root string
	walkUp(func(dir string) bool {
		if isModuleRoot(dir) {
			root = dir
			return true
		}
		return false
	})
	if root != "" {
		return root, nil
	}
	return os.Getwd()
}

// ProjectPath joins the module root with rel.
func ProjectPath(rel string) (string, error) {
	root, err := ProjectRoot()
	if err != nil {
		return "", err
	}
	return filepath.Join(root, rel), nil
}

// walkUp visits at most eight directories from this file upwards, stopping
// when visit returns true. It reports whether a visit stopped the walk.
func walkUp(visit func(dir string) bool) bool {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return false
	}
	dir := filepath.Dir(file)
	for i := 0; i < 8; i++ {
		if visit(dir) {
			return true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return false
}

func isModuleRoot(dir string) bool {
	return fileExists(filepath.Join(dir, "go.mod")) || fileExists(filepath.Join(dir, ".git"))
}

func fileExists(p string) bool {
	if p == "" {
		return false
	}
	_, err := os.Stat(p)
	return err == nil
}
