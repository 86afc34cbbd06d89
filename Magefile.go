//go:build mage

// lstree mage targets: build, test, vet, install.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Default target: build the binary.
var Default = Build

// Build builds the lstree binary, stamping the version when LSTREE_VERSION is set.
func Build() error {
	args := []string{"build", "-o", "lstree"}
	if v := os.Getenv("LSTREE_VERSION"); v != "" {
		args = append(args, "-ldflags", "-X lstree/internal/model.Version="+v)
	}
	return sh.RunV("go", append(args, ".")...)
}

// Dev runs tests and vet, then builds with race.
func Dev() error {
	mg.Deps(Test, Vet)
	return sh.RunV("go", "build", "-race", "-o", "lstree", ".")
}

// Install copies the built binary to GOPATH/bin (defaults to ~/go/bin when GOPATH is unset).
func Install() error {
	mg.Deps(Build)
	gopath := os.Getenv("GOPATH")
	if gopath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("resolve home: %w", err)
		}
		gopath = filepath.Join(home, "go")
	}
	bin := filepath.Join(gopath, "bin")
	if err := os.MkdirAll(bin, 0o755); err != nil {
		return err
	}
	return sh.RunV("cp", "-v", "./lstree", bin+"/")
}

// Test runs the test suite.
func Test() error {
	if err := sh.RunV("go", "clean", "-testcache"); err != nil {
		return err
	}
	return sh.RunV("go", "test", "-v", "./...")
}

// Vet runs go vet.
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}
