//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var (
	binDir  = "bin"
	appName = "mealrelay-web"
)

var Default = Dev

// Dev: run the web server with hot reload when air is available.
func Dev() error {
	mg.Deps(Tidy)

	if _, err := exec.LookPath("air"); err == nil {
		fmt.Println("Starting hot-reload with air ...")
		return sh.RunV("air")
	}

	fmt.Println("air not found. Falling back to `go run ./cmd/web`.")
	return Run()
}

func Run() error {
	fmt.Println("Running (go run) ...")
	return sh.RunV("go", "run", "./cmd/web")
}

// Build: compile all binaries into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	if err := sh.RunV("go", "build", "-o", binDir+"/"+appName, "./cmd/web"); err != nil {
		return err
	}
	if err := sh.RunV("go", "build", "-o", binDir+"/reconcile", "./cmd/tools/reconcile"); err != nil {
		return err
	}
	return sh.RunV("go", "build", "-o", binDir+"/seed", "./cmd/tools/seed")
}

func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

func Test() error {
	return sh.RunV("go", "test", "./...")
}

func Lint() error {
	if _, err := exec.LookPath("golangci-lint"); err != nil {
		return fmt.Errorf("golangci-lint not found; install it first")
	}
	return sh.RunV("golangci-lint", "run", "./...")
}

// Reconcile: run all reconciliation jobs once against the local database.
func Reconcile() error {
	return sh.RunV("go", "run", "./cmd/tools/reconcile", "all")
}
