//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const binaryName = "screenlate"

// Default target when running plain mage
var Default = Build

// Build compiles the screenlate binary into the project root
func Build() error {
	fmt.Println("Building", binaryName)
	return sh.RunV("go", "build", "-o", binaryName, "./cmd/screenlate")
}

// BuildWindows cross-compiles the Windows binary; OCR needs cgo and a tesseract toolchain
func BuildWindows() error {
	env := map[string]string{"GOOS": "windows", "GOARCH": "amd64"}
	return sh.RunWithV(env, "go", "build", "-o", binaryName+".exe", "./cmd/screenlate")
}

// Install installs screenlate into GOPATH/bin
func Install() error {
	mg.Deps(Build)
	return sh.RunV("go", "install", "./cmd/screenlate")
}

// Test runs all tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs all tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Lint runs golangci-lint when available
func Lint() error {
	if _, err := sh.Output("which", "golangci-lint"); err != nil {
		fmt.Println("golangci-lint not installed, skipping")
		return nil
	}
	return sh.RunV("golangci-lint", "run")
}

// Check runs vet and tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Clean removes build artifacts and debug logs
func Clean() error {
	for _, f := range []string{binaryName, binaryName + ".exe"} {
		if err := sh.Rm(f); err != nil {
			return err
		}
	}
	logs, err := filepath.Glob("debug_*.log")
	if err != nil {
		return err
	}
	for _, f := range logs {
		if err := os.Remove(f); err != nil {
			return err
		}
	}
	return nil
}
