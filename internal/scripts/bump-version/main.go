package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	app_info "github.com/robgonnella/ipscannr/internal/app-info"
	"github.com/robgonnella/ipscannr/internal/scripts/bump-version/version"
)

const (
	outFile      = "internal/app-info/info.go"
	templatePath = "internal/templates/info.go.tmpl"
)

// Regenerates app-info for a new release version, then commits and tags
// it. Run from the repository root: go run ./internal/scripts/bump-version v1.2.3
func main() {
	args := os.Args[1:]

	if len(args) != 1 {
		log.Fatal(errors.New("usage: bump-version <vMAJOR.MINOR.PATCH>"))
	}

	data := version.BumpData{
		Name:         app_info.NAME,
		Version:      args[0],
		OutFile:      outFile,
		TemplatePath: templatePath,
	}

	git := version.NewGit(".")
	generator := version.NewTemplateGenerator(outFile, templatePath)

	if err := version.Bump(data, generator, git); err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Bumped %s from %s to %s\n", app_info.NAME, app_info.VERSION, data.Version)
	fmt.Println("To release run: \"git push <remote> <branch> --tags\"")
}
