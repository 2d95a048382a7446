package version

import (
	"bytes"
	"fmt"
	"go/format"
	"os"
	"path/filepath"
	"text/template"
)

// TemplateGenerator renders the app-info source file from a text template
type TemplateGenerator struct {
	outFile      string
	templatePath string
}

// NewTemplateGenerator returns a new instance of TemplateGenerator
func NewTemplateGenerator(outFile, templatePath string) *TemplateGenerator {
	return &TemplateGenerator{
		outFile:      outFile,
		templatePath: templatePath,
	}
}

// Generate renders and gofmts the template. The output file is left
// untouched if rendering fails.
func (t *TemplateGenerator) Generate(data VersionData) error {
	tmpl, err := template.New(filepath.Base(t.templatePath)).ParseFiles(t.templatePath)

	if err != nil {
		return err
	}

	buf := bytes.Buffer{}

	if err := tmpl.Execute(&buf, data); err != nil {
		return err
	}

	src, err := format.Source(buf.Bytes())

	if err != nil {
		return fmt.Errorf("generated source is invalid: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.outFile), 0751); err != nil {
		return err
	}

	return os.WriteFile(t.outFile, src, 0644)
}
