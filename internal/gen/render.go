package gen

import (
	"bytes"
	"embed"
	"fmt"
	"go/format"
	"os"
	"text/template"
)

var (
	//go:embed templates/*.go.tmpl
	templateFS       embed.FS
	templates        = template.Must(template.ParseFS(templateFS, "templates/*.go.tmpl"))
	fileTemplate     = templates.Lookup("file.go.tmpl")
	literalsTemplate = templates.Lookup("literals.go.tmpl")
)

// render executes tmpl with params and writes the gofmt'd result to target.
func render(tmpl *template.Template, params *Params, target string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, params); err != nil {
		return err
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("generated source for %s is invalid: %w", target, err)
	}
	return os.WriteFile(target, src, 0644)
}
