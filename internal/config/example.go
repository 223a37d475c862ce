package config

import (
	"bytes"
	_ "embed"
	"runtime"
	"text/template"
)

//go:embed example.yaml.tmpl
var exampleYamlTmpl string

//go:embed example.toml.tmpl
var exampleTomlTmpl string

// Example returns a commented settings file in format.
func Example(format Format) (string, error) {
	tmpl := exampleYamlTmpl
	if format == TOML {
		tmpl = exampleTomlTmpl
	}
	parse, err := template.New("").
		Delims("[[", "]]").
		Funcs(template.FuncMap{"isDarwin": func() bool { return runtime.GOOS == "darwin" }}).
		Parse(tmpl)
	if err != nil {
		return "", err
	}

	buf := &bytes.Buffer{}
	err = parse.Execute(buf, Default())
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
