package output

import (
	"bytes"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/cockroachdb/errors"
)

// Template renders the output with the text template,
// the template is executed with the Output and has the sprig functions.
//
// Example: `{{ .Data | toJson }} for {{ index .Extras "query" }}`
func Template(text string) Option {
	tmpl, err := template.New("output").Funcs(sprig.TxtFuncMap()).Parse(text)
	return WithRenderer(func(o *Output) (string, error) {
		if err != nil {
			return "", errors.Wrap(err, "failed to parse template")
		}
		var buf bytes.Buffer
		if err := tmpl.Execute(&buf, o); err != nil {
			return "", errors.Wrap(err, "failed to execute template")
		}
		return buf.String(), nil
	})
}
