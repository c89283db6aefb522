package output

import (
	"html/template"
	"io"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/application/dto"
)

var resultsTemplate = template.Must(template.New("mrp").Parse(`<table class="mrp-results">
  <thead>
    <tr><th colspan="2">MRP Results</th></tr>
    <tr><th>Material</th><th>Total Quantity</th></tr>
  </thead>
  <tbody>
{{- range .Requirements}}
    <tr><td>{{.Material}}</td><td>{{.Quantity}}</td></tr>
{{- end}}
  </tbody>
</table>
`))

var explosionTemplate = template.Must(template.New("explosion").Funcs(template.FuncMap{
	"path": joinPath,
}).Parse(`<table class="mrp-explosion">
  <thead>
    <tr><th>Level</th><th>Path</th><th>Material</th><th>Per Unit</th><th>Multiplier</th><th>Quantity</th></tr>
  </thead>
  <tbody>
{{- range .}}
    <tr><td>{{.Level}}</td><td>{{path .Path}}</td><td>{{.Material}}</td><td>{{.PerUnit}}</td><td>{{.Multiplier}}</td><td>{{.Quantity}}</td></tr>
{{- end}}
  </tbody>
</table>
`))

// generateHTMLOutput renders the results as an HTML table fragment
func generateHTMLOutput(w io.Writer, result *dto.MRPResult) error {
	if err := resultsTemplate.Execute(w, result); err != nil {
		return errors.Wrap(err, "failed to render HTML results")
	}
	return nil
}

// generateExplosionHTML renders the per-occurrence breakdown as an HTML table fragment
func generateExplosionHTML(w io.Writer, rows []dto.ExplodedRequirement) error {
	if err := explosionTemplate.Execute(w, rows); err != nil {
		return errors.Wrap(err, "failed to render HTML explosion")
	}
	return nil
}
