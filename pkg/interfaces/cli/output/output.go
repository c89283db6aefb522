package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/application/dto"
	"github.com/vsinha/bomplanner/pkg/domain/entities"
	"github.com/vsinha/bomplanner/pkg/domain/services"
)

// Supported output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatHTML = "html"
)

// ValidateFormat rejects unknown formats
func ValidateFormat(format string) error {
	switch format {
	case FormatText, FormatJSON, FormatCSV, FormatHTML:
		return nil
	default:
		return errors.Newf("unsupported output format: %s", format)
	}
}

// Generate writes MRP results in the specified format
func Generate(w io.Writer, result *dto.MRPResult, format string) error {
	switch format {
	case FormatText:
		return generateTextOutput(w, result)
	case FormatJSON:
		return writeJSON(w, result)
	case FormatCSV:
		return generateCSVOutput(w, result)
	case FormatHTML:
		return generateHTMLOutput(w, result)
	default:
		return errors.Newf("unsupported output format: %s", format)
	}
}

// generateTextOutput creates a human-readable results table
func generateTextOutput(w io.Writer, result *dto.MRPResult) error {
	width := len("Material")
	for _, req := range result.Requirements {
		if len(req.Material) > width {
			width = len(req.Material)
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MRP Results\n")
	fmt.Fprintf(&b, "===========\n\n")
	fmt.Fprintf(&b, "Roots: %d  Nodes: %d  Materials: %d\n\n", result.RootCount, result.NodeCount, result.Len())
	fmt.Fprintf(&b, "%-*s  %14s\n", width, "Material", "Total Quantity")
	fmt.Fprintf(&b, "%s  %s\n", strings.Repeat("-", width), strings.Repeat("-", 14))
	for _, req := range result.Requirements {
		fmt.Fprintf(&b, "%-*s  %14d\n", width, req.Material, req.Quantity)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// generateCSVOutput writes material,quantity rows
func generateCSVOutput(w io.Writer, result *dto.MRPResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"material", "quantity"}); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, req := range result.Requirements {
		if err := cw.Write([]string{string(req.Material), strconv.FormatInt(int64(req.Quantity), 10)}); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateExplosion writes the per-occurrence breakdown
func GenerateExplosion(w io.Writer, rows []dto.ExplodedRequirement, format string) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, rows)
	case FormatCSV:
		return generateExplosionCSV(w, rows)
	case FormatHTML:
		return generateExplosionHTML(w, rows)
	case FormatText:
		var b strings.Builder
		for _, row := range rows {
			fmt.Fprintf(&b, "%s%s  %d x %d = %d\n",
				strings.Repeat("  ", row.Level), row.Material, row.PerUnit, row.Multiplier, row.Quantity)
		}
		_, err := io.WriteString(w, b.String())
		return err
	default:
		return errors.Newf("unsupported output format: %s", format)
	}
}

func generateExplosionCSV(w io.Writer, rows []dto.ExplodedRequirement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"level", "path", "material", "per_unit", "multiplier", "quantity"}); err != nil {
		return errors.Wrap(err, "failed to write CSV header")
	}
	for _, row := range rows {
		record := []string{
			strconv.Itoa(row.Level),
			joinPath(row.Path),
			string(row.Material),
			strconv.FormatInt(int64(row.PerUnit), 10),
			strconv.FormatInt(int64(row.Multiplier), 10),
			strconv.FormatInt(int64(row.Quantity), 10),
		}
		if err := cw.Write(record); err != nil {
			return errors.Wrap(err, "failed to write CSV row")
		}
	}
	cw.Flush()
	return cw.Error()
}

// GenerateTree draws the forest as an indented tree. Node labels carry the
// catalog quantity and edges the relationship quantity, as a diagram would.
func GenerateTree(w io.Writer, forest *entities.Forest) error {
	if forest.IsEmpty() {
		return entities.EmptyTree("draw tree")
	}

	var b strings.Builder
	var draw func(node *entities.Node, prefix string, last bool, depth int, edge string)
	draw = func(node *entities.Node, prefix string, last bool, depth int, edge string) {
		label := fmt.Sprintf("%s (%d)", node.Name, forest.Quantities[node.Name])
		if edge != "" {
			label = fmt.Sprintf("[%s] %s", edge, label)
		}

		childPrefix := prefix
		if depth == 0 {
			b.WriteString(label + "\n")
		} else {
			branch := "├── "
			if last {
				branch = "└── "
			}
			b.WriteString(prefix + branch + label + "\n")
			if last {
				childPrefix += "    "
			} else {
				childPrefix += "│   "
			}
		}

		for i, child := range node.Children {
			edgeLabel := ""
			if rel, ok := entities.FindRelationship(forest.Relationships, node.Name, child.Name); ok {
				edgeLabel = fmt.Sprintf("x%d", rel.Quantity)
			}
			draw(child, childPrefix, i == len(node.Children)-1, depth+1, edgeLabel)
		}
	}

	for _, root := range forest.Roots {
		draw(root, "", true, 0, "")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// GenerateCheck writes structure validation results
func GenerateCheck(w io.Writer, result *services.ValidationResult, format string) error {
	if format == FormatJSON {
		return writeJSON(w, result)
	}

	if result.IsClean() {
		_, err := io.WriteString(w, "No structural issues found.\n")
		return err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Found %d structural issue(s):\n", len(result.Warnings))
	for _, warning := range result.Warnings {
		fmt.Fprintf(&b, "  - %s\n", warning)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes any value as indented JSON
func WriteJSON(w io.Writer, v interface{}) error {
	return writeJSON(w, v)
}

func writeJSON(w io.Writer, v interface{}) error {
	jsonData, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to marshal JSON")
	}
	jsonData = append(jsonData, '\n')
	_, err = w.Write(jsonData)
	return err
}

func joinPath(path []entities.MaterialName) string {
	parts := make([]string, len(path))
	for i, p := range path {
		parts[i] = string(p)
	}
	return strings.Join(parts, "/")
}
