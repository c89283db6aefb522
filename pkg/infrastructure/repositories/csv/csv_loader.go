package csv

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/vsinha/bomplanner/pkg/domain/services"
)

// Loader reads insertion steps from CSV. Rows are returned as raw field
// values; validation happens when each step is applied.
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// StepRow is one insertion step and the CSV line it came from
type StepRow struct {
	Line  int
	Input services.NodeInput
}

var stepsHeader = []string{"name", "parent", "quantity"}

// LoadSteps loads insertion steps from a CSV file
func (l *Loader) LoadSteps(filename string) ([]StepRow, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open steps file %s", filename)
	}
	defer file.Close()

	return l.ReadSteps(file)
}

// ReadSteps reads insertion steps with a name,parent,quantity header
func (l *Loader) ReadSteps(r io.Reader) ([]StepRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.Comment = '#'

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New("steps CSV must have header and at least one data row")
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read steps CSV")
	}
	if !validateHeader(header, stepsHeader) {
		return nil, errors.Newf("steps CSV header mismatch. Expected: %v, Got: %v", stepsHeader, header)
	}

	rows := make([]StepRow, 0)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read steps CSV")
		}

		line, _ := reader.FieldPos(0)
		if len(record) != len(stepsHeader) {
			return nil, errors.Newf("steps CSV row %d: expected %d columns, got %d", line, len(stepsHeader), len(record))
		}

		rows = append(rows, StepRow{
			Line: line,
			Input: services.NodeInput{
				Name:     record[0],
				Parent:   record[1],
				Quantity: record[2],
			},
		})
	}

	if len(rows) == 0 {
		return nil, errors.New("steps CSV must have header and at least one data row")
	}

	return rows, nil
}

func validateHeader(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}

	for i, col := range expected {
		if strings.ToLower(strings.TrimSpace(actual[i])) != col {
			return false
		}
	}

	return true
}
