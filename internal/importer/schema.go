package importer

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// ImportSchema is the top-level structure of an order import file.
type ImportSchema struct {
	Order        OrderImport         `json:"order" yaml:"order"`
	AdvanceTypes []AdvanceTypeImport `json:"advance_types,omitempty" yaml:"advance_types,omitempty"`
	Nodes        []NodeImport        `json:"nodes" yaml:"nodes"`
	Assignments  []AssignmentImport  `json:"assignments,omitempty" yaml:"assignments,omitempty"`
}

// OrderImport defines the order-level fields in the import file.
type OrderImport struct {
	Code        string `json:"code" yaml:"code"`
	Name        string `json:"name" yaml:"name"`
	WeightBasis string `json:"weight_basis,omitempty" yaml:"weight_basis,omitempty"`
}

// AdvanceTypeImport declares a custom advance type used by the file.
type AdvanceTypeImport struct {
	Name       string   `json:"name" yaml:"name"`
	MaxValue   Quantity `json:"max_value" yaml:"max_value"`
	Precision  *int     `json:"precision,omitempty" yaml:"precision,omitempty"`
	Percentage bool     `json:"percentage,omitempty" yaml:"percentage,omitempty"`
}

// NodeImport defines a work node in the import file.
type NodeImport struct {
	Ref       string    `json:"ref" yaml:"ref"`
	ParentRef *string   `json:"parent_ref,omitempty" yaml:"parent_ref,omitempty"`
	Code      string    `json:"code,omitempty" yaml:"code,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Kind      string    `json:"kind" yaml:"kind"`
	Order     int       `json:"order" yaml:"order"`
	Hours     *int      `json:"hours,omitempty" yaml:"hours,omitempty"`
	Budget    *Quantity `json:"budget,omitempty" yaml:"budget,omitempty"`
}

// AssignmentImport defines a direct advance assignment and its measurements.
type AssignmentImport struct {
	NodeRef      string              `json:"node_ref" yaml:"node_ref"`
	Type         string              `json:"type" yaml:"type"`
	MaxValue     *Quantity           `json:"max_value,omitempty" yaml:"max_value,omitempty"`
	ReportGlobal bool                `json:"report_global,omitempty" yaml:"report_global,omitempty"`
	Measurements []MeasurementImport `json:"measurements,omitempty" yaml:"measurements,omitempty"`
}

// MeasurementImport is one dated value.
type MeasurementImport struct {
	Date  string   `json:"date" yaml:"date"`
	Value Quantity `json:"value" yaml:"value"`
}

// Quantity is a decimal written either as a number or as a string. It is
// kept as text until validation so malformed values are reported with their
// path instead of failing the whole decode.
type Quantity string

func (q *Quantity) UnmarshalJSON(b []byte) error {
	var s string
	if len(b) > 0 && b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
	} else {
		s = string(b)
	}
	*q = Quantity(strings.TrimSpace(s))
	return nil
}

func (q *Quantity) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a number", n.Line)
	}
	*q = Quantity(strings.TrimSpace(n.Value))
	return nil
}

// Decimal parses the quantity.
func (q Quantity) Decimal() (decimal.Decimal, error) {
	return decimal.NewFromString(string(q))
}

// LoadImportFile reads and parses an order import file. The decoder is
// picked by extension: .yaml and .yml are YAML, anything else is JSON.
func LoadImportFile(path string) (*ImportSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var schema ImportSchema
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &schema)
	default:
		err = json.Unmarshal(data, &schema)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing import file: %w", err)
	}
	return &schema, nil
}
