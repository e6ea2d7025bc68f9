package cli

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const dateLayout = "2006-01-02"

// decimalValue is a pflag.Value holding an exact decimal.
type decimalValue struct {
	value *decimal.Decimal
	set   bool
}

var _ pflag.Value = (*decimalValue)(nil)

func newDecimalValue(p *decimal.Decimal) *decimalValue {
	return &decimalValue{value: p}
}

func (d *decimalValue) String() string {
	if d.value == nil || !d.set {
		return ""
	}
	return d.value.String()
}

func (d *decimalValue) Set(s string) error {
	v, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}
	*d.value = v
	d.set = true
	return nil
}

func (d *decimalValue) Type() string { return "decimal" }

// ptr returns the value when the flag was given, nil otherwise.
func (d *decimalValue) ptr() *decimal.Decimal {
	if !d.set {
		return nil
	}
	v := *d.value
	return &v
}

// dateValue is a pflag.Value holding a YYYY-MM-DD day.
type dateValue struct {
	value *time.Time
	set   bool
}

var _ pflag.Value = (*dateValue)(nil)

func newDateValue(p *time.Time) *dateValue {
	return &dateValue{value: p}
}

func (d *dateValue) String() string {
	if d.value == nil || !d.set {
		return ""
	}
	return d.value.Format(dateLayout)
}

func (d *dateValue) Set(s string) error {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("%q is not a YYYY-MM-DD date", s)
	}
	*d.value = t
	d.set = true
	return nil
}

func (d *dateValue) Type() string { return "date" }

// orDefault returns the flag value when given, def otherwise.
func (d *dateValue) orDefault(def time.Time) time.Time {
	if !d.set {
		return def
	}
	return *d.value
}

// addAtFlag registers --at, the date percentages are computed at.
func addAtFlag(cmd *cobra.Command) *dateValue {
	v := newDateValue(new(time.Time))
	cmd.Flags().Var(v, "at", "Date percentages are computed at (YYYY-MM-DD, default today)")
	return v
}

// selectionsValue collects repeated NODE=TYPE pairs.
type selectionsValue struct {
	pairs map[string]string
}

var _ pflag.Value = (*selectionsValue)(nil)

func newSelectionsValue() *selectionsValue {
	return &selectionsValue{pairs: map[string]string{}}
}

func (s *selectionsValue) String() string {
	keys := make([]string, 0, len(s.pairs))
	for k := range s.pairs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + s.pairs[k]
	}
	return strings.Join(parts, ",")
}

func (s *selectionsValue) Set(v string) error {
	for _, pair := range strings.Split(v, ",") {
		node, typeName, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || node == "" || typeName == "" {
			return fmt.Errorf("selection %q must look like NODE=TYPE", pair)
		}
		s.pairs[node] = typeName
	}
	return nil
}

func (s *selectionsValue) Type() string { return "NODE=TYPE" }
