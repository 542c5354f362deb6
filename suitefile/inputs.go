package suitefile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/crudcheck/crud-contract-tests/framework"

	"github.com/xuri/excelize/v2"
	"gopkg.in/launchdarkly/go-sdk-common.v2/ldvalue"
	"gopkg.in/yaml.v3"
)

// valueDoc is any YAML value, converted to an ldvalue.Value.
type valueDoc struct {
	value ldvalue.Value
}

func (v *valueDoc) UnmarshalYAML(node *yaml.Node) error {
	var raw interface{}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	v.value = ldvalue.CopyArbitraryValue(raw)
	return nil
}

// inputDoc is one of:
//
//	{literal: <any value>}
//	{fixture: <name>}
//	{row: {sheet: <name>, row: <n>|current, fields: [{name, col, type}, ...]}}
//	{cell: {sheet: <name>, row: <n>|current, col: <n>|<letter>, type: <type>}}
//
// Any other value, including null, is a literal.
type inputDoc struct {
	literal *ldvalue.Value
	fixture string
	row     *rowDoc
	cell    *cellDoc
}

type rowDoc struct {
	Sheet  string     `yaml:"sheet"`
	Row    *rowRef    `yaml:"row"`
	Fields []fieldDoc `yaml:"fields"`
}

type cellDoc struct {
	Sheet string  `yaml:"sheet"`
	Row   *rowRef `yaml:"row"`
	Col   *colRef `yaml:"col"`
	Type  string  `yaml:"type"`
}

type fieldDoc struct {
	Name string  `yaml:"name"`
	Col  *colRef `yaml:"col"`
	Type string  `yaml:"type"`
}

func (f *fieldDoc) UnmarshalYAML(node *yaml.Node) error {
	if err := checkKeys(node, "name", "col", "type"); err != nil {
		return err
	}
	type plain fieldDoc
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*f = fieldDoc(p)
	return nil
}

// rowRef is a data row index, or "current" for the row a data-driven case was expanded for.
type rowRef int

func (r *rowRef) UnmarshalYAML(node *yaml.Node) error {
	if strings.EqualFold(node.Value, "current") {
		*r = rowRef(framework.CurrentRow)
		return nil
	}
	n, err := strconv.Atoi(node.Value)
	if err != nil || n < 0 {
		return fmt.Errorf("line %d: row must be a non-negative number or \"current\", not %q", node.Line, node.Value)
	}
	*r = rowRef(n)
	return nil
}

func (r *rowRef) index() int {
	if r == nil {
		return framework.CurrentRow
	}
	return int(*r)
}

// colRef is a 0-based column index, or a spreadsheet column name such as "A".
type colRef int

func (c *colRef) UnmarshalYAML(node *yaml.Node) error {
	if n, err := strconv.Atoi(node.Value); err == nil {
		if n < 0 {
			return fmt.Errorf("line %d: column must not be negative", node.Line)
		}
		*c = colRef(n)
		return nil
	}
	n, err := excelize.ColumnNameToNumber(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid column %q: %w", node.Line, node.Value, err)
	}
	*c = colRef(n - 1)
	return nil
}

func (d *inputDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.MappingNode && len(node.Content) == 2 {
		value := node.Content[1]
		switch node.Content[0].Value {
		case "literal":
			var v valueDoc
			if err := value.Decode(&v); err != nil {
				return err
			}
			d.literal = &v.value
			return nil
		case "fixture":
			if value.Kind != yaml.ScalarNode || value.Value == "" {
				return fmt.Errorf("line %d: fixture must be a name", value.Line)
			}
			d.fixture = value.Value
			return nil
		case "row":
			d.row = &rowDoc{}
			if err := checkKeys(value, "sheet", "row", "fields"); err != nil {
				return err
			}
			return value.Decode(d.row)
		case "cell":
			d.cell = &cellDoc{}
			if err := checkKeys(value, "sheet", "row", "col", "type"); err != nil {
				return err
			}
			return value.Decode(d.cell)
		}
	}
	var v valueDoc
	if err := node.Decode(&v); err != nil {
		return err
	}
	d.literal = &v.value
	return nil
}

func (d inputDoc) toInput(defaultSheet string) (framework.Input, error) {
	switch {
	case d.fixture != "":
		return framework.FromFixture(d.fixture), nil
	case d.row != nil:
		sheet := orDefault(d.row.Sheet, defaultSheet)
		if len(d.row.Fields) == 0 {
			return framework.Input{}, errors.New("row input has no fields")
		}
		fields := make([]framework.Field, 0, len(d.row.Fields))
		for _, fd := range d.row.Fields {
			if fd.Name == "" || fd.Col == nil {
				return framework.Input{}, errors.New("row input fields need a name and a col")
			}
			t, err := framework.ParseFieldType(fd.Type)
			if err != nil {
				return framework.Input{}, fmt.Errorf("field %s: %w", fd.Name, err)
			}
			fields = append(fields, framework.Field{Name: fd.Name, Col: int(*fd.Col), Type: t})
		}
		return framework.FromRow(sheet, d.row.Row.index(), fields...), nil
	case d.cell != nil:
		if d.cell.Col == nil {
			return framework.Input{}, errors.New("cell input has no col")
		}
		t, err := framework.ParseFieldType(d.cell.Type)
		if err != nil {
			return framework.Input{}, err
		}
		return framework.FromCell(orDefault(d.cell.Sheet, defaultSheet), d.cell.Row.index(), int(*d.cell.Col), t), nil
	case d.literal != nil:
		return framework.Literal(*d.literal), nil
	}
	return framework.Literal(ldvalue.Null()), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// assertionDoc is a single-key mapping:
//
//	status: <code>
//	notNull: <path>
//	nonEmpty: <path>
//	equals: {path: <path>, value: <any value>}
type assertionDoc struct {
	assertion framework.Assertion
}

func (a *assertionDoc) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode || len(node.Content) != 2 {
		return fmt.Errorf("line %d: an expectation must have exactly one key", node.Line)
	}
	key, value := node.Content[0], node.Content[1]
	switch key.Value {
	case "status":
		var code int
		if err := value.Decode(&code); err != nil {
			return err
		}
		if code < 100 || code > 599 {
			return fmt.Errorf("line %d: %d is not an HTTP status code", value.Line, code)
		}
		a.assertion = framework.StatusCodeEquals{Code: code}
	case "notNull":
		a.assertion = framework.FieldNotNull{Path: value.Value}
	case "nonEmpty":
		a.assertion = framework.ListNonEmpty{Path: value.Value}
	case "equals":
		var eq struct {
			Path  string   `yaml:"path"`
			Value valueDoc `yaml:"value"`
		}
		if err := checkKeys(value, "path", "value"); err != nil {
			return err
		}
		if !hasKey(value, "value") {
			return fmt.Errorf("line %d: equals needs a value", value.Line)
		}
		if err := value.Decode(&eq); err != nil {
			return err
		}
		a.assertion = framework.FieldEquals{Path: eq.Path, Value: eq.Value.value}
	default:
		return fmt.Errorf("line %d: unknown expectation %q", key.Line, key.Value)
	}
	if _, _, err := framework.Lookup(ldvalue.Null(), pathOf(a.assertion)); err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	return nil
}

func pathOf(a framework.Assertion) string {
	switch a := a.(type) {
	case framework.FieldNotNull:
		return a.Path
	case framework.FieldEquals:
		return a.Path
	case framework.ListNonEmpty:
		return a.Path
	}
	return ""
}
