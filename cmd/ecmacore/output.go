package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"gopkg.in/yaml.v3"

	"ecmacore/pkg/driver"
	"ecmacore/pkg/magic"
	"ecmacore/pkg/vm"
)

const (
	formatText = "text"
	formatYAML = "yaml"
	formatCBOR = "cbor"
)

// printer renders command results in the selected output format.
type printer struct {
	w      io.Writer
	format string
	tty    bool
}

func newPrinter(f *os.File, format string) (*printer, error) {
	switch format {
	case formatText, formatYAML, formatCBOR:
	default:
		return nil, fmt.Errorf("unknown output format %q (want text, yaml or cbor)", format)
	}
	tty := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return &printer{w: f, format: format, tty: tty}, nil
}

// encode writes v as YAML or CBOR. It reports false for text output.
func (p *printer) encode(v any) (bool, error) {
	switch p.format {
	case formatYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case formatCBOR:
		data, err := cbor.Marshal(v)
		if err != nil {
			return true, err
		}
		_, err = p.w.Write(data)
		return true, err
	}
	return false, nil
}

type valueDump struct {
	Type    string   `yaml:"type" cbor:"type"`
	Number  *float64 `yaml:"number,omitempty" cbor:"number,omitempty"`
	Display string   `yaml:"display" cbor:"display"`
}

func (p *printer) value(v vm.Value) error {
	dump := valueDump{Type: v.Type().String(), Display: v.Inspect()}
	if v.IsNumber() {
		n := v.AsNumber()
		dump.Number = &n
	}
	if done, err := p.encode(dump); done {
		return err
	}
	_, err := fmt.Fprintln(p.w, dump.Display)
	return err
}

func (p *printer) stats(s driver.HeapStats) error {
	if done, err := p.encode(s); done {
		return err
	}
	limit := "none"
	if s.Limit > 0 {
		limit = strconv.Itoa(s.Limit)
	}
	return p.table([]string{"LIVE", "PEAK", "LIMIT", "REMEMBERED"}, [][]string{{
		strconv.Itoa(s.Live), strconv.Itoa(s.Peak), limit, strconv.Itoa(s.Remembered),
	}})
}

type recognition struct {
	Name string `yaml:"name" cbor:"name"`
	ID   int    `yaml:"id" cbor:"id"`
}

func (p *printer) recognize(names []string) error {
	if len(names) == 0 {
		for _, id := range magic.All() {
			names = append(names, id.String())
		}
	}
	found := make([]recognition, len(names))
	for i, name := range names {
		found[i] = recognition{Name: name, ID: -1}
		if id, ok := magic.Recognize(name); ok {
			found[i].ID = int(id)
		}
	}
	if done, err := p.encode(found); done {
		return err
	}
	rows := make([][]string, len(found))
	for i, f := range found {
		id := "-"
		if f.ID >= 0 {
			id = strconv.Itoa(f.ID)
		}
		rows[i] = []string{f.Name, id}
	}
	return p.table([]string{"NAME", "ID"}, rows)
}

func (p *printer) builtins(states []*driver.BuiltinState) error {
	if done, err := p.encode(states); done {
		return err
	}
	for i, st := range states {
		if i > 0 {
			fmt.Fprintln(p.w)
		}
		status := "not initialized"
		if st.Initialized {
			status = fmt.Sprintf("%d of %d pending", st.Pending, len(st.Properties))
		}
		fmt.Fprintf(p.w, "%s (%s, priority %d): %s\n", p.bold(st.Name), st.Class, st.Priority, status)

		rows := make([][]string, 0, len(st.Properties)+len(st.Extra))
		for _, ps := range st.Properties {
			arity := ""
			if ps.Kind == "routine" {
				arity = strconv.Itoa(ps.Arity)
				if ps.Variadic {
					arity += "+"
				}
			}
			state := "pending"
			switch {
			case ps.Present:
				state = "present"
			case ps.Instantiated:
				state = "deleted"
			}
			rows = append(rows, []string{ps.Name, ps.Kind, arity, state, ps.Attributes, ps.Value})
		}
		for _, name := range st.Extra {
			rows = append(rows, []string{name, "own", "", "present", "", ""})
		}
		if err := p.table([]string{"NAME", "KIND", "ARITY", "STATE", "ATTRS", "VALUE"}, rows); err != nil {
			return err
		}
	}
	return nil
}

// table writes rows in aligned columns. Widths are measured in terminal
// cells.
func (p *printer) table(header []string, rows [][]string) error {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string) string {
		var b strings.Builder
		for i, cell := range cells {
			if i == len(cells)-1 {
				b.WriteString(cell)
				break
			}
			b.WriteString(runewidth.FillRight(cell, widths[i]))
			b.WriteString("  ")
		}
		return strings.TrimRight(b.String(), " ")
	}

	if _, err := fmt.Fprintln(p.w, p.bold(line(header))); err != nil {
		return err
	}
	for _, row := range rows {
		if _, err := fmt.Fprintln(p.w, line(row)); err != nil {
			return err
		}
	}
	return nil
}

func (p *printer) bold(s string) string {
	if !p.tty {
		return s
	}
	return "\x1b[1m" + s + "\x1b[0m"
}
