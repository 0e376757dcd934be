/*
Copyright © 2020 the InMAP authors.
This file is part of InMAP.

InMAP is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

InMAP is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with InMAP.  If not, see <http://www.gnu.org/licenses/>.
*/

package ucumutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/ucum"
	"github.com/spatialmodel/ucum/measure"
	"github.com/spatialmodel/ucum/symbol"
	"github.com/spf13/cast"
)

// Formats holds a Format for each variant, all built from the same
// definitions.
type Formats map[symbol.Variant]*ucum.Format

// NewFormats returns the formats of all variants with the built-in
// catalog and defs.
func NewFormats(defs ...symbol.Definition) (Formats, error) {
	f := make(Formats)
	for _, v := range []symbol.Variant{symbol.CaseSensitive, symbol.CaseInsensitive, symbol.Print} {
		t, err := symbol.New(v, defs...)
		if err != nil {
			return nil, fmt.Errorf("ucum: building %v table: %v", v, err)
		}
		f[v] = ucum.New(t)
	}
	return f, nil
}

// UnitDef is a custom unit as written in a definitions file.
type UnitDef struct {
	// Code is the case-sensitive symbol.
	Code string
	// CI and Print default to the upper case code and the code.
	CI, Print string

	// Definition is a case-sensitive expression that the unit is
	// equal to.
	Definition string

	// Base makes the unit the base of a new dimension instead.
	Base bool
}

// DefinitionError is returned when the definition expression of a
// custom unit cannot be parsed.
type DefinitionError struct {
	Code string
	Err  error
}

func (e *DefinitionError) Error() string {
	return fmt.Sprintf("ucum: defining %s: %v", e.Code, e.Err)
}

type definitionFile struct {
	Unit []UnitDef
}

// LoadDefinitions reads custom units in TOML format, e.g.
//
//	[[unit]]
//	code = "[mph]"
//	print = "mph"
//	definition = "[mi_i]/h"
//
// A definition may use the units defined before it.
func LoadDefinitions(r io.Reader) ([]symbol.Definition, error) {
	var f definitionFile
	if _, err := toml.DecodeReader(r, &f); err != nil {
		return nil, fmt.Errorf("ucum: reading unit definitions: %v", err)
	}
	var defs []symbol.Definition
	for _, d := range f.Unit {
		def, err := d.build(defs)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (d UnitDef) build(prev []symbol.Definition) (symbol.Definition, error) {
	def := symbol.Definition{Code: d.Code, CICode: d.CI, Print: d.Print}
	if d.Code == "" {
		return def, fmt.Errorf("ucum: unit definition is missing a code")
	}
	if d.Base {
		if d.Definition != "" {
			return def, fmt.Errorf("ucum: base unit %s cannot have a definition", d.Code)
		}
		dim, err := measure.NewDimension(d.Code)
		if err != nil {
			return def, fmt.Errorf("ucum: defining base unit %s: %v", d.Code, err)
		}
		def.Unit = measure.NewBase(d.Code, dim)
		return def, nil
	}
	t, err := symbol.New(symbol.CaseSensitive, prev...)
	if err != nil {
		return def, err
	}
	u, err := ucum.New(t).Parse(d.Definition)
	if err != nil {
		return def, &DefinitionError{Code: d.Code, Err: err}
	}
	def.Unit = measure.Define(d.Code, u)
	return def, nil
}

// unitMap turns a map from codes to expressions into definitions.
// Entries are defined in code order, each after the ones it uses.
func unitMap(m map[string]string, prev []symbol.Definition) ([]symbol.Definition, error) {
	codes := make([]string, 0, len(m))
	for c := range m {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	defs := append([]symbol.Definition(nil), prev...)
	for len(codes) > 0 {
		var pending []string
		var lastErr error
		for _, c := range codes {
			def, err := UnitDef{Code: c, Definition: m[c]}.build(defs)
			if err != nil {
				if unknown(err) {
					pending = append(pending, c)
					lastErr = err
					continue
				}
				return nil, err
			}
			defs = append(defs, def)
		}
		if len(pending) == len(codes) {
			return nil, lastErr
		}
		codes = pending
	}
	return defs[len(prev):], nil
}

// unknown reports whether err is a definition that uses a unit that
// is not defined yet.
func unknown(err error) bool {
	e, ok := err.(*DefinitionError)
	if !ok {
		return false
	}
	_, ok = e.Err.(*ucum.UnknownUnitError)
	return ok
}

// FormatsFromConfig builds the formats with the custom units named by
// the "definitions" file and the "units" map of cfg.
func FormatsFromConfig(cfg *viper.Viper) (Formats, error) {
	var defs []symbol.Definition
	if path := os.ExpandEnv(cfg.GetString("definitions")); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("ucum: opening unit definitions: %v", err)
		}
		defer f.Close()
		if defs, err = LoadDefinitions(f); err != nil {
			return nil, err
		}
	}
	m, err := getStringMapString("units", cfg)
	if err != nil {
		return nil, err
	}
	more, err := unitMap(m, defs)
	if err != nil {
		return nil, err
	}
	return NewFormats(append(defs, more...)...)
}

// getStringMapString returns a map[string]string from a viper configuration,
// accounting for the fact that it might be a json object if it was set
// from a command line argument.
func getStringMapString(varName string, cfg *viper.Viper) (map[string]string, error) {
	i := cfg.Get(varName)
	switch v := i.(type) {
	case nil:
		return map[string]string{}, nil
	case map[string]string:
		return v, nil
	case map[string]interface{}:
		return cast.ToStringMapStringE(v)
	case string:
		o := make(map[string]string)
		if v == "" {
			return o, nil
		}
		d := json.NewDecoder(bytes.NewBufferString(v))
		if err := d.Decode(&o); err != nil {
			return nil, fmt.Errorf("ucum: invalid %s: %v", varName, err)
		}
		return o, nil
	default:
		return nil, fmt.Errorf("ucum: invalid type for %s: %#v", varName, i)
	}
}
