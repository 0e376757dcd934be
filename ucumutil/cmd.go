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
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/lnashier/viper"
	"github.com/spatialmodel/ucum"
	"github.com/spatialmodel/ucum/symbol"
	"github.com/spf13/cast"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Cfg holds configuration information.
var Cfg *viper.Viper

var options []struct {
	name, usage, shorthand string
	defaultVal             interface{}
	flagsets               []*pflag.FlagSet
}

func init() {
	// Options are the configuration options available to ucum.
	options = []struct {
		name, usage, shorthand string
		defaultVal             interface{}
		flagsets               []*pflag.FlagSet
	}{
		{
			name: "config",
			usage: `
              config specifies the configuration file location.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "definitions",
			usage: `
              definitions specifies the location of a TOML file of
              custom unit definitions. Each [[unit]] entry has a code,
              optional ci and print symbols, and either a definition
              expression or base = true for a new base dimension.`,
			defaultVal: "",
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "units",
			usage: `
              units specifies additional units as a map from a
              case-sensitive code to its defining expression, for
              example {"[mph]":"[mi_i]/h"}.`,
			defaultVal: map[string]string{},
			flagsets:   []*pflag.FlagSet{Root.PersistentFlags()},
		},
		{
			name: "variant",
			usage: `
              variant specifies the symbol variant expressions are read
              in: cs (case sensitive) or ci (case insensitive).`,
			shorthand:  "v",
			defaultVal: "cs",
			flagsets:   []*pflag.FlagSet{parseCmd.Flags(), formatCmd.Flags(), convertCmd.Flags(), serveCmd.Flags()},
		},
		{
			name: "to",
			usage: `
              to specifies the symbol variant units are written in:
              cs, ci or print.`,
			shorthand:  "t",
			defaultVal: "cs",
			flagsets:   []*pflag.FlagSet{formatCmd.Flags()},
		},
		{
			name: "dump",
			usage: `
              dump specifies whether to print the full structure of
              each parsed unit.`,
			defaultVal: false,
			flagsets:   []*pflag.FlagSet{parseCmd.Flags()},
		},
		{
			name: "cachesize",
			usage: `
              cachesize specifies the number of parsed expressions
              to keep in memory.`,
			defaultVal: 256,
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
		{
			name: "address",
			usage: `
              address specifies the address the HTTP service listens on.`,
			defaultVal: "localhost:7272",
			flagsets:   []*pflag.FlagSet{serveCmd.Flags()},
		},
	}

	Cfg = viper.New()

	// Set the prefix for configuration environment variables.
	Cfg.SetEnvPrefix("UCUM")
	Cfg.AutomaticEnv()

	for _, option := range options {
		for i, set := range option.flagsets {
			if i != 0 { // We don't want to create the same flag twice.
				set.AddFlag(option.flagsets[0].Lookup(option.name))
				continue
			}
			switch option.defaultVal.(type) {
			case string:
				if option.shorthand == "" {
					set.String(option.name, option.defaultVal.(string), option.usage)
				} else {
					set.StringP(option.name, option.shorthand, option.defaultVal.(string), option.usage)
				}
			case bool:
				if option.shorthand == "" {
					set.Bool(option.name, option.defaultVal.(bool), option.usage)
				} else {
					set.BoolP(option.name, option.shorthand, option.defaultVal.(bool), option.usage)
				}
			case int:
				if option.shorthand == "" {
					set.Int(option.name, option.defaultVal.(int), option.usage)
				} else {
					set.IntP(option.name, option.shorthand, option.defaultVal.(int), option.usage)
				}
			case map[string]string:
				b := bytes.NewBuffer(nil)
				e := json.NewEncoder(b)
				e.Encode(option.defaultVal)
				s := strings.TrimSpace(b.String())
				if option.shorthand == "" {
					set.String(option.name, s, option.usage)
				} else {
					set.StringP(option.name, option.shorthand, s, option.usage)
				}
			default:
				panic("invalid argument type")
			}
			Cfg.BindPFlag(option.name, set.Lookup(option.name))
		}
	}
}

func init() {
	// Link the commands together.
	Root.AddCommand(versionCmd)
	Root.AddCommand(parseCmd)
	Root.AddCommand(formatCmd)
	Root.AddCommand(convertCmd)
	Root.AddCommand(serveCmd)
}

// setConfig finds and reads in the configuration file, if there is one.
func setConfig() error {
	if cfgpath := Cfg.GetString("config"); cfgpath != "" {
		Cfg.SetConfigFile(cfgpath)
		if err := Cfg.ReadInConfig(); err != nil {
			return fmt.Errorf("ucum: problem reading configuration file: %v", err)
		}
	}
	return nil
}

// Root is the main command.
var Root = &cobra.Command{
	Use:   "ucum",
	Short: "Parse, format and convert units of measure.",
	Long: `ucum reads unit expressions such as "kg.m/s2" or "[degF]", writes them
back in the case-sensitive, case-insensitive or print form, and converts
values between compatible units.

Configuration can be changed by using a configuration file (and providing the
path to the file using the --config flag), by using command-line arguments,
or by setting environment variables in the format 'UCUM_var' where 'var' is the
name of the variable to be set.
Refer to https://github.com/spf13/viper for additional configuration information.`,
	DisableAutoGenTag: true,
	PersistentPreRunE: func(*cobra.Command, []string) error { return setConfig() },
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  "version prints the version number of this version of ucum.",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("ucum v%s\n", ucum.Version)
	},
	DisableAutoGenTag: true,
}

var parseCmd = &cobra.Command{
	Use:   "parse expression...",
	Short: "Parse unit expressions.",
	Long: `parse reads each expression and prints its canonical form, its
dimensions and the converter to the coherent SI unit of those dimensions.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := checkVariant(Cfg.GetString("variant"))
		if err != nil {
			return err
		}
		f, err := FormatsFromConfig(Cfg)
		if err != nil {
			return err
		}
		for _, expr := range args {
			u, err := f[v].Parse(expr)
			if err != nil {
				return err
			}
			base := "none"
			if c, err := u.ConverterToBase(); err == nil {
				base = c.String()
			}
			cmd.Printf("%s\t%s\t[%v]\t%s\n", expr, f[v].Format(u), u.Dimensions(), base)
			if Cfg.GetBool("dump") {
				cmd.Print(spew.Sdump(u))
			}
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var formatCmd = &cobra.Command{
	Use:   "format expression...",
	Short: "Rewrite unit expressions in another variant.",
	Long: `format reads each expression in the --variant symbols and writes it
in the --to symbols.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := checkVariant(Cfg.GetString("variant"))
		if err != nil {
			return err
		}
		to, err := checkVariant(Cfg.GetString("to"))
		if err != nil {
			return err
		}
		f, err := FormatsFromConfig(Cfg)
		if err != nil {
			return err
		}
		for _, expr := range args {
			u, err := f[from].Parse(expr)
			if err != nil {
				return err
			}
			cmd.Println(f[to].Format(u))
		}
		return nil
	},
	DisableAutoGenTag: true,
}

var convertCmd = &cobra.Command{
	Use:   "convert value from to",
	Short: "Convert a value between units.",
	Long: `convert converts value, which may be an arithmetic expression such
as "3*12", from the unit expression 'from' to the unit expression 'to'.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := checkVariant(Cfg.GetString("variant"))
		if err != nil {
			return err
		}
		f, err := FormatsFromConfig(Cfg)
		if err != nil {
			return err
		}
		c, err := Convert(NewCache(f, 0), v, args[0], args[1], args[2])
		if err != nil {
			return err
		}
		cmd.Printf("%g %s = %g %s", c.Value, c.From, c.Result, c.To)
		if c.SI != "" {
			cmd.Printf(" (%s)", c.SI)
		}
		cmd.Println()
		return nil
	},
	DisableAutoGenTag: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve parse, format and convert over HTTP.",
	Long: `serve starts an HTTP service with the JSON endpoints /parse, /format
and /convert. Each takes its arguments as query parameters; see the
documentation of NewServer.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := checkVariant(Cfg.GetString("variant"))
		if err != nil {
			return err
		}
		f, err := FormatsFromConfig(Cfg)
		if err != nil {
			return err
		}
		size, err := cast.ToIntE(Cfg.Get("cachesize"))
		if err != nil {
			return fmt.Errorf("ucum: invalid cachesize: %v", err)
		}
		s := NewServer(NewCache(f, size), v)
		return s.ListenAndServe(Cfg.GetString("address"))
	},
	DisableAutoGenTag: true,
}

// checkVariant parses a variant name given in the configuration.
func checkVariant(name string) (symbol.Variant, error) {
	v, err := symbol.ParseVariant(name)
	if err != nil {
		return v, fmt.Errorf("ucum: %v", err)
	}
	return v, nil
}
