// Package config holds the Markdown parsing and rendering options shared by the
// md_ast table, the md_to_html function and the CLI.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Extensions toggles syntax beyond CommonMark.
type Extensions struct {
	// GFM enables tables, strikethrough, task lists and autolink literals.
	GFM         bool `yaml:"gfm"`
	Footnotes   bool `yaml:"footnotes"`
	FrontMatter bool `yaml:"front_matter"`
	Math        bool `yaml:"math"`
}

// HTML controls md_to_html output. It has no effect on md_ast rows.
type HTML struct {
	Unsafe    bool `yaml:"unsafe"`
	HardWraps bool `yaml:"hard_wraps"`
}

type Options struct {
	Extensions Extensions `yaml:"extensions"`
	HTML       HTML       `yaml:"html"`
}

// Default is plain CommonMark.
func Default() Options {
	return Options{}
}

// Load reads options from a YAML file and applies MDSQL_* environment
// overrides. An empty path or a missing file yields the defaults.
func Load(path string) (Options, error) {
	opts := Default()

	if path != "" {
		if err := loadFile(path, &opts); err != nil {
			return opts, fmt.Errorf("load config file: %w", err)
		}
	}

	if err := loadEnv(&opts); err != nil {
		return opts, fmt.Errorf("load config env: %w", err)
	}

	return opts, nil
}

func loadFile(path string, opts *Options) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(data, opts); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// args maps each module argument name to the option it sets.
func (o *Options) args() []struct {
	name string
	ptr  *bool
} {
	return []struct {
		name string
		ptr  *bool
	}{
		{"gfm", &o.Extensions.GFM},
		{"footnotes", &o.Extensions.Footnotes},
		{"front_matter", &o.Extensions.FrontMatter},
		{"math", &o.Extensions.Math},
		{"unsafe_html", &o.HTML.Unsafe},
		{"hard_wraps", &o.HTML.HardWraps},
	}
}

func loadEnv(opts *Options) error {
	for _, a := range opts.args() {
		key := "MDSQL_" + strings.ToUpper(a.name)
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*a.ptr = b
	}
	return nil
}

// ModuleArgs renders the enabled options as virtual table module arguments,
// e.g. ["gfm", "math"], suitable for CREATE VIRTUAL TABLE ... USING md_ast(...).
func (o Options) ModuleArgs() []string {
	var out []string
	for _, a := range o.args() {
		if *a.ptr {
			out = append(out, a.name)
		}
	}
	return out
}

// ParseModuleArgs is the inverse of ModuleArgs. Each argument is either a bare
// option name, which enables it, or name=bool. The name "all" toggles every
// option. Surrounding quotes are ignored.
// Options not mentioned keep their defaults.
func ParseModuleArgs(args []string) (Options, error) {
	opts := Default()
	for _, raw := range args {
		arg := strings.TrimSpace(raw)
		arg = strings.Trim(arg, `'"`)
		if arg == "" {
			continue
		}

		name, val, hasVal := strings.Cut(arg, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		enabled := true
		if hasVal {
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return opts, fmt.Errorf("option %q: %w", name, err)
			}
			enabled = b
		}

		if !opts.set(name, enabled) {
			return opts, fmt.Errorf("unknown option %q", name)
		}
	}
	return opts, nil
}

func (o *Options) set(name string, v bool) bool {
	if name == "all" {
		for _, a := range o.args() {
			*a.ptr = v
		}
		return true
	}
	for _, a := range o.args() {
		if a.name == name {
			*a.ptr = v
			return true
		}
	}
	return false
}

// Set changes one option by its module argument name.
func (o *Options) Set(name string, v bool) error {
	if !o.set(strings.ToLower(name), v) {
		return fmt.Errorf("unknown option %q", name)
	}
	return nil
}
