package prompt

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
)

// Ext is the file extension of prompt templates on disk.
const Ext = ".tmpl"

// Catalog is a fixed set of named templates. Each name comes from a
// built-in default and may be overridden by <dir>/<name>.tmpl.
type Catalog struct {
	templates map[string]*Template
}

// LoadCatalog parses defaults, replacing each with its file under dir when
// one exists. An empty dir uses defaults only.
func LoadCatalog(dir string, defaults map[string]string, funcs template.FuncMap) (*Catalog, error) {
	if funcs == nil {
		funcs = Funcs()
	}
	c := &Catalog{templates: make(map[string]*Template, len(defaults))}
	for name, source := range defaults {
		var (
			tpl *Template
			err error
		)
		path := ""
		if dir != "" {
			path = filepath.Join(dir, name+Ext)
		}
		if path != "" && fileExists(path) {
			tpl, err = NewTemplate(path, funcs)
		} else {
			tpl, err = Parse(name, source, funcs)
		}
		if err != nil {
			return nil, err
		}
		c.templates[name] = tpl
	}
	return c, nil
}

// Render executes the named template.
func (c *Catalog) Render(name string, data any) (string, error) {
	tpl, ok := c.templates[name]
	if !ok {
		return "", fmt.Errorf("prompt template %q not registered", name)
	}
	return tpl.Render(data)
}

// Get returns the named template.
func (c *Catalog) Get(name string) (*Template, bool) {
	tpl, ok := c.templates[name]
	return tpl, ok
}

// Names lists the registered templates in order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.templates))
	for name := range c.templates {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reload rereads every file-backed template.
func (c *Catalog) Reload() error {
	var errs []error
	for _, name := range c.Names() {
		if err := c.templates[name].Reload(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Funcs is the helper set available to every prompt.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"trim":  strings.TrimSpace,
		"upper": strings.ToUpper,
		"lower": strings.ToLower,
		"default": func(def, v string) string {
			if strings.TrimSpace(v) == "" {
				return def
			}
			return v
		},
	}
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
