package config

import (
	"embed"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"
)

//go:embed applications/*.yaml
var builtinApplications embed.FS

const applicationExt = ".yaml"

// Application is one entry of the catalog: a display name and the
// home-relative paths that make up its configuration.
type Application struct {
	ID    string   `yaml:"-"`
	Name  string   `yaml:"name"`
	Files []string `yaml:"files"`
}

// Catalog maps application ids (the definition file's base name) to
// their definitions.
type Catalog map[string]Application

// LoadCatalog returns the built-in catalog, with definitions from dir
// (when non-empty) overriding built-ins that share a base name.
func LoadCatalog(dir string) (Catalog, error) {
	catalog := Catalog{}

	builtin, err := fs.Sub(builtinApplications, "applications")
	if err != nil {
		return nil, errors.Wrap(err, "loading built-in applications")
	}
	if err := catalog.loadFrom(builtin); err != nil {
		return nil, errors.Wrap(err, "loading built-in applications")
	}

	if dir == "" {
		return catalog, nil
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, errors.Wrapf(err, "applications_dir %s", dir)
	}
	if err := catalog.loadFrom(os.DirFS(dir)); err != nil {
		return nil, errors.Wrapf(err, "loading applications from %s", dir)
	}
	return catalog, nil
}

func (c Catalog) loadFrom(fsys fs.FS) error {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || path.Ext(entry.Name()) != applicationExt {
			continue
		}
		data, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return err
		}
		app, err := parseApplication(strings.TrimSuffix(entry.Name(), applicationExt), data)
		if err != nil {
			return errors.Wrapf(err, "parsing %s", entry.Name())
		}
		c[app.ID] = app
	}
	return nil
}

func parseApplication(id string, data []byte) (Application, error) {
	var app Application
	if err := yaml.Unmarshal(data, &app); err != nil {
		return Application{}, err
	}
	app.ID = id
	if app.Name == "" {
		return Application{}, errors.New("missing name")
	}
	if len(app.Files) == 0 {
		return Application{}, errors.Newf("application %s lists no files", app.Name)
	}
	return app, nil
}

// IDs returns the catalog's application ids in lexical order.
func (c Catalog) IDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Select narrows the catalog. A non-empty sync list keeps only those
// ids; ignore then removes ids. Unknown ids in sync are an error.
// The result is sorted by id.
func (c Catalog) Select(sync, ignore []string) ([]Application, error) {
	wanted := c.IDs()
	if len(sync) > 0 {
		wanted = wanted[:0]
		seen := map[string]bool{}
		for _, id := range sync {
			if _, ok := c[id]; !ok {
				return nil, errors.WithHint(
					errors.Newf("unknown application: %s", id),
					"run `cfgsync list` to see the supported applications")
			}
			if !seen[id] {
				seen[id] = true
				wanted = append(wanted, id)
			}
		}
		sort.Strings(wanted)
	}

	skip := map[string]bool{}
	for _, id := range ignore {
		skip[id] = true
	}

	apps := make([]Application, 0, len(wanted))
	for _, id := range wanted {
		if skip[id] {
			continue
		}
		apps = append(apps, c[id])
	}
	return apps, nil
}
