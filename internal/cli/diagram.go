package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"fluidnet/internal/catalog"
	"fluidnet/internal/codec"
	"fluidnet/internal/domain"
)

// formatFor picks a codec format from an explicit flag or the file extension
func formatFor(path, explicit string) string {
	if explicit != "" {
		return explicit
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	case ".xml":
		return "xml"
	}
	return "json"
}

// readDiagram loads a diagram file and checks it against the catalog
func readDiagram(path, format string) (domain.Diagram, error) {
	c, err := codec.ForFormat(formatFor(path, format))
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open diagram: %w", err)
	}
	defer f.Close()

	d, err := c.Parse(f)
	if err != nil {
		return nil, err
	}
	if err := checkDiagram(d); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// checkDiagram rejects unknown types, undeclared parameters and connections
// that do not run from an outlet to an inlet
func checkDiagram(d domain.Diagram) error {
	for _, id := range sortedIDs(d) {
		comp := d[id]
		spec, err := catalog.Lookup(comp.Type)
		if err != nil {
			return fmt.Errorf("component %s: %w", id, err)
		}
		for key := range comp.Parameters {
			if !spec.HasParameter(key) {
				return fmt.Errorf("component %s: parameter %q is not declared by %s", id, key, spec.Name)
			}
		}
		for _, conn := range comp.Connections {
			if err := conn.Validate(); err != nil {
				return fmt.Errorf("component %s: connection %s: %w", id, conn, err)
			}
			if domain.OwnerOf(conn.From) != id {
				return fmt.Errorf("component %s: connection %s belongs to %s", id, conn, domain.OwnerOf(conn.From))
			}
		}
	}
	return nil
}

func sortedIDs(d domain.Diagram) []string {
	ids := make([]string, 0, len(d))
	for id := range d {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
