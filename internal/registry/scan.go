package registry

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DescriptorFileName is the per-package metadata file in the widgets directory.
const DescriptorFileName = "widget.yaml"

// Descriptor is the on-disk form of widget metadata.
type Descriptor struct {
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description,omitempty"`
	DefaultSize []int  `yaml:"default_size,omitempty"`
}

func (d Descriptor) size() (Size, bool, error) {
	if len(d.DefaultSize) == 0 {
		return Size{}, false, nil
	}
	if len(d.DefaultSize) != 2 {
		return Size{}, false, fmt.Errorf("default_size must be [width, height]")
	}
	w, h := d.DefaultSize[0], d.DefaultSize[1]
	if w <= 0 || h <= 0 {
		return Size{}, false, fmt.Errorf("default_size must be positive, got [%d, %d]", w, h)
	}
	return Size{Width: w, Height: h}, true, nil
}

// Scan reads descriptors from the widgets directory. It runs at most once;
// later calls return nil. A missing directory is not an error.
func (r *Registry) Scan() error {
	if r.scanned || r.dir == "" {
		return nil
	}
	r.scanned = true

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to list widgets directory: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			names = append(names, ent.Name())
		}
	}
	sort.Strings(names)

	for _, pkg := range names {
		path := filepath.Join(r.dir, pkg, DescriptorFileName)
		desc, ok, err := readDescriptor(path)
		if err != nil {
			r.logger.Warn("skipping widget descriptor", "path", path, "error", err)
			continue
		}
		if !ok {
			continue
		}
		r.applyDescriptor(pkg, desc, path)
	}
	return nil
}

func (r *Registry) applyDescriptor(pkg string, desc Descriptor, path string) {
	entry, ok := r.entries[pkg]
	if !ok {
		r.logger.Warn("widget descriptor has no compiled factory", "package", pkg, "path", path)
		return
	}

	size, hasSize, err := desc.size()
	if err != nil {
		r.logger.Warn("invalid widget descriptor", "path", path, "error", err)
		return
	}
	if desc.DisplayName != "" {
		entry.DisplayName = desc.DisplayName
	}
	if desc.Description != "" {
		entry.Description = desc.Description
	}
	if hasSize {
		entry.DefaultSize = size
	}
	r.entries[pkg] = entry
	r.logger.Debug("widget descriptor applied", "package", pkg, "display_name", entry.DisplayName)
}

func readDescriptor(path string) (Descriptor, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Descriptor{}, false, nil
		}
		return Descriptor{}, false, fmt.Errorf("failed to read: %w", err)
	}

	var desc Descriptor
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&desc); err != nil && err != io.EOF {
		return Descriptor{}, false, fmt.Errorf("failed to parse yaml: %w", err)
	}
	return desc, true, nil
}
