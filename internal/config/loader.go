package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kcjengr/hazzy/internal/xdgpath"
)

type SourceKind string

const (
	SourceDefault SourceKind = "default"
	SourceFile    SourceKind = "file"
)

// Source records where an effective value came from.
type Source struct {
	Kind   SourceKind
	Name   string // for SourceDefault
	File   string
	Line   int
	Column int
}

func (s Source) position() string {
	return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
}

type LoadResult struct {
	Config *Config
	// Sources maps a dotted key path to the file position that set it last.
	// Keys left at their default are absent.
	Sources map[string]Source
	// Files lists every file read, includes before the file including them.
	Files []string
}

// DefaultConfigPath returns ~/.config/hazzy/config.yaml, honouring
// XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	return xdgpath.ConfigPath()
}

// Load reads the configuration from the standard location.
func Load() (*Config, error) {
	res, err := LoadWithSources()
	if err != nil {
		return nil, err
	}
	return res.Config, nil
}

// LoadWithSources loads the standard config file and records where each
// key was set.
func LoadWithSources() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads path and its includes. A missing file yields defaults.
func LoadFromPath(path string) (*LoadResult, error) {
	l := &fileLoader{seen: make(map[string]bool)}
	raw := RawConfig{}
	sources := map[string]Source{}
	baseDir := ""

	_, statErr := os.Stat(path)
	switch {
	case statErr == nil:
		var err error
		if raw, sources, err = l.load(path); err != nil {
			return nil, err
		}
		baseDir = filepath.Dir(l.files[len(l.files)-1])
	case !errors.Is(statErr, fs.ErrNotExist):
		return nil, fmt.Errorf("failed to stat config: %w", statErr)
	}

	cfg, err := BuildEffectiveConfig(raw, baseDir)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		return nil, withSource(err, sources)
	}
	return &LoadResult{Config: cfg, Sources: sources, Files: l.files}, nil
}

// fileLoader reads one config file tree. Each file is read at most once;
// a file that includes itself through a chain is an error.
type fileLoader struct {
	seen  map[string]bool
	chain []string
	files []string
}

func (l *fileLoader) load(path string) (RawConfig, map[string]Source, error) {
	file, err := canonicalPath(path)
	if err != nil {
		return RawConfig{}, nil, err
	}
	for _, parent := range l.chain {
		if parent == file {
			return RawConfig{}, nil, fmt.Errorf("include cycle detected: %s -> %s", strings.Join(l.chain, " -> "), file)
		}
	}
	if l.seen[file] {
		return RawConfig{}, map[string]Source{}, nil
	}
	l.seen[file] = true

	data, err := os.ReadFile(file)
	if err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to read: %w", file, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: failed to parse yaml: %w", file, err)
	}
	var own RawConfig
	if err := decodeStrict(data, &own); err != nil {
		return RawConfig{}, nil, fmt.Errorf("%s: %w", file, err)
	}
	ownSources, includes := walkDocument(&doc, file)

	// Included files apply first; the including file wins.
	raw := RawConfig{}
	sources := map[string]Source{}
	l.chain = append(l.chain, file)
	for _, inc := range includes {
		paths, err := includePaths(file, inc.path)
		if err != nil {
			return RawConfig{}, nil, fmt.Errorf("%s: include %q: %w", inc.at.position(), inc.path, err)
		}
		for _, p := range paths {
			incRaw, incSources, err := l.load(p)
			if err != nil {
				return RawConfig{}, nil, err
			}
			raw = raw.merge(incRaw)
			for k, src := range incSources {
				sources[k] = src
			}
		}
	}
	l.chain = l.chain[:len(l.chain)-1]

	raw = raw.merge(own)
	for k, src := range ownSources {
		sources[k] = src
	}
	l.files = append(l.files, file)
	return raw, sources, nil
}

func decodeStrict(data []byte, out any) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil && err != io.EOF {
		return err
	}
	return nil
}

func canonicalPath(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %q: %w", path, err)
	}
	if real, err := filepath.EvalSymlinks(abs); err == nil {
		return real, nil
	}
	return abs, nil
}

// includePaths resolves one include entry relative to the including file.
// A directory expands to its *.yaml and *.yml files in name order.
func includePaths(from, entry string) ([]string, error) {
	if entry == "" {
		return nil, fmt.Errorf("path is empty")
	}
	path, err := resolveUserPath(entry, filepath.Dir(from))
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range entries {
		switch strings.ToLower(filepath.Ext(ent.Name())) {
		case ".yaml", ".yml":
			if !ent.IsDir() {
				out = append(out, filepath.Join(path, ent.Name()))
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

type include struct {
	path string
	at   Source
}

// walkDocument records the position of every key in a config document and
// collects its top-level include entries.
func walkDocument(doc *yaml.Node, file string) (map[string]Source, []include) {
	sources := make(map[string]Source)
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return sources, nil
	}

	var includes []include
	at := func(n *yaml.Node) Source {
		return Source{Kind: SourceFile, File: file, Line: n.Line, Column: n.Column}
	}
	var walk func(n *yaml.Node, prefix string)
	walk = func(n *yaml.Node, prefix string) {
		for i := 0; i+1 < len(n.Content); i += 2 {
			key, val := n.Content[i].Value, n.Content[i+1]
			if prefix != "" {
				key = prefix + "." + key
			}
			sources[key] = at(val)
			if val.Kind == yaml.MappingNode {
				walk(val, key)
			}
		}
	}
	walk(root, "")

	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "include" {
			continue
		}
		val := root.Content[i+1]
		switch val.Kind {
		case yaml.ScalarNode:
			includes = append(includes, include{path: val.Value, at: at(val)})
		case yaml.SequenceNode:
			for _, item := range val.Content {
				if item.Kind == yaml.ScalarNode {
					includes = append(includes, include{path: item.Value, at: at(item)})
				}
			}
		}
	}
	return sources, includes
}

// withSource attaches the file position of the offending key to a
// validation error.
func withSource(err error, sources map[string]Source) error {
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path == "" {
		return err
	}
	if src, ok := sources[verr.Path]; ok {
		verr.Source = src
	}
	return err
}
