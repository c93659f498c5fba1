package registry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// StatusRegistered marks an artifact whose conversion (and upload, when
// requested) completed and whose record was committed. Failed tasks never
// reach the registry; their causes live in the run summary.
const StatusRegistered = "registered"

// Entry describes one converted model artifact.
type Entry struct {
	ModelName         string    `yaml:"model_name"`
	Framework         string    `yaml:"framework"`
	Precision         string    `yaml:"precision"`
	Task              string    `yaml:"task,omitempty"`
	Revision          string    `yaml:"revision,omitempty"`
	LocalPath         string    `yaml:"local_path"`
	RemoteURI         string    `yaml:"remote_uri,omitempty"`
	ConvertedAt       time.Time `yaml:"converted_at"`
	Status            string    `yaml:"status"`
	ConversionCommand string    `yaml:"conversion_command,omitempty"`
}

// Key identifies an artifact within the registry. Exactly one entry exists
// per key.
type Key struct {
	Model     string
	Framework string
	Precision string
}

// Key returns the entry's composite identity.
func (e Entry) Key() Key {
	return Key{Model: e.ModelName, Framework: e.Framework, Precision: e.Precision}
}

// CorruptError is returned by Load when the registry file exists but cannot
// be parsed. It is fatal: a run must not proceed against a registry it
// cannot read.
type CorruptError struct {
	Path string
	Err  error
}

func (e *CorruptError) Error() string {
	return fmt.Sprintf("registry %s is corrupt: %v", e.Path, e.Err)
}

func (e *CorruptError) Unwrap() error { return e.Err }

// Registry is the ordered collection of artifact entries. Entries keep their
// insertion order so repeated runs serialize deterministically.
type Registry struct {
	entries []Entry
}

// document is the on-disk shape of the registry file.
type document struct {
	Artifacts []Entry `yaml:"artifacts"`
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{}
}

// Load reads the registry file at path. A missing file yields an empty
// registry; an unparseable file yields a CorruptError.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptError{Path: path, Err: err}
	}
	return &Registry{entries: doc.Artifacts}, nil
}

// Len returns the number of entries.
func (r *Registry) Len() int { return len(r.entries) }

// Entries returns a copy of all entries in insertion order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, len(r.entries))
	copy(out, r.entries)
	return out
}

// Find returns the entry for the (model, framework, precision) key, or nil.
func (r *Registry) Find(model, framework, precision string) *Entry {
	for i := range r.entries {
		e := &r.entries[i]
		if e.ModelName == model && e.Framework == framework && e.Precision == precision {
			return e
		}
	}
	return nil
}

// Upsert inserts the entry, or replaces the existing entry sharing its key
// in place so the registry's ordering and size stay stable across re-runs.
func (r *Registry) Upsert(entry Entry) {
	for i := range r.entries {
		if r.entries[i].Key() == entry.Key() {
			r.entries[i] = entry
			return
		}
	}
	r.entries = append(r.entries, entry)
}

// Filter returns the entries whose framework is in frameworks, preserving
// order. An empty filter returns everything.
func (r *Registry) Filter(frameworks ...string) []Entry {
	if len(frameworks) == 0 {
		return r.Entries()
	}
	var out []Entry
	for _, e := range r.entries {
		for _, fw := range frameworks {
			if e.Framework == fw {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

// Save writes the registry to path atomically: the document is written to a
// temp file in the same directory and renamed over the target, so a crash
// mid-write never corrupts the previous valid file.
func (r *Registry) Save(path string) error {
	doc := document{Artifacts: r.entries}
	data, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create registry dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp registry file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp registry file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp registry file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename registry into place: %w", err)
	}
	return nil
}
