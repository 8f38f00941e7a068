// Package pegfile loads grammar manifests: TOML files that name a compiled
// automata artifact, the start rule, and the five sentinel TypeTag roles a
// grammar assigns to the engine's special automaton types.
package pegfile

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/corvidlang/pegrun/internal/peg"
)

// Manifest is the on-disk (.pgm, for "peg manifest") description of a
// compiled grammar.
type Manifest struct {
	Format   string   `toml:"format"`
	Start    string   `toml:"start"`
	Roles    Roles    `toml:"roles"`
	Artifact string   `toml:"artifact"`

	// Names gives the rule name for each automaton in the artifact, in
	// artifact order; a rule's TypeTag is its index into Names. Start and
	// the entries of Roles are names drawn from this vector.
	Names []string `toml:"names"`
}

// Roles names the grammar's five sentinel non-terminals by their rule name,
// mirroring peg.TagRoles but in manifest form (names instead of TypeTags;
// the TypeTags are assigned once the names vector is known).
type Roles struct {
	Empty             string `toml:"empty"`
	Char              string `toml:"char"`
	PreParsedNT       string `toml:"pre_parsed"`
	PositivePredicate string `toml:"positive_predicate"`
	NegativePredicate string `toml:"negative_predicate"`
}

// ErrBadFormat is returned when a manifest's format tag is not "PEGM".
var ErrBadFormat = fmt.Errorf("manifest does not declare format = %q", "PEGM")

// Load reads and parses the manifest at path. It does not load the
// referenced artifact; call LoadArtifact for that once the manifest's rule
// names have been resolved to indices.
func Load(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("%q: %w", path, err)
	}

	m, err := Parse(data)
	if err != nil {
		return Manifest{}, fmt.Errorf("%q: %w", path, err)
	}
	return m, nil
}

// Parse decodes manifest TOML already held in memory, e.g. one uploaded to
// the server rather than read from a local .pgm file.
func Parse(data []byte) (Manifest, error) {
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, err
	}
	if m.Format != "PEGM" {
		return Manifest{}, ErrBadFormat
	}
	return m, nil
}

// ErrUnknownRuleName is returned by Resolve when Start or a role names a
// rule absent from the manifest's Names vector.
var ErrUnknownRuleName = fmt.Errorf("manifest names a rule absent from its names vector")

// Resolve maps the manifest's rule names to the TypeTag indices the engine
// expects: the start automaton's index, the five sentinel roles as
// peg.TagRoles, and the full index-to-name table for error/tree rendering.
func (m Manifest) Resolve() (start int, roles peg.TagRoles, names map[peg.TypeTag]string, err error) {
	index := make(map[string]int, len(m.Names))
	names = make(map[peg.TypeTag]string, len(m.Names))
	for i, name := range m.Names {
		index[name] = i
		names[peg.TypeTag(i)] = name
	}

	lookup := func(ruleName string) (peg.TypeTag, error) {
		i, ok := index[ruleName]
		if !ok {
			return 0, fmt.Errorf("%q: %w", ruleName, ErrUnknownRuleName)
		}
		return peg.TypeTag(i), nil
	}

	startTag, err := lookup(m.Start)
	if err != nil {
		return 0, peg.TagRoles{}, nil, err
	}
	start = int(startTag)

	if roles.Empty, err = lookup(m.Roles.Empty); err != nil {
		return 0, peg.TagRoles{}, nil, err
	}
	if roles.Char, err = lookup(m.Roles.Char); err != nil {
		return 0, peg.TagRoles{}, nil, err
	}
	if roles.PreParsedNT, err = lookup(m.Roles.PreParsedNT); err != nil {
		return 0, peg.TagRoles{}, nil, err
	}
	if roles.PositivePredicate, err = lookup(m.Roles.PositivePredicate); err != nil {
		return 0, peg.TagRoles{}, nil, err
	}
	if roles.NegativePredicate, err = lookup(m.Roles.NegativePredicate); err != nil {
		return 0, peg.TagRoles{}, nil, err
	}

	return start, roles, names, nil
}

// ArtifactPath resolves the manifest's artifact reference relative to the
// manifest file's own directory.
func (m Manifest) ArtifactPath(manifestPath string) string {
	if filepath.IsAbs(m.Artifact) {
		return m.Artifact
	}
	return filepath.Join(filepath.Dir(manifestPath), m.Artifact)
}

// LoadArtifact reads a compiled automata vector from a .fab artifact file.
func LoadArtifact(path string) ([]peg.Automaton, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%q: %w", path, err)
	}
	return DecodeArtifact(data)
}

// SaveArtifact writes an automata vector to a .fab artifact file.
func SaveArtifact(path string, automata []peg.Automaton) error {
	data, err := EncodeArtifact(automata)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
