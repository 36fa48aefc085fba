// Package descriptor parses composition descriptors exported by
// video-mapping software into a normalized, immutable structure.
//
// Descriptors arrive in two serializations of the same logical shape: the
// XML export written by the mapping tool, and an equivalent JSON form used
// by the HTTP API. Both are loosely typed and vary across tool versions —
// numeric fields may be strings, a single vertex may be encoded as a bare
// object instead of a one-element list, and optional containers come and
// go. Parsing normalizes all of that; it never fails on a malformed number
// (the value defaults to 0) but does fail on missing root structure.
//
// A parsed Composition is created once per import and immutable afterward.
// Resolution (pkg/resolve) reads it without modification, so the same
// Composition can be resolved repeatedly under different parameters.
package descriptor

import (
	"bytes"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/slicegrid/slicegrid/pkg/errors"
	"github.com/slicegrid/slicegrid/pkg/geometry"
)

// Version identifies the tool release that exported a descriptor.
type Version struct {
	Name  string `json:"name,omitempty"`
	Major int    `json:"major"`
	Minor int    `json:"minor"`
	Micro int    `json:"micro"`
}

// String returns the version as "Name major.minor.micro".
func (v Version) String() string {
	if v.Name == "" {
		return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Micro)
	}
	return fmt.Sprintf("%s %d.%d.%d", v.Name, v.Major, v.Minor, v.Micro)
}

// Region is one raw per-slice record from the descriptor. Quads are kept
// exactly as extracted (possibly empty or under-filled); validation happens
// during resolution, not parsing, so a malformed region never aborts an
// import.
type Region struct {
	// ID is the region's unique identifier. Regions whose descriptor omits
	// uniqueId, or reuses one, are assigned a fresh UUID at parse time so
	// IDs are always unique within a Composition.
	ID string

	// Name is the display name from the "Name" param, empty if absent.
	Name string

	InputQuad  geometry.Quad
	OutputQuad geometry.Quad
}

// Composition is a parsed but not-yet-resolved descriptor.
type Composition struct {
	Name    string
	Version Version

	// DeclaredSize is the explicit virtual-output canvas size, when the
	// descriptor states one. Nil means the internal resolution must be
	// inferred from region extents.
	DeclaredSize *geometry.Size

	// Regions preserves the descriptor's slice order.
	Regions []Region
}

// Parse decodes a descriptor from raw bytes, sniffing the serialization
// format. XML documents start with '<'; everything else is tried as JSON.
func Parse(data []byte) (*Composition, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidDescriptor, "empty descriptor")
	}
	if trimmed[0] == '<' {
		return ParseXML(data)
	}
	return ParseJSON(data)
}

// ParseFile reads and decodes the descriptor at path.
func ParseFile(path string) (*Composition, error) {
	if err := errors.ValidateDescriptorPath(path); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.New(errors.ErrCodeFileNotFound, "descriptor not found: %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidDescriptor, err, "read %s", path)
	}
	return Parse(data)
}

// assignIDs guarantees unique region IDs. Missing and duplicate uniqueIds
// both get a generated UUID; the region itself is kept.
func assignIDs(regions []Region) {
	seen := make(map[string]bool, len(regions))
	for i := range regions {
		id := regions[i].ID
		if id == "" || seen[id] {
			id = uuid.NewString()
			regions[i].ID = id
		}
		seen[id] = true
	}
}
