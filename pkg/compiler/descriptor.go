package compiler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/sourcepath/pkg/cache"
	"github.com/matzehuels/sourcepath/pkg/source"
)

// DescriptorVersion is bumped whenever the descriptor layout changes so that
// cached artifacts from older layouts are not reused.
const DescriptorVersion = "1"

// Descriptor is the built-in compiler. Its artifact is a JSON document
// describing the unit, so identical sources always yield identical bytes.
type Descriptor struct{}

// NewDescriptor returns the built-in compiler.
func NewDescriptor() *Descriptor { return &Descriptor{} }

type descriptor struct {
	Unit         string   `json:"unit"`
	Namespace    string   `json:"namespace"`
	Imports      []string `json:"imports"`
	OnDemand     []string `json:"on_demand,omitempty"`
	SourceSHA256 string   `json:"source_sha256"`
}

// Compile parses in.Source and renders its descriptor.
func (d *Descriptor) Compile(ctx context.Context, in Input) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := source.Parse(in.Path, in.Source)
	if err != nil {
		return nil, err
	}
	imports := f.Imports
	if imports == nil {
		imports = []string{}
	}
	data, err := json.MarshalIndent(descriptor{
		Unit:         in.Name.String(),
		Namespace:    in.Namespace,
		Imports:      imports,
		OnDemand:     f.OnDemand,
		SourceSHA256: cache.Hash(in.Source),
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode descriptor: %w", err)
	}
	return append(data, '\n'), nil
}

// ID identifies the descriptor layout.
func (d *Descriptor) ID() string { return "descriptor/v" + DescriptorVersion }
