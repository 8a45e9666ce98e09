// Package project loads and saves the resources a build needs.
//
// A project is a pack (an identifier such as "castle") stored in a [Store].
// Resources are JSON documents addressed by [Reference]: styles live in
// data_pack/styles and structures in data_pack/structures. Resources of other
// packs are read from the pack's dependencies/ folder.
package project

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/worksite/pkg/builder"
	werrors "github.com/matzehuels/worksite/pkg/errors"
	"github.com/matzehuels/worksite/pkg/style"
)

// Project binds a home pack to a store.
type Project struct {
	Pack  string
	Store Store
}

// Open returns the project for pack.
func Open(store Store, pack string) (*Project, error) {
	if err := werrors.ValidatePack(pack); err != nil {
		return nil, err
	}
	return &Project{Pack: pack, Store: store}, nil
}

// Ref parses a reference relative to the project pack.
func (p *Project) Ref(s string) (Reference, error) {
	return ParseReference(s, p.Pack)
}

// LoadStyle reads a style document. The style is named after its reference.
func (p *Project) LoadStyle(ctx context.Context, ref Reference) (*style.Style, error) {
	data, err := p.Store.Read(ctx, p.Pack, ref.Path(p.Pack, FolderStyles))
	if err != nil {
		return nil, err
	}
	var s style.Style
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, werrors.Wrap(werrors.ErrCodeInvalidJSON, err, "decode style %s", ref)
	}
	s.Name = ref.Format(p.Pack)
	return &s, nil
}

// SaveStyle writes s under ref.
func (p *Project) SaveStyle(ctx context.Context, ref Reference, s *style.Style) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode style: %w", err)
	}
	return p.Store.Write(ctx, p.Pack, ref.Path(p.Pack, FolderStyles), data)
}

// ResolveStyle loads the style at ref and merges everything it implements.
func (p *Project) ResolveStyle(ctx context.Context, ref Reference) (*style.Style, error) {
	s, err := p.LoadStyle(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.Resolve(p.StyleLoader(ctx))
}

// StyleLoader adapts the project to style.Loader. Names are references
// relative to the project pack.
func (p *Project) StyleLoader(ctx context.Context) style.Loader {
	return style.LoaderFunc(func(name string) (*style.Style, error) {
		ref, err := p.Ref(name)
		if err != nil {
			return nil, err
		}
		return p.LoadStyle(ctx, ref)
	})
}

// LoadStructure reads a structure and decodes its builder tree with r.
func (p *Project) LoadStructure(ctx context.Context, r *builder.Registry, ref Reference) (*Structure, error) {
	data, err := p.Store.Read(ctx, p.Pack, ref.Path(p.Pack, FolderStructures))
	if err != nil {
		return nil, err
	}
	s, err := DecodeStructure(r, data)
	if err != nil {
		return nil, fmt.Errorf("structure %s: %w", ref, err)
	}
	s.Ref = ref
	return s, nil
}

// SaveStructure writes s under its reference with a refreshed dependency
// list.
func (p *Project) SaveStructure(ctx context.Context, s *Structure) error {
	data, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return p.Store.Write(ctx, p.Pack, s.Ref.Path(p.Pack, FolderStructures), data)
}

// Styles lists the style locations of the home pack.
func (p *Project) Styles(ctx context.Context) ([]string, error) {
	return p.Store.List(ctx, p.Pack, FolderStyles)
}

// Structures lists the structure locations of the home pack.
func (p *Project) Structures(ctx context.Context) ([]string, error) {
	return p.Store.List(ctx, p.Pack, FolderStructures)
}
