package project

import (
	"path"
	"strings"

	werrors "github.com/matzehuels/worksite/pkg/errors"
)

// Resource folders inside a pack.
const (
	FolderStyles     = "data_pack/styles"
	FolderStructures = "data_pack/structures"
)

// Reference names a resource as pack:location. The location is a slash
// separated path inside the resource folder, without extension.
type Reference struct {
	Pack     string
	Location string
}

// ParseReference parses "pack:location" or a bare "location", which is
// taken to live in home.
func ParseReference(s, home string) (Reference, error) {
	ref := Reference{Pack: home, Location: s}
	if pack, loc, ok := strings.Cut(s, ":"); ok {
		ref = Reference{Pack: pack, Location: loc}
	}
	if err := werrors.ValidatePack(ref.Pack); err != nil {
		return Reference{}, err
	}
	if err := werrors.ValidateLocation(ref.Location); err != nil {
		return Reference{}, err
	}
	return ref, nil
}

// Path returns the store path of the resource as seen from the home pack.
// Resources of other packs live under dependencies/<pack>/.
func (r Reference) Path(home, folder string) string {
	p := path.Join(folder, r.Location+".json")
	if r.Pack == home {
		return p
	}
	return path.Join("dependencies", r.Pack, p)
}

// Format renders the reference relative to home, omitting the pack when it
// is home.
func (r Reference) Format(home string) string {
	if r.Pack == home {
		return r.Location
	}
	return r.String()
}

func (r Reference) String() string { return r.Pack + ":" + r.Location }
