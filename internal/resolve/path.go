package resolve

import (
	"context"
	"fmt"
	"log"
	"path"
	"strings"
)

// Lister is the read-only view of a dataset store the resolver needs.
// Paths are slash separated; for object stores the first segment is the bucket.
type Lister interface {
	// Exists reports whether p names a file or a non-empty directory/prefix.
	Exists(ctx context.Context, p string) (bool, error)
	// List returns the immediate children of p (full paths), sorted.
	List(ctx context.Context, p string) ([]string, error)
	// Glob returns the files directly under dir whose base name matches pattern.
	Glob(ctx context.Context, dir, pattern string) ([]string, error)
}

// LayoutVariant is one known folder ordering. Template placeholders are
// {state} and {upgrade}.
type LayoutVariant struct {
	Name     string `yaml:"name"`
	Template string `yaml:"template"`
}

// DefaultLayouts are the orderings seen across ResStock releases, in priority order.
var DefaultLayouts = []LayoutVariant{
	{Name: "state_upgrade", Template: "state={state}/upgrade={upgrade}"},
	{Name: "upgrade_state", Template: "upgrade={upgrade}/state={state}"},
}

// Key selects the partition to resolve.
type Key struct {
	State   string
	Upgrade string
}

func (v LayoutVariant) Expand(k Key) string {
	r := strings.NewReplacer("{state}", k.State, "{upgrade}", k.Upgrade)
	return r.Replace(v.Template)
}

// Resolution is the variant that exists and the concrete path it expands to.
type Resolution struct {
	Variant LayoutVariant
	Path    string
}

// Resolver probes layout variants against a Lister.
type Resolver struct {
	Lister   Lister
	Variants []LayoutVariant
	// SampleSize bounds the diagnostic listing attached to a ResolutionError.
	SampleSize int
}

func NewResolver(l Lister, variants []LayoutVariant) *Resolver {
	if len(variants) == 0 {
		variants = DefaultLayouts
	}
	return &Resolver{Lister: l, Variants: variants, SampleSize: 5}
}

// Resolve returns the first variant, in declared order, whose expanded path
// exists under root.
func (r *Resolver) Resolve(ctx context.Context, root string, key Key) (Resolution, error) {
	if r.Lister == nil {
		return Resolution{}, fmt.Errorf("resolver has no lister")
	}
	root = strings.TrimSuffix(root, "/")
	attempted := make([]string, 0, len(r.Variants))
	for _, v := range r.Variants {
		p := path.Join(root, v.Expand(key))
		attempted = append(attempted, p)
		ok, err := r.Lister.Exists(ctx, p)
		if err != nil {
			return Resolution{}, &ResolutionError{Root: root, Attempted: attempted, Err: err}
		}
		if ok {
			log.Printf("[Resolver] Using layout %s: %s", v.Name, p)
			return Resolution{Variant: v, Path: p}, nil
		}
	}
	log.Printf("[Resolver] No known layout under %s (tried %d variants)", root, len(attempted))
	return Resolution{}, &ResolutionError{Root: root, Attempted: attempted, Listing: r.sample(ctx, root)}
}

// FindBuildingFile locates the Parquet file for one building in a resolved
// directory. A base name that is the id itself, or the id followed by a
// non-digit (12-0.parquet), wins over names that merely contain it. Several
// such names for one id are ambiguous and fail. Without one, the first name
// containing the id in sorted order is used.
func (r *Resolver) FindBuildingFile(ctx context.Context, dir, buildingID string) (string, error) {
	buildingID = strings.TrimSpace(buildingID)
	if buildingID == "" {
		return "", fmt.Errorf("building id is required")
	}
	pattern := "*" + buildingID + "*.parquet"
	matches, err := r.Lister.Glob(ctx, dir, pattern)
	if err != nil {
		return "", &ResolutionError{Root: dir, Attempted: []string{path.Join(dir, pattern)}, Err: err}
	}
	if len(matches) == 0 {
		return "", &ResolutionError{
			Root:      dir,
			Attempted: []string{path.Join(dir, pattern)},
			Listing:   r.sample(ctx, dir),
		}
	}

	var exact []string
	for _, m := range matches {
		if namesBuilding(path.Base(m), buildingID) {
			exact = append(exact, m)
		}
	}
	switch {
	case len(exact) == 1:
		return exact[0], nil
	case len(exact) > 1:
		return "", &ResolutionError{
			Root:      dir,
			Attempted: []string{path.Join(dir, buildingID+".parquet"), path.Join(dir, buildingID+"-*.parquet")},
			Listing:   exact,
			Err:       fmt.Errorf("%d files name building %s", len(exact), buildingID),
		}
	}
	if len(matches) > 1 {
		log.Printf("[Resolver] %d files match %s, using %s", len(matches), pattern, matches[0])
	}
	return matches[0], nil
}

// namesBuilding reports whether base is id.parquet or starts with id and a
// non-digit separator.
func namesBuilding(base, id string) bool {
	stem := strings.TrimSuffix(base, ".parquet")
	if !strings.HasPrefix(stem, id) {
		return false
	}
	rest := stem[len(id):]
	return rest == "" || rest[0] < '0' || rest[0] > '9'
}

func (r *Resolver) sample(ctx context.Context, dir string) []string {
	entries, err := r.Lister.List(ctx, dir)
	if err != nil {
		log.Printf("[Resolver] Listing %s failed: %v", dir, err)
		return nil
	}
	n := r.SampleSize
	if n <= 0 || n > len(entries) {
		n = len(entries)
	}
	return entries[:n]
}
