// Package levels loads maze levels from disk or from the built-in set.
package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/zavo/tiltmaze/internal/maze"
	"github.com/zavo/tiltmaze/internal/maze/levels/formats"
)

//go:embed builtin
var builtinFS embed.FS

// ErrNoLevels is returned when a level set contains no playable level.
var ErrNoLevels = errors.New("levels: no playable levels")

// Entry is one scanned level file.
type Entry struct {
	Path string         // Path relative to the loader root
	Spec maze.LevelSpec // Parsed level, zero when Err is a parse error
	Err  error          // Parse or validation failure
}

// Loader reads level files from a file system.
type Loader struct {
	fsys fs.FS
	root string
}

// NewLoader creates a loader over a directory on disk.
func NewLoader(root string) *Loader {
	return &Loader{fsys: os.DirFS(root), root: root}
}

// NewFSLoader creates a loader over an arbitrary file system.
func NewFSLoader(fsys fs.FS, root string) *Loader {
	return &Loader{fsys: fsys, root: root}
}

// Builtin returns a loader over the levels embedded in the binary.
func Builtin() *Loader {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return &Loader{fsys: sub, root: "builtin"}
}

// Root returns the loader root as shown to users.
func (l *Loader) Root() string {
	return l.root
}

// Scan walks every supported file and reports each one, valid or not.
// Entries are sorted by path. Duplicate IDs are reported on the later file.
func (l *Loader) Scan() ([]Entry, error) {
	var entries []Entry

	err := fs.WalkDir(l.fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !formats.Supported(path.Ext(p)) {
			return nil
		}

		spec, err := l.LoadFile(p)
		if err == nil {
			_, err = maze.NewLevel(spec)
		}
		entries = append(entries, Entry{Path: p, Spec: spec, Err: err})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("levels: walking %s: %w", l.root, err)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})

	seen := make(map[string]string)
	for i := range entries {
		e := &entries[i]
		if e.Err != nil {
			continue
		}
		if first, ok := seen[e.Spec.ID]; ok {
			e.Err = &maze.LevelFormatError{
				Level: e.Spec.ID,
				Field: "id",
				Err:   fmt.Errorf("duplicate of %s", first),
			}
			continue
		}
		seen[e.Spec.ID] = e.Path
	}

	return entries, nil
}

// LoadAll returns every valid level sorted by ID. Invalid files are skipped.
func (l *Loader) LoadAll() ([]maze.LevelSpec, error) {
	entries, err := l.Scan()
	if err != nil {
		return nil, err
	}

	var specs []maze.LevelSpec
	for _, e := range entries {
		if e.Err == nil {
			specs = append(specs, e.Spec)
		}
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoLevels, l.root)
	}

	sort.Slice(specs, func(i, j int) bool {
		return specs[i].ID < specs[j].ID
	})
	return specs, nil
}

// LoadFile parses one level file. The ID defaults to the file name without
// extension, and the hash is the xxhash of the file contents.
func (l *Loader) LoadFile(p string) (maze.LevelSpec, error) {
	data, err := fs.ReadFile(l.fsys, p)
	if err != nil {
		return maze.LevelSpec{}, fmt.Errorf("levels: reading %s: %w", p, err)
	}

	ext := path.Ext(p)
	spec, err := formats.Parse(ext, data)
	if err != nil {
		var lfe *maze.LevelFormatError
		if errors.As(err, &lfe) && lfe.Level == "" {
			lfe.Level = p
		}
		return maze.LevelSpec{}, err
	}

	if spec.ID == "" {
		spec.ID = strings.TrimSuffix(path.Base(p), ext)
	}
	spec.Hash = xxhash.Sum64(data)
	return spec, nil
}

// LoadByID returns the valid level with the given ID.
func (l *Loader) LoadByID(id string) (maze.LevelSpec, error) {
	specs, err := l.LoadAll()
	if err != nil {
		return maze.LevelSpec{}, err
	}

	for _, spec := range specs {
		if spec.ID == id {
			return spec, nil
		}
	}
	return maze.LevelSpec{}, fmt.Errorf("levels: level not found: %s", id)
}

// ListIDs returns all valid level IDs in sorted order.
func (l *Loader) ListIDs() ([]string, error) {
	specs, err := l.LoadAll()
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(specs))
	for i, spec := range specs {
		ids[i] = spec.ID
	}
	return ids, nil
}

// Open returns a loader for dir, or the built-in levels when dir is empty.
// A leading ~ is expanded to the home directory.
func Open(dir string) *Loader {
	if dir == "" {
		return Builtin()
	}
	if strings.HasPrefix(dir, "~") {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, dir[1:])
		}
	}
	return NewLoader(dir)
}
