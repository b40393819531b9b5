package loader

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
)

// Ext is the file extension of component scripts.
const Ext = ".lua"

// Script is the source text of one component.
type Script struct {
	// Tag is the element name the script renders.
	Tag string

	// Origin identifies where the script came from, e.g. a file path or
	// an s3:// URL.
	Origin string

	// Code is the Lua source.
	Code string
}

// Source provides component scripts.
type Source interface {
	// Name describes the source for logs and errors.
	Name() string

	// Scripts returns every script the source holds.
	Scripts(ctx context.Context) ([]Script, error)
}

// TagFromName derives a tag from a script file name, or returns "" when
// the name is not a component script.
func TagFromName(name string) string {
	base := path.Base(name)
	if !strings.HasSuffix(base, Ext) {
		return ""
	}
	return strings.ToLower(strings.TrimSuffix(base, Ext))
}

// =============================================================================
// File systems
// =============================================================================

// FSSource reads *.lua files from one directory of a file system.
type FSSource struct {
	FS  fs.FS
	Dir string

	// Label overrides Name.
	Label string
}

// Name implements Source.
func (s FSSource) Name() string {
	if s.Label != "" {
		return s.Label
	}
	return "fs:" + s.dir()
}

func (s FSSource) dir() string {
	if s.Dir == "" {
		return "."
	}
	return s.Dir
}

// Scripts implements Source.
func (s FSSource) Scripts(ctx context.Context) ([]Script, error) {
	entries, err := fs.ReadDir(s.FS, s.dir())
	if err != nil {
		return nil, err
	}

	var scripts []Script
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		tag := TagFromName(entry.Name())
		if tag == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		p := path.Join(s.dir(), entry.Name())
		data, err := fs.ReadFile(s.FS, p)
		if err != nil {
			return nil, err
		}
		scripts = append(scripts, Script{Tag: tag, Origin: p, Code: string(data)})
	}
	return scripts, nil
}

// DirSource reads *.lua files from a directory on disk.
type DirSource struct {
	Dir string
}

// Name implements Source.
func (s DirSource) Name() string {
	return s.Dir
}

// Scripts implements Source. Origins are paths on disk.
func (s DirSource) Scripts(ctx context.Context) ([]Script, error) {
	scripts, err := FSSource{FS: os.DirFS(s.Dir)}.Scripts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range scripts {
		scripts[i].Origin = path.Join(s.Dir, path.Base(scripts[i].Origin))
	}
	return scripts, nil
}

// =============================================================================
// In memory
// =============================================================================

// MapSource holds scripts keyed by tag.
type MapSource map[string]string

// Name implements Source.
func (s MapSource) Name() string {
	return "inline"
}

// Scripts implements Source. Scripts are returned in tag order.
func (s MapSource) Scripts(context.Context) ([]Script, error) {
	tags := make([]string, 0, len(s))
	for tag := range s {
		tags = append(tags, tag)
	}
	sort.Strings(tags)

	scripts := make([]Script, 0, len(tags))
	for _, tag := range tags {
		scripts = append(scripts, Script{
			Tag:    strings.ToLower(tag),
			Origin: fmt.Sprintf("inline:%s", tag),
			Code:   s[tag],
		})
	}
	return scripts, nil
}
