// Package sources supplies the shipped dictionary formats and the YAML
// manifest that binds data files to them.
package sources

import (
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ankitdsmb/DictionaryImporter-sub008/errors"
	"github.com/ankitdsmb/DictionaryImporter-sub008/importer"
)

// Manifest lists the dictionary sources of one deployment.
type Manifest struct {
	Sources []ManifestSource `yaml:"sources"`
}

// ManifestSource is one manifest row.
type ManifestSource struct {
	Code         string `yaml:"code"`
	Name         string `yaml:"name"`
	Format       string `yaml:"format"`
	Path         string `yaml:"path"`
	RebuildGraph bool   `yaml:"rebuild_graph"`
}

// LoadManifest reads a YAML manifest and returns the source definitions
// it describes. Relative data paths resolve against the manifest's own
// directory, so a manifest travels with its files.
func LoadManifest(path string) ([]importer.SourceDefinition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read source manifest")
	}
	return ParseManifest(data, filepath.Dir(path))
}

// ParseManifest parses manifest bytes; baseDir anchors relative paths.
func ParseManifest(data []byte, baseDir string) ([]importer.SourceDefinition, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, errors.Wrap(err, "failed to parse source manifest")
	}
	if len(manifest.Sources) == 0 {
		return nil, errors.New("source manifest lists no sources")
	}

	defs := make([]importer.SourceDefinition, 0, len(manifest.Sources))
	seen := make(map[string]bool, len(manifest.Sources))
	for i, src := range manifest.Sources {
		if err := src.validate(); err != nil {
			return nil, errors.Wrapf(err, "manifest source %d", i+1)
		}
		if seen[src.Code] {
			return nil, errors.Newf("duplicate source code in manifest: %s", src.Code)
		}
		seen[src.Code] = true

		dataPath := src.Path
		if !filepath.IsAbs(dataPath) {
			dataPath = filepath.Join(baseDir, dataPath)
		}
		defs = append(defs, importer.SourceDefinition{
			SourceCode:   src.Code,
			SourceName:   src.Name,
			Format:       src.Format,
			RebuildGraph: src.RebuildGraph,
			Open:         FileOpener(dataPath),
		})
	}
	return defs, nil
}

func (s ManifestSource) validate() error {
	if s.Code == "" {
		return errors.New("code is required")
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	if s.Format == "" {
		return errors.New("format is required")
	}
	if s.Path == "" {
		return errors.New("path is required")
	}
	return nil
}

// FileOpener returns a stream factory for a data file, transparently
// decompressing .gz dumps. Used by the manifest and the drop-directory
// watcher.
func FileOpener(path string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to open %s", path)
		}
		if !strings.HasSuffix(path, ".gz") {
			return f, nil
		}
		zr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "failed to open gzip stream %s", path)
		}
		return &gzipReadCloser{zr: zr, f: f}, nil
	}
}

// gzipReadCloser closes both the gzip stream and the underlying file.
type gzipReadCloser struct {
	zr *gzip.Reader
	f  *os.File
}

func (g *gzipReadCloser) Read(p []byte) (int, error) { return g.zr.Read(p) }

func (g *gzipReadCloser) Close() error {
	zerr := g.zr.Close()
	ferr := g.f.Close()
	if zerr != nil {
		return zerr
	}
	return ferr
}
