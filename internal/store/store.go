// Package store persists the per-image pipeline artifacts under
// <root>/<image-basename>/. Directories are keyed only by the basename, so
// two images with the same name overwrite each other.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"cancellable-biokey/internal/cipher"
	"cancellable-biokey/internal/io"
	"cancellable-biokey/internal/keys"
)

// DefaultRoot is the output root relative to the working directory.
const DefaultRoot = "3DES"

const (
	RefinedImageFile      = "refined_image.png"
	PreprocessedImageFile = "preprocessed.png"
	FeatureMatrixFile     = "feature_matrix.png"
	TransformedMatrixFile = "transformed_matrix.png"
	CipherKeysFile        = "cipher_keys.txt"
	HashKeysFile          = "hash_keys.txt"
	SeedFile              = "seed.txt"
)

// Store creates artifact directories below a root.
type Store struct {
	root   string
	loader *io.ImageLoader
	logger logrus.FieldLogger
}

func New(root string, loader *io.ImageLoader, logger logrus.FieldLogger) *Store {
	if root == "" {
		root = DefaultRoot
	}
	return &Store{root: root, loader: loader, logger: logger}
}

// Root returns the configured output root.
func (s *Store) Root() string {
	return s.root
}

// Open creates (or reuses) the directory for imagePath and returns a handle to it.
func (s *Store) Open(imagePath string) (*RunDir, error) {
	name := BaseName(imagePath)
	if name == "" {
		return nil, fmt.Errorf("cannot derive artifact directory from %q", imagePath)
	}

	dir := filepath.Join(s.root, name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact directory: %w", err)
	}

	return &RunDir{path: dir, loader: s.loader, logger: s.logger.WithField("output_dir", dir)}, nil
}

// BaseName strips the directory and extension from an image path. Leading
// dots are part of the name, so ".png" stays ".png".
func BaseName(imagePath string) string {
	base := filepath.Base(imagePath)
	if base == "." || base == ".." || base == string(filepath.Separator) {
		return ""
	}
	ext := filepath.Ext(strings.TrimLeft(base, "."))
	return strings.TrimSuffix(base, ext)
}

// RunDir is the artifact directory of one invocation.
type RunDir struct {
	path   string
	loader *io.ImageLoader
	logger logrus.FieldLogger
}

func (d *RunDir) Path() string {
	return d.path
}

// File returns the full path of an artifact name inside the directory.
func (d *RunDir) File(name string) string {
	return filepath.Join(d.path, name)
}

// SaveImage writes mat under name and returns the full path.
func (d *RunDir) SaveImage(name string, mat gocv.Mat) (string, error) {
	path := d.File(name)
	if err := d.loader.SaveImage(mat, path); err != nil {
		return "", fmt.Errorf("save %s: %w", name, err)
	}
	return path, nil
}

// WriteCipherChain writes the three stage ciphertexts as hex, one per line.
func (d *RunDir) WriteCipherChain(chain cipher.Chain) (string, error) {
	c1, c2, c3 := chain.Hex()
	content := fmt.Sprintf("C1: %s\nC2: %s\nC3: %s\n", c1, c2, c3)
	return d.writeText(CipherKeysFile, content)
}

// WriteHashKeys writes the final key in hex and as a 256-bit string.
func (d *RunDir) WriteHashKeys(key keys.Key) (string, error) {
	content := fmt.Sprintf("Hash Key: %s\n256-bit Binary Key: %s\n", key.Hex(), key.Bits())
	return d.writeText(HashKeysFile, content)
}

// WriteSeed records the cancellable transform seed so the transform can be replayed.
func (d *RunDir) WriteSeed(seed uint32) (string, error) {
	return d.writeText(SeedFile, fmt.Sprintf("Seed: %d\n", seed))
}

func (d *RunDir) writeText(name, content string) (string, error) {
	path := d.File(name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	d.logger.WithField("file", name).Debug("Artifact written")
	return path, nil
}
