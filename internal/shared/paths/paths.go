package paths

import (
	"fmt"
	"path/filepath"
	"strings"
)

// esmini resource subdirectories
const (
	// RoadDir holds OpenDRIVE road networks
	RoadDir = "xodr"

	// SceneDir holds 3D scene graphs
	SceneDir = "models"
)

// Resources is an esmini resources root.
type Resources struct {
	Root string
}

// Road returns the path of a road network file.
func (r Resources) Road(file string) string {
	return filepath.Join(r.Root, RoadDir, file)
}

// Scene returns the path of a scene graph file, or "" when file is empty.
func (r Resources) Scene(file string) string {
	if file == "" {
		return ""
	}
	return filepath.Join(r.Root, SceneDir, file)
}

// ValidateAssetName checks that name is a relative, clean path that stays
// inside its resource directory.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("asset name cannot be empty")
	}
	if filepath.IsAbs(name) {
		return fmt.Errorf("asset name %q cannot be an absolute path", name)
	}
	if filepath.Clean(name) != name {
		return fmt.Errorf("asset name %q contains invalid path components", name)
	}
	if name == ".." || strings.HasPrefix(name, ".."+string(filepath.Separator)) {
		return fmt.Errorf("asset name %q escapes the resource directory", name)
	}
	return nil
}
