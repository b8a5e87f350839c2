package scene

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const builtinGroup = "Built-in Scenes"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the scene file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

type builtinScene struct {
	info   SceneInfo
	create func() *Scene
}

var builtins = []builtinScene{
	{SceneInfo{ID: "default", Name: "Default Scene", Description: "Five spheres on a large ground sphere with one light"}, NewDefaultScene},
	{SceneInfo{ID: "mirrors", Name: "Facing Mirrors", Description: "Two mirrors reflecting each other up to the depth limit"}, NewMirrorsScene},
	{SceneInfo{ID: "lit-sphere", Name: "Lit Sphere", Description: "A white sphere and a single light"}, NewLitSphereScene},
	{SceneInfo{ID: "glass", Name: "Glass Spheres", Description: "Transparent spheres with increasing index of refraction"}, NewGlassScene},
}

// BuiltinNames returns the IDs of the built-in scenes in registration order
func BuiltinNames() []string {
	names := make([]string, len(builtins))
	for i, b := range builtins {
		names[i] = b.info.ID
	}
	return names
}

// Builtin creates a built-in scene by ID
func Builtin(id string) (*Scene, bool) {
	for _, b := range builtins {
		if b.info.ID == id {
			s := b.create()
			s.Description = b.info.Description
			return s, true
		}
	}
	return nil, false
}

// Load resolves a scene by built-in ID, "json:<name>" ID, or path to a .json file
func Load(nameOrPath string) (*Scene, error) {
	if s, ok := Builtin(nameOrPath); ok {
		return s, nil
	}

	if name, ok := strings.CutPrefix(nameOrPath, "json:"); ok {
		dir := findScenesDir()
		if dir == "" {
			return nil, fmt.Errorf("scene %q not found: no scenes directory", nameOrPath)
		}
		return LoadJSON(filepath.Join(dir, name+".json"))
	}

	if strings.EqualFold(filepath.Ext(nameOrPath), ".json") {
		return LoadJSON(nameOrPath)
	}

	return nil, fmt.Errorf("unknown scene %q (built-in scenes: %s)", nameOrPath, strings.Join(BuiltinNames(), ", "))
}

func findScenesDir() string {
	// Try different possible paths for scenes directory
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListJSONScenes scans the scenes directory and returns discovered scene files
func ListJSONScenes() ([]SceneInfo, error) {
	dir := findScenesDir()
	if dir == "" {
		return []SceneInfo{}, nil
	}
	return ListJSONScenesIn(dir)
}

// ListJSONScenesIn returns the scene files found in dir, sorted by display name.
// Files that fail to parse are skipped.
func ListJSONScenesIn(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		info, err := ParseJSONMetadata(filePath)
		if err != nil {
			fmt.Printf("Warning: failed to parse metadata for %s: %v\n", filePath, err)
			continue
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseJSONMetadata extracts the name, description and group from a scene file
func ParseJSONMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	info := SceneInfo{
		ID:       "json:" + nameWithoutExt,
		Name:     titleCase(nameWithoutExt),
		Group:    "Scene Files",
		Type:     "json",
		FilePath: filePath,
	}

	file, err := os.Open(filePath)
	if err != nil {
		return info, err
	}
	defer file.Close()

	fc, err := ParseJSON(file)
	if err != nil {
		return info, err
	}

	if fc.Name != "" {
		info.Name = fc.Name
	}
	if fc.Group != "" {
		info.Group = fc.Group
	}
	info.Description = fc.Description
	info.DisplayName = info.Name

	return info, nil
}

// ListAllScenes returns both built-in and JSON scenes, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	var response ScenesResponse

	var allScenes []SceneInfo
	for _, b := range builtins {
		info := b.info
		info.DisplayName = info.Name
		info.Group = builtinGroup
		info.Type = "builtin"
		allScenes = append(allScenes, info)
	}

	jsonScenes, err := ListJSONScenes()
	if err != nil {
		return response, fmt.Errorf("failed to list JSON scenes: %w", err)
	}
	allScenes = append(allScenes, jsonScenes...)

	// Group scenes by their Group field
	groupMap := make(map[string][]SceneInfo)
	for _, s := range allScenes {
		groupMap[s.Group] = append(groupMap[s.Group], s)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	response.Groups = append(response.Groups, SceneGroup{
		Name:   builtinGroup,
		Scenes: groupMap[builtinGroup],
	})
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response, nil
}

// titleCase converts a filename-style string to title case
// e.g., "lit-sphere" -> "Lit Sphere"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
