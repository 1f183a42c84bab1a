package scene

import (
	"sort"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// ErrTypeUnknownScene is the error type returned when a scene name is not registered
const ErrTypeUnknownScene = "unknown-scene"

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Width       int    `json:"width"`       // Default image width
	Height      int    `json:"height"`      // Default image height
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

const (
	groupRandom = "Random Fields"
	groupSimple = "Simple Scenes"
)

type entry struct {
	group       string
	description string
	build       func(sampler core.Sampler) *Definition
}

var registry = map[string]entry{
	"random-spheres": {
		group:       groupRandom,
		description: "Hundreds of small diffuse, metal and glass spheres around three large ones",
		build:       NewRandomSpheresScene,
	},
	"moving-spheres": {
		group:       groupRandom,
		description: "The random sphere field with motion-blurred diffuse spheres",
		build:       NewMovingSpheresScene,
	},
	"three-spheres": {
		group:       groupSimple,
		description: "Diffuse, fuzzy metal and hollow glass spheres",
		build:       func(core.Sampler) *Definition { return NewThreeSpheresScene() },
	},
	"single-sphere": {
		group:       groupSimple,
		description: "One diffuse sphere on a ground sphere under a white sky",
		build:       func(core.Sampler) *Definition { return NewSingleSphereScene() },
	},
	"sphere-grid": {
		group:       groupSimple,
		description: "Grid of rainbow-colored metallic spheres",
		build:       func(core.Sampler) *Definition { return NewSphereGridScene() },
	},
}

// Names returns the registered scene names in alphabetical order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup builds the named scene. Random scenes are laid out from seed.
func Lookup(name string, seed uint64) (*Definition, error) {
	e, ok := registry[name]
	if !ok {
		return nil, errors.New("unknown scene").
			WithType(ErrTypeUnknownScene).
			WithTag("scene", name).
			WithTag("available", strings.Join(Names(), ","))
	}
	return e.build(core.NewSeededSampler(seed, 0)), nil
}

// ListAllScenes returns every built-in scene, grouped by category
func ListAllScenes() ScenesResponse {
	groupMap := make(map[string][]SceneInfo)
	for _, name := range Names() {
		e := registry[name]
		d := e.build(core.NewSeededSampler(0, 0))
		groupMap[e.group] = append(groupMap[e.group], SceneInfo{
			ID:          name,
			DisplayName: titleCase(name),
			Description: e.description,
			Group:       e.group,
			Width:       d.Width,
			Height:      d.Height,
		})
	}

	var groupNames []string
	for groupName := range groupMap {
		groupNames = append(groupNames, groupName)
	}
	sort.Strings(groupNames)

	var response ScenesResponse
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}
	return response
}

// titleCase converts a scene id to title case
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
