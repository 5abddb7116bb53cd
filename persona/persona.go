// Package persona holds the configured character identities users converse
// with: the built-in cast plus user-created characters registered at
// runtime.
package persona

import (
	"sort"
	"sync"

	"ai-roleplay-chat/backend/pkg/errors"
)

// UnknownName is the display name used for personas the registry does not
// know. Session titling still works for them through the generic voice
// profile.
const UnknownName = "未知角色"

// Persona is a configured character identity.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Personality string   `json:"personality,omitempty"`
	Background  string   `json:"background,omitempty"`
	Language    string   `json:"language,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	IsCustom    bool     `json:"isCustom"`
}

// builtins is the shipped cast.
var builtins = []Persona{
	{
		ID:          "harry-potter",
		Name:        "哈利波特",
		Description: "霍格沃茨魔法学校的学生，勇敢而忠诚",
		Category:    "literary",
		Language:    "both",
	},
	{
		ID:          "socrates",
		Name:        "苏格拉底",
		Description: "古希腊哲学家，以诘问法引导思考",
		Category:    "historical",
		Language:    "both",
	},
	{
		ID:          "shakespeare",
		Name:        "莎士比亚",
		Description: "英国文学史上最伟大的剧作家与诗人",
		Category:    "historical",
		Language:    "both",
	},
	{
		ID:          "confucius",
		Name:        "孔子",
		Description: "儒家学派创始人，万世师表",
		Category:    "historical",
		Language:    "zh",
	},
	{
		ID:          "einstein",
		Name:        "爱因斯坦",
		Description: "理论物理学家，相对论的提出者",
		Category:    "historical",
		Language:    "both",
	},
}

// Registry is a thread-safe persona lookup seeded with the built-in cast.
type Registry struct {
	mu       sync.RWMutex
	personas map[string]Persona
}

// NewRegistry creates a registry holding the built-in personas.
func NewRegistry() *Registry {
	r := &Registry{personas: make(map[string]Persona, len(builtins))}
	for _, p := range builtins {
		r.personas[p.ID] = p
	}
	return r
}

// Get returns the persona for an id.
func (r *Registry) Get(id string) (Persona, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.personas[id]
	return p, ok
}

// Name returns the display name for an id, or UnknownName.
func (r *Registry) Name(id string) string {
	if p, ok := r.Get(id); ok {
		return p.Name
	}
	return UnknownName
}

// Register adds a custom persona. Built-in personas cannot be replaced.
func (r *Registry) Register(p Persona) error {
	if p.ID == "" || p.Name == "" {
		return errors.NewBadRequestError("PERSONA_INVALID", "persona requires id and name")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.personas[p.ID]; ok && !existing.IsCustom {
		return errors.NewConflictError("PERSONA_RESERVED", "built-in persona cannot be replaced")
	}

	p.IsCustom = true
	r.personas[p.ID] = p
	return nil
}

// List returns all personas sorted by id for stable output.
func (r *Registry) List() []Persona {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := make([]Persona, 0, len(r.personas))
	for _, p := range r.personas {
		list = append(list, p)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}
