package persona

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryBuiltins(t *testing.T) {
	r := NewRegistry()

	p, ok := r.Get("socrates")
	require.True(t, ok)
	assert.Equal(t, "苏格拉底", p.Name)
	assert.False(t, p.IsCustom)

	assert.Equal(t, "孔子", r.Name("confucius"))
	assert.Equal(t, UnknownName, r.Name("no-such-persona"))
}

func TestRegistryRegisterCustom(t *testing.T) {
	r := NewRegistry()

	err := r.Register(Persona{ID: "detective", Name: "大侦探"})
	require.NoError(t, err)

	p, ok := r.Get("detective")
	require.True(t, ok)
	assert.True(t, p.IsCustom)

	// Custom personas can be re-registered with new data.
	require.NoError(t, r.Register(Persona{ID: "detective", Name: "名侦探"}))
	assert.Equal(t, "名侦探", r.Name("detective"))
}

func TestRegistryRejectsInvalidAndReserved(t *testing.T) {
	r := NewRegistry()

	assert.Error(t, r.Register(Persona{ID: "", Name: "无名"}))
	assert.Error(t, r.Register(Persona{ID: "nameless", Name: ""}))
	assert.Error(t, r.Register(Persona{ID: "socrates", Name: "冒牌苏格拉底"}))
}

func TestRegistryListSorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(Persona{ID: "a-first", Name: "甲"}))

	list := r.List()
	require.Len(t, list, 6)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID)
	}
}
