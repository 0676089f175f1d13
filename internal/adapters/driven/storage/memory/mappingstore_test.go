package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/mapping-builder/internal/core/domain"
)

func newTree(id int, name string) *domain.NodeMapping {
	return &domain.NodeMapping{
		ID:   id,
		Name: name,
		SID:  "{$part-id}",
		Output: &domain.NodeMappingOutput{
			Metadata: map[string]string{"k": "v"},
		},
		Children: []*domain.NodeMapping{
			{ID: id + 1, ParentID: id, Name: name + " child"},
		},
	}
}

func TestMappingStore_SaveAndGet(t *testing.T) {
	store := NewMappingStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTree(1, "events")))

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, newTree(1, "events"), got)
}

func TestMappingStore_Save_RequiresID(t *testing.T) {
	store := NewMappingStore()

	err := store.Save(context.Background(), &domain.NodeMapping{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = store.Save(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMappingStore_CopiesOnSaveAndGet(t *testing.T) {
	store := NewMappingStore()
	ctx := context.Background()

	m := newTree(1, "events")
	require.NoError(t, store.Save(ctx, m))
	m.Name = "changed"
	m.Children[0].Name = "changed"

	got, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "events", got.Name)
	assert.Equal(t, "events child", got.Children[0].Name)

	got.Output.Metadata["k"] = "changed"
	again, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "v", again.Output.Metadata["k"])
}

func TestMappingStore_Get_NotFound(t *testing.T) {
	_, err := NewMappingStore().Get(context.Background(), 9)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMappingStore_ListOrderedByID(t *testing.T) {
	store := NewMappingStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTree(10, "c")))
	require.NoError(t, store.Save(ctx, newTree(1, "a")))
	require.NoError(t, store.Save(ctx, newTree(5, "b")))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []int{1, 5, 10}, []int{list[0].ID, list[1].ID, list[2].ID})
}

func TestMappingStore_Delete(t *testing.T) {
	store := NewMappingStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTree(1, "a")))
	require.NoError(t, store.Delete(ctx, 1))
	require.NoError(t, store.Delete(ctx, 1))

	_, err := store.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMappingStore_ReplaceAll(t *testing.T) {
	store := NewMappingStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newTree(1, "old")))
	require.NoError(t, store.ReplaceAll(ctx, []*domain.NodeMapping{newTree(3, "x"), newTree(7, "y")}))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "x", list[0].Name)
	assert.Equal(t, "y", list[1].Name)

	err = store.ReplaceAll(ctx, []*domain.NodeMapping{{Name: "no id"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}
