package uniform

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/group"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type globals struct {
	Transform common.Mat4
	Time      float32
	_         [3]float32
}

func newContext(t *testing.T) graphics.GraphicsContext {
	t.Helper()
	ctx, err := graphics.NewGraphicsContext(graphics.WithBackend(backend.BackendTypeSoftware))
	require.NoError(t, err)
	t.Cleanup(ctx.Release)
	return ctx
}

func contents(t *testing.T, ctx graphics.GraphicsContext, u UniformBuffer) []byte {
	t.Helper()
	data, err := ctx.Backend().(backend.Readback).ReadBuffer(u.Raw())
	require.NoError(t, err)
	return data
}

func TestNewUniformBuffer(t *testing.T) {
	ctx := newContext(t)

	u, err := NewUniformBuffer(ctx, "dims", common.SliceToBytes([]float32{800, 600}))
	require.NoError(t, err)
	defer u.Release()

	assert.Equal(t, uint64(8), u.Size())
	assert.True(t, u.Raw().Usage().Has(backend.BufferUsageUniform))
	assert.Equal(t, common.SliceToBytes([]float32{800, 600}), contents(t, ctx, u))

	_, err = NewUniformBuffer(ctx, "empty", nil)
	assert.ErrorIs(t, err, common.ErrBufferSizeMismatch)
}

func TestUpdatePartialRange(t *testing.T) {
	ctx := newContext(t)

	u, err := NewUniformBuffer(ctx, "dims", common.SliceToBytes([]float32{800, 600}))
	require.NoError(t, err)

	require.NoError(t, u.Update(common.SliceToBytes([]float32{300}), 4))
	assert.Equal(t, common.SliceToBytes([]float32{800, 300}), contents(t, ctx, u))

	assert.ErrorIs(t, u.Update(make([]byte, 8), 4), common.ErrBufferSizeMismatch)
	assert.ErrorIs(t, u.Update(nil, 9), common.ErrBufferSizeMismatch)
	assert.Equal(t, common.SliceToBytes([]float32{800, 300}), contents(t, ctx, u))
}

func TestUpdateRejectsUnalignedWrites(t *testing.T) {
	ctx := newContext(t)

	u, err := NewUniformBuffer(ctx, "dims", common.SliceToBytes([]float32{800, 600}))
	require.NoError(t, err)
	before := contents(t, ctx, u)

	assert.ErrorIs(t, u.Update([]byte{1, 2}, 0), common.ErrBufferSizeMismatch)
	assert.ErrorIs(t, u.Update([]byte{1, 2, 3, 4}, 2), common.ErrBufferSizeMismatch)
	assert.Equal(t, before, contents(t, ctx, u))

	odd, err := NewUniformBuffer(ctx, "odd", make([]byte, 6))
	require.NoError(t, err)
	require.NoError(t, odd.Update([]byte{7, 8}, 4))
	assert.Equal(t, []byte{0, 0, 0, 0, 7, 8}, contents(t, ctx, odd))
}

func TestTypedHelpers(t *testing.T) {
	ctx := newContext(t)

	u, err := NewUniformBufferFrom(ctx, "globals", globals{Transform: common.Identity()})
	require.NoError(t, err)
	assert.Equal(t, uint64(80), u.Size())

	require.NoError(t, UpdateValue(u, float32(2.5), 64))
	data := contents(t, ctx, u)
	assert.Equal(t, common.SliceToBytes([]float32{2.5}), data[64:68])
}

func TestBindingFitsBufferLayout(t *testing.T) {
	ctx := newContext(t)

	u, err := NewUniformBufferFrom(ctx, "globals", globals{})
	require.NoError(t, err)

	l, err := group.NewLayout(ctx, "globals", group.BufferEntry(backend.ShaderStageVertex))
	require.NoError(t, err)
	g, err := group.NewGroup(ctx, "globals", l, u.Binding())
	require.NoError(t, err)
	assert.NotNil(t, g.Raw())
}
