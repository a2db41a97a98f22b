package group

import (
	"testing"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/graphics"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	_ "github.com/Carmen-Shannon/kopki-go/engine/renderer/backend/software_backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ctx     graphics.GraphicsContext
	buf     backend.Buffer
	view    backend.TextureView
	sampler backend.Sampler
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx, err := graphics.NewGraphicsContext(graphics.WithBackend(backend.BackendTypeSoftware))
	require.NoError(t, err)
	t.Cleanup(ctx.Release)

	b := ctx.Backend()
	buf, err := b.CreateBuffer(backend.BufferDescriptor{Label: "uniform", Size: 16, Usage: backend.BufferUsageUniform})
	require.NoError(t, err)
	tex, err := b.CreateTexture(backend.TextureDescriptor{
		Label: "tex", Width: 2, Height: 2,
		Format: backend.TextureFormatRGBA8Unorm,
		Usage:  backend.TextureUsageTextureBinding,
	})
	require.NoError(t, err)
	view, err := tex.CreateView()
	require.NoError(t, err)
	sampler, err := b.CreateSampler(backend.SamplerDescriptor{Label: "sampler"})
	require.NoError(t, err)

	return fixture{ctx: ctx, buf: buf, view: view, sampler: sampler}
}

func TestNewLayoutAssignsPositionalBindings(t *testing.T) {
	f := newFixture(t)

	l, err := NewLayout(f.ctx, "material",
		TextureEntry(backend.ShaderStageFragment),
		SamplerEntry(backend.ShaderStageFragment),
		BufferEntry(backend.ShaderStageVertex),
	)
	require.NoError(t, err)
	defer l.Release()

	raw := l.Raw().Entries()
	require.Len(t, raw, 3)
	for i, e := range raw {
		assert.Equal(t, uint32(i), e.Binding)
	}
	assert.Equal(t, backend.BindingKindSampler, raw[1].Kind)
	assert.Equal(t, "material", l.Label())
	assert.Len(t, l.Entries(), 3)
}

func TestNewGroup(t *testing.T) {
	f := newFixture(t)

	l, err := NewLayout(f.ctx, "material",
		TextureEntry(backend.ShaderStageFragment),
		SamplerEntry(backend.ShaderStageFragment),
		BufferEntry(backend.ShaderStageVertex),
	)
	require.NoError(t, err)

	g, err := NewGroup(f.ctx, "material group", l,
		TextureBinding(f.view),
		SamplerBinding(f.sampler),
		BufferBinding(f.buf),
	)
	require.NoError(t, err)
	defer g.Release()

	assert.Equal(t, l, g.Layout())
	assert.Equal(t, "material group", g.Label())
	assert.NotNil(t, g.Raw())
}

func TestNewGroupCountMismatch(t *testing.T) {
	f := newFixture(t)

	l, err := NewLayout(f.ctx, "two", BufferEntry(backend.ShaderStageVertex), BufferEntry(backend.ShaderStageVertex))
	require.NoError(t, err)

	g, err := NewGroup(f.ctx, "short", l, BufferBinding(f.buf))
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
	assert.Nil(t, g)

	g, err = NewGroup(f.ctx, "long", l, BufferBinding(f.buf), BufferBinding(f.buf), BufferBinding(f.buf))
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
	assert.Nil(t, g)
}

func TestNewGroupKindMismatch(t *testing.T) {
	f := newFixture(t)

	l, err := NewLayout(f.ctx, "tex", TextureEntry(backend.ShaderStageFragment), SamplerEntry(backend.ShaderStageFragment))
	require.NoError(t, err)

	_, err = NewGroup(f.ctx, "swapped", l, SamplerBinding(f.sampler), TextureBinding(f.view))
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
	assert.Contains(t, err.Error(), "slot 0")

	_, err = NewGroup(f.ctx, "nil", l, nil, SamplerBinding(f.sampler))
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)

	_, err = NewGroup(f.ctx, "empty", l, TextureBinding(nil), SamplerBinding(f.sampler))
	assert.ErrorIs(t, err, common.ErrResourceBindingMismatch)
}

func TestNewLayoutFromEntries(t *testing.T) {
	f := newFixture(t)

	l, err := NewLayoutFromEntries(f.ctx, "reflected", []backend.BindGroupLayoutEntry{
		{Binding: 0, Kind: backend.BindingKindTexture, Visibility: backend.ShaderStageFragment},
		{Binding: 1, Kind: backend.BindingKindSampler, Visibility: backend.ShaderStageFragment},
	})
	require.NoError(t, err)
	assert.Equal(t, backend.BindingKindSampler, l.Entries()[1].Kind)

	_, err = NewLayoutFromEntries(f.ctx, "sparse", []backend.BindGroupLayoutEntry{
		{Binding: 1, Kind: backend.BindingKindBuffer},
	})
	assert.Error(t, err)
}
