package shader

import (
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// wgslPrimitiveLayoutMap holds the size and alignment of the host-shareable primitive types.
// Matrices are columns of vectors, so their stride is the column alignment.
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	"mat2x2<f32>": {16, 8},
	"mat2x2f":     {16, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x3f":     {48, 16},
	"mat4x4<f32>": {64, 16},
	"mat4x4f":     {64, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x3<f32>": {64, 16},

	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// resolveTypeLayout returns the size and alignment of a WGSL type from the primitive table,
// the already resolved structs, or an array of either. A runtime-sized array resolves to the
// stride of one element, which is the smallest useful binding.
//
// Parameters:
//   - typeName: the WGSL type, e.g. "f32", "Globals", "array<Light, 4>"
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: false for unknown types
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	base, params := splitTypeParams(typeName)
	if base != "array" || params == "" {
		return wgslTypeLayout{}, false
	}
	elemType, countStr, sized := strings.Cut(params, ",")
	elem, ok := resolveTypeLayout(strings.TrimSpace(elemType), knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := common.AlignUp(elem.size, elem.align)
	if !sized {
		return wgslTypeLayout{stride, elem.align}, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(countStr), 10, 64)
	if err != nil {
		return wgslTypeLayout{}, false
	}
	return wgslTypeLayout{count * stride, elem.align}, true
}

// computeStructLayout lays out struct members at their aligned offsets and rounds the total
// up to the largest member alignment. A trailing runtime-sized array contributes one element.
// @builtin members are skipped.
//
// Parameters:
//   - ps: the parsed struct
//   - knownTypes: struct layouts resolved so far
//
// Returns:
//   - wgslTypeLayout: the struct layout
//   - bool: false if a member type is not yet known
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	var offset uint64
	maxAlign := uint64(1)

	for _, field := range ps.fields {
		if field.isBuiltin {
			continue
		}
		layout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			return wgslTypeLayout{}, false
		}
		offset = common.AlignUp(offset, layout.align) + layout.size
		maxAlign = max(maxAlign, layout.align)
	}

	return wgslTypeLayout{common.AlignUp(offset, maxAlign), maxAlign}, true
}

// computeStructSizes resolves every struct layout, repeating passes until structs that
// contain other structs have been resolved or no further progress is made.
//
// Parameters:
//   - structs: all parsed struct blocks from the source
//
// Returns:
//   - map[string]wgslTypeLayout: struct layouts keyed by struct name
func computeStructSizes(structs []parsedStruct) map[string]wgslTypeLayout {
	resolved := make(map[string]wgslTypeLayout, len(structs))
	remaining := structs

	for len(remaining) > 0 {
		var next []parsedStruct
		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, resolved); ok {
				resolved[ps.name] = layout
			} else {
				next = append(next, ps)
			}
		}
		if len(next) == len(remaining) {
			break
		}
		remaining = next
	}

	return resolved
}

// classifyResource maps a parsed WGSL resource declaration onto a layout entry. Buffers are
// recognised by their address space, samplers and textures by their type name. Storage
// textures and comparison samplers have no layout equivalent and are reported as not ok.
//
// Parameters:
//   - binding: the binding index from @binding(N)
//   - visibility: the shader stage visibility
//   - addressSpace: the address space qualifier (e.g. "uniform", "storage, read_write"), empty for handle types
//   - typeName: the WGSL type string (e.g. "Globals", "texture_2d<f32>", "sampler")
//
// Returns:
//   - backend.BindGroupLayoutEntry: the layout entry for the resource
//   - bool: false if the resource kind is not supported
func classifyResource(binding uint32, visibility backend.ShaderStage, addressSpace, typeName string) (backend.BindGroupLayoutEntry, bool) {
	entry := backend.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: visibility,
	}

	if addressSpace != "" {
		entry.Kind = backend.BindingKindBuffer
		switch {
		case addressSpace == "uniform":
			entry.BufferType = backend.BufferBindingTypeUniform
		case strings.HasPrefix(addressSpace, "storage"):
			if strings.Contains(addressSpace, "read_write") {
				entry.BufferType = backend.BufferBindingTypeStorage
			} else {
				entry.BufferType = backend.BufferBindingTypeReadOnlyStorage
			}
		default:
			return entry, false
		}
		return entry, true
	}

	base, _ := splitTypeParams(typeName)
	switch {
	case typeName == "sampler":
		entry.Kind = backend.BindingKindSampler
	case strings.HasPrefix(base, "texture_storage_"), strings.HasPrefix(base, "texture_depth_"):
		return entry, false
	case strings.HasPrefix(base, "texture_"):
		entry.Kind = backend.BindingKindTexture
	default:
		return entry, false
	}
	return entry, true
}

// splitTypeParams splits "texture_2d<f32>" into "texture_2d" and "f32". Types without
// parameters return an empty parameter string.
func splitTypeParams(typeName string) (base string, params string) {
	base, params, ok := strings.Cut(typeName, "<")
	if !ok {
		return typeName, ""
	}
	return strings.TrimSpace(base), strings.TrimSpace(strings.TrimSuffix(params, ">"))
}

// stripComments removes line comments and nested block comments from WGSL source.
// Newlines are kept so the source keeps its line structure.
func stripComments(source string) string {
	var sb strings.Builder
	sb.Grow(len(source))
	depth := 0
	for i := 0; i < len(source); i++ {
		switch {
		case strings.HasPrefix(source[i:], "/*"):
			depth++
			i++
		case depth > 0 && strings.HasPrefix(source[i:], "*/"):
			depth--
			i++
		case depth > 0:
			if source[i] == '\n' {
				sb.WriteByte('\n')
			}
		case strings.HasPrefix(source[i:], "//"):
			end := strings.IndexByte(source[i:], '\n')
			if end < 0 {
				return sb.String()
			}
			i += end - 1
		default:
			sb.WriteByte(source[i])
		}
	}
	return sb.String()
}

// isVertexInputStruct reports whether a struct has at least one @location member and no
// @builtin members. Vertex outputs carry @builtin(position) and are excluded.
func isVertexInputStruct(ps parsedStruct) bool {
	hasLocation := false
	for _, f := range ps.fields {
		if f.isBuiltin {
			return false
		}
		if f.location >= 0 {
			hasLocation = true
		}
	}
	return hasLocation
}

// buildVertexBufferLayout packs the fields of a vertex input struct into one layout with
// sequential offsets. It returns false if a field type has no vertex format.
//
// Parameters:
//   - ps: the parsed struct containing vertex input fields
//
// Returns:
//   - backend.VertexBufferLayout: the packed layout
//   - bool: false if a field type could not be mapped to a vertex format
func buildVertexBufferLayout(ps parsedStruct) (backend.VertexBufferLayout, bool) {
	attrs := make([]backend.VertexAttribute, 0, len(ps.fields))
	var offset uint64

	for _, f := range ps.fields {
		info, ok := wgslVertexFormatMap[f.typeName]
		if !ok || f.location < 0 {
			return backend.VertexBufferLayout{}, false
		}
		attrs = append(attrs, backend.VertexAttribute{
			Format:         info.format,
			Offset:         offset,
			ShaderLocation: uint32(f.location),
		})
		offset += info.size
	}

	return backend.VertexBufferLayout{
		ArrayStride: offset,
		StepMode:    backend.VertexStepModeVertex,
		Attributes:  attrs,
	}, true
}

// splitAtTopLevelCommas splits a string at commas that are not nested inside angle brackets
// or parentheses, so array<T, N> types and attribute arguments stay whole.
//
// Parameters:
//   - s: a struct body or parameter list
//
// Returns:
//   - []string: substrings between top-level commas
func splitAtTopLevelCommas(s string) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<', '(':
			depth++
		case '>', ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
