// Package shader holds WGSL source for a pipeline. It discovers the vertex and fragment entry
// points, reflects vertex input structs and @group/@binding declarations into backend layouts,
// and optionally validates the source with naga before a backend compiles it.
package shader

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/Carmen-Shannon/kopki-go/common"
	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
	"github.com/gogpu/naga"
)

// shader is the implementation of the Shader interface.
type shader struct {
	label              string
	source             string
	vertexEntryPoint   string
	fragmentEntryPoint string
	vertexLayouts      []backend.VertexBufferLayout
	groupEntries       map[uint32][]backend.BindGroupLayoutEntry
	bindingNames       map[uint32]map[uint32]string
}

// Shader is a parsed WGSL program containing one vertex entry point and, optionally, one
// fragment entry point.
type Shader interface {
	// Label returns the debug label of the shader.
	//
	// Returns:
	//   - string: the shader label
	Label() string

	// Source returns the WGSL source code.
	//
	// Returns:
	//   - string: the WGSL source
	Source() string

	// VertexEntryPoint returns the name of the first function annotated with @vertex.
	//
	// Returns:
	//   - string: the vertex entry point name
	VertexEntryPoint() string

	// FragmentEntryPoint returns the name of the first function annotated with @fragment,
	// or an empty string for depth-only shaders.
	//
	// Returns:
	//   - string: the fragment entry point name
	FragmentEntryPoint() string

	// VertexLayouts returns one vertex buffer layout per vertex input struct in the source,
	// in declaration order. Structs are treated as vertex inputs when every field carries a
	// @location attribute and none is a @builtin.
	//
	// Returns:
	//   - []backend.VertexBufferLayout: the reflected layouts, tightly packed
	VertexLayouts() []backend.VertexBufferLayout

	// Groups returns the sorted group indices declared by @group attributes.
	//
	// Returns:
	//   - []uint32: the declared group indices
	Groups() []uint32

	// GroupLayoutEntries returns the reflected layout entries of one group, sorted by binding.
	// Entries are visible to both the vertex and fragment stage.
	//
	// Parameters:
	//   - group: the group index
	//
	// Returns:
	//   - []backend.BindGroupLayoutEntry: the entries, or nil if the group is not declared
	GroupLayoutEntries(group uint32) []backend.BindGroupLayoutEntry

	// BindingName returns the variable name declared at a group and binding.
	//
	// Parameters:
	//   - group: the group index
	//   - binding: the binding index
	//
	// Returns:
	//   - string: the variable name, or an empty string if none is declared
	BindingName(group, binding uint32) string

	// Validate compiles the source with naga and reports the first error.
	//
	// Returns:
	//   - error: error wrapping common.ErrShaderInvalid if the source does not compile
	Validate() error
}

var _ Shader = &shader{}

// NewShader parses WGSL source.
//
// Parameters:
//   - label: the debug label of the shader
//   - source: the WGSL source code
//
// Returns:
//   - Shader: the parsed shader
//   - error: error wrapping common.ErrShaderInvalid if the source has no @vertex entry point
func NewShader(label, source string) (Shader, error) {
	s := &shader{
		label:  label,
		source: source,
	}
	s.vertexEntryPoint = parseEntryPoint(source, stageVertex)
	s.fragmentEntryPoint = parseEntryPoint(source, stageFragment)
	if s.vertexEntryPoint == "" {
		return nil, fmt.Errorf("shader %q has no @vertex entry point: %w", label, common.ErrShaderInvalid)
	}
	s.vertexLayouts = parseVertexLayouts(source)
	s.groupEntries, s.bindingNames = parseGroupLayouts(source, backend.ShaderStageVertex|backend.ShaderStageFragment)
	return s, nil
}

// NewShaderFromFile reads WGSL source from a file and parses it. The file name is used as the label.
//
// Parameters:
//   - path: the path to a .wgsl file
//
// Returns:
//   - Shader: the parsed shader
//   - error: error if the file cannot be read or the source has no @vertex entry point
func NewShaderFromFile(path string) (Shader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read shader source %q: %w", path, err)
	}
	return NewShader(filepath.Base(path), string(data))
}

func (s *shader) Label() string {
	return s.label
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) VertexEntryPoint() string {
	return s.vertexEntryPoint
}

func (s *shader) FragmentEntryPoint() string {
	return s.fragmentEntryPoint
}

func (s *shader) VertexLayouts() []backend.VertexBufferLayout {
	return slices.Clone(s.vertexLayouts)
}

func (s *shader) Groups() []uint32 {
	groups := make([]uint32, 0, len(s.groupEntries))
	for g := range s.groupEntries {
		groups = append(groups, g)
	}
	slices.Sort(groups)
	return groups
}

func (s *shader) GroupLayoutEntries(group uint32) []backend.BindGroupLayoutEntry {
	return slices.Clone(s.groupEntries[group])
}

func (s *shader) BindingName(group, binding uint32) string {
	return s.bindingNames[group][binding]
}

func (s *shader) Validate() error {
	if _, err := naga.Compile(s.source); err != nil {
		return fmt.Errorf("shader %q failed validation: %v: %w", s.label, err, common.ErrShaderInvalid)
	}
	return nil
}
