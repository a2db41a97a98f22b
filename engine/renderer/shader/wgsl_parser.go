package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/kopki-go/engine/renderer/backend"
)

// wgslVertexFormatMap maps WGSL type names to their vertex format and byte size
var wgslVertexFormatMap = map[string]vertexFormatInfo{
	"f32":       {backend.VertexFormatFloat32, 4},
	"vec2f":     {backend.VertexFormatFloat32x2, 8},
	"vec2<f32>": {backend.VertexFormatFloat32x2, 8},
	"vec3f":     {backend.VertexFormatFloat32x3, 12},
	"vec3<f32>": {backend.VertexFormatFloat32x3, 12},
	"vec4f":     {backend.VertexFormatFloat32x4, 16},
	"vec4<f32>": {backend.VertexFormatFloat32x4, 16},
	"u32":       {backend.VertexFormatUint32, 4},
}

var (
	// structBlockRegex matches struct declarations and captures the name and body
	structBlockRegex = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)

	// locationRegex matches @location(N) attributes
	locationRegex = regexp.MustCompile(`@location\((\d+)\)`)

	// builtinRegex matches @builtin(...) attributes
	builtinRegex = regexp.MustCompile(`@builtin\(\w+\)`)

	// fieldRegex matches a field or parameter: optional attributes, name, colon, type.
	// The type capture (.+) is greedy to handle parameterized types like array<T, N>.
	fieldRegex = regexp.MustCompile(`(?:(?:@\w+\([^)]*\)\s*)*)*\s*(\w+)\s*:\s*(.+)`)

	// vertexEntryRegex matches @vertex functions and captures the entry point name
	vertexEntryRegex = regexp.MustCompile(`(?s)@vertex\b.*?\bfn\s+(\w+)`)

	// fragmentEntryRegex matches @fragment functions and captures the entry point name
	fragmentEntryRegex = regexp.MustCompile(`(?s)@fragment\b.*?\bfn\s+(\w+)`)

	// bindGroupDeclRegex captures group, binding, optional address space, variable name, and type
	// from declarations like: @group(0) @binding(0) var<uniform> camera: CameraUniform;
	// or handle types: @group(1) @binding(0) var diffuse: texture_2d<f32>;
	bindGroupDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// parseEntryPoint extracts the entry point function name for the given stage from WGSL source.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - stage: the stage attribute to search for
//
// Returns:
//   - string: the entry point function name, or empty string if not found
func parseEntryPoint(source string, stage entryStage) string {
	cleaned := stripComments(source)

	re := vertexEntryRegex
	if stage == stageFragment {
		re = fragmentEntryRegex
	}
	if match := re.FindStringSubmatch(cleaned); match != nil {
		return match[1]
	}
	return ""
}

// parseVertexLayouts reflects the vertex inputs of the @vertex entry point. Every parameter
// typed as a vertex input struct becomes one buffer layout, in parameter order. Loose
// @location parameters are packed together into one trailing layout. Structs with a field of
// an unsupported type are skipped.
//
// Parameters:
//   - source: the raw WGSL source code string
//
// Returns:
//   - []backend.VertexBufferLayout: the reflected layouts, or nil if the entry point reads no vertex attributes
func parseVertexLayouts(source string) []backend.VertexBufferLayout {
	cleaned := stripComments(source)
	entry := parseEntryPoint(cleaned, stageVertex)
	if entry == "" {
		return nil
	}

	structs := make(map[string]parsedStruct)
	for _, ps := range parseStructBlocks(cleaned) {
		structs[ps.name] = ps
	}

	var (
		layouts []backend.VertexBufferLayout
		loose   parsedStruct
	)
	for _, param := range splitAtTopLevelCommas(functionParams(cleaned, entry)) {
		field, ok := parseField(param)
		if !ok || field.isBuiltin {
			continue
		}
		if field.location >= 0 {
			loose.fields = append(loose.fields, field)
			continue
		}
		ps, ok := structs[field.typeName]
		if !ok || !isVertexInputStruct(ps) {
			continue
		}
		if layout, ok := buildVertexBufferLayout(ps); ok {
			layouts = append(layouts, layout)
		}
	}
	if len(loose.fields) > 0 {
		if layout, ok := buildVertexBufferLayout(loose); ok {
			layouts = append(layouts, layout)
		}
	}
	return layouts
}

// parseGroupLayouts extracts all @group(N) @binding(M) resource declarations from WGSL
// source and returns them as layout entries grouped by group index, sorted by binding.
// The provided visibility is applied to all entries.
//
// Parameters:
//   - source: the raw WGSL source code string
//   - visibility: the shader stage visibility to set on each entry
//
// Returns:
//   - map[uint32][]backend.BindGroupLayoutEntry: layout entries keyed by group index
//   - map[uint32]map[uint32]string: variable names keyed by group and binding index
func parseGroupLayouts(source string, visibility backend.ShaderStage) (map[uint32][]backend.BindGroupLayoutEntry, map[uint32]map[uint32]string) {
	groups := make(map[uint32][]backend.BindGroupLayoutEntry)
	varNames := make(map[uint32]map[uint32]string)
	cleaned := stripComments(source)

	structSizes := computeStructSizes(parseStructBlocks(cleaned))

	for _, match := range bindGroupDeclRegex.FindAllStringSubmatch(cleaned, -1) {
		group, _ := strconv.ParseUint(match[1], 10, 32)
		binding, _ := strconv.ParseUint(match[2], 10, 32)
		addressSpace := strings.TrimSpace(match[3])
		varName := strings.TrimSpace(match[4])
		typeName := strings.TrimSpace(match[5])

		entry, ok := classifyResource(uint32(binding), visibility, addressSpace, typeName)
		if !ok {
			continue
		}
		if entry.Kind == backend.BindingKindBuffer {
			if layout, ok := resolveTypeLayout(typeName, structSizes); ok && layout.size > 0 {
				entry.MinBindingSize = layout.size
			}
		}

		g := uint32(group)
		groups[g] = append(groups[g], entry)
		if varNames[g] == nil {
			varNames[g] = make(map[uint32]string)
		}
		varNames[g][uint32(binding)] = varName
	}

	for _, entries := range groups {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].Binding < entries[j].Binding
		})
	}
	return groups, varNames
}

// functionParams returns the text between the parentheses of the named function's parameter list.
//
// Parameters:
//   - source: WGSL source with comments already stripped
//   - name: the function name
//
// Returns:
//   - string: the raw parameter list, or empty if the function is not found
func functionParams(source, name string) string {
	loc := regexp.MustCompile(`\bfn\s+` + regexp.QuoteMeta(name) + `\s*\(`).FindStringIndex(source)
	if loc == nil {
		return ""
	}
	start := loc[1]
	depth := 1
	for i := start; i < len(source); i++ {
		switch source[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return source[start:i]
			}
		}
	}
	return ""
}

// parseStructBlocks finds all struct { ... } blocks in the cleaned WGSL source
// and parses their fields including @location and @builtin attributes
//
// Parameters:
//   - source: WGSL source with comments already stripped
//
// Returns:
//   - []parsedStruct: all struct blocks found in the source
func parseStructBlocks(source string) []parsedStruct {
	matches := structBlockRegex.FindAllStringSubmatch(source, -1)
	structs := make([]parsedStruct, 0, len(matches))

	for _, match := range matches {
		var fields []parsedField
		for _, line := range splitAtTopLevelCommas(match[2]) {
			if field, ok := parseField(line); ok {
				fields = append(fields, field)
			}
		}
		structs = append(structs, parsedStruct{
			name:   match[1],
			fields: fields,
		})
	}

	return structs
}

// parseField parses one struct member or function parameter, extracting @location and
// @builtin attributes along with the name and type
//
// Parameters:
//   - line: a single member or parameter declaration
//
// Returns:
//   - parsedField: the parsed field
//   - bool: false if the line is empty or not a declaration
func parseField(line string) (parsedField, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return parsedField{}, false
	}

	field := parsedField{location: -1}
	if builtinRegex.MatchString(line) {
		field.isBuiltin = true
	}
	if locMatch := locationRegex.FindStringSubmatch(line); locMatch != nil {
		if loc, err := strconv.Atoi(locMatch[1]); err == nil {
			field.location = loc
		}
	}

	fm := fieldRegex.FindStringSubmatch(line)
	if fm == nil {
		return parsedField{}, false
	}
	field.name = fm[1]
	field.typeName = strings.TrimSpace(fm[2])
	return field, true
}
