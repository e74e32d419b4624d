// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// BindingKind is the resource type behind a bind-group entry.
type BindingKind int

const (
	BindingUniform BindingKind = iota
	BindingTexture
	BindingSampler
)

func (k BindingKind) String() string {
	switch k {
	case BindingUniform:
		return "uniform"
	case BindingTexture:
		return "texture"
	case BindingSampler:
		return "sampler"
	default:
		return "BindingKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Binding is one group-0 resource declared by a program.
type Binding struct {
	Slot uint32
	Name string
	Kind BindingKind
}

var bindingDecl = regexp.MustCompile(
	`@group\(0\)\s*@binding\((\d+)\)\s*var(<\s*uniform\s*>)?\s+(\w+)\s*:\s*([\w<>]+)\s*;`)

// ParseBindings returns the group-0 bindings declared in WGSL source,
// ordered by slot. Declarations of other resource types are skipped.
func ParseBindings(source string) []Binding {
	var out []Binding
	for _, m := range bindingDecl.FindAllStringSubmatch(source, -1) {
		slot, err := strconv.ParseUint(m[1], 10, 32)
		if err != nil {
			continue
		}

		b := Binding{Slot: uint32(slot), Name: m[3]}
		switch typ := m[4]; {
		case m[2] != "":
			b.Kind = BindingUniform
		case strings.HasPrefix(typ, "texture_2d"):
			b.Kind = BindingTexture
		case typ == "sampler":
			b.Kind = BindingSampler
		default:
			continue
		}
		out = append(out, b)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Slot < out[j].Slot })
	return out
}
