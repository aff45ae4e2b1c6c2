package loader

import (
	"errors"

	"github.com/mfmvm/elementvm/vm"
)

// ErrBuildTagMismatch is returned by BindPhysics when a program's build
// tag does not match the host's physics, per the supplemental
// build-tag-gated loading feature: a bytecode file compiled against one
// element set must not silently run against another.
var ErrBuildTagMismatch = errors.New("loader: build tag mismatch")

// Physics is the host's element-type universe: the build tag it
// implements, and the name-to-type-number bindings every unqualified
// `%Name` reference resolves against.
type Physics struct {
	BuildTag string
	Types    map[string]uint16
}

// NewPhysics returns an empty Physics for the given build tag.
func NewPhysics(buildTag string) *Physics {
	return &Physics{BuildTag: buildTag, Types: make(map[string]uint16)}
}

// Register adds a name/type-number binding.
func (p *Physics) Register(name string, num uint16) {
	p.Types[name] = num
}

// BindPhysics checks prog's build tag against phys and resolves every
// type reference the encoder left unresolved (ones with no explicit
// `.typenumber` entry) against phys.Types.
func BindPhysics(prog *vm.Program, phys *Physics) error {
	if prog.BuildTag != "" && phys.BuildTag != "" && prog.BuildTag != phys.BuildTag {
		return ErrBuildTagMismatch
	}

	for i, t := range prog.Types {
		if t.Resolved {
			continue
		}
		if num, ok := phys.Types[t.Name]; ok {
			prog.Types[i].Num = num
			prog.Types[i].Resolved = true
		}
	}

	if prog.SelfTypeName != "" && prog.SelfTypeNum == 0 {
		if num, ok := phys.Types[prog.SelfTypeName]; ok {
			prog.SelfTypeNum = num
		}
	}

	return nil
}
