package compiler

import (
	"log/slog"

	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
	"github.com/you-not-fish/brisk/internal/types"
)

// Program is one compilation unit on its way to bytecode.
//
// A Program is used in a fixed order: AddInclude for each linked module,
// then Prescan, then Evaluate. Segments and Header are valid after
// Evaluate.
type Program struct {
	conf  *Config
	log   *slog.Logger
	tree  *syntax.Tree
	table *types.Table

	// Declarations keyed by the node that declares them.
	classes map[syntax.NodeID]*types.ClassSig
	ifaces  map[syntax.NodeID]*types.InterfaceSig
	methods map[syntax.NodeID]*types.MethodSig

	// decls maps local method signatures back to their declaring node.
	decls map[*types.MethodSig]*syntax.Node

	// Local declarations in source order.
	localClasses []*types.ClassSig
	localIfaces  []*types.InterfaceSig
	localFuncs   []*types.MethodSig

	segments  []bytecode.Segment
	bodies    []*bytecode.MethodSegment // every segment with a body to lower
	instances map[string]*instance      // reified generic methods by segment name
	pending   []*instance
	lowering  *instance // instance whose body is being lowered, or nil

	entry *types.MethodSig

	prescanned bool
	evaluated  bool
}

// instance is a generic method reified with concrete type arguments.
type instance struct {
	sig   *types.MethodSig
	targs []types.Type
	seg   *bytecode.MethodSegment
	depth int // instantiations between this one and non-generic code
}

// maxInstanceDepth bounds chains of instantiations, so that a generic
// method instantiating itself with ever larger type arguments fails.
const maxInstanceDepth = 32

// NewProgram returns a program for the parsed file tree.
func NewProgram(tree *syntax.Tree, conf *Config) *Program {
	if conf == nil {
		conf = &Config{}
	}
	return &Program{
		conf:      conf,
		log:       conf.logger().With("file", tree.Filename),
		tree:      tree,
		table:     types.NewTable(),
		classes:   make(map[syntax.NodeID]*types.ClassSig),
		ifaces:    make(map[syntax.NodeID]*types.InterfaceSig),
		methods:   make(map[syntax.NodeID]*types.MethodSig),
		decls:     make(map[*types.MethodSig]*syntax.Node),
		instances: make(map[string]*instance),
	}
}

// Table returns the program's type table.
func (p *Program) Table() *types.Table { return p.table }

// Entrypoint returns the program's entrypoint, or nil. It is known once
// Evaluate has run.
func (p *Program) Entrypoint() *types.MethodSig { return p.entry }

// Segments returns the program's segments in output order.
func (p *Program) Segments() []bytecode.Segment { return p.segments }

// Evaluate emits the class segments and the free function segments,
// validates the override rules across the whole program, then lowers
// every body. The metadata segment comes last.
func (p *Program) Evaluate() (err error) {
	defer catch(&err)
	if !p.prescanned {
		fatal("Evaluate called before Prescan")
	}
	if p.evaluated {
		fatal("Evaluate called twice")
	}
	p.evaluated = true
	defer logger.LogPhase(p.log, "evaluate")()

	for _, c := range p.localClasses {
		seg := &bytecode.ClassSegment{Sig: c}
		for _, m := range append(append([]*types.MethodSig{}, c.Ctors...), c.Methods...) {
			if m.IsAbstract || m.IsGeneric() {
				continue
			}
			ms := p.newSegment(m)
			seg.Methods = append(seg.Methods, ms)
		}
		p.segments = append(p.segments, seg)
	}
	for _, f := range p.localFuncs {
		if f.IsGeneric() {
			continue
		}
		p.segments = append(p.segments, p.newSegment(f))
	}

	p.validate()
	p.entry = p.findEntrypoint()

	for _, seg := range p.bodies {
		p.lower(seg, nil)
	}
	for len(p.pending) > 0 {
		in := p.pending[0]
		p.pending = p.pending[1:]
		p.lowering = in
		p.lower(in.seg, in.targs)
		p.lowering = nil
		p.segments = append(p.segments, in.seg)
	}

	for _, seg := range p.bodies {
		seg.Finalize()
		if err := bytecode.Verify(seg); err != nil {
			fatal("%v", err)
		}
	}

	meta := &bytecode.MetadataSegment{}
	if p.entry != nil {
		meta.Entrypoint = p.entry.QualifiedName()
	}
	if p.conf.HideHeader {
		meta.Header = bytecode.HiddenHeader().String()
	} else {
		meta.Header = p.Header().String()
	}
	p.segments = append(p.segments, meta)
	return nil
}

func (p *Program) newSegment(m *types.MethodSig) *bytecode.MethodSegment {
	seg := bytecode.NewMethodSegment(m.QualifiedName(), m, m.Args, m.Return)
	p.bodies = append(p.bodies, seg)
	return seg
}

// instantiate returns the segment of the generic m reified with targs,
// queueing its body for lowering the first time it is asked for.
func (p *Program) instantiate(pos syntax.Pos, m *types.MethodSig, targs []types.Type) string {
	name := m.InstanceName(targs)
	if _, ok := p.instances[name]; ok {
		return name
	}
	if m.Imported {
		errorf(pos, "cannot instantiate %s: generic function from another module", m.QualifiedName())
	}
	depth := 0
	if p.lowering != nil {
		depth = p.lowering.depth + 1
	}
	if depth >= maxInstanceDepth {
		errorf(pos, "instantiation cycle: %s", name)
	}
	params, ret := p.table.Instantiate(m, targs)
	var args []types.Type
	if m.HasReceiver() {
		args = append(args, m.Args[0])
	}
	args = append(args, params...)
	seg := bytecode.NewMethodSegment(name, m, args, ret)
	in := &instance{sig: m, targs: targs, seg: seg, depth: depth}
	p.instances[name] = in
	p.pending = append(p.pending, in)
	p.bodies = append(p.bodies, seg)
	return name
}

// findEntrypoint returns the unique local method marked entrypoint or,
// failing that, the local free function main.
func (p *Program) findEntrypoint() *types.MethodSig {
	var entry *types.MethodSig
	for _, f := range p.localFuncs {
		if !f.IsEntrypoint {
			continue
		}
		if entry != nil {
			errorf(f.Pos, "multiple entrypoints: %s and %s", entry.QualifiedName(), f.QualifiedName())
		}
		entry = f
	}
	if entry != nil {
		return entry
	}
	for _, f := range p.localFuncs {
		if f.Name == "main" && !f.IsGeneric() {
			return f
		}
	}
	return nil
}
