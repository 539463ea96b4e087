package compiler

import (
	"github.com/you-not-fish/brisk/internal/bytecode"
	"github.com/you-not-fish/brisk/internal/logger"
	"github.com/you-not-fish/brisk/internal/syntax"
)

// Compile parses, checks and lowers the source file src and returns its
// encoded bytecode. The first error stops compilation; it is a
// *syntax.LexError, *syntax.ParseError, *types.Error or *InternalError.
func Compile(filename string, src []byte, conf *Config) ([]byte, error) {
	if conf == nil {
		conf = &Config{}
	}
	log := conf.logger().With("file", filename)

	done := logger.LogPhase(log, "parse")
	tree, err := syntax.Parse(filename, src)
	done()
	if err != nil {
		return nil, err
	}

	p := NewProgram(tree, conf)
	if err := p.Prescan(); err != nil {
		return nil, err
	}
	if err := p.Evaluate(); err != nil {
		return nil, err
	}

	defer logger.LogPhase(log, "encode")()
	out, err := bytecode.Encode(p.Segments())
	if err != nil {
		return nil, internalErrorf("%v", err)
	}
	return out, nil
}
