package bytecode

// Stats contains statistics about a compiled program, including all of its
// nested functions.
type Stats struct {
	// InstructionCount is the total number of bytecode instructions.
	InstructionCount int

	// ConstantCount is the total number of constant pool entries.
	ConstantCount int

	// FunctionCount is the number of function definitions.
	FunctionCount int

	// MaxNesting is the deepest level of function nesting. A program with
	// no functions has a nesting of zero.
	MaxNesting int

	// SourceBytes is the size of the original source code in bytes.
	SourceBytes int
}

// Stats returns statistics about this code and its descendants.
func (c *Code) Stats() Stats {
	stats := Stats{SourceBytes: len(c.source)}
	var walk func(code *Code, depth int)
	walk = func(code *Code, depth int) {
		stats.InstructionCount += len(code.instructions)
		stats.ConstantCount += len(code.constants)
		if depth > stats.MaxNesting {
			stats.MaxNesting = depth
		}
		for _, name := range code.childNames {
			stats.FunctionCount++
			walk(code.children[name], depth+1)
		}
	}
	walk(c, 0)
	return stats
}
