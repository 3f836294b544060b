// Package bytecode provides immutable representations of compiled Lace code.
//
// A [Code] is the output of compilation and the input to the virtual
// machine. It holds a constant pool, an instruction sequence, the interned
// names referenced by variable and call instructions, the formal parameter
// list and a table of named child code objects (nested function
// definitions).
//
// # Immutability Guarantees
//
// A Code is created once with [NewCode] and never modified afterwards:
//
//   - All fields are unexported
//   - NewCode copies its input slices and maps
//   - Collections are exposed through index-based accessors
//
//	code.InstructionAt(0)
//	code.ConstantAt(i)
//	code.Child("fib")
//
// Because of this a single Code may be executed by many VMs concurrently.
//
// # Object Files
//
// [Marshal] and [Unmarshal] convert a Code to and from the ".lo" object file
// format, a canonical CBOR encoding. Encoding the same Code twice produces
// identical bytes, and a decoded Code is [Code.Equal] to the original.
package bytecode
