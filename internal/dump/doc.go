// Package dump decodes hierarchy dumps — the engine's only input.
//
// A dump is the already-resolved view of one compilation unit: its file
// table, class declarations with superclass edges, method declarations with
// explicit must-use marks and resolved override edges, and call expressions
// with pre-computed usage tags. Parsing and type checking happened on the
// front-end side; this package only decodes, normalizes and links.
//
// Two encodings share one schema: TOML for fixtures and human inspection,
// msgpack for compact machine-produced dumps. Cross-references use symbolic
// method keys ("Class.name(param,param)"), resolved here across all merged
// documents; a dangling reference is a fatal configuration error.
package dump
