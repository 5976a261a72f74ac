package dump

// Document is one hierarchy dump: the already-resolved world a front end
// hands to the engine. One analysis run may merge many documents (one per
// compilation unit) into a single graph before propagation, because a mark in
// any unit can change classifications everywhere.
//
// The same schema has two encodings: TOML (".mu.toml", human-authored
// fixtures and tool output) and msgpack (".mub", compact binary dumps).
type Document struct {
	Schema  int      `toml:"schema" msgpack:"schema"`
	Files   []File   `toml:"file" msgpack:"files"`
	Classes []Class  `toml:"class" msgpack:"classes"`
	Methods []Method `toml:"method" msgpack:"methods"`
	Calls   []Call   `toml:"call" msgpack:"calls"`
}

// SchemaVersion is the current dump schema. Bump when the wire format
// changes; decoders reject anything else.
const SchemaVersion = 1

// File registers a source file referenced by spans. Either Text (full
// content, enables context rendering) or Newlines (byte offsets of '\n',
// locations only) — Text wins when both are present.
type File struct {
	Path     string   `toml:"path" msgpack:"path"`
	Text     string   `toml:"text,omitempty" msgpack:"text,omitempty"`
	Newlines []uint32 `toml:"newlines,omitempty" msgpack:"newlines,omitempty"`
}

// Class declares a class node with its direct superclasses.
type Class struct {
	Name    string   `toml:"name" msgpack:"name"`
	Extends []string `toml:"extends,omitempty" msgpack:"extends,omitempty"`
}

// Method declares one method. Overrides lists the overridden declarations as
// symbolic method keys (see Key); the edges arrive already resolved by the
// front end, the engine only re-validates signatures.
type Method struct {
	Class     string   `toml:"class" msgpack:"class"`
	Name      string   `toml:"name" msgpack:"name"`
	Params    []string `toml:"params,omitempty" msgpack:"params,omitempty"`
	Returns   string   `toml:"returns,omitempty" msgpack:"returns,omitempty"`
	Mark      string   `toml:"mark,omitempty" msgpack:"mark,omitempty"`
	File      string   `toml:"file" msgpack:"file"`
	Span      []uint32 `toml:"span" msgpack:"span"` // [start, end) в байтах
	Overrides []string `toml:"overrides,omitempty" msgpack:"overrides,omitempty"`
}

// Call is one resolved call expression with its pre-computed usage tag.
type Call struct {
	Callee string   `toml:"callee" msgpack:"callee"`
	File   string   `toml:"file" msgpack:"file"`
	Span   []uint32 `toml:"span" msgpack:"span"`
	Usage  string   `toml:"usage" msgpack:"usage"` // consumed|discarded
}
