package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was registered from memory (dump text, test).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (дамп, тест)
	// FileNoContent indicates the front end supplied only a newline table,
	// not the file text; context rendering is unavailable for such files.
	FileNoContent
)

// File captures metadata and (optionally) content for a single source file.
// Files arrive pre-resolved inside a hierarchy dump; the engine never reads
// source text from disk itself.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // байтовые позиции '\n'
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}
