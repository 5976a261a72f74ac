package source

import (
	"fmt"
	"os"
	"path/filepath"

	"fortio.org/safecast"
)

// FileSet manages the files referenced by a hierarchy dump and resolves byte
// offsets into line/column positions. All files are virtual: either full text
// supplied by the dump, or a newline table for location-only stubs.
type FileSet struct {
	files   []File
	index   map[string]FileID // path -> id
	baseDir string            // базовая директория для относительных путей
}

// NewFileSet creates a new empty FileSet.
func NewFileSet() *FileSet {
	return &FileSet{
		files: make([]File, 0),
		index: make(map[string]FileID),
	}
}

// NewFileSetWithBase создаёт FileSet с заданной базовой директорией.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{
		files:   make([]File, 0),
		index:   make(map[string]FileID),
		baseDir: baseDir,
	}
}

// BaseDir возвращает текущую базовую директорию.
func (fileSet *FileSet) BaseDir() string {
	if fileSet.baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return fileSet.baseDir
}

func (fileSet *FileSet) nextID() FileID {
	value, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("len files overflow: %w", err))
	}
	return FileID(value)
}

// AddVirtual stores a file with full text, computes its newline index and
// returns a new FileID. Re-registering a path updates the index to the
// latest version.
func (fileSet *FileSet) AddVirtual(path string, content []byte) FileID {
	content, _ = normalizeCRLF(content)
	normalizedPath := normalizePath(path)
	id := fileSet.nextID()
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		Content: content,
		LineIdx: buildLineIndex(content),
		Flags:   FileVirtual,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// AddStub stores a content-less file described only by its newline table
// (byte offsets of '\n'). Line/column resolution works; context rendering
// does not.
func (fileSet *FileSet) AddStub(path string, newlines []uint32) FileID {
	normalizedPath := normalizePath(path)
	id := fileSet.nextID()
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizedPath,
		LineIdx: newlines,
		Flags:   FileVirtual | FileNoContent,
	})
	fileSet.index[normalizedPath] = id
	return id
}

// Get returns the file metadata for the given ID, or nil if out of range.
func (fileSet *FileSet) Get(id FileID) *File {
	if int(id) >= len(fileSet.files) {
		return nil
	}
	return &fileSet.files[id]
}

// GetByPath возвращает *File по пути, если он зарегистрирован в этом FileSet.
func (fileSet *FileSet) GetByPath(path string) (*File, bool) {
	if id, ok := fileSet.index[normalizePath(path)]; ok {
		return &fileSet.files[id], true
	}
	return nil, false
}

// Lookup returns the FileID registered for path.
func (fileSet *FileSet) Lookup(path string) (FileID, bool) {
	id, ok := fileSet.index[normalizePath(path)]
	return id, ok
}

// Len reports the number of registered files.
func (fileSet *FileSet) Len() int {
	return len(fileSet.files)
}

// Resolve converts a span into line and column positions.
// Span с незарегистрированным FileID даёт нулевые позиции, не панику:
// форматтеры зовут Resolve на чужих диагностиках.
func (fileSet *FileSet) Resolve(span Span) (start, end LineCol) {
	f := fileSet.Get(span.File)
	if f == nil {
		return LineCol{}, LineCol{}
	}
	return toLineCol(f.LineIdx, span.Start), toLineCol(f.LineIdx, span.End)
}

// HasContent reports whether the file carries full text for context rendering.
func (f *File) HasContent() bool {
	return f.Flags&FileNoContent == 0
}

// GetLine возвращает строку с заданным номером (1-based) из файла.
// Если строка не существует (или файл без контента), возвращает пустую строку.
func (f *File) GetLine(lineNum uint32) string {
	if lineNum == 0 || !f.HasContent() {
		return ""
	}

	var start, end uint32
	lenLineIdx, err := safecast.Conv[uint32](len(f.LineIdx))
	if err != nil {
		panic(fmt.Errorf("line index length overflow: %w", err))
	}
	lenContent, err := safecast.Conv[uint32](len(f.Content))
	if err != nil {
		panic(fmt.Errorf("content length overflow: %w", err))
	}

	switch {
	case lineNum == 1:
		start = 0
	case (lineNum - 2) < lenLineIdx:
		start = f.LineIdx[lineNum-2] + 1
	default:
		return ""
	}

	if (lineNum - 1) < lenLineIdx {
		end = f.LineIdx[lineNum-1]
	} else {
		end = lenContent
	}

	if start >= lenContent {
		return ""
	}
	if end > lenContent {
		end = lenContent
	}

	return string(f.Content[start:end])
}

// FormatPath форматирует путь к файлу в зависимости от режима.
// mode: "absolute", "relative", "basename", "auto"
func (f *File) FormatPath(mode, baseDir string) string {
	switch mode {
	case "absolute":
		if abs, err := filepath.Abs(f.Path); err == nil {
			return filepath.ToSlash(abs)
		}
		return f.Path

	case "relative":
		if baseDir == "" {
			if wd, err := os.Getwd(); err == nil {
				baseDir = wd
			}
		}
		if rel, err := filepath.Rel(baseDir, f.Path); err == nil {
			return filepath.ToSlash(rel)
		}
		return f.Path

	case "basename":
		return filepath.Base(f.Path)

	default: // "auto" — как зарегистрирован
		return f.Path
	}
}
