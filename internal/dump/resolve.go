package dump

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"mustuse/internal/hier"
	"mustuse/internal/source"
	"mustuse/internal/usage"
)

var (
	// ErrDanglingRef reports a symbolic reference to a class, method or file
	// that no merged document declares. Malformed input aborts the run.
	ErrDanglingRef = errors.New("dangling reference in dump")
	// ErrDuplicateDecl reports two declarations with the same method key.
	ErrDuplicateDecl = errors.New("duplicate method declaration in dump")
)

// Key renders the symbolic method key used for cross-references inside dumps:
// "Class.name(param,param)". Names are NFC-normalized before keying, so dumps
// produced by differently-normalizing front ends still link up.
func Key(class, name string, params []string) string {
	var b strings.Builder
	b.WriteString(norm.NFC.String(class))
	b.WriteByte('.')
	b.WriteString(norm.NFC.String(name))
	b.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(norm.NFC.String(p))
	}
	b.WriteByte(')')
	return b.String()
}

// Resolve merges the decoded documents into one graph builder plus the flat
// call-site list. Symbolic references are resolved here; anything dangling is
// a fatal configuration error, never a diagnostic.
//
// Document order must be deterministic (the driver sorts dump paths), because
// FileIDs and MethodIDs are handed out in encounter order.
func Resolve(docs []*Document, fs *source.FileSet, b *hier.Builder) ([]usage.CallSite, error) {
	r := resolver{
		fs:       fs,
		b:        b,
		declared: make(map[string]hier.ClassID),
		methods:  make(map[string]hier.MethodID),
	}

	// Файлы и классы — до методов: методы ссылаются и на те, и на другие.
	for _, doc := range docs {
		r.addFiles(doc)
	}
	for _, doc := range docs {
		if err := r.addClasses(doc); err != nil {
			return nil, err
		}
	}
	for _, doc := range docs {
		if err := r.addMethods(doc); err != nil {
			return nil, err
		}
	}
	// Override-рёбра — после всех методов: ключи могут указывать в другой
	// документ.
	for _, doc := range docs {
		if err := r.addOverrides(doc); err != nil {
			return nil, err
		}
	}

	var sites []usage.CallSite
	for _, doc := range docs {
		resolved, err := r.addCalls(doc)
		if err != nil {
			return nil, err
		}
		sites = append(sites, resolved...)
	}
	return sites, nil
}

type resolver struct {
	fs       *source.FileSet
	b        *hier.Builder
	declared map[string]hier.ClassID
	methods  map[string]hier.MethodID
}

func (r *resolver) addFiles(doc *Document) {
	for _, f := range doc.Files {
		if f.Text != "" {
			r.fs.AddVirtual(f.Path, []byte(f.Text))
			continue
		}
		r.fs.AddStub(f.Path, f.Newlines)
	}
}

func (r *resolver) addClasses(doc *Document) error {
	for _, c := range doc.Classes {
		name := norm.NFC.String(c.Name)
		if name == "" {
			return fmt.Errorf("class with empty name")
		}
		r.declared[name] = r.b.AddClass(name)
	}
	for _, c := range doc.Classes {
		child := r.declared[norm.NFC.String(c.Name)]
		for _, superName := range c.Extends {
			super, ok := r.declared[norm.NFC.String(superName)]
			if !ok {
				return fmt.Errorf("%w: class %q extends unknown %q", ErrDanglingRef, c.Name, superName)
			}
			r.b.AddExtends(child, super)
		}
	}
	return nil
}

func (r *resolver) addMethods(doc *Document) error {
	for _, m := range doc.Methods {
		owner, ok := r.declared[norm.NFC.String(m.Class)]
		if !ok {
			return fmt.Errorf("%w: method %q declared on unknown class %q", ErrDanglingRef, m.Name, m.Class)
		}
		mark, err := hier.ParseMark(m.Mark)
		if err != nil {
			return fmt.Errorf("method %s.%s: %w", m.Class, m.Name, err)
		}
		span, err := r.resolveSpan(m.File, m.Span)
		if err != nil {
			return fmt.Errorf("method %s.%s: %w", m.Class, m.Name, err)
		}

		params := make([]string, len(m.Params))
		for i, p := range m.Params {
			params[i] = norm.NFC.String(p)
		}
		key := Key(m.Class, m.Name, m.Params)
		if _, dup := r.methods[key]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateDecl, key)
		}
		r.methods[key] = r.b.AddMethod(owner, norm.NFC.String(m.Name), params,
			norm.NFC.String(m.Returns), mark, span)
	}
	return nil
}

func (r *resolver) addOverrides(doc *Document) error {
	for _, m := range doc.Methods {
		if len(m.Overrides) == 0 {
			continue
		}
		derived := r.methods[Key(m.Class, m.Name, m.Params)]
		for _, targetKey := range m.Overrides {
			base, ok := r.methods[norm.NFC.String(targetKey)]
			if !ok {
				return fmt.Errorf("%w: %s overrides unknown %q",
					ErrDanglingRef, Key(m.Class, m.Name, m.Params), targetKey)
			}
			r.b.AddOverride(derived, base)
		}
	}
	return nil
}

func (r *resolver) addCalls(doc *Document) ([]usage.CallSite, error) {
	sites := make([]usage.CallSite, 0, len(doc.Calls))
	for _, c := range doc.Calls {
		callee, ok := r.methods[norm.NFC.String(c.Callee)]
		if !ok {
			return nil, fmt.Errorf("%w: call to unknown %q", ErrDanglingRef, c.Callee)
		}
		tag, err := usage.ParseTag(c.Usage)
		if err != nil {
			return nil, fmt.Errorf("call to %s: %w", c.Callee, err)
		}
		span, err := r.resolveSpan(c.File, c.Span)
		if err != nil {
			return nil, fmt.Errorf("call to %s: %w", c.Callee, err)
		}
		sites = append(sites, usage.CallSite{Callee: callee, Span: span, Usage: tag})
	}
	return sites, nil
}

func (r *resolver) resolveSpan(path string, span []uint32) (source.Span, error) {
	id, ok := r.fs.Lookup(path)
	if !ok {
		return source.Span{}, fmt.Errorf("%w: file %q not in file table", ErrDanglingRef, path)
	}
	if len(span) != 2 || span[1] < span[0] {
		return source.Span{}, fmt.Errorf("malformed span %v", span)
	}
	return source.Span{File: id, Start: span[0], End: span[1]}, nil
}
