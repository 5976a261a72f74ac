package diag

import (
	"fmt"
)

type Code uint16

// Диапазоны кодов закреплены за фазами:
//
//	1000-1999 — построение графа иерархии
//	2000-2999 — распространение аннотаций
//	3000-3999 — проверка call-site'ов
const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Графовые
	GraphInfo             Code = 1000
	GraphOverrideMismatch Code = 1001
	GraphDanglingRef      Code = 1002

	// Распространение аннотаций
	AnnotInfo                  Code = 2000
	AnnotConflictingAnnotation Code = 2001

	// Использование результата вызова
	UsageInfo            Code = 3000
	UsageViolationStrict Code = 3001
	UsageViolationLegacy Code = 3002
)

var codeDescription = map[Code]string{
	UnknownCode: "unknown error",

	GraphInfo:             "hierarchy graph info",
	GraphOverrideMismatch: "override signature mismatch",
	GraphDanglingRef:      "dangling declaration reference",

	AnnotInfo:                  "annotation propagation info",
	AnnotConflictingAnnotation: "conflicting must-use annotation",

	UsageInfo:            "call usage info",
	UsageViolationStrict: "discarded result of must-use call",
	UsageViolationLegacy: "discarded result of legacy must-use call",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("GRF%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("ANN%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("USE%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
