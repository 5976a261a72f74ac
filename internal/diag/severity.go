package diag

// Severity ranks diagnostics; the order matters, checks compare with >=.
type Severity uint8

const (
	// SevInfo — информационные сообщения, на исход прогона не влияют.
	SevInfo Severity = iota
	// SevWarning reports a legacy-grade violation.
	SevWarning
	// SevError fails the run.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	}
	return "UNKNOWN"
}
