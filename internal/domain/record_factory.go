package domain

import (
	"fmt"
	"strings"
)

func ParseKind(s string) (RecordKind, error) {
	switch strings.ToUpper(s) {
	case "A":
		return RecordA, nil
	case "AAAA":
		return RecordAAAA, nil
	case "CNAME":
		return RecordCNAME, nil
	default:
		return "", fmt.Errorf("unsupported record kind %q", s)
	}
}

// IsManagedKind reports whether records of the given provider type are owned by this tool.
func IsManagedKind(s string) bool {
	_, err := ParseKind(s)
	return err == nil
}

func NewFromKind(kind RecordKind, name string, values ...string) (Record, error) {
	switch kind {
	case RecordA:
		return NewA(name, values...)
	case RecordAAAA:
		return NewAAAA(name, values...)
	case RecordCNAME:
		if len(values) != 1 {
			return Record{}, fmt.Errorf("CNAME %s needs exactly one target, got %d", name, len(values))
		}
		return NewCNAME(name, values[0])
	default:
		return Record{}, fmt.Errorf("unsupported record kind %q", kind)
	}
}
