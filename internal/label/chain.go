package label

import "fmt"

// Source records which strategy produced a label. The declaration order is the
// priority order.
type Source int

const (
	SourceOCR Source = iota
	SourceVectorText
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceOCR:
		return "ocr"
	case SourceVectorText:
		return "vector-text"
	case SourceFallback:
		return "fallback"
	default:
		return fmt.Sprintf("Source(%d)", int(s))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Source) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Candidate is a label together with the strategy that produced it.
type Candidate struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
}

// Strategy is one step of the labeling chain. Label returns "" when it has no
// answer; an error aborts the chain.
type Strategy struct {
	Source Source
	Label  func() (string, error)
}

// Resolve evaluates strategies in order and returns the first result that is
// neither empty nor Unnamed. The zero Candidate is returned when no strategy
// answers.
func Resolve(strategies []Strategy) (Candidate, error) {
	for _, s := range strategies {
		text, err := s.Label()
		if err != nil {
			return Candidate{}, fmt.Errorf("%s label: %w", s.Source, err)
		}
		if text != "" && text != Unnamed {
			return Candidate{Text: text, Source: s.Source}, nil
		}
	}
	return Candidate{}, nil
}
