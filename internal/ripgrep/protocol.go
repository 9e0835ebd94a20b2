package ripgrep

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// EventKind discriminates the events of the rg --json stream
type EventKind int

const (
	KindOther EventKind = iota
	KindBegin
	KindMatch
	KindEnd
)

func (k EventKind) String() string {
	switch k {
	case KindBegin:
		return "begin"
	case KindMatch:
		return "match"
	case KindEnd:
		return "end"
	default:
		return "other"
	}
}

// Event is one parsed output line
type Event interface {
	Kind() EventKind
}

// Begin starts the events for one file
type Begin struct {
	Path string
}

func (Begin) Kind() EventKind { return KindBegin }

// Match reports one matching line (or several, in multiline mode)
type Match struct {
	Path           string
	LineText       string
	LineNumber     int
	AbsoluteOffset int64
	Submatches     []Submatch
}

func (Match) Kind() EventKind { return KindMatch }

// End closes the events for one file
type End struct {
	Path string
}

func (End) Kind() EventKind { return KindEnd }

// Other is any event type this engine does not consume (context, summary, ...)
type Other struct {
	Type string
}

func (Other) Kind() EventKind { return KindOther }

// Submatch is one match inside Match.LineText, in byte offsets
type Submatch struct {
	Text  string
	Start int
	End   int // exclusive
}

// ParseError reports a line that is not a well-formed event
type ParseError struct {
	Line string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable output line %q: %v", e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

var errMissingField = errors.New("missing required field")

// wire types; pointers detect absent fields

type wireEvent struct {
	Type *string         `json:"type"`
	Data json.RawMessage `json:"data"`
}

// wireData is rg's arbitrary data: UTF-8 text, or base64 bytes otherwise
type wireData struct {
	Text  *string `json:"text"`
	Bytes *string `json:"bytes"`
}

type wirePathData struct {
	Path *wireData `json:"path"`
}

type wireMatchData struct {
	Path           *wireData       `json:"path"`
	Lines          *wireData       `json:"lines"`
	LineNumber     *int            `json:"line_number"`
	AbsoluteOffset *int64          `json:"absolute_offset"`
	Submatches     *[]wireSubmatch `json:"submatches"`
}

type wireSubmatch struct {
	Match *wireData `json:"match"`
	Start *int      `json:"start"`
	End   *int      `json:"end"`
}

// ParseEvent parses one line of rg --json output
func ParseEvent(line string) (Event, error) {
	var ev wireEvent
	if err := json.Unmarshal([]byte(line), &ev); err != nil {
		return nil, &ParseError{Line: line, Err: err}
	}
	if ev.Type == nil {
		return nil, &ParseError{Line: line, Err: fmt.Errorf("%w: type", errMissingField)}
	}

	switch *ev.Type {
	case "begin", "end":
		path, err := parsePath(ev.Data)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		if *ev.Type == "begin" {
			return Begin{Path: path}, nil
		}
		return End{Path: path}, nil

	case "match":
		m, err := parseMatch(ev.Data)
		if err != nil {
			return nil, &ParseError{Line: line, Err: err}
		}
		return m, nil

	default:
		return Other{Type: *ev.Type}, nil
	}
}

func parsePath(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", fmt.Errorf("%w: data", errMissingField)
	}
	var data wirePathData
	if err := json.Unmarshal(raw, &data); err != nil {
		return "", fmt.Errorf("invalid data: %w", err)
	}
	return data.Path.decode("path")
}

func parseMatch(raw json.RawMessage) (Match, error) {
	if len(raw) == 0 {
		return Match{}, fmt.Errorf("%w: data", errMissingField)
	}
	var data wireMatchData
	if err := json.Unmarshal(raw, &data); err != nil {
		return Match{}, fmt.Errorf("invalid data: %w", err)
	}

	path, err := data.Path.decode("path")
	if err != nil {
		return Match{}, err
	}
	lines, err := data.Lines.decode("lines")
	if err != nil {
		return Match{}, err
	}
	if data.LineNumber == nil {
		return Match{}, fmt.Errorf("%w: line_number", errMissingField)
	}
	if data.AbsoluteOffset == nil {
		return Match{}, fmt.Errorf("%w: absolute_offset", errMissingField)
	}
	if data.Submatches == nil {
		return Match{}, fmt.Errorf("%w: submatches", errMissingField)
	}

	m := Match{
		Path:           path,
		LineText:       lines,
		LineNumber:     *data.LineNumber,
		AbsoluteOffset: *data.AbsoluteOffset,
		Submatches:     make([]Submatch, 0, len(*data.Submatches)),
	}
	for i, sm := range *data.Submatches {
		text, err := sm.Match.decode(fmt.Sprintf("submatches[%d].match", i))
		if err != nil {
			return Match{}, err
		}
		if sm.Start == nil {
			return Match{}, fmt.Errorf("%w: submatches[%d].start", errMissingField, i)
		}
		if sm.End == nil {
			return Match{}, fmt.Errorf("%w: submatches[%d].end", errMissingField, i)
		}
		m.Submatches = append(m.Submatches, Submatch{Text: text, Start: *sm.Start, End: *sm.End})
	}
	return m, nil
}

func (d *wireData) decode(field string) (string, error) {
	switch {
	case d == nil:
		return "", fmt.Errorf("%w: %s", errMissingField, field)
	case d.Text != nil:
		return *d.Text, nil
	case d.Bytes != nil:
		b, err := base64.StdEncoding.DecodeString(*d.Bytes)
		if err != nil {
			return "", fmt.Errorf("invalid %s.bytes: %w", field, err)
		}
		return string(b), nil
	default:
		return "", fmt.Errorf("%w: %s.text", errMissingField, field)
	}
}
