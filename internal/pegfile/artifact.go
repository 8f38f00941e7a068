package pegfile

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/dekarrin/rezi"

	"github.com/corvidlang/pegrun/internal/peg"
)

// artifact is the REZI-marshalable mirror of a []peg.Automaton. REZI's
// EncBinary/DecBinary round-trip any encoding.BinaryMarshaler, so the actual
// byte layout below is hand-rolled with encoding/binary rather than relying
// on unconfirmed REZI struct-tag behavior.
type artifact struct {
	automata []peg.Automaton
}

// EncodeArtifact serializes automata to the .fab wire format.
func EncodeArtifact(automata []peg.Automaton) ([]byte, error) {
	return rezi.EncBinary(&artifact{automata: automata}), nil
}

// DecodeArtifact parses the .fab wire format back into an automata vector.
func DecodeArtifact(data []byte) ([]peg.Automaton, error) {
	var a artifact
	n, err := rezi.DecBinary(data, &a)
	if err != nil {
		return nil, fmt.Errorf("decoding artifact: %w", err)
	}
	if n != len(data) {
		return nil, fmt.Errorf("decoding artifact: consumed %d/%d bytes", n, len(data))
	}
	return a.automata, nil
}

// artifactMagic guards against loading a non-artifact file as automata.
const artifactMagic = "PGFA"

func (a *artifact) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(artifactMagic)
	writeUint32(&buf, uint32(len(a.automata)))
	for i := range a.automata {
		writeAutomaton(&buf, a.automata[i])
	}
	return buf.Bytes(), nil
}

func (a *artifact) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	magic := make([]byte, len(artifactMagic))
	if _, err := r.Read(magic); err != nil || string(magic) != artifactMagic {
		return fmt.Errorf("not a pegrun automata artifact")
	}
	count, err := readUint32(r)
	if err != nil {
		return err
	}
	a.automata = make([]peg.Automaton, count)
	for i := range a.automata {
		au, err := readAutomaton(r)
		if err != nil {
			return fmt.Errorf("automaton %d: %w", i, err)
		}
		a.automata[i] = au
	}
	return nil
}

func writeUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func readUint32(r *bytes.Reader) (uint32, error) {
	var b [4]byte
	if _, err := r.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

func writeInt32(buf *bytes.Buffer, v int32) { writeUint32(buf, uint32(v)) }

func readInt32(r *bytes.Reader) (int32, error) {
	v, err := readUint32(r)
	return int32(v), err
}

func writeString(buf *bytes.Buffer, s string) {
	writeUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

func readString(r *bytes.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	b := make([]byte, n)
	if n > 0 {
		if _, err := r.Read(b); err != nil {
			return "", err
		}
	}
	return string(b), nil
}

func writeAutomaton(buf *bytes.Buffer, a peg.Automaton) {
	writeInt32(buf, int32(a.Type))
	buf.WriteByte(byte(a.Mode))
	writeUint32(buf, uint32(len(a.States)))
	for _, s := range a.States {
		writeState(buf, s)
	}
}

func readAutomaton(r *bytes.Reader) (peg.Automaton, error) {
	var a peg.Automaton
	t, err := readInt32(r)
	if err != nil {
		return a, err
	}
	a.Type = peg.TypeTag(t)

	modeByte, err := r.ReadByte()
	if err != nil {
		return a, err
	}
	a.Mode = peg.Mode(modeByte)

	n, err := readUint32(r)
	if err != nil {
		return a, err
	}
	a.States = make([]peg.State, n)
	for i := range a.States {
		s, err := readState(r)
		if err != nil {
			return a, fmt.Errorf("state %d: %w", i, err)
		}
		a.States[i] = s
	}
	return a, nil
}

func writeState(buf *bytes.Buffer, s peg.State) {
	if s.IsMatch {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	writeUint32(buf, uint32(len(s.Edges)))
	for _, e := range s.Edges {
		writeEdge(buf, e)
	}
}

func readState(r *bytes.Reader) (peg.State, error) {
	var s peg.State
	isMatch, err := r.ReadByte()
	if err != nil {
		return s, err
	}
	s.IsMatch = isMatch != 0

	n, err := readUint32(r)
	if err != nil {
		return s, err
	}
	s.Edges = make([]peg.Edge, n)
	for i := range s.Edges {
		e, err := readEdge(r)
		if err != nil {
			return s, fmt.Errorf("edge %d: %w", i, err)
		}
		s.Edges[i] = e
	}
	return s, nil
}

func writeEdge(buf *bytes.Buffer, e peg.Edge) {
	writeTransition(buf, e.Transition)
	writeInt32(buf, int32(e.NextState))
	if e.Voided {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readEdge(r *bytes.Reader) (peg.Edge, error) {
	var e peg.Edge
	t, err := readTransition(r)
	if err != nil {
		return e, err
	}
	e.Transition = t

	next, err := readInt32(r)
	if err != nil {
		return e, err
	}
	e.NextState = int(next)

	voided, err := r.ReadByte()
	if err != nil {
		return e, err
	}
	e.Voided = voided != 0
	return e, nil
}

func writeTransition(buf *bytes.Buffer, t peg.Transition) {
	buf.WriteByte(byte(t.Kind))
	switch t.Kind {
	case peg.TransChar:
		writeCharSet(buf, t.Set)
	case peg.TransWildcard:
		// no payload
	case peg.TransAutomaton:
		writeInt32(buf, int32(t.AutomatonIndex))
	case peg.TransPreParsed:
		writeString(buf, t.Name)
	}
}

func readTransition(r *bytes.Reader) (peg.Transition, error) {
	var t peg.Transition
	kindByte, err := r.ReadByte()
	if err != nil {
		return t, err
	}
	t.Kind = peg.TransitionKind(kindByte)

	switch t.Kind {
	case peg.TransChar:
		set, err := readCharSet(r)
		if err != nil {
			return t, err
		}
		t.Set = set
	case peg.TransWildcard:
		// no payload
	case peg.TransAutomaton:
		idx, err := readInt32(r)
		if err != nil {
			return t, err
		}
		t.AutomatonIndex = int(idx)
	case peg.TransPreParsed:
		name, err := readString(r)
		if err != nil {
			return t, err
		}
		t.Name = name
	default:
		return t, fmt.Errorf("unknown transition kind %d", kindByte)
	}
	return t, nil
}

// writeCharSet serializes only explicit ranges and the case-fold flag.
// Categories added via CharSet.AddCategory are not round-tripped: a grammar
// compiler that wants \p{...} classes to survive an artifact save must
// re-attach them by name after loading, since the general-category tables
// are identified by Go-level *unicode.RangeTable pointers, not by a stable
// wire name.
func writeCharSet(buf *bytes.Buffer, cs *peg.CharSet) {
	ranges := cs.Ranges()
	writeUint32(buf, uint32(len(ranges)))
	for _, rg := range ranges {
		writeInt32(buf, int32(rg.Lo))
		writeInt32(buf, int32(rg.Hi))
	}
	if cs.Folded() {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
}

func readCharSet(r *bytes.Reader) (*peg.CharSet, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	ranges := make([]peg.CharRange, n)
	for i := range ranges {
		lo, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		hi, err := readInt32(r)
		if err != nil {
			return nil, err
		}
		ranges[i] = peg.CharRange{Lo: rune(lo), Hi: rune(hi)}
	}
	folded, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	cs := peg.NewCharSet(ranges...)
	if folded != 0 {
		cs.CaseFold()
	}
	return cs, nil
}
