package codec

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/ssargent/sagadb/pkg/uid"
)

// MaxLineLen is the maximum length of a single line, in bytes,
// excluding the terminating newline. Longer lines fail with
// ErrLineTooLong on both the read and write path.
const MaxLineLen = 4096

// Write serializes records as tab-separated text: a header line
// naming the schema's fields, then one line per record in the order
// the sequence yields them, each terminated by a single line feed.
// The output is flushed before Write returns.
func Write[T any](w io.Writer, s *Schema[T], records iter.Seq2[uid.ID, *T]) error {
	bw := bufio.NewWriter(w)

	// The header is a line like any other: it must re-read, so it is
	// held to the same length bound as record lines.
	buf := append([]byte(nil), "#uuid"...)
	for i := range s.Fields {
		buf = append(buf, '\t')
		buf = append(buf, s.Fields[i].Name...)
	}
	if len(buf) > MaxLineLen {
		return fmt.Errorf("header: %w (%d bytes)", ErrLineTooLong, len(buf))
	}
	buf = append(buf, '\n')
	if _, err := bw.Write(buf); err != nil {
		return err
	}

	for id, rec := range records {
		buf = append(buf[:0], id.String()...)
		for i := range s.Fields {
			buf = append(buf, '\t')
			buf = appendField(buf, &s.Fields[i], s.Fields[i].Get(rec))
		}
		if len(buf) > MaxLineLen {
			return fmt.Errorf("record %s: %w (%d bytes)", id, ErrLineTooLong, len(buf))
		}
		buf = append(buf, '\n')
		if _, err := bw.Write(buf); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Read parses tab-separated record text and hands each decoded
// (identifier, record) pair to put. Lines beginning with '#' (the
// header among them) are skipped; the first empty line ends the
// stream; any malformed line aborts the parse with a wrapped sentinel
// error. Records delivered before a failing line stay delivered:
// partial state after an error is defined, not rolled back.
func Read[T any](r io.Reader, s *Schema[T], put func(uid.ID, T)) error {
	sc := bufio.NewScanner(r)
	// one extra byte so a maximum-length line plus its newline fits
	sc.Buffer(make([]byte, 0, MaxLineLen+1), MaxLineLen+1)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := sc.Text()
		if len(line) > MaxLineLen {
			return fmt.Errorf("line %d: %w (%d bytes)", lineNo, ErrLineTooLong, len(line))
		}
		if line == "" {
			return nil
		}
		if line[0] == '#' {
			continue
		}
		var rec T
		id, err := parseLine(line, s, &rec)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		put(id, rec)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("line %d: %w", lineNo+1, ErrLineTooLong)
		}
		return err
	}
	return nil
}

func parseLine[T any](line string, s *Schema[T], rec *T) (uid.ID, error) {
	parts := strings.Split(line, "\t")

	id, err := uid.Parse(parts[0])
	if err != nil {
		return uid.ID{}, fmt.Errorf("%w: %q", ErrInvalidID, parts[0])
	}

	got := len(parts) - 1
	if got < len(s.Fields) {
		return uid.ID{}, fmt.Errorf("%w: got %d of %d", ErrMissingField, got, len(s.Fields))
	}
	if got > len(s.Fields) {
		return uid.ID{}, fmt.Errorf("%w: got %d, schema declares %d", ErrTooManyFields, got, len(s.Fields))
	}

	for i := range s.Fields {
		f := &s.Fields[i]
		v, err := parseField(f, parts[i+1])
		if err != nil {
			return uid.ID{}, fmt.Errorf("field %q: %w", f.Name, err)
		}
		f.Set(rec, v)
	}
	return id, nil
}

func parseField[T any](f *Field[T], text string) (Value, error) {
	switch f.Kind {
	case KindInt:
		n, err := strconv.ParseInt(text, 10, intBits(f.Bits))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an int%d", ErrWrongType, text, intBits(f.Bits))
		}
		return IntValue(n), nil

	case KindUint:
		n, err := strconv.ParseUint(text, 10, intBits(f.Bits))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a uint%d", ErrWrongType, text, intBits(f.Bits))
		}
		return UintValue(n), nil

	case KindFloat:
		n, err := strconv.ParseFloat(text, intBits(f.Bits))
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not a float%d", ErrWrongType, text, intBits(f.Bits))
		}
		return FloatValue(n), nil

	case KindBool:
		switch text {
		case "true":
			return BoolValue(true), nil
		case "false":
			return BoolValue(false), nil
		}
		return Value{}, fmt.Errorf("%w: %q is not a bool", ErrWrongType, text)

	case KindString:
		return StringValue(UnescapeString(text)), nil

	case KindEnum:
		for ord, name := range f.Variants {
			if name == text {
				return EnumValue(uint64(ord)), nil
			}
		}
		// the writer emits ordinals, so accept those back too
		if ord, err := strconv.ParseUint(text, 10, 64); err == nil && ord < uint64(len(f.Variants)) {
			return EnumValue(ord), nil
		}
		return Value{}, fmt.Errorf("%w: %q", ErrEnumNotFound, text)

	case KindID:
		id, err := uid.Parse(text)
		if err != nil {
			return Value{}, fmt.Errorf("%w: %q is not an identifier", ErrWrongType, text)
		}
		return IDValue(id), nil
	}
	return Value{}, fmt.Errorf("%w: unknown kind %v", ErrWrongType, f.Kind)
}

func appendField[T any](buf []byte, f *Field[T], v Value) []byte {
	switch f.Kind {
	case KindInt:
		return strconv.AppendInt(buf, v.Int, 10)
	case KindUint, KindEnum:
		return strconv.AppendUint(buf, v.Uint, 10)
	case KindFloat:
		return strconv.AppendFloat(buf, v.Float, 'g', -1, intBits(f.Bits))
	case KindBool:
		return strconv.AppendBool(buf, v.Bool)
	case KindString:
		return appendEscaped(buf, v.Str)
	case KindID:
		return append(buf, v.ID.String()...)
	}
	return buf
}

func intBits(bits int) int {
	if bits == 0 {
		return 64
	}
	return bits
}

// EscapeString replaces every literal tab with the two-character
// sequence `\t`. Nothing else is escaped: strings containing line
// feeds are not representable in this format.
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "\t", `\t`)
}

// UnescapeString reverses EscapeString.
func UnescapeString(s string) string {
	return strings.ReplaceAll(s, `\t`, "\t")
}

func appendEscaped(buf []byte, s string) []byte {
	if !strings.Contains(s, "\t") {
		return append(buf, s...)
	}
	return append(buf, EscapeString(s)...)
}
