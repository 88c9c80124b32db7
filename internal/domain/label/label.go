// Package label extracts session labels from session-creation arguments.
//
// Arguments are a comma-separated list of key=value pairs. Values are either
// bare tokens or double-quoted strings:
//
//	label="init -> launcher -> boot_module.bin", ram_quota=8K
//
// A label is a chain of elements joined by " -> ", outermost first. Only the
// last element names the requested resource.
package label

import "strings"

// Separator joins the elements of a session label.
const Separator = " -> "

// Label is a parsed session label.
type Label string

// FromArgs returns the label carried in args, or the empty label if there is none.
func FromArgs(args string) Label {
	v, ok := Find(args, "label")
	if !ok {
		return ""
	}
	return Label(v)
}

// String returns the label text.
func (l Label) String() string { return string(l) }

// Elements splits the label into its elements.
func (l Label) Elements() []string {
	if l == "" {
		return nil
	}
	return strings.Split(string(l), Separator)
}

// LastElement returns the text after the last separator, or the whole label.
func (l Label) LastElement() string {
	s := string(l)
	if i := strings.LastIndex(s, Separator); i >= 0 {
		return s[i+len(Separator):]
	}
	return s
}

// Find returns the value of key in args. Quoted values are unescaped.
func Find(args, key string) (string, bool) {
	s := scanner{src: args}
	for {
		s.skipSpace()
		if s.done() {
			return "", false
		}
		k := s.key()
		s.skipSpace()

		var v string
		if s.peek() == '=' {
			s.pos++
			s.skipSpace()
			v = s.value()
		}
		if k == key {
			return v, true
		}

		// skip anything up to the next argument
		for !s.done() && s.peek() != ',' {
			s.pos++
		}
		if !s.done() {
			s.pos++
		}
	}
}

type scanner struct {
	src string
	pos int
}

func (s *scanner) done() bool { return s.pos >= len(s.src) }

func (s *scanner) peek() byte { return s.src[s.pos] }

func (s *scanner) skipSpace() {
	for !s.done() && (s.peek() == ' ' || s.peek() == '\t') {
		s.pos++
	}
}

func (s *scanner) key() string {
	start := s.pos
	for !s.done() {
		c := s.peek()
		if c == '=' || c == ',' || c == ' ' || c == '\t' {
			break
		}
		s.pos++
	}
	return s.src[start:s.pos]
}

func (s *scanner) value() string {
	if s.done() {
		return ""
	}
	if s.peek() == '"' {
		return s.quoted()
	}
	start := s.pos
	for !s.done() && s.peek() != ',' {
		s.pos++
	}
	return strings.TrimRight(s.src[start:s.pos], " \t")
}

// quoted consumes a double-quoted string. An unterminated string runs to the end of input.
func (s *scanner) quoted() string {
	s.pos++
	var b strings.Builder
	for !s.done() {
		c := s.peek()
		s.pos++
		switch {
		case c == '\\' && !s.done():
			b.WriteByte(s.peek())
			s.pos++
		case c == '"':
			return b.String()
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
