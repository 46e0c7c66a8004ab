// Package trace reads and writes memory-access traces in the valgrind
// "lackey" format, one access per line:
//
//	I 0400d7d4,8
//	 L 7ff0005c8,8
//	 S 7ff0005d0,4
//	 M 0421c7f0,4
package trace

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sarchlab/csim/cache"
)

// Operation is one data access from a trace.
type Operation struct {
	Kind cache.Kind
	Addr uint64
	Size uint64
	// Line is the raw trace line the operation was parsed from, without its
	// line terminator. It is empty for operations that were not parsed.
	Line string
}

// Text returns the operation in trace format without the leading space.
func (op Operation) Text() string {
	if op.Line != "" {
		return strings.TrimPrefix(op.Line, " ")
	}

	return fmt.Sprintf("%c %x,%x", kindChar(op.Kind), op.Addr, op.Size)
}

// lineKind is the result of classifying a trace line.
type lineKind int

const (
	lineInvalid lineKind = iota
	lineInstruction
	lineData
)

// ParseLine parses one trace line. It returns false for instruction fetches
// and for lines that are not data accesses.
func ParseLine(line string) (Operation, bool) {
	op, k := parseLine(line)
	return op, k == lineData
}

func parseLine(line string) (Operation, lineKind) {
	rest := strings.TrimLeft(line, " \t")
	if len(rest) < 2 {
		return Operation{}, lineInvalid
	}

	opChar := rest[0]
	rest = strings.TrimLeft(rest[1:], " \t")

	addrText, sizeText, _ := strings.Cut(rest, ",")
	addrText = trimHexPrefix(strings.TrimRight(addrText, " \t\r"))

	a, err := strconv.ParseUint(addrText, 16, 64)
	if err != nil {
		return Operation{}, lineInvalid
	}

	op := Operation{Addr: a, Line: strings.TrimRight(line, "\r")}

	// A missing or malformed size does not invalidate the access.
	if size, err := strconv.ParseUint(strings.TrimSpace(sizeText), 16, 64); err == nil {
		op.Size = size
	}

	switch opChar {
	case 'I':
		return op, lineInstruction
	case 'L':
		op.Kind = cache.Load
	case 'S':
		op.Kind = cache.Store
	case 'M':
		op.Kind = cache.Modify
	default:
		return Operation{}, lineInvalid
	}

	return op, lineData
}

func trimHexPrefix(s string) string {
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		return s[2:]
	}

	return s
}

func kindChar(k cache.Kind) byte {
	switch k {
	case cache.Load:
		return 'L'
	case cache.Store:
		return 'S'
	case cache.Modify:
		return 'M'
	default:
		return '?'
	}
}
