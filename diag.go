package oc

import "fmt"

// SourceError is the error produced by the lexer and the parser.
// These abort the pipeline immediately, unlike semantic diagnostics,
// which are collected and counted by the Analysis.
type SourceError struct {
	Pos     Pos
	Message string
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

func errorAt(pos Pos, format string, args ...interface{}) error {
	return SourceError{Pos: pos, Message: fmt.Sprintf(format, args...)}
}
