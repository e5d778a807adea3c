// Package skeleton defines the structural summary types Raido extracts from
// source files: exports, imports, classes, and free functions, without bodies.
package skeleton

// Symbol kinds.
const (
	KindFunction  = "function"
	KindClass     = "class"
	KindVariable  = "variable"
	KindType      = "type"
	KindInterface = "interface"
	KindEnum      = "enum"
)

// Skeleton is the structural summary of one source file. A skeleton is
// immutable once produced; a re-parse always builds a new value.
type Skeleton struct {
	Path        string            `json:"path"`
	Language    string            `json:"language"`
	Exports     []ExportedSymbol  `json:"exports,omitempty"`
	Imports     []ImportStatement `json:"imports,omitempty"`
	Classes     []ClassInfo       `json:"classes,omitempty"`
	Functions   []FunctionInfo    `json:"functions,omitempty"`
	ParseErrors []string          `json:"parse_errors,omitempty"`
}

// ExportedSymbol is one symbol exported from a file.
type ExportedSymbol struct {
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	Line      int    `json:"line"`
	IsDefault bool   `json:"is_default,omitempty"`
}

// ImportStatement is one import in source order. Resolved holds the local
// file paths the specifier maps to, filled in by the mapper; empty for
// external packages.
type ImportStatement struct {
	Source   string   `json:"source"`
	Resolved []string `json:"resolved,omitempty"`
	TypeOnly bool     `json:"type_only,omitempty"`
	Dynamic  bool     `json:"dynamic,omitempty"`
	Line     int      `json:"line"`
}

// ClassInfo describes a class declaration.
type ClassInfo struct {
	Name       string       `json:"name"`
	Line       int          `json:"line"`
	Extends    string       `json:"extends,omitempty"`
	Implements []string     `json:"implements,omitempty"`
	Methods    []MethodInfo `json:"methods,omitempty"`
	Properties []string     `json:"properties,omitempty"`
}

// MethodInfo describes a method inside a class body.
type MethodInfo struct {
	Name   string `json:"name"`
	Line   int    `json:"line"`
	Async  bool   `json:"async,omitempty"`
	Static bool   `json:"static,omitempty"`
}

// FunctionInfo describes a free function.
type FunctionInfo struct {
	Name     string `json:"name"`
	Line     int    `json:"line"`
	Async    bool   `json:"async,omitempty"`
	Exported bool   `json:"exported,omitempty"`
}
