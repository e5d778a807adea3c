// Package parser extracts skeletons (exports, imports, classes, functions)
// from TypeScript and JavaScript sources using line-oriented regex scanning.
// The extraction is deliberately lossy: it never fails on malformed code,
// it records what it could not understand in ParseErrors instead.
package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/starford/raido/internal/apperr"
	"github.com/starford/raido/internal/skeleton"
)

var languages = map[string]string{
	".ts":  "typescript",
	".mts": "typescript",
	".cts": "typescript",
	".tsx": "tsx",
	".js":  "javascript",
	".mjs": "javascript",
	".cjs": "javascript",
	".jsx": "jsx",
}

var (
	importFromRe   = regexp.MustCompile(`^\s*import\s+(type\s+)?[\w*{},$\s]+?\s+from\s+['"]([^'"]+)['"]`)
	importBareRe   = regexp.MustCompile(`^\s*import\s+['"]([^'"]+)['"]`)
	exportFromRe   = regexp.MustCompile(`^\s*export\s+(type\s+)?(?:\*|\{[^}]*\})(?:\s+as\s+\w+)?\s+from\s+['"]([^'"]+)['"]`)
	dynamicRe      = regexp.MustCompile(`\bimport\(\s*['"]([^'"]+)['"]\s*\)`)
	requireRe      = regexp.MustCompile(`\brequire\(\s*['"]([^'"]+)['"]\s*\)`)
	classRe        = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(?:abstract\s+)?class\s+(\w+)(?:\s+extends\s+([\w.]+))?(?:\s+implements\s+([\w.,\s]+?))?\s*\{`)
	functionRe     = regexp.MustCompile(`^\s*(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s*(\w+)`)
	arrowRe        = regexp.MustCompile(`^\s*(export\s+)?const\s+(\w+)\s*(?::[^=]+?)?=\s*(async\s+)?(?:\([^)]*\)|\w+)\s*(?::[^=]+?)?=>`)
	exportVarRe    = regexp.MustCompile(`^\s*export\s+(?:const|let|var)\s+(\w+)`)
	exportTypeRe   = regexp.MustCompile(`^\s*export\s+(?:declare\s+)?(type|interface|enum)\s+(\w+)`)
	exportDefRe    = regexp.MustCompile(`^\s*export\s+default\s+(\w+)\s*;?\s*$`)
	exportListRe   = regexp.MustCompile(`^\s*export\s*\{([^}]*)\}\s*;?\s*$`)
	methodRe       = regexp.MustCompile(`^\s+(static\s+)?(async\s+)?(?:get\s+|set\s+)?(\w+)\s*\([^=]*$`)
	propRe         = regexp.MustCompile(`^\s+(?:(?:public|private|protected|readonly|static)\s+)*(\w+)\s*[?!]?\s*[:=]`)
	methodKeywords = map[string]struct{}{
		"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {}, "return": {}, "function": {}, "new": {},
	}
)

// Language returns the language tag for a path, or "" if unsupported.
func Language(path string) string {
	return languages[strings.ToLower(filepath.Ext(path))]
}

// Supported reports whether the file extension has a registered language.
func Supported(path string) bool {
	return Language(path) != ""
}

// Parse reads and parses the file at path. Unsupported languages return
// apperr.ErrUnsupported, unreadable files return the read error. Files over
// maxSize (when positive) produce a skeleton shell carrying a parse error,
// distinguishing "deliberately skipped" from "no information".
func Parse(path string, maxSize int64) (*skeleton.Skeleton, error) {
	lang := Language(path)
	if lang == "" {
		return nil, apperr.ErrUnsupported
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("parser: stat %s: %w", path, err)
	}
	if maxSize > 0 && info.Size() > maxSize {
		return &skeleton.Skeleton{
			Path:        path,
			Language:    lang,
			ParseErrors: []string{fmt.Sprintf("file size %d exceeds limit %d, skipped", info.Size(), maxSize)},
		}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parser: read %s: %w", path, err)
	}
	return ParseBytes(path, lang, data), nil
}

// ParseBytes extracts a skeleton from raw source bytes.
func ParseBytes(path, lang string, data []byte) *skeleton.Skeleton {
	sk := &skeleton.Skeleton{Path: path, Language: lang}

	var cur *skeleton.ClassInfo
	classDepth := 0
	depth := 0

	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		n := i + 1
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") {
			depth += braceDelta(line)
			continue
		}

		scanImports(sk, line, n)

		if cur != nil {
			scanClassBody(cur, line, n)
		}

		if m := classRe.FindStringSubmatch(line); m != nil && cur == nil {
			cls := skeleton.ClassInfo{Name: m[3], Line: n, Extends: m[4], Implements: splitNames(m[5])}
			sk.Classes = append(sk.Classes, cls)
			cur = &sk.Classes[len(sk.Classes)-1]
			classDepth = depth
			if m[1] != "" {
				sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{
					Name: m[3], Kind: skeleton.KindClass, Line: n, IsDefault: m[2] != "",
				})
			}
		} else {
			scanDeclarations(sk, line, n, cur != nil)
		}

		depth += braceDelta(line)
		if cur != nil && depth <= classDepth {
			cur = nil
		}
	}

	if cur != nil {
		sk.ParseErrors = append(sk.ParseErrors, fmt.Sprintf("class %s: unterminated body", cur.Name))
	}
	return sk
}

// scanImports records static, bare, re-export, dynamic, and require imports.
func scanImports(sk *skeleton.Skeleton, line string, n int) {
	switch {
	case importFromRe.MatchString(line):
		m := importFromRe.FindStringSubmatch(line)
		sk.Imports = append(sk.Imports, skeleton.ImportStatement{Source: m[2], TypeOnly: m[1] != "", Line: n})
		return
	case importBareRe.MatchString(line):
		m := importBareRe.FindStringSubmatch(line)
		sk.Imports = append(sk.Imports, skeleton.ImportStatement{Source: m[1], Line: n})
		return
	case exportFromRe.MatchString(line):
		m := exportFromRe.FindStringSubmatch(line)
		sk.Imports = append(sk.Imports, skeleton.ImportStatement{Source: m[2], TypeOnly: m[1] != "", Line: n})
		return
	}
	for _, m := range dynamicRe.FindAllStringSubmatch(line, -1) {
		sk.Imports = append(sk.Imports, skeleton.ImportStatement{Source: m[1], Dynamic: true, Line: n})
	}
	for _, m := range requireRe.FindAllStringSubmatch(line, -1) {
		sk.Imports = append(sk.Imports, skeleton.ImportStatement{Source: m[1], Line: n})
	}
}

// scanDeclarations records functions, exported variables, types, and export
// lists found outside class bodies. inClass suppresses free-function capture
// so methods are not double-counted.
func scanDeclarations(sk *skeleton.Skeleton, line string, n int, inClass bool) {
	if inClass {
		return
	}

	if m := functionRe.FindStringSubmatch(line); m != nil {
		exported := m[1] != ""
		sk.Functions = append(sk.Functions, skeleton.FunctionInfo{Name: m[4], Line: n, Async: m[3] != "", Exported: exported})
		if exported {
			sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{
				Name: m[4], Kind: skeleton.KindFunction, Line: n, IsDefault: m[2] != "",
			})
		}
		return
	}
	if m := arrowRe.FindStringSubmatch(line); m != nil {
		exported := m[1] != ""
		sk.Functions = append(sk.Functions, skeleton.FunctionInfo{Name: m[2], Line: n, Async: m[3] != "", Exported: exported})
		if exported {
			sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{Name: m[2], Kind: skeleton.KindFunction, Line: n})
		}
		return
	}
	if m := exportTypeRe.FindStringSubmatch(line); m != nil {
		kind := skeleton.KindType
		switch m[1] {
		case "interface":
			kind = skeleton.KindInterface
		case "enum":
			kind = skeleton.KindEnum
		}
		sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{Name: m[2], Kind: kind, Line: n})
		return
	}
	if m := exportVarRe.FindStringSubmatch(line); m != nil {
		sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{Name: m[1], Kind: skeleton.KindVariable, Line: n})
		return
	}
	if m := exportDefRe.FindStringSubmatch(line); m != nil {
		sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{Name: m[1], Kind: skeleton.KindVariable, Line: n, IsDefault: true})
		return
	}
	if m := exportListRe.FindStringSubmatch(line); m != nil {
		for _, name := range splitNames(m[1]) {
			// "a as b" exports b.
			if i := strings.LastIndex(name, " as "); i >= 0 {
				name = strings.TrimSpace(name[i+4:])
			}
			sk.Exports = append(sk.Exports, skeleton.ExportedSymbol{Name: name, Kind: skeleton.KindVariable, Line: n})
		}
	}
}

// scanClassBody records methods and property names at class-body level.
func scanClassBody(cls *skeleton.ClassInfo, line string, n int) {
	if m := methodRe.FindStringSubmatch(line); m != nil {
		name := m[3]
		if _, kw := methodKeywords[name]; !kw {
			cls.Methods = append(cls.Methods, skeleton.MethodInfo{Name: name, Line: n, Async: m[2] != "", Static: m[1] != ""})
			return
		}
	}
	if m := propRe.FindStringSubmatch(line); m != nil {
		cls.Properties = append(cls.Properties, m[1])
	}
}

func splitNames(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// braceDelta counts net brace nesting on a line. String literals are not
// tracked; the heuristic is good enough for skeleton extraction.
func braceDelta(line string) int {
	return strings.Count(line, "{") - strings.Count(line, "}")
}
