package mcpserver

// SkeletonFormatContract describes the skeleton JSON shape returned by the
// get_skeleton tool, for LLM consumers.
const SkeletonFormatContract = `# Raido Skeleton Format

get_skeleton returns a JSON document summarizing one source file without
function bodies.

## Shape

` + "```" + `json
{
  "path": "/abs/path/src/app.ts",
  "language": "typescript",
  "hash": "sha256-hex-of-file-content",
  "skeleton": {
    "path": "/abs/path/src/app.ts",
    "language": "typescript",
    "exports": [
      {"name": "App", "kind": "class", "line": 10},
      {"name": "start", "kind": "function", "line": 42, "is_default": true}
    ],
    "imports": [
      {"source": "./config", "resolved": ["/abs/path/src/config.ts"], "line": 1},
      {"source": "react", "line": 2},
      {"source": "./heavy", "dynamic": true, "line": 30},
      {"source": "./types", "type_only": true, "line": 3}
    ],
    "classes": [
      {
        "name": "App",
        "line": 10,
        "extends": "Base",
        "implements": ["Runnable"],
        "methods": [{"name": "run", "line": 12, "async": true}],
        "properties": ["config"]
      }
    ],
    "functions": [{"name": "start", "line": 42, "async": true, "exported": true}],
    "parse_errors": []
  },
  "imports": ["/abs/path/src/config.ts"],
  "importers": ["/abs/path/src/main.ts"]
}
` + "```" + `

## Rules

1. **Symbol kinds** are one of: function, class, variable, type, interface, enum.
2. **imports[].resolved** lists local workspace files only; bare package
   specifiers (e.g. "react") are never resolved.
3. **imports / importers** at the top level are the file's direct graph
   neighbors: what it imports and what imports it.
4. **parse_errors** lists constructs the extractor could not understand; the
   rest of the skeleton is still valid.
5. Extraction is regex-based and lossy. Line numbers are 1-based and
   reliable; nested or heavily obfuscated declarations may be missed.
6. Results are cached; repeated calls are cheap until the file content
   changes. Use refresh_skeleton to force a re-parse.
`
