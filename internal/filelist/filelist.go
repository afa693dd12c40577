// Package filelist parses the mosaic tool's -i input file list: a text
// file of possibly-quoted, environment-variable-interpolated filenames.
//
// Grounded on getInputFileNamesFromFile and ExpandEnvironment
// (original_source/mrt/mrtmosaic/mosaic.c), re-expressed per SPEC_FULL.md
// §9's design note as explicit string slicing instead of the original's
// in-place pointer arithmetic. The simpler one-path-per-line style seen in
// other_examples' stitchr.go (loadListFile) was considered and rejected:
// the spec requires quoting and $(NAME) expansion that a bare
// bufio.Scanner line reader cannot express.
package filelist

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/usgs-eros/mrtmosaic/internal/mosaicerr"
)

// FilenameLength is the maximum length of a single token, mirroring the
// original's FILENAME_LENGTH constant.
const FilenameLength = 1024

// NumISINTiles is the maximum number of input filenames the engine will
// accept; anything beyond this is silently dropped after a warning.
const NumISINTiles = 360

// EnvLookup resolves an environment variable name to its value. main wires
// this to viper's AutomaticEnv-backed lookup; tests can inject a map-backed
// stub without touching the real process environment.
type EnvLookup func(name string) (string, bool)

// OSEnvLookup resolves against os.LookupEnv.
func OSEnvLookup(name string) (string, bool) { return os.LookupEnv(name) }

// Parse reads r (the contents of the -i file list) and returns the ordered,
// expanded, normalized list of filenames. warn receives any excess-filename
// warning message (nil disables warnings); it is never nil in practice since
// main always wires a logger.
func Parse(r io.Reader, lookup EnvLookup, warn func(string)) ([]string, error) {
	var tokens []string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		lineTokens, err := tokenizeLine(line)
		if err != nil {
			return nil, mosaicerr.Wrap(mosaicerr.SyntaxError, fmt.Sprintf("line %d", lineNo), err)
		}
		tokens = append(tokens, lineTokens...)
	}
	if err := scanner.Err(); err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.ReadError, "reading file list", err)
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		expanded, err := expandEnvironment(tok, lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, normalizeSeparators(expanded))
	}

	if len(out) > NumISINTiles {
		if warn != nil {
			warn(fmt.Sprintf("input file list has %d entries, exceeding the %d-tile limit; dropping the excess", len(out), NumISINTiles))
		}
		out = out[:NumISINTiles]
	}

	return out, nil
}

// ParseFile is a convenience wrapper around Parse that opens path itself.
func ParseFile(path string, lookup EnvLookup, warn func(string)) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, mosaicerr.Wrap(mosaicerr.OpenRead, "opening file list", err).WithPath(path)
	}
	defer f.Close()
	return Parse(f, lookup, warn)
}

// tokenizeLine splits one line of the file list into whitespace- or
// quote-delimited tokens, trimming interior leading/trailing whitespace from
// quoted tokens and skipping quoted-but-entirely-blank tokens, exactly as
// getInputFileNamesFromFile does.
func tokenizeLine(line string) ([]string, error) {
	var tokens []string
	i := 0
	n := len(line)

	for i < n {
		for i < n && isSpace(line[i]) {
			i++
		}
		if i >= n {
			break
		}

		if line[i] == '"' {
			start := i + 1
			end := strings.IndexByte(line[start:], '"')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote")
			}
			body := line[start : start+end]
			body = strings.TrimFunc(body, func(r rune) bool { return r == ' ' || r == '\t' })
			i = start + end + 1
			if body == "" {
				continue
			}
			if len(body) > FilenameLength {
				return nil, fmt.Errorf("token exceeds maximum filename length")
			}
			tokens = append(tokens, body)
			continue
		}

		start := i
		for i < n && !isSpace(line[i]) && line[i] != '"' {
			i++
		}
		tok := line[start:i]
		if len(tok) > FilenameLength {
			return nil, fmt.Errorf("token exceeds maximum filename length")
		}
		tokens = append(tokens, tok)
	}

	return tokens, nil
}

func isSpace(b byte) bool { return b == ' ' || b == '\t' || b == '\r' }

// expandEnvironment repeatedly replaces $(NAME) with the environment value
// for NAME until none remain, mirroring ExpandEnvironment's loop.
func expandEnvironment(tok string, lookup EnvLookup) (string, error) {
	for {
		start := strings.Index(tok, "$(")
		if start < 0 {
			return tok, nil
		}
		end := strings.IndexByte(tok[start+2:], ')')
		if end < 0 {
			return "", mosaicerr.New(mosaicerr.SyntaxError, fmt.Sprintf("unterminated $( in %q", tok))
		}
		name := tok[start+2 : start+2+end]
		val, ok := lookup(name)
		if !ok {
			return "", mosaicerr.New(mosaicerr.SyntaxError, fmt.Sprintf("undefined environment variable %q", name))
		}
		tok = tok[:start] + val + tok[start+2+end+1:]
	}
}

// normalizeSeparators applies the historical path-separator rule: if the
// token contains a ':' (a drive-letter path), every '/' becomes '\';
// otherwise the first separator character encountered (either '/' or '\')
// fixes the separator used for the rest of the token.
func normalizeSeparators(tok string) string {
	if strings.ContainsRune(tok, ':') {
		return strings.ReplaceAll(tok, "/", "\\")
	}

	fixed := byte(0)
	for i := 0; i < len(tok); i++ {
		if tok[i] == '/' || tok[i] == '\\' {
			fixed = tok[i]
			break
		}
	}
	if fixed == 0 {
		return tok
	}

	b := []byte(tok)
	for i := range b {
		if b[i] == '/' || b[i] == '\\' {
			b[i] = fixed
		}
	}
	return string(b)
}
