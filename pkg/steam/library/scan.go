// SteamLibrarian
// Copyright (c) 2026 The SteamLibrarian Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of SteamLibrarian.
//
// SteamLibrarian is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// SteamLibrarian is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with SteamLibrarian.  If not, see <http://www.gnu.org/licenses/>.

package library

import (
	"regexp"
	"strings"
)

// normalizeVDFKeys recursively lowercases all keys in a map[string]any tree.
// Valve's VDF format is case-insensitive, but Go maps use exact string
// matching. This normalizes keys at parse time so all lookups can use
// lowercase consistently.
func normalizeVDFKeys(m map[string]any) map[string]any {
	result := make(map[string]any, len(m))
	for k, v := range m {
		if nested, ok := v.(map[string]any); ok {
			v = normalizeVDFKeys(nested)
		}
		result[strings.ToLower(k)] = v
	}
	return result
}

// libraryPathRe matches "path" "<value>" pairs in libraryfolders.vdf.
// The parser package returns an unordered map, so ordered extraction has
// to go back to the raw text.
var libraryPathRe = regexp.MustCompile(`(?i)"path"\s*"((?:\\.|[^"\\])*)"`)

// extractLibraryPaths returns every "path" value in the library list, in
// the order they appear in the file, with escape sequences resolved.
func extractLibraryPaths(data string) []string {
	matches := libraryPathRe.FindAllStringSubmatch(data, -1)
	paths := make([]string, 0, len(matches))
	for _, m := range matches {
		p := unescapeVDFString(m[1])
		if p != "" {
			paths = append(paths, p)
		}
	}
	return paths
}

// vdfFieldRe builds a matcher for "key" "value" pairs, ignoring case and
// surrounding structure.
func vdfFieldRe(key string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)"` + regexp.QuoteMeta(key) + `"\s*"((?:\\.|[^"\\])*)"`)
}

// scanStringField finds the first "key" "value" pair for the given key.
// Returns false if absent.
func scanStringField(data, key string) (string, bool) {
	m := vdfFieldRe(key).FindStringSubmatch(data)
	if m == nil {
		return "", false
	}
	return unescapeVDFString(m[1]), true
}

// scanStringFields finds every "key" "value" pair for the given key, in
// the order they appear. Empty values are dropped.
func scanStringFields(data, key string) []string {
	matches := vdfFieldRe(key).FindAllStringSubmatch(data, -1)
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if v := unescapeVDFString(m[1]); v != "" {
			out = append(out, v)
		}
	}
	return out
}

// unescapeVDFString resolves VDF string escapes. Windows library paths
// are stored with doubled backslashes ("C:\\\\Games") and must come out
// with single separators.
func unescapeVDFString(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 >= len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case '\\':
			b.WriteByte('\\')
		case '"':
			b.WriteByte('"')
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		default:
			b.WriteByte('\\')
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
