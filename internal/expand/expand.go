// Package expand implements the shell's word expansion: tilde expansion
// and glob expansion against the current directory. Both operate on a
// single word and are pure functions over strings and directory
// listings.
package expand

import (
	"os"
	"sort"
	"strings"
)

// Tilde rewrites a leading "~" in word using the HOME environment
// variable. "~" alone becomes HOME; "~/suffix" becomes HOME+"/suffix".
// If HOME is unset, or the word does not start with "~", or it is some
// other tilde form (e.g. "~user"), the word is returned unchanged.
func Tilde(word string) string {
	if word == "" || word[0] != '~' {
		return word
	}

	home, ok := os.LookupEnv("HOME")
	if !ok {
		return word
	}

	if len(word) == 1 {
		return home
	}

	if word[1] == '/' {
		return home + word[1:]
	}

	return word
}

// HasGlob reports whether word contains the '*' glob metacharacter.
func HasGlob(word string) bool {
	return strings.ContainsRune(word, '*')
}

// Glob expands word against the entries of the current directory. '*'
// matches any (possibly empty) run of characters; every other character
// matches literally. Entries "." and ".." are never candidates; other
// dotfiles are. Matches are returned in sorted order. If word contains no
// '*', or the directory cannot be listed, or nothing matches, []string{word}
// is returned (Bourne-shell fallback semantics, not a glob error).
func Glob(word string) []string {
	if !HasGlob(word) {
		return []string{word}
	}

	entries, err := os.ReadDir(".")
	if err != nil {
		return []string{word}
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if name == "." || name == ".." {
			continue
		}
		if matchPattern(word, name) {
			matches = append(matches, name)
		}
	}

	if len(matches) == 0 {
		return []string{word}
	}

	sort.Strings(matches)
	return matches
}

// matchPattern reports whether pattern (containing literal characters and
// '*' wildcards) matches candidate in full.
func matchPattern(pattern, candidate string) bool {
	return match(pattern, candidate, 0, 0)
}

func match(pattern, candidate string, p, c int) bool {
	if p == len(pattern) {
		return c == len(candidate)
	}
	if c == len(candidate) {
		// Candidate exhausted, pattern isn't: only trailing '*'s can
		// still match the empty remainder.
		for ; p < len(pattern); p++ {
			if pattern[p] != '*' {
				return false
			}
		}
		return true
	}
	if pattern[p] == '*' {
		for i := c; i <= len(candidate); i++ {
			if match(pattern, candidate, p+1, i) {
				return true
			}
		}
		return false
	}
	if pattern[p] != candidate[c] {
		return false
	}
	return match(pattern, candidate, p+1, c+1)
}

// Word applies tilde expansion followed by glob expansion to a single
// lexed word, returning the list of words it expands to (length 1 unless
// a glob matched more than one directory entry).
func Word(word string) []string {
	return Glob(Tilde(word))
}
