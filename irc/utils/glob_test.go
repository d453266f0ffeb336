// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package utils

import (
	"regexp"
	"testing"
)

func globMustCompile(glob string) *regexp.Regexp {
	re, err := CompileGlob(glob)
	if err != nil {
		panic(err)
	}
	return re
}

func assertMatches(glob, str string, match bool, t *testing.T) {
	re := globMustCompile(glob)
	if re.MatchString(str) != match {
		t.Errorf("should %s match %s? %t, but got %t instead", glob, str, match, !match)
	}
}

func TestGlob(t *testing.T) {
	assertMatches("alice", "alice", true, t)
	assertMatches("alice", "alicia", false, t)
	assertMatches("*", "", true, t)
	assertMatches("*", "anything", true, t)
	assertMatches("", "", true, t)
	assertMatches("", "x", false, t)

	assertMatches("c?b", "cab", true, t)
	assertMatches("c?b", "cub", true, t)
	assertMatches("c?b", "cb", false, t)
	assertMatches("c?b", "cube", false, t)
	assertMatches("?*", "cube", true, t)
	assertMatches("?*", "", false, t)

	// hostmask components
	assertMatches("*.example.com", "tor.example.com", true, t)
	assertMatches("*.example.com", "example.com", false, t)
	assertMatches("192.168.0.?", "192.168.0.5", true, t)
	assertMatches("192.168.0.?", "192.168.0.55", false, t)

	// metacharacters in the glob are literal
	assertMatches("a.c", "abc", false, t)
	assertMatches("a[b]c", "a[b]c", true, t)
	assertMatches("a[b]c", "abc", false, t)
}

func BenchmarkGlob(b *testing.B) {
	g := globMustCompile("*.example.com")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		g.MatchString("www.example.com")
	}
}

func BenchmarkGlobCompilation(b *testing.B) {
	for i := 0; i < b.N; i++ {
		CompileGlob("*.example.com")
	}
}
