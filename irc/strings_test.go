// Copyright (c) 2017-2018 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCasefold(t *testing.T) {
	cases := map[string]string{
		"":          "",
		"Alice":     "alice",
		"ALICE":     "alice",
		"#Chat":     "#chat",
		"nick[1]":   "nick{1}",
		"back\\end": "back|end",
		"{}[]|\\":   "{}{}||",
	}
	for input, expected := range cases {
		assert.Equal(t, expected, Casefold(input))
	}
}

func TestCasefoldName(t *testing.T) {
	valid := map[string]string{
		"alice":     "alice",
		"Alice":     "alice",
		"[ace]":     "{ace}",
		"a1_b2":     "a1_b2",
		"ninechars": "ninechars",
	}
	for input, expected := range valid {
		folded, err := CasefoldName(input)
		assert.NoError(t, err, "expected %q to be valid", input)
		assert.Equal(t, expected, folded)
	}

	invalid := []string{
		"",
		"tencharsxx",
		"#alice",
		"&alice",
		"@alice",
		"ali,ce",
		"ali ce",
		"ali\x01ce",
	}
	for _, input := range invalid {
		_, err := CasefoldName(input)
		assert.Error(t, err, "expected %q to be rejected", input)
	}
}

func TestCasefoldChannel(t *testing.T) {
	valid := map[string]string{
		"#chat":    "#chat",
		"#Chat":    "#chat",
		"#c[x]":    "#c{x}",
		"#42-well": "#42-well",
	}
	for input, expected := range valid {
		folded, err := CasefoldChannel(input)
		assert.NoError(t, err, "expected %q to be valid", input)
		assert.Equal(t, expected, folded)
	}

	invalid := []string{
		"",
		"#",
		"chat",
		"&chat",
		"#cha t",
		"#cha,t",
		"#cha\x07t",
		"#cha#t",
		"#cha&t",
	}
	for _, input := range invalid {
		_, err := CasefoldChannel(input)
		assert.Error(t, err, "expected %q to be rejected", input)
	}
}

func TestValidChannelKey(t *testing.T) {
	assert.True(t, validChannelKey("sesame"))
	assert.True(t, validChannelKey("s3s.am-e"))
	assert.False(t, validChannelKey(""))
	assert.False(t, validChannelKey("se,same"))
	assert.False(t, validChannelKey("se\x07same"))
}
