// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2017-2018 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"strings"
)

const (
	casemappingName = "rfc1459"
)

// Casefold returns the canonical form of a name under the rfc1459
// casemapping: ASCII uppercase folds to lowercase, and { } | are the
// lowercase equivalents of [ ] \ respectively.
func Casefold(str string) string {
	var builder strings.Builder
	builder.Grow(len(str))
	for i := 0; i < len(str); i++ {
		chr := str[i]
		switch {
		case 'A' <= chr && chr <= 'Z':
			chr += 'a' - 'A'
		case chr == '[':
			chr = '{'
		case chr == ']':
			chr = '}'
		case chr == '\\':
			chr = '|'
		}
		builder.WriteByte(chr)
	}
	return builder.String()
}

// CasefoldName returns the canonical form of a nickname, after validating it.
func CasefoldName(name string) (string, error) {
	if len(name) == 0 {
		return "", errStringIsEmpty
	}
	if len(name) > maxNickLen {
		return "", errNameTooLong
	}

	// # and & are channel prefixes, @ is a membership prefix in NAMES,
	// and , is the list separator
	switch name[0] {
	case '#', '&', '@':
		return "", errInvalidCharacter
	}
	for i := 0; i < len(name); i++ {
		chr := name[i]
		if chr == ',' || chr <= ' ' || chr == 0x7f {
			return "", errInvalidCharacter
		}
	}

	return Casefold(name), nil
}

// CasefoldChannel returns the canonical form of a channel name, after
// validating it: a leading #, at most maxChannelLen bytes, and none of
// space, comma, ^G, or a second channel prefix.
func CasefoldChannel(name string) (string, error) {
	if len(name) < 2 || len(name) > maxChannelLen {
		return "", errInvalidChannelName
	}
	if name[0] != '#' {
		return "", errInvalidChannelName
	}
	for i := 1; i < len(name); i++ {
		switch name[i] {
		case ' ', ',', 0x07, '#', '&':
			return "", errInvalidChannelName
		}
	}
	return Casefold(name), nil
}

// validChannelKey reports whether key may be set as a channel key.
func validChannelKey(key string) bool {
	if len(key) == 0 {
		return false
	}
	for i := 0; i < len(key); i++ {
		switch key[i] {
		case ' ', ',', 0x07:
			return false
		}
	}
	return true
}
