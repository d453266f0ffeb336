// Copyright (c) 2016 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package isupport

import (
	"fmt"
	"slices"
)

const (
	maxLastArgLength = 400

	/* Modern: "As the maximum number of message parameters to any reply is 15,
	the maximum number of RPL_ISUPPORT tokens that can be advertised is 13."
	<nickname> [up to 13 parameters] <human-readable trailing>
	*/
	maxParameters = 13
)

// List holds a list of ISUPPORT tokens
type List struct {
	Tokens      map[string]string
	CachedReply [][]string
}

// NewList returns a new List
func NewList() *List {
	var il List
	il.Initialize()
	return &il
}

func (il *List) Initialize() {
	il.Tokens = make(map[string]string)
	il.CachedReply = make([][]string, 0)
}

// Add adds an RPL_ISUPPORT token to our internal list
func (il *List) Add(name string, value string) {
	il.Tokens[name] = value
}

// AddNoValue adds an RPL_ISUPPORT token that does not have a value
func (il *List) AddNoValue(name string) {
	il.Tokens[name] = ""
}

// Contains returns whether the list already contains a token
func (il *List) Contains(name string) bool {
	_, ok := il.Tokens[name]
	return ok
}

// getTokenString gets the appropriate string for a token+value.
func getTokenString(name string, value string) string {
	if len(value) == 0 {
		return name
	}

	return fmt.Sprintf("%s=%s", name, value)
}

// RegenerateCachedReply regenerates the cached RPL_ISUPPORT reply
func (il *List) RegenerateCachedReply() (err error) {
	il.CachedReply = make([][]string, 0)
	var length int     // Length of the current cache
	var cache []string // Token list cache

	tokens := make([]string, 0, len(il.Tokens))
	for name := range il.Tokens {
		tokens = append(tokens, name)
	}
	slices.Sort(tokens)

	for _, name := range tokens {
		token := getTokenString(name, il.Tokens[name])
		if token[0] == ':' || len(token) > maxLastArgLength {
			err = fmt.Errorf("bad isupport token (would break protocol): %s", token)
			continue
		}

		if len(cache) == maxParameters || (length+len(token)+1) > maxLastArgLength {
			il.CachedReply = append(il.CachedReply, cache)
			cache = make([]string, 0)
			length = 0
		}

		cache = append(cache, token)
		length += len(token) + 1 // add 1 for the space separating tokens
	}

	if len(cache) > 0 {
		il.CachedReply = append(il.CachedReply, cache)
	}

	return
}
