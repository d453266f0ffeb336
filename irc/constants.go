// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

const (
	// SemVer is the semantic version of the server software.
	SemVer = "1.0.0"
)

var (
	// Ver is the full version string, updated at build time for releases.
	Ver = SemVer
)

const (
	// maxLineLen is the maximum length of a protocol line, per RFC 1459.
	maxLineLen = 512

	// maxNickLen is the longest nickname we accept.
	maxNickLen = 9

	// maxChannelLen is the longest channel name we accept.
	maxChannelLen = 200

	// maxChannelsPerClient is how many channels a single client may join.
	maxChannelsPerClient = 10

	// maxClients is how many simultaneous connections we accept.
	maxClients = 10
)
