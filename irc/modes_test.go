// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelModeFlags(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("JOIN #test"))
	server.handleLine(bob, []byte("JOIN #test"))
	collect(t, alice, aliceConn)
	collect(t, bob, bobConn)

	server.handleLine(alice, []byte("MODE #test +imtn"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +imtn")
	requireLine(t, collect(t, bob, bobConn), ":alice MODE #test +imtn")

	channel := server.channels["#test"]
	require.True(t, channel.inviteOnly)
	require.True(t, channel.moderated)
	require.True(t, channel.topicLocked)
	require.True(t, channel.noExternal)

	// setting a flag that is already set is not echoed
	server.handleLine(alice, []byte("MODE #test +i"))
	requireNoLine(t, collect(t, alice, aliceConn), "MODE #test")

	server.handleLine(alice, []byte("MODE #test -i+t"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test -i")
	require.False(t, channel.inviteOnly)

	server.handleLine(alice, []byte("MODE #test +z"))
	requireLine(t, collect(t, alice, aliceConn), " 472 alice z :is unknown mode char to me")

	// a non-operator gets a single rejection for the whole string
	server.handleLine(bob, []byte("MODE #test +im-t"))
	lines := collect(t, bob, bobConn)
	assert.Equal(t, 1, countMatching(lines, " 482 bob #test :You're not channel operator"))
	require.True(t, channel.moderated)

	server.handleLine(alice, []byte("MODE #ghost +i"))
	requireLine(t, collect(t, alice, aliceConn), " 403 alice #ghost :No such channel")
}

func TestChannelKey(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("JOIN #test"))
	collect(t, alice, aliceConn)

	server.handleLine(alice, []byte("MODE #test +k"))
	requireLine(t, collect(t, alice, aliceConn), " 461 alice #test :Not enough parameters")

	server.handleLine(alice, []byte("MODE #test +k a,b"))
	requireLine(t, collect(t, alice, aliceConn), " 525 alice #test :Key is not well-formed")

	server.handleLine(alice, []byte("MODE #test +k sesame"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +k sesame")

	server.handleLine(alice, []byte("MODE #test +k other"))
	requireLine(t, collect(t, alice, aliceConn), " 467 alice #test :Channel key already set")

	server.handleLine(bob, []byte("JOIN #test"))
	requireLine(t, collect(t, bob, bobConn), " 475 bob #test :Cannot join channel (+k)")
	server.handleLine(bob, []byte("JOIN #test wrong"))
	requireLine(t, collect(t, bob, bobConn), " 475 bob #test :Cannot join channel (+k)")
	server.handleLine(bob, []byte("JOIN #test sesame"))
	requireLine(t, collect(t, bob, bobConn), " 353 bob = #test :@alice bob")

	// clearing requires the current key; a mismatch no-ops silently
	server.handleLine(alice, []byte("MODE #test -k wrong"))
	requireNoLine(t, collect(t, alice, aliceConn), "MODE #test")
	require.Equal(t, "sesame", server.channels["#test"].key)

	server.handleLine(alice, []byte("MODE #test -k sesame"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test -k")
	require.Equal(t, "", server.channels["#test"].key)
}

func TestChannelLimit(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("JOIN #test"))
	collect(t, alice, aliceConn)

	server.handleLine(alice, []byte("MODE #test +l"))
	requireLine(t, collect(t, alice, aliceConn), " 461 alice #test :Not enough parameters")

	server.handleLine(alice, []byte("MODE #test +l 1"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +l 1")

	server.handleLine(bob, []byte("JOIN #test"))
	requireLine(t, collect(t, bob, bobConn), " 471 bob #test :Cannot join channel (+l)")

	// a malformed limit resets the channel to unlimited
	server.handleLine(alice, []byte("MODE #test +l many"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +l 0")
	require.Equal(t, 0, server.channels["#test"].userLimit)

	server.handleLine(bob, []byte("JOIN #test"))
	requireLine(t, collect(t, bob, bobConn), " 353 bob ")

	server.handleLine(alice, []byte("MODE #test +l 5"))
	collect(t, alice, aliceConn)
	server.handleLine(alice, []byte("MODE #test -l"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test -l")

	server.handleLine(alice, []byte("MODE #test -l"))
	requireNoLine(t, collect(t, alice, aliceConn), "MODE #test")
}

func TestChannelOperatorAndVoice(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("JOIN #test"))
	server.handleLine(bob, []byte("JOIN #test"))
	collect(t, alice, aliceConn)
	collect(t, bob, bobConn)

	server.handleLine(alice, []byte("MODE #test +m"))
	collect(t, alice, aliceConn)
	collect(t, bob, bobConn)

	// moderated channels silence members without voice or ops
	server.handleLine(bob, []byte("PRIVMSG #test :me me me"))
	requireLine(t, collect(t, bob, bobConn), " 404 bob #test :Cannot send to channel")

	server.handleLine(alice, []byte("MODE #test +v"))
	requireLine(t, collect(t, alice, aliceConn), " 461 alice MODE +/-v :Not enough parameters")

	server.handleLine(alice, []byte("MODE #test +v ghost"))
	requireLine(t, collect(t, alice, aliceConn), " 401 alice ghost :No such nick")

	server.handleLine(alice, []byte("MODE #test +v bob"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +v bob")

	server.handleLine(bob, []byte("PRIVMSG #test :me me me"))
	requireLine(t, collect(t, alice, aliceConn), ":bob!bob@localhost PRIVMSG #test :me me me")

	// a missing +o argument is ignored without complaint
	server.handleLine(alice, []byte("MODE #test +o"))
	require.Empty(t, collect(t, alice, aliceConn))

	server.handleLine(alice, []byte("MODE #test +o bob"))
	requireLine(t, collect(t, bob, bobConn), ":alice MODE #test +o bob")
	require.True(t, server.channels["#test"].isOperator(bob))

	// a promoted operator can demote the founder
	server.handleLine(bob, []byte("MODE #test -o alice"))
	requireLine(t, collect(t, alice, aliceConn), ":bob MODE #test -o alice")
	require.False(t, server.channels["#test"].isOperator(alice))

	server.handleLine(alice, []byte("MODE #test +t"))
	requireLine(t, collect(t, alice, aliceConn), " 482 alice #test :You're not channel operator")
}

func TestBanModes(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")
	eve, eveConn := registerTestClient(t, server, "eve")

	server.handleLine(alice, []byte("JOIN #test"))
	collect(t, alice, aliceConn)

	// an empty ban list still gets its terminator
	server.handleLine(alice, []byte("MODE #test +b"))
	lines := collect(t, alice, aliceConn)
	requireLine(t, lines, " 368 alice #test :End of Channel Ban List")
	requireNoLine(t, lines, " 367 ")

	// a bare nick glob expands to a full mask triple
	server.handleLine(alice, []byte("MODE #test +b ev*"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test +b ev*!*@*")

	server.handleLine(eve, []byte("JOIN #test"))
	requireLine(t, collect(t, eve, eveConn), " 474 eve #test :Cannot join channel (+b)")
	server.handleLine(eve, []byte("PRIVMSG #test :let me in"))
	requireLine(t, collect(t, eve, eveConn), " 404 eve #test :Cannot send to channel")

	server.handleLine(bob, []byte("JOIN #test"))
	requireLine(t, collect(t, bob, bobConn), " 353 bob ")

	// adding the same triple again changes nothing
	server.handleLine(alice, []byte("MODE #test +b ev*!*@*"))
	requireNoLine(t, collect(t, alice, aliceConn), "MODE #test")
	require.Len(t, server.channels["#test"].bans, 1)

	server.handleLine(alice, []byte("MODE #test b"))
	lines = collect(t, alice, aliceConn)
	requireLine(t, lines, " 367 alice #test ev*!*@* alice")
	requireLine(t, lines, " 368 alice #test :End of Channel Ban List")

	server.handleLine(alice, []byte("MODE #test -b *!*@*"))
	requireLine(t, collect(t, alice, aliceConn), ":alice MODE #test -b *!*@*")
	require.Empty(t, server.channels["#test"].bans)

	server.handleLine(eve, []byte("JOIN #test"))
	requireLine(t, collect(t, eve, eveConn), " 353 eve ")
}

func TestUserModes(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("MODE alice"))
	requireLine(t, collect(t, alice, aliceConn), " 221 alice +")

	server.handleLine(alice, []byte("MODE alice +s"))
	requireLine(t, collect(t, alice, aliceConn), ":ircserv MODE alice +s")
	require.True(t, alice.serverNotices)

	server.handleLine(alice, []byte("MODE alice +x"))
	requireLine(t, collect(t, alice, aliceConn), " 501 alice :Unknown MODE flag")

	server.handleLine(alice, []byte("MODE bob +s"))
	requireLine(t, collect(t, alice, aliceConn), " 502 alice :Can't change mode for other users")

	server.handleLine(alice, []byte("MODE ghost +s"))
	requireLine(t, collect(t, alice, aliceConn), " 401 alice ghost :No such nick")

	// operator status can only be dropped here, never granted
	server.handleLine(alice, []byte("MODE alice +o"))
	require.False(t, alice.isOperator)

	alice.isOperator = true
	server.handleLine(alice, []byte("MODE alice"))
	requireLine(t, collect(t, alice, aliceConn), " 221 alice +os")

	server.handleLine(alice, []byte("MODE alice -o"))
	requireLine(t, collect(t, alice, aliceConn), ":ircserv MODE alice -o")
	require.False(t, alice.isOperator)
}

func TestChannelModeQuery(t *testing.T) {
	server := newTestServer(t)
	alice, aliceConn := registerTestClient(t, server, "alice")
	bob, bobConn := registerTestClient(t, server, "bob")

	server.handleLine(alice, []byte("JOIN #test"))
	server.handleLine(alice, []byte("MODE #test +tn"))
	server.handleLine(alice, []byte("MODE #test +l 5"))
	server.handleLine(alice, []byte("MODE #test +k sesame"))
	collect(t, alice, aliceConn)

	server.handleLine(alice, []byte("MODE #test"))
	lines := collect(t, alice, aliceConn)
	requireLine(t, lines, " 324 alice #test +tnlk 5 sesame")
	requireLine(t, lines, " 329 alice #test ")

	// a non-operator consuming arguments is rejected exactly once
	server.handleLine(bob, []byte("MODE #test +kb x y"))
	lines = collect(t, bob, bobConn)
	assert.Equal(t, 1, countMatching(lines, " 482 bob #test"))
}
