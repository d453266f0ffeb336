// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/lschrafstetter/42-ft-irc/irc/utils"
)

// BanMask is one entry of a channel ban list: a nick!user@host glob triple.
// Duplicates are suppressed by exact-triple comparison, not by overlap.
type BanMask struct {
	NickPattern string
	UserPattern string
	HostPattern string
	SetBy       string
	SetAt       time.Time

	nickRe *regexp.Regexp
	userRe *regexp.Regexp
	hostRe *regexp.Regexp
}

// String renders the mask back into nick!user@host form.
func (mask *BanMask) String() string {
	return mask.NickPattern + "!" + mask.UserPattern + "@" + mask.HostPattern
}

// parseBanMask splits a ban argument into its triple. A missing ! makes the
// whole token the nickname pattern; missing components default to *.
func parseBanMask(arg string) (nickPat, userPat, hostPat string) {
	nickPat, userPat, hostPat = arg, "*", "*"
	if bang := strings.IndexByte(arg, '!'); bang != -1 {
		nickPat = arg[:bang]
		rest := arg[bang+1:]
		userPat = rest
		if at := strings.IndexByte(rest, '@'); at != -1 {
			userPat = rest[:at]
			hostPat = rest[at+1:]
		}
	}
	if nickPat == "" {
		nickPat = "*"
	}
	if userPat == "" {
		userPat = "*"
	}
	if hostPat == "" {
		hostPat = "*"
	}
	return
}

// NewBanMask parses and compiles a ban mask argument.
func NewBanMask(arg string, setBy string) (mask BanMask, err error) {
	nickPat, userPat, hostPat := parseBanMask(arg)
	mask = BanMask{
		NickPattern: nickPat,
		UserPattern: userPat,
		HostPattern: hostPat,
		SetBy:       setBy,
		SetAt:       time.Now(),
	}
	if mask.nickRe, err = utils.CompileGlob(Casefold(nickPat)); err != nil {
		return
	}
	if mask.userRe, err = utils.CompileGlob(Casefold(userPat)); err != nil {
		return
	}
	mask.hostRe, err = utils.CompileGlob(Casefold(hostPat))
	return
}

// Matches reports whether a nick/user/host triple is covered by this mask.
func (mask *BanMask) Matches(nick, username, hostname string) bool {
	return mask.nickRe.MatchString(Casefold(nick)) &&
		mask.userRe.MatchString(Casefold(username)) &&
		mask.hostRe.MatchString(Casefold(hostname))
}

// Channel is a chat room: ordered membership plus the moderation model
// (operators, speakers, bans, invites, key, limit, flags, topic).
type Channel struct {
	server     *Server
	name       string
	nameFolded string
	createdAt  time.Time

	members   []*Client
	operators utils.HashSet[string]
	speakers  utils.HashSet[string]
	invited   utils.HashSet[string]
	bans      []BanMask

	key       string
	userLimit int

	inviteOnly  bool
	topicLocked bool
	moderated   bool
	noExternal  bool

	topic       string
	topicSetter string
	topicSetAt  time.Time
}

// NewChannel creates a channel with the founder as sole member and operator.
func NewChannel(server *Server, name string, nameFolded string, founder *Client) *Channel {
	channel := &Channel{
		server:     server,
		name:       name,
		nameFolded: nameFolded,
		createdAt:  time.Now(),
		operators:  make(utils.HashSet[string]),
		speakers:   make(utils.HashSet[string]),
		invited:    make(utils.HashSet[string]),
	}
	channel.members = append(channel.members, founder)
	channel.operators.Add(founder.nickFolded)
	return channel
}

func (channel *Channel) hasMember(client *Client) bool {
	for _, member := range channel.members {
		if member == client {
			return true
		}
	}
	return false
}

func (channel *Channel) memberByNick(nickFolded string) *Client {
	for _, member := range channel.members {
		if member.nickFolded == nickFolded {
			return member
		}
	}
	return nil
}

func (channel *Channel) isOperator(client *Client) bool {
	return channel.operators.Has(client.nickFolded)
}

func (channel *Channel) isSpeaker(client *Client) bool {
	return channel.speakers.Has(client.nickFolded)
}

func (channel *Channel) addMember(client *Client) {
	channel.members = append(channel.members, client)
}

// removeMember takes a client out of the membership list, cascading out of
// the operator and speaker sets. Invitations are not revoked.
func (channel *Channel) removeMember(client *Client) {
	for i, member := range channel.members {
		if member == client {
			channel.members = append(channel.members[:i], channel.members[i+1:]...)
			break
		}
	}
	channel.operators.Remove(client.nickFolded)
	channel.speakers.Remove(client.nickFolded)
}

// renameMember rewrites a nickname inside the operator and speaker sets
// after a NICK change. The invite list deliberately keeps the old name.
func (channel *Channel) renameMember(oldFolded, newFolded string) {
	if channel.operators.Has(oldFolded) {
		channel.operators.Remove(oldFolded)
		channel.operators.Add(newFolded)
	}
	if channel.speakers.Has(oldFolded) {
		channel.speakers.Remove(oldFolded)
		channel.speakers.Add(newFolded)
	}
}

// isBanned reports whether any ban mask covers the client's mask triple.
func (channel *Channel) isBanned(client *Client) bool {
	for i := range channel.bans {
		if channel.bans[i].Matches(client.Nick(), client.username, client.hostname) {
			return true
		}
	}
	return false
}

// addBan appends a ban mask, rejecting exact duplicate triples.
func (channel *Channel) addBan(arg string, setBy string) (mask BanMask, err error) {
	mask, err = NewBanMask(arg, setBy)
	if err != nil {
		return
	}
	for i := range channel.bans {
		existing := &channel.bans[i]
		if Casefold(existing.NickPattern) == Casefold(mask.NickPattern) &&
			Casefold(existing.UserPattern) == Casefold(mask.UserPattern) &&
			Casefold(existing.HostPattern) == Casefold(mask.HostPattern) {
			return mask, errBanMaskDuplicate
		}
	}
	channel.bans = append(channel.bans, mask)
	return
}

// removeBans deletes every stored mask whose components are each covered by
// the corresponding component of the argument, treated as a glob.
func (channel *Channel) removeBans(arg string) (removed int) {
	matcher, err := NewBanMask(arg, "")
	if err != nil {
		return 0
	}
	kept := channel.bans[:0]
	for i := range channel.bans {
		ban := &channel.bans[i]
		if matcher.nickRe.MatchString(Casefold(ban.NickPattern)) &&
			matcher.userRe.MatchString(Casefold(ban.UserPattern)) &&
			matcher.hostRe.MatchString(Casefold(ban.HostPattern)) {
			removed++
		} else {
			kept = append(kept, *ban)
		}
	}
	channel.bans = kept
	return
}

// modeSummary renders the active channel modes for RPL_CHANNELMODEIS.
func (channel *Channel) modeSummary() (modes string, args []string) {
	modes = ""
	if channel.inviteOnly {
		modes += "i"
	}
	if channel.topicLocked {
		modes += "t"
	}
	if channel.noExternal {
		modes += "n"
	}
	if channel.moderated {
		modes += "m"
	}
	if channel.userLimit > 0 {
		modes += "l"
		args = append(args, strconv.Itoa(channel.userLimit))
	}
	if channel.key != "" {
		modes += "k"
		args = append(args, channel.key)
	}
	if modes != "" {
		modes = "+" + modes
	}
	return
}

// namesString lists the members in join order, operators marked with @.
func (channel *Channel) namesString() string {
	var builder strings.Builder
	for i, member := range channel.members {
		if i > 0 {
			builder.WriteByte(' ')
		}
		if channel.operators.Has(member.nickFolded) {
			builder.WriteByte('@')
		}
		builder.WriteString(member.nick)
	}
	return builder.String()
}

// Broadcast sends a message to every member.
func (channel *Channel) Broadcast(source string, command string, params ...string) {
	for _, member := range channel.members {
		member.Send(source, command, params...)
	}
}

// BroadcastExcept sends a message to every member but the given one.
func (channel *Channel) BroadcastExcept(except *Client, source string, command string, params ...string) {
	for _, member := range channel.members {
		if member != except {
			member.Send(source, command, params...)
		}
	}
}
