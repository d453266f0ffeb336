// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"strconv"
	"strings"
)

// modeChanges accumulates applied changes over one modestring so a single
// consolidated MODE line can be broadcast at the end.
type modeChanges struct {
	added       []byte
	removed     []byte
	addedArgs   []string
	removedArgs []string
}

func (changes *modeChanges) record(sign bool, mode byte, arg string) {
	if sign {
		changes.added = append(changes.added, mode)
		if arg != "" {
			changes.addedArgs = append(changes.addedArgs, arg)
		}
	} else {
		changes.removed = append(changes.removed, mode)
		if arg != "" {
			changes.removedArgs = append(changes.removedArgs, arg)
		}
	}
}

func (changes *modeChanges) empty() bool {
	return len(changes.added) == 0 && len(changes.removed) == 0
}

// params renders the consolidated change as MODE parameters: removed
// sign+letters before added, then removed args before added args.
func (changes *modeChanges) params() []string {
	var modestring strings.Builder
	if len(changes.removed) != 0 {
		modestring.WriteByte('-')
		modestring.Write(changes.removed)
	}
	if len(changes.added) != 0 {
		modestring.WriteByte('+')
		modestring.Write(changes.added)
	}
	params := []string{modestring.String()}
	params = append(params, changes.removedArgs...)
	params = append(params, changes.addedArgs...)
	return params
}

// applyChannelModes processes MODE <chan> <modestring> [args...] for a
// channel operator. The modestring is parsed left to right; + and - toggle
// the sign, recognized letters invoke their applier, unrecognized letters
// yield ERR_UNKNOWNMODE without aborting the rest of the string.
func (server *Server) applyChannelModes(client *Client, channel *Channel, modestring string, args []string) {
	var changes modeChanges
	sign := true
	argIndex := 0

	nextArg := func() (string, bool) {
		if argIndex < len(args) {
			arg := args[argIndex]
			argIndex++
			return arg, true
		}
		return "", false
	}

	for i := 0; i < len(modestring); i++ {
		mode := modestring[i]
		switch mode {
		case '+':
			sign = true
		case '-':
			sign = false

		case 'i':
			if channel.inviteOnly != sign {
				channel.inviteOnly = sign
				changes.record(sign, mode, "")
			}
		case 't':
			if channel.topicLocked != sign {
				channel.topicLocked = sign
				changes.record(sign, mode, "")
			}
		case 'm':
			if channel.moderated != sign {
				channel.moderated = sign
				changes.record(sign, mode, "")
			}
		case 'n':
			if channel.noExternal != sign {
				channel.noExternal = sign
				changes.record(sign, mode, "")
			}

		case 'o':
			name, ok := nextArg()
			if !ok {
				break // no argument, ignore silently
			}
			target := channel.memberByNick(Casefold(name))
			if target == nil {
				client.sendNumeric(ERR_NOSUCHNICK, name, "No such nick")
				break
			}
			if channel.operators.Has(target.nickFolded) != sign {
				if sign {
					channel.operators.Add(target.nickFolded)
				} else {
					channel.operators.Remove(target.nickFolded)
				}
				changes.record(sign, mode, target.nick)
			}

		case 'v':
			name, ok := nextArg()
			if !ok {
				client.sendNumeric(ERR_NEEDMOREPARAMS, "MODE", "+/-v", "Not enough parameters")
				break
			}
			target := channel.memberByNick(Casefold(name))
			if target == nil {
				client.sendNumeric(ERR_NOSUCHNICK, name, "No such nick")
				break
			}
			if channel.speakers.Has(target.nickFolded) != sign {
				if sign {
					channel.speakers.Add(target.nickFolded)
				} else {
					channel.speakers.Remove(target.nickFolded)
				}
				changes.record(sign, mode, target.nick)
			}

		case 'l':
			if !sign {
				if channel.userLimit != 0 {
					channel.userLimit = 0
					changes.record(sign, mode, "")
				}
				break
			}
			if argIndex >= len(args) {
				client.sendNumeric(ERR_NEEDMOREPARAMS, channel.name, "Not enough parameters")
				break
			}
			limit, err := strconv.Atoi(args[argIndex])
			if err != nil {
				// a malformed limit resets the channel to unlimited, and the
				// bad token is left for the next argument-consuming flag
				channel.userLimit = 0
				changes.record(sign, mode, "0")
				break
			}
			argIndex++
			if limit <= 0 || limit == channel.userLimit {
				break
			}
			channel.userLimit = limit
			changes.record(sign, mode, strconv.Itoa(limit))

		case 'k':
			key, ok := nextArg()
			if !ok {
				client.sendNumeric(ERR_NEEDMOREPARAMS, channel.name, "Not enough parameters")
				break
			}
			if sign {
				if channel.key != "" {
					client.sendNumeric(ERR_KEYSET, channel.name, "Channel key already set")
					break
				}
				if !validChannelKey(key) {
					client.sendNumeric(ERR_INVALIDKEY, channel.name, "Key is not well-formed")
					break
				}
				channel.key = key
				changes.record(sign, mode, key)
			} else {
				// clearing requires the current key; a mismatch no-ops
				if key != channel.key {
					break
				}
				channel.key = ""
				changes.record(sign, mode, "")
			}

		case 'b':
			arg, ok := nextArg()
			if !ok {
				server.sendBanList(client, channel)
				break
			}
			if sign {
				mask, err := channel.addBan(arg, client.nick)
				if err != nil {
					break
				}
				changes.record(sign, mode, mask.String())
			} else {
				removed := channel.removeBans(arg)
				for n := 0; n < removed; n++ {
					changes.removed = append(changes.removed, mode)
				}
				if removed > 0 {
					nickPat, userPat, hostPat := parseBanMask(arg)
					changes.removedArgs = append(changes.removedArgs, nickPat+"!"+userPat+"@"+hostPat)
				}
			}

		default:
			client.sendNumeric(ERR_UNKNOWNMODE, string(mode), "is unknown mode char to me")
		}
	}

	if !changes.empty() {
		params := append([]string{channel.name}, changes.params()...)
		channel.Broadcast(client.nick, "MODE", params...)
	}
}

// scanChannelModesUnprivileged walks the modestring of a non-operator,
// consuming the argument tokens the real appliers would have consumed so
// positional tracking stays correct, then reports a single
// ERR_CHANOPRIVSNEEDED. A +b with no argument is still allowed to list bans.
func (server *Server) scanChannelModesUnprivileged(client *Client, channel *Channel, modestring string, args []string) {
	sign := true
	argIndex := 0
	denied := false

	for i := 0; i < len(modestring); i++ {
		mode := modestring[i]
		switch mode {
		case '+':
			sign = true
		case '-':
			sign = false
		case 'i', 't', 'm', 'n':
			denied = true
		case 'o', 'v', 'k', 'b', 'l':
			if mode == 'l' && !sign {
				denied = true
				break
			}
			if argIndex < len(args) {
				argIndex++
				denied = true
			} else if sign && mode == 'b' {
				server.sendBanList(client, channel)
			}
		default:
			client.sendNumeric(ERR_UNKNOWNMODE, string(mode), "is unknown mode char to me")
		}
	}

	if denied {
		client.sendNumeric(ERR_CHANOPRIVSNEEDED, channel.name, "You're not channel operator")
	}
}

// sendBanList plays back the channel ban list with RPL_BANLIST entries.
func (server *Server) sendBanList(client *Client, channel *Channel) {
	for i := range channel.bans {
		ban := &channel.bans[i]
		client.sendNumeric(RPL_BANLIST, channel.name, ban.String(), ban.SetBy,
			strconv.FormatInt(ban.SetAt.Unix(), 10))
	}
	client.sendNumeric(RPL_ENDOFBANLIST, channel.name, "End of Channel Ban List")
}

// applyUserModes processes MODE on the client's own nickname. Operator
// status cannot be granted this way, only dropped; the server-notices flag
// toggles freely. Unknown letters are reported once, after the whole string
// has been processed.
func (server *Server) applyUserModes(client *Client, modestring string) {
	var changes modeChanges
	sign := true
	badFlag := false

	for i := 0; i < len(modestring); i++ {
		mode := modestring[i]
		switch mode {
		case '+':
			sign = true
		case '-':
			sign = false
		case 'o':
			if !sign && client.isOperator {
				client.isOperator = false
				changes.record(sign, mode, "")
			}
			// +o is silently ignored: operator status comes from OPER
		case 's':
			if client.serverNotices != sign {
				client.serverNotices = sign
				changes.record(sign, mode, "")
			}
		default:
			badFlag = true
		}
	}

	if badFlag {
		client.sendNumeric(ERR_UMODEUNKNOWNFLAG, "Unknown MODE flag")
	}
	if !changes.empty() {
		params := append([]string{client.nick}, changes.params()...)
		client.Send(server.name, "MODE", params...)
	}
}
