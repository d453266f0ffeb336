// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"strings"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/lschrafstetter/42-ft-irc/irc/passwd"
)

// PASS <password>
func passHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if client.hasAuthFlag(authPass) {
		client.sendNumeric(ERR_ALREADYREGISTRED, "You may not reregister")
		return false
	}
	if len(msg.Params) < 1 {
		client.sendNumeric(ERR_NEEDMOREPARAMS, "PASS", "Not enough parameters")
		return false
	}
	if len(msg.Params) == 1 && msg.Params[0] == server.password {
		client.setAuthFlag(authPass)
		server.tryRegister(client)
	} else {
		client.sendNumeric(ERR_PASSWDMISMATCH, "Password incorrect")
	}
	return false
}

// USER <username> <mode> <unused> :<realname>
func userHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if !client.hasAuthFlag(authPass) {
		client.sendNumeric(ERR_PASSWDMISMATCH, "Password incorrect")
		return false
	}
	if client.hasAuthFlag(authUser) {
		client.sendNumeric(ERR_ALREADYREGISTRED, "You may not reregister")
		return false
	}
	if len(msg.Params) < 3 {
		client.sendNumeric(ERR_NEEDMOREPARAMS, "USER", "Not enough parameters")
		return false
	}
	client.username = msg.Params[0]
	client.realname = msg.Params[len(msg.Params)-1]
	client.setAuthFlag(authUser)
	server.tryRegister(client)
	return false
}

// NICK <nickname>
func nickHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if !client.hasAuthFlag(authPass) {
		client.sendNumeric(ERR_PASSWDMISMATCH, "Password incorrect")
		return false
	}
	if len(msg.Params) < 1 {
		client.sendNumeric(ERR_NEEDMOREPARAMS, "NICK", "Not enough parameters")
		return false
	}
	nick := msg.Params[0]
	nickFolded, err := CasefoldName(nick)
	if err != nil {
		client.sendNumeric(ERR_ERRONEUSNICKNAME, nick, "Erroneous nickname")
		return false
	}
	if owner := server.nicks[nickFolded]; owner != nil && owner != client {
		client.sendNumeric(ERR_NICKNAMEINUSE, nick, "Nickname is already in use")
		return false
	}

	if client.hasAuthFlag(authNick) {
		server.renameClient(client, nick, nickFolded)
		return false
	}

	client.SetNick(nick, nickFolded)
	server.nicks[nickFolded] = client
	client.setAuthFlag(authNick)
	server.tryRegister(client)
	return false
}

// PONG <token>
func pongHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if len(msg.Params) != 1 {
		return false
	}
	if msg.Params[0] != client.pingNonce {
		// stale or mismatched nonce, ignore
		return false
	}
	client.pingAwaiting = false
	if client.setAuthFlag(authPong) {
		server.tryRegister(client)
	}
	return false
}

// PING [<token>]
func pingHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	params := []string{server.name}
	params = append(params, msg.Params...)
	client.Send(server.name, "PONG", params...)
	return false
}

// QUIT [:<reason>]
func quitHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	reason := "Quit"
	if len(msg.Params) > 0 {
		reason = msg.Params[0]
	}
	server.quit(client, reason)
	return true
}

// JOIN <chan>[,<chan>...] [<key>[,<key>...]]
func joinHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	names := strings.Split(msg.Params[0], ",")
	var keys []string
	if len(msg.Params) > 1 {
		keys = strings.Split(msg.Params[1], ",")
	}
	keyIndex := 0

	for _, name := range names {
		nameFolded, err := CasefoldChannel(name)
		if err != nil {
			client.sendNumeric(ERR_NOSUCHCHANNEL, name, "No such channel")
			continue
		}

		channel := server.channels[nameFolded]
		if channel != nil {
			server.joinExistingChannel(client, channel, keys, &keyIndex)
			continue
		}

		if len(client.channels) >= server.config.Server.MaxChannels {
			client.sendNumeric(ERR_TOOMANYCHANNELS, name, "You have joined too many channels")
			continue
		}

		channel = NewChannel(server, name, nameFolded, client)
		server.channels[nameFolded] = channel
		client.channels.Add(nameFolded)
		client.Send(client.NickMask(), "JOIN", channel.name)
		server.sendNames(client, channel)
	}
	return false
}

// joinExistingChannel runs the admission checks in their fixed order, then
// admits the client.
func (server *Server) joinExistingChannel(client *Client, channel *Channel, keys []string, keyIndex *int) {
	if channel.hasMember(client) {
		return
	}
	if channel.inviteOnly && !channel.invited.Has(client.nickFolded) {
		client.sendNumeric(ERR_INVITEONLYCHAN, channel.name, "Cannot join channel (+i)")
		return
	}
	if channel.isBanned(client) {
		client.sendNumeric(ERR_BANNEDFROMCHAN, channel.name, "Cannot join channel (+b)")
		return
	}
	if channel.key != "" {
		if len(keys) == 0 {
			client.sendNumeric(ERR_BADCHANNELKEY, channel.name, "Cannot join channel (+k)")
			return
		}
		// keys are consumed positionally; an exhausted key list skips the check
		if *keyIndex < len(keys) {
			key := keys[*keyIndex]
			*keyIndex++
			if key != channel.key {
				client.sendNumeric(ERR_BADCHANNELKEY, channel.name, "Cannot join channel (+k)")
				return
			}
		}
	}
	if channel.userLimit > 0 && len(channel.members) >= channel.userLimit {
		client.sendNumeric(ERR_CHANNELISFULL, channel.name, "Cannot join channel (+l)")
		return
	}
	if len(client.channels) >= server.config.Server.MaxChannels {
		client.sendNumeric(ERR_TOOMANYCHANNELS, channel.name, "You have joined too many channels")
		return
	}

	channel.addMember(client)
	client.channels.Add(channel.nameFolded)
	channel.Broadcast(client.NickMask(), "JOIN", channel.name)
	if channel.topic != "" {
		server.sendTopicInfo(client, channel)
	}
	server.sendNames(client, channel)
}

// PART <chan>[,<chan>...]
func partHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	for _, name := range strings.Split(msg.Params[0], ",") {
		channel := server.channels[Casefold(name)]
		if channel == nil {
			client.sendNumeric(ERR_NOSUCHCHANNEL, name, "No such channel")
			continue
		}
		if !channel.hasMember(client) {
			client.sendNumeric(ERR_NOTONCHANNEL, channel.name, "You're not on that channel")
			continue
		}

		if len(channel.members) == 1 {
			client.Send(client.NickMask(), "PART", channel.name)
			delete(server.channels, channel.nameFolded)
		} else {
			channel.Broadcast(client.NickMask(), "PART", channel.name)
			channel.removeMember(client)
		}
		client.channels.Remove(channel.nameFolded)
	}
	return false
}

// KICK <chan> <nick> [:<reason>]
func kickHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	name, victimNick := msg.Params[0], msg.Params[1]
	nameFolded, err := CasefoldChannel(name)
	if err != nil {
		client.sendNumeric(ERR_BADCHANMASK, name, "Bad Channel Mask")
		return false
	}
	channel := server.channels[nameFolded]
	if channel == nil {
		client.sendNumeric(ERR_NOSUCHCHANNEL, name, "No such channel")
		return false
	}
	if !channel.hasMember(client) {
		client.sendNumeric(ERR_NOTONCHANNEL, channel.name, "You're not on that channel")
		return false
	}
	if !channel.isOperator(client) {
		client.sendNumeric(ERR_CHANOPRIVSNEEDED, channel.name, "You're not channel operator")
		return false
	}
	victim := channel.memberByNick(Casefold(victimNick))
	if victim == nil {
		client.sendNumeric(ERR_USERNOTINCHANNEL, victimNick, channel.name, "They aren't on that channel")
		return false
	}

	reason := victim.nick
	if len(msg.Params) > 2 {
		reason = msg.Params[2]
	}
	channel.Broadcast(client.NickMask(), "KICK", channel.name, victim.nick, reason)

	channel.removeMember(victim)
	victim.channels.Remove(channel.nameFolded)
	if len(channel.members) == 0 {
		delete(server.channels, channel.nameFolded)
	}
	return false
}

// INVITE <nick> <chan>
func inviteHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	targetNick, name := msg.Params[0], msg.Params[1]
	target := server.nicks[Casefold(targetNick)]
	if target == nil {
		client.sendNumeric(ERR_NOSUCHNICK, targetNick, "No such nick")
		return false
	}
	channel := server.channels[Casefold(name)]
	if channel == nil {
		client.sendNumeric(ERR_NOSUCHCHANNEL, name, "No such channel")
		return false
	}
	if channel.hasMember(target) {
		client.sendNumeric(ERR_USERONCHANNEL, target.nick, channel.name, "is already on channel")
		return false
	}
	if channel.inviteOnly && !channel.isOperator(client) {
		client.sendNumeric(ERR_CHANOPRIVSNEEDED, channel.name, "You're not channel operator")
		return false
	}

	channel.invited.Add(target.nickFolded)
	client.sendNumeric(RPL_INVITING, target.nick, channel.name)
	target.Send(client.NickMask(), "INVITE", target.nick, channel.name)
	return false
}

// TOPIC <chan> [:<topic>]
func topicHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	name := msg.Params[0]
	channel := server.channels[Casefold(name)]
	if channel == nil {
		client.sendNumeric(ERR_NOSUCHCHANNEL, name, "No such channel")
		return false
	}

	if len(msg.Params) == 1 {
		if channel.topic != "" {
			server.sendTopicInfo(client, channel)
		} else {
			client.sendNumeric(RPL_NOTOPIC, channel.name, "No topic is set")
		}
		return false
	}

	if channel.topicLocked && !channel.isOperator(client) {
		client.sendNumeric(ERR_CHANOPRIVSNEEDED, channel.name, "You're not channel operator")
		return false
	}

	topic := msg.Params[1]
	if topic == "" {
		channel.topic = ""
		channel.topicSetter = ""
	} else {
		channel.topic = topic
		channel.topicSetter = client.nick
		channel.topicSetAt = time.Now()
	}
	channel.Broadcast(server.name, RPL_TOPIC, client.nick, channel.name, topic)
	return false
}

// MODE <target> [<flags> [<args...>]]
func modeHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	target := msg.Params[0]
	if strings.HasPrefix(target, "#") {
		channel := server.channels[Casefold(target)]
		if channel == nil {
			client.sendNumeric(ERR_NOSUCHCHANNEL, target, "No such channel")
			return false
		}
		if len(msg.Params) == 1 {
			server.sendChannelModeSummary(client, channel)
			return false
		}
		if channel.isOperator(client) {
			server.applyChannelModes(client, channel, msg.Params[1], msg.Params[2:])
		} else {
			server.scanChannelModesUnprivileged(client, channel, msg.Params[1], msg.Params[2:])
		}
		return false
	}

	if Casefold(target) != client.nickFolded {
		if server.nicks[Casefold(target)] != nil {
			client.sendNumeric(ERR_USERSDONTMATCH, "Can't change mode for other users")
		} else {
			client.sendNumeric(ERR_NOSUCHNICK, target, "No such nick")
		}
		return false
	}
	if len(msg.Params) == 1 {
		client.sendNumeric(RPL_UMODEIS, client.usermodeString())
		return false
	}
	server.applyUserModes(client, msg.Params[1])
	return false
}

// PRIVMSG <target>[,<target>...] :<text>
func privmsgHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if len(msg.Params) < 1 {
		client.sendNumeric(ERR_NORECIPIENT, "No recipient given (PRIVMSG)")
		return false
	}
	if len(msg.Params) < 2 {
		client.sendNumeric(ERR_NOTEXTTOSEND, "No text to send")
		return false
	}
	server.routeMessage(client, "PRIVMSG", msg.Params[0], msg.Params[1], false)
	return false
}

// NOTICE <target>[,<target>...] :<text>
// per protocol convention, NOTICE never produces an error reply
func noticeHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if len(msg.Params) < 2 {
		return false
	}
	server.routeMessage(client, "NOTICE", msg.Params[0], msg.Params[1], true)
	return false
}

func (server *Server) routeMessage(client *Client, command string, targets string, text string, silent bool) {
	for _, target := range strings.Split(targets, ",") {
		if strings.HasPrefix(target, "#") || strings.HasPrefix(target, "&") {
			server.messageChannel(client, command, target, text, silent)
		} else {
			server.messageClient(client, command, target, text, silent)
		}
	}
}

func (server *Server) messageChannel(client *Client, command string, target string, text string, silent bool) {
	channel := server.channels[Casefold(target)]
	if channel == nil {
		if !silent {
			client.sendNumeric(ERR_NOSUCHCHANNEL, target, "No such channel")
		}
		return
	}
	if (channel.noExternal && !channel.hasMember(client)) ||
		(channel.moderated && !channel.isOperator(client) && !channel.isSpeaker(client)) ||
		channel.isBanned(client) {
		if !silent {
			client.sendNumeric(ERR_CANNOTSENDTOCHAN, channel.name, "Cannot send to channel")
		}
		return
	}
	channel.BroadcastExcept(client, client.NickMask(), command, channel.name, text)
}

func (server *Server) messageClient(client *Client, command string, target string, text string, silent bool) {
	targetClient := server.nicks[Casefold(target)]
	if targetClient == nil {
		if !silent {
			client.sendNumeric(ERR_NOSUCHNICK, target, "No such nick")
		}
		return
	}
	targetClient.Send(client.NickMask(), command, targetClient.nick, text)
}

// OPER <username> <password>
// grants server-operator status to the connected user with the given
// username; the confirmation numeric goes to the requester.
func operHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	target := server.clientByUsername(msg.Params[0])
	if target == nil {
		client.sendNumeric(ERR_NOLOGIN, msg.Params[0], "User not logged in")
		return false
	}
	if target.isOperator {
		return false
	}
	if len(server.operPassword) == 0 ||
		passwd.CompareHashAndPassword(server.operPassword, []byte(msg.Params[1])) != nil {
		client.sendNumeric(ERR_PASSWDMISMATCH, "Password incorrect")
		return false
	}
	target.isOperator = true
	client.sendNumeric(RPL_YOUREOPER, "You are now an IRC operator")
	server.logger.Info("opers", target.Nick(), "granted operator status")
	return false
}

// KILL <nick> <reason>
func killHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	target := server.nicks[Casefold(msg.Params[0])]
	if target == nil {
		client.sendNumeric(ERR_NOSUCHNICK, msg.Params[0], "No such nick")
		return false
	}

	reason := "Killed (by " + client.Nick() + ") " + msg.Params[1]
	target.Send(client.NickMask(), "ERROR", "Closing link: "+server.name+" "+reason)
	server.logger.Info("opers", client.Nick(), "killed", target.Nick(), msg.Params[1])
	server.quit(target, reason)
	return false
}

// LUSERS
func lusersHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	server.sendLusers(client)
	return false
}

// MOTD [<server>]
func motdHandler(server *Server, client *Client, msg ircmsg.Message) bool {
	if len(msg.Params) > 0 && msg.Params[0] != server.name {
		client.sendNumeric(ERR_NOSUCHSERVER, msg.Params[0], "No such server")
		return false
	}
	server.sendMOTD(client)
	return false
}
