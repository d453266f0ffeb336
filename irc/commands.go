// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"github.com/ergochat/irc-go/ircmsg"
)

// Command represents a command accepted from a client.
type Command struct {
	handler      func(server *Server, client *Client, msg ircmsg.Message) bool
	usablePreReg bool
	oper         bool
	minParams    int
}

// Run executes a command against the gating rules: the pre-registration
// restricted set silently drops everything else, then parameter count, then
// operator privilege.
func (cmd *Command) Run(server *Server, client *Client, msg ircmsg.Message) (exiting bool) {
	if !client.Authorized() && !cmd.usablePreReg {
		// protocol-valid but inapplicable before registration; drop
		server.logger.Debug("commands", "dropped pre-registration command", msg.Command)
		return false
	}
	if len(msg.Params) < cmd.minParams {
		client.sendNumeric(ERR_NEEDMOREPARAMS, msg.Command, "Not enough parameters")
		return false
	}
	if cmd.oper && !client.isOperator {
		client.sendNumeric(ERR_NOPRIVILEGES, "Permission Denied- You're not an IRC operator")
		return false
	}
	return cmd.handler(server, client, msg)
}

// Commands holds all commands executable by a client.
var Commands = map[string]Command{
	"PASS": {
		handler:      passHandler,
		usablePreReg: true,
	},
	"USER": {
		handler:      userHandler,
		usablePreReg: true,
	},
	"NICK": {
		handler:      nickHandler,
		usablePreReg: true,
	},
	"PONG": {
		handler:      pongHandler,
		usablePreReg: true,
	},
	"QUIT": {
		handler:      quitHandler,
		usablePreReg: true,
	},
	"PING": {
		handler: pingHandler,
	},
	"JOIN": {
		handler:   joinHandler,
		minParams: 1,
	},
	"PART": {
		handler:   partHandler,
		minParams: 1,
	},
	"KICK": {
		handler:   kickHandler,
		minParams: 2,
	},
	"INVITE": {
		handler:   inviteHandler,
		minParams: 2,
	},
	"TOPIC": {
		handler:   topicHandler,
		minParams: 1,
	},
	"MODE": {
		handler:   modeHandler,
		minParams: 1,
	},
	"PRIVMSG": {
		handler: privmsgHandler,
	},
	"NOTICE": {
		handler: noticeHandler,
	},
	"OPER": {
		handler:   operHandler,
		minParams: 2,
	},
	"KILL": {
		handler:   killHandler,
		oper:      true,
		minParams: 2,
	},
	"LUSERS": {
		handler: lusersHandler,
	},
	"MOTD": {
		handler: motdHandler,
	},
}
