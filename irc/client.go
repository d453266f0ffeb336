// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"
	"strconv"
	"time"

	"github.com/ergochat/irc-go/ircmsg"

	"github.com/lschrafstetter/42-ft-irc/irc/utils"
)

// positions in the registration bitset; a connection is authorized once
// all four are set
const (
	authPass uint = iota
	authUser
	authNick
	authPong
)

// Client is a single connection. All fields are owned by the server's main
// goroutine; the Socket is the only part touched from elsewhere.
type Client struct {
	server *Server
	socket *Socket
	id     uint64

	ctime time.Time
	atime time.Time

	authFlags  [1]uint32
	registered bool

	nick       string
	nickFolded string
	username   string
	realname   string
	hostname   string
	ip         string

	isOperator    bool
	serverNotices bool

	pingAwaiting bool
	pingNonce    string
	pingSent     time.Time

	channels utils.HashSet[string]

	destroyed bool
}

func (server *Server) newClient(socket *Socket, ip string, hostname string) *Client {
	now := time.Now()
	return &Client{
		server:   server,
		socket:   socket,
		id:       server.generateClientID(),
		ctime:    now,
		atime:    now,
		hostname: hostname,
		ip:       ip,
		channels: make(utils.HashSet[string]),
	}
}

func (client *Client) setAuthFlag(flag uint) (changed bool) {
	return utils.BitsetSet(client.authFlags[:], flag, true)
}

func (client *Client) hasAuthFlag(flag uint) bool {
	return utils.BitsetGet(client.authFlags[:], flag)
}

// Authorized reports whether the full four-step registration (PASS, USER,
// NICK, PONG) has completed.
func (client *Client) Authorized() bool {
	return client.hasAuthFlag(authPass) && client.hasAuthFlag(authUser) &&
		client.hasAuthFlag(authNick) && client.hasAuthFlag(authPong)
}

// Nick returns the client's display nickname, or * before one is set.
func (client *Client) Nick() string {
	if client.nick == "" {
		return "*"
	}
	return client.nick
}

// NickMask returns the nick!user@host mask used as a message source and
// matched against ban masks.
func (client *Client) NickMask() string {
	username := client.username
	if username == "" {
		username = "*"
	}
	hostname := client.hostname
	if hostname == "" {
		hostname = "*"
	}
	return fmt.Sprintf("%s!%s@%s", client.Nick(), username, hostname)
}

// SetNick updates the nickname and its casefolded form.
func (client *Client) SetNick(nick string, nickFolded string) {
	client.nick = nick
	client.nickFolded = nickFolded
}

// Send formats a message and enqueues it on the client's socket.
func (client *Client) Send(source string, command string, params ...string) (err error) {
	msg := ircmsg.MakeMessage(nil, source, command, params...)
	line, err := msg.LineBytesStrict(false, maxLineLen)
	if err != nil {
		client.server.logger.Error("internal", "could not assemble message", err.Error())
		return err
	}
	if client.server.logger.IsLoggingRawIO() {
		client.server.logger.Debug("useroutput", client.Nick(), " ->", string(line))
	}
	return client.socket.Write(line)
}

// sendNumeric sends a numeric reply, with the client's nick as the first
// parameter per the wire contract.
func (client *Client) sendNumeric(code string, params ...string) {
	fullParams := make([]string, 0, len(params)+1)
	fullParams = append(fullParams, client.Nick())
	fullParams = append(fullParams, params...)
	client.Send(client.server.name, code, fullParams...)
}

// sendPing issues a liveness PING and records the expected nonce.
func (client *Client) sendPing() {
	client.pingNonce = strconv.FormatInt(time.Now().Unix()%42, 10)
	client.pingAwaiting = true
	client.pingSent = time.Now()
	client.Send("", "PING", client.pingNonce)
}

// Touch records activity on the connection.
func (client *Client) Touch() {
	client.atime = time.Now()
}

// usermodeString renders the active user modes (+o, +s) for RPL_UMODEIS.
func (client *Client) usermodeString() string {
	modes := ""
	if client.isOperator {
		modes += "o"
	}
	if client.serverNotices {
		modes += "s"
	}
	if modes == "" {
		return "+"
	}
	return "+" + modes
}
