// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2014-2015 Edmund Huber
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	ident "github.com/ergochat/go-ident"
	"github.com/ergochat/irc-go/ircmsg"
	"github.com/okzk/sdnotify"

	"github.com/lschrafstetter/42-ft-irc/irc/isupport"
	"github.com/lschrafstetter/42-ft-irc/irc/logger"
)

const (
	// IdentTimeout is how long before our ident (username) check times out.
	IdentTimeout = time.Second + 500*time.Millisecond

	pingSweepInterval = 2 * time.Second
)

var (
	// ServerExitSignals are the signals the server will exit on.
	ServerExitSignals = []os.Signal{
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	}
)

type eventKind int

const (
	eventConnect eventKind = iota
	eventLine
	eventError
)

// event is a unit of work for the server's main goroutine. All client and
// channel state is owned by that goroutine; readers and listeners only feed
// this queue.
type event struct {
	kind   eventKind
	client *Client
	line   []byte
}

// Server is the singleton IRC server instance.
type Server struct {
	name         string
	config       *Config
	logger       *logger.Manager
	password     string
	operPassword []byte

	listener   net.Listener
	wsServer   *http.Server
	events     chan event
	signals    chan os.Signal
	createdAt  time.Time
	isupport   *isupport.List
	nextID     uint64

	clients  map[uint64]*Client
	nicks    map[string]*Client
	channels map[string]*Channel
}

// NewServer returns a new Server instance.
func NewServer(config *Config, logger *logger.Manager) (*Server, error) {
	if config.Password == "" {
		return nil, errEmptyPassword
	}

	server := &Server{
		name:         config.Server.Name,
		config:       config,
		logger:       logger,
		password:     config.Password,
		operPassword: []byte(config.Oper.Password),
		events:       make(chan event, 128),
		signals:      make(chan os.Signal, len(ServerExitSignals)),
		createdAt:    time.Now(),
		clients:      make(map[uint64]*Client),
		nicks:        make(map[string]*Client),
		channels:     make(map[string]*Channel),
	}
	server.setISupport()

	// Attempt to clean up when receiving these signals.
	signal.Notify(server.signals, ServerExitSignals...)

	return server, nil
}

// setISupport sets up our RPL_ISUPPORT reply.
func (server *Server) setISupport() {
	list := isupport.NewList()
	list.Add("CASEMAPPING", casemappingName)
	list.Add("CHANMODES", "b,k,l,imnt")
	list.Add("MAXCHANNELS", strconv.Itoa(server.config.Server.MaxChannels))
	list.Add("NICKLEN", strconv.Itoa(maxNickLen))
	if err := list.RegenerateCachedReply(); err != nil {
		server.logger.Error("internal", "could not regenerate ISUPPORT list", err.Error())
	}
	server.isupport = list
}

// generateClientID is called from accept goroutines, so it must not
// touch nextID unsynchronized.
func (server *Server) generateClientID() uint64 {
	return atomic.AddUint64(&server.nextID, 1)
}

// Run starts the listeners and processes events until an exit signal
// arrives. All mutation of server state happens on this goroutine.
func (server *Server) Run() error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", server.config.Port))
	if err != nil {
		return err
	}
	server.listener = listener
	server.logger.Info("server", "listening on", listener.Addr().String())
	go server.acceptLoop(listener)

	if addr := server.config.Server.WebsocketListen; addr != "" {
		server.wsServer = &http.Server{Addr: addr, Handler: http.HandlerFunc(server.handleWebsocket)}
		server.logger.Info("server", "websocket listener on", addr)
		go func() {
			if err := server.wsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				server.logger.Error("server", "websocket listener failed", err.Error())
			}
		}()
	}

	sdnotify.Ready()

	ticker := time.NewTicker(pingSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-server.signals:
			server.Shutdown()
			return nil

		case ev := <-server.events:
			switch ev.kind {
			case eventConnect:
				server.connect(ev.client)
			case eventLine:
				server.handleLine(ev.client, ev.line)
			case eventError:
				if !ev.client.destroyed {
					server.quit(ev.client, "EOF from client")
				}
			}

		case <-ticker.C:
			server.pingSweep()
		}
	}
}

// Shutdown notifies connected clients and closes the listeners.
func (server *Server) Shutdown() {
	server.logger.Info("server", "shutting down")
	sdnotify.Stopping()
	for _, client := range server.clients {
		client.Send(server.name, "NOTICE", client.Nick(), "Server is shutting down")
		client.socket.Close()
	}
	server.listener.Close()
	if server.wsServer != nil {
		server.wsServer.Close()
	}
}

func (server *Server) acceptLoop(listener net.Listener) {
	for {
		conn, err := listener.Accept()
		if err != nil {
			return
		}
		go server.acceptStreamConn(conn)
	}
}

// acceptStreamConn does the blocking per-connection lookups off the main
// goroutine, then queues the new client for admission.
func (server *Server) acceptStreamConn(conn net.Conn) {
	ip, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		ip = conn.RemoteAddr().String()
	}
	hostname := ip
	if server.config.Server.LookupHostnames {
		hostname = lookupHostname(ip)
	}
	if server.config.Server.Ident {
		server.lookupIdent(conn)
	}

	socket := NewSocket(NewIRCStreamConn(conn))
	client := server.newClient(socket, ip, hostname)
	server.events <- event{kind: eventConnect, client: client}
}

// lookupIdent asks the connecting host's identd who the remote user is.
// The answer is advisory and only logged; USER still sets the username.
func (server *Server) lookupIdent(conn net.Conn) {
	localTCPAddr, ok := conn.LocalAddr().(*net.TCPAddr)
	if !ok {
		return
	}
	remoteTCPAddr, ok := conn.RemoteAddr().(*net.TCPAddr)
	if !ok {
		return
	}
	resp, err := ident.Query(remoteTCPAddr.IP.String(), localTCPAddr.Port, remoteTCPAddr.Port, IdentTimeout)
	if err != nil {
		return
	}
	server.logger.Debug("localconnect", "ident response for", remoteTCPAddr.IP.String(), resp.Identifier)
}

func (server *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		server.logger.Debug("localconnect", "websocket upgrade failed", err.Error())
		return
	}
	ip, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		ip = conn.RemoteAddr().String()
	}
	hostname := ip
	if server.config.Server.LookupHostnames {
		hostname = lookupHostname(ip)
	}
	socket := NewSocket(NewIRCWSConn(conn))
	client := server.newClient(socket, ip, hostname)
	server.events <- event{kind: eventConnect, client: client}
}

// connect admits a queued connection or turns it away when full, then
// kicks off the liveness PING and the reader.
func (server *Server) connect(client *Client) {
	if len(server.clients) >= server.config.Server.MaxClients {
		server.logger.Info("localconnect", "rejecting connection from", client.ip, "server is full")
		client.socket.SetFinalData([]byte("ERROR :Closing link: " + server.name + " (Server is full)\r\n"))
		client.socket.Close()
		return
	}

	server.logger.Debug("localconnect", "client connecting from", client.ip)
	server.clients[client.id] = client
	client.sendPing()
	go server.readLoop(client)
}

func (server *Server) readLoop(client *Client) {
	for {
		line, err := client.socket.conn.ReadLine()
		if err != nil {
			server.events <- event{kind: eventError, client: client}
			return
		}
		server.events <- event{kind: eventLine, client: client, line: line}
	}
}

// handleLine parses and dispatches one line from a client.
func (server *Server) handleLine(client *Client, line []byte) {
	if client.destroyed {
		return
	}
	client.Touch()

	if server.logger.IsLoggingRawIO() {
		server.logger.Debug("userinput", client.Nick(), " <-", string(line))
	}

	msg, err := ircmsg.ParseLineStrict(string(line), true, maxLineLen)
	if err != nil {
		if err != ircmsg.ErrorLineIsEmpty {
			server.logger.Debug("commands", "dropping malformed line from", client.Nick())
		}
		return
	}

	cmd, ok := Commands[strings.ToUpper(msg.Command)]
	if !ok {
		// unknown verbs are dropped without a reply
		server.logger.Debug("commands", "dropped unknown command", msg.Command)
		return
	}
	cmd.Run(server, client, msg)
}

// tryRegister fires the welcome burst exactly once, after the fourth
// registration step completes.
func (server *Server) tryRegister(client *Client) {
	if client.registered || !client.Authorized() {
		return
	}
	client.registered = true
	server.logger.Info("localconnect", "client registered as", client.nick)
	server.playWelcome(client)
}

func (server *Server) playWelcome(client *Client) {
	client.sendNumeric(RPL_WELCOME, fmt.Sprintf("Welcome to %s, %s", server.name, client.nick))
	client.sendNumeric(RPL_YOURHOST, fmt.Sprintf("Your host is %s, running on version %s", server.name, SemVer))
	client.sendNumeric(RPL_CREATED, "This server was created "+server.createdAt.Format("Mon Jan 02 2006 at 15:04:05 MST"))
	client.sendNumeric(RPL_MYINFO, server.name, SemVer, "so", "oitnmlbvk", "olbvk")
	for _, cached := range server.isupport.CachedReply {
		tokens := make([]string, 0, len(cached)+1)
		tokens = append(tokens, cached...)
		tokens = append(tokens, "are supported by this server")
		client.sendNumeric(RPL_ISUPPORT, tokens...)
	}
	server.sendLusers(client)
	server.sendMOTD(client)
}

func (server *Server) sendLusers(client *Client) {
	registered := 0
	opers := 0
	for _, c := range server.clients {
		if c.registered {
			registered++
		}
		if c.isOperator {
			opers++
		}
	}
	unknown := len(server.clients) - registered

	client.sendNumeric(RPL_LUSERCLIENT, fmt.Sprintf("There are %d users and 0 invisible on 1 servers", registered))
	if opers > 0 {
		client.sendNumeric(RPL_LUSEROP, strconv.Itoa(opers), "operator(s) online")
	}
	if unknown > 0 {
		client.sendNumeric(RPL_LUSERUNKNOWN, strconv.Itoa(unknown), "unknown connection(s)")
	}
	if len(server.channels) > 0 {
		client.sendNumeric(RPL_LUSERCHANNELS, strconv.Itoa(len(server.channels)), "channels formed")
	}
	client.sendNumeric(RPL_LUSERME, fmt.Sprintf("I have %d clients and 1 servers", registered))
}

func (server *Server) sendMOTD(client *Client) {
	if server.config.motdLines == nil {
		client.sendNumeric(ERR_NOMOTD, "MOTD File is missing")
		return
	}
	client.sendNumeric(RPL_MOTDSTART, fmt.Sprintf("- %s Message of the day - ", server.name))
	for _, line := range server.config.motdLines {
		client.sendNumeric(RPL_MOTD, line)
	}
	client.sendNumeric(RPL_ENDOFMOTD, "End of /MOTD command.")
}

func (server *Server) sendNames(client *Client, channel *Channel) {
	client.sendNumeric(RPL_NAMREPLY, "=", channel.name, channel.namesString())
	client.sendNumeric(RPL_ENDOFNAMES, channel.name, "End of /NAMES list")
}

func (server *Server) sendTopicInfo(client *Client, channel *Channel) {
	client.sendNumeric(RPL_TOPIC, channel.name, channel.topic)
	client.sendNumeric(RPL_TOPICTIME, channel.name, channel.topicSetter, strconv.FormatInt(channel.topicSetAt.Unix(), 10))
}

func (server *Server) sendChannelModeSummary(client *Client, channel *Channel) {
	modes, args := channel.modeSummary()
	params := append([]string{channel.name, modes}, args...)
	client.sendNumeric(RPL_CHANNELMODEIS, params...)
	client.sendNumeric(RPL_CREATIONTIME, channel.name, strconv.FormatInt(channel.createdAt.Unix(), 10))
}

func (server *Server) clientByUsername(username string) *Client {
	folded := Casefold(username)
	for _, client := range server.clients {
		if Casefold(client.username) == folded {
			return client
		}
	}
	return nil
}

// renameClient switches a registered client to a new nickname and tells
// everyone who shares a channel with it, each exactly once.
func (server *Server) renameClient(client *Client, nick string, nickFolded string) {
	oldMask := client.NickMask()
	oldFolded := client.nickFolded

	audience := map[uint64]*Client{client.id: client}
	for name := range client.channels {
		channel := server.channels[name]
		if channel == nil {
			continue
		}
		channel.renameMember(oldFolded, nickFolded)
		for _, member := range channel.members {
			audience[member.id] = member
		}
	}

	delete(server.nicks, oldFolded)
	server.nicks[nickFolded] = client
	client.SetNick(nick, nickFolded)

	for _, member := range audience {
		member.Send(oldMask, "NICK", nick)
	}
}

// quit removes a client from all server state, announces the departure to
// everyone sharing a channel, and tears the connection down.
func (server *Server) quit(client *Client, reason string) {
	if client.destroyed {
		return
	}
	client.destroyed = true

	audience := make(map[uint64]*Client)
	for name := range client.channels {
		channel := server.channels[name]
		if channel == nil {
			continue
		}
		channel.removeMember(client)
		if len(channel.members) == 0 {
			delete(server.channels, channel.nameFolded)
			continue
		}
		for _, member := range channel.members {
			audience[member.id] = member
		}
	}
	for _, member := range audience {
		member.Send(client.NickMask(), "QUIT", reason)
	}

	if client.nickFolded != "" {
		delete(server.nicks, client.nickFolded)
	}
	delete(server.clients, client.id)
	client.socket.Close()

	server.logger.Debug("localconnect", "client", client.Nick(), "disconnected:", reason)
}

// pingSweep drops clients that let a PING go unanswered and re-pings idle
// ones.
func (server *Server) pingSweep() {
	now := time.Now()
	timeout := server.config.PingTimeout()
	interval := server.config.PingInterval()

	var stale []*Client
	for _, client := range server.clients {
		if client.pingAwaiting && now.Sub(client.pingSent) > timeout {
			stale = append(stale, client)
		} else if !client.pingAwaiting && now.Sub(client.atime) > interval {
			client.sendPing()
		}
	}
	for _, client := range stale {
		server.quit(client, "Ping timeout")
	}
}

func lookupHostname(addr string) string {
	names, err := net.LookupAddr(addr)
	if err != nil || len(names) == 0 {
		return addr
	}
	return strings.TrimSuffix(names[0], ".")
}
