// Copyright (c) 2020 Shivaram Lingamneni <slingamn@cs.stanford.edu>
// released under the MIT license

package irc

import (
	"bytes"
	"net"
	"net/http"
	"unicode/utf8"

	"github.com/ergochat/irc-go/ircreader"
	"github.com/gorilla/websocket"
)

const (
	maxReadQBytes = maxLineLen + 1024
)

var (
	crlf = []byte{'\r', '\n'}

	wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  maxReadQBytes,
		WriteBufferSize: maxReadQBytes,
		// the connection is gated by PASS, not by the upgrade request,
		// so any origin may connect
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
)

// IRCConn abstracts away the distinction between a regular
// net.Conn (raw TCP) and a websocket.
// it doesn't expose Read and Write because websockets are message-oriented,
// not stream-oriented.
type IRCConn interface {
	UnderlyingConn() net.Conn

	WriteLine([]byte) error
	ReadLine() (line []byte, err error)

	Close() error
}

// IRCStreamConn is an IRCConn over a regular stream connection.
type IRCStreamConn struct {
	conn   net.Conn
	reader ircreader.Reader
}

func NewIRCStreamConn(conn net.Conn) *IRCStreamConn {
	var cc IRCStreamConn
	cc.conn = conn
	cc.reader.Initialize(conn, maxLineLen, maxReadQBytes)
	return &cc
}

func (cc *IRCStreamConn) UnderlyingConn() net.Conn {
	return cc.conn
}

func (cc *IRCStreamConn) WriteLine(buf []byte) (err error) {
	_, err = cc.conn.Write(buf)
	return
}

func (cc *IRCStreamConn) ReadLine() (line []byte, err error) {
	line, err = cc.reader.ReadLine()
	if err == ircreader.ErrReadQ {
		err = errReadQExceeded
	}
	return
}

func (cc *IRCStreamConn) Close() (err error) {
	return cc.conn.Close()
}

// IRCWSConn is an IRCConn over a websocket.
type IRCWSConn struct {
	conn *websocket.Conn
}

func NewIRCWSConn(conn *websocket.Conn) IRCWSConn {
	return IRCWSConn{conn: conn}
}

func (wc IRCWSConn) UnderlyingConn() net.Conn {
	return wc.conn.UnderlyingConn()
}

func (wc IRCWSConn) WriteLine(buf []byte) (err error) {
	buf = bytes.TrimSuffix(buf, crlf)
	// there's not much we can do about this;
	// silently drop the message
	if !utf8.Valid(buf) {
		return nil
	}
	return wc.conn.WriteMessage(websocket.TextMessage, buf)
}

func (wc IRCWSConn) ReadLine() (line []byte, err error) {
	for {
		messageType, line, err := wc.conn.ReadMessage()
		if err != nil {
			return line, err
		}
		if messageType == websocket.TextMessage || messageType == websocket.BinaryMessage {
			return line, nil
		}
		// ignore pings, pongs, and other control frames
	}
}

func (wc IRCWSConn) Close() (err error) {
	return wc.conn.Close()
}
