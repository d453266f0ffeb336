// Copyright (c) 2012-2014 Jeremy Latt
// Copyright (c) 2016-2017 Daniel Oaks <daniel@danieloaks.net>
// released under the MIT license

package irc

import (
	"sync"
)

const (
	// enough for a burst of numerics (welcome block, NAMES, ban lists)
	// without letting a stalled client pin server memory
	sendQueueLen = 128
)

// Socket is the queued write half of a client connection. Handlers enqueue
// lines without blocking; a dedicated goroutine drains the queue onto the
// wire. A full queue or a write error closes the connection.
type Socket struct {
	conn IRCConn

	stateMutex sync.Mutex
	sendQ      chan []byte
	closed     bool
	finalData  []byte
}

// NewSocket returns a new Socket and starts its writer goroutine.
func NewSocket(conn IRCConn) *Socket {
	socket := &Socket{
		conn:  conn,
		sendQ: make(chan []byte, sendQueueLen),
	}
	go socket.writeLoop()
	return socket
}

// Write enqueues a line (already CRLF-terminated) for sending. If the queue
// is full, the connection is torn down.
func (socket *Socket) Write(data []byte) (err error) {
	socket.stateMutex.Lock()
	if socket.closed {
		socket.stateMutex.Unlock()
		return errSocketClosed
	}
	select {
	case socket.sendQ <- data:
	default:
		err = errSendQExceeded
	}
	socket.stateMutex.Unlock()

	if err != nil {
		socket.Close()
	}
	return
}

// SetFinalData sets the final once-off line (e.g. an ERROR) that will be
// written out just before the connection is closed.
func (socket *Socket) SetFinalData(data []byte) {
	socket.stateMutex.Lock()
	defer socket.stateMutex.Unlock()
	if !socket.closed {
		socket.finalData = data
	}
}

// Close stops accepting writes; already-enqueued lines are still flushed
// before the underlying connection is closed.
func (socket *Socket) Close() {
	socket.stateMutex.Lock()
	defer socket.stateMutex.Unlock()
	if socket.closed {
		return
	}
	socket.closed = true
	close(socket.sendQ)
}

func (socket *Socket) writeLoop() {
	broken := false
	for data := range socket.sendQ {
		if broken {
			continue // drain so Close never blocks
		}
		if socket.conn.WriteLine(data) != nil {
			broken = true
		}
	}

	socket.stateMutex.Lock()
	finalData := socket.finalData
	socket.stateMutex.Unlock()
	if !broken && len(finalData) != 0 {
		socket.conn.WriteLine(finalData)
	}

	socket.conn.Close()
}
