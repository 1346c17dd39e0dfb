// Package transport opens the framed byte streams that carry protocol
// packets. Both ends of a connection get the same tuning: TCP without Nagle
// and KCP in stream mode with fast retransmit, since per-tick updates are a
// few dozen bytes each and must not sit in a send buffer.
package transport

import (
	"errors"
	"fmt"
	"net"
	"time"

	kcp "github.com/xtaci/kcp-go/v5"
)

const (
	ProtoTCP = "tcp"
	ProtoKCP = "kcp"
)

// KCP tuning: nodelay on, 10ms internal update, fast resend after 2 skipped
// acks, congestion control off.
const (
	kcpNoDelay  = 1
	kcpInterval = 10
	kcpResend   = 2
	kcpNoCwnd   = 1
	kcpWindow   = 256
)

var ErrUnsupportedProto = errors.New("unsupported protocol")

// Listen binds addr. An empty proto means tcp.
func Listen(proto, addr string) (net.Listener, error) {
	switch proto {
	case "", ProtoTCP:
		l, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, err
		}
		return &tcpListener{Listener: l}, nil
	case ProtoKCP:
		l, err := kcp.ListenWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		return &kcpListener{Listener: l}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProto, proto)
}

// Dial connects to addr. The timeout applies to tcp only; kcp has no
// handshake, so its first read is where an unreachable server shows up.
func Dial(proto, addr string, timeout time.Duration) (net.Conn, error) {
	switch proto {
	case "", ProtoTCP:
		conn, err := net.DialTimeout("tcp", addr, timeout)
		if err != nil {
			return nil, err
		}
		tuneTCP(conn)
		return conn, nil
	case ProtoKCP:
		sess, err := kcp.DialWithOptions(addr, nil, 0, 0)
		if err != nil {
			return nil, err
		}
		tuneKCP(sess)
		return sess, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProto, proto)
}

func tuneTCP(conn net.Conn) {
	if tcp, ok := conn.(*net.TCPConn); ok {
		_ = tcp.SetNoDelay(true)
	}
}

func tuneKCP(sess *kcp.UDPSession) {
	sess.SetStreamMode(true)
	sess.SetNoDelay(kcpNoDelay, kcpInterval, kcpResend, kcpNoCwnd)
	sess.SetWindowSize(kcpWindow, kcpWindow)
}

type tcpListener struct {
	net.Listener
}

func (l *tcpListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	tuneTCP(conn)
	return conn, nil
}

type kcpListener struct {
	*kcp.Listener
}

func (l *kcpListener) Accept() (net.Conn, error) {
	sess, err := l.AcceptKCP()
	if err != nil {
		return nil, err
	}
	tuneKCP(sess)
	return sess, nil
}
