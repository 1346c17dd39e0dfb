package transport

import (
	"errors"
	"io"
	"testing"
	"time"

	"lagcomp/pkg/protocol"
)

func TestPacketsCrossEachProto(t *testing.T) {
	for _, proto := range []string{ProtoTCP, ProtoKCP} {
		t.Run(proto, func(t *testing.T) {
			l, err := Listen(proto, "127.0.0.1:0")
			if err != nil {
				t.Fatalf("listen: %v", err)
			}
			defer l.Close()

			echoed := make(chan error, 1)
			go func() {
				conn, err := l.Accept()
				if err != nil {
					echoed <- err
					return
				}
				defer conn.Close()
				pkt, err := protocol.ReadPacket(conn)
				if err != nil {
					echoed <- err
					return
				}
				echoed <- protocol.WritePacket(conn, pkt)
			}()

			conn, err := Dial(proto, l.Addr().String(), time.Second)
			if err != nil {
				t.Fatalf("dial: %v", err)
			}
			defer conn.Close()
			_ = conn.SetDeadline(time.Now().Add(5 * time.Second))

			if err := protocol.WritePacket(conn, protocol.NewPingPacket(1234)); err != nil {
				t.Fatalf("write: %v", err)
			}
			pkt, err := protocol.ReadPacket(conn)
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			ping, err := protocol.ParsePing(pkt)
			if err != nil || ping.ClientTime != 1234 {
				t.Fatalf("ping %+v err %v", ping, err)
			}
			if err := <-echoed; err != nil && !errors.Is(err, io.EOF) {
				t.Fatalf("echo: %v", err)
			}
		})
	}
}

func TestUnsupportedProto(t *testing.T) {
	if _, err := Listen("quic", "127.0.0.1:0"); !errors.Is(err, ErrUnsupportedProto) {
		t.Fatalf("listen err %v", err)
	}
	if _, err := Dial("quic", "127.0.0.1:1", time.Second); !errors.Is(err, ErrUnsupportedProto) {
		t.Fatalf("dial err %v", err)
	}
}
