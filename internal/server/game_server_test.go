package server

import (
	"net"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"lagcomp/pkg/core"
	"lagcomp/pkg/protocol"
)

func startTestServer(t *testing.T) *GameServer {
	t.Helper()
	srv, err := NewGameServer(Options{
		Addr:         "127.0.0.1:0",
		Proto:        "tcp",
		TPS:          60,
		HistoryTicks: 64,
		Subtick:      true,
		Seed:         1,
		JWTSecret:    "test",
		Log:          zerolog.Nop(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := srv.Listen(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(srv.Shutdown)
	return srv
}

// readUntil reads packets until match returns true or the deadline passes.
func readUntil(t *testing.T, conn net.Conn, match func(*protocol.Packet) bool) *protocol.Packet {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	for {
		pkt, err := protocol.ReadPacket(conn)
		if err != nil {
			t.Fatalf("read: %v", err)
		}
		if match(pkt) {
			return pkt
		}
	}
}

func join(t *testing.T, addr, token string) (net.Conn, *protocol.JoinResponse) {
	t.Helper()
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.Fatal(err)
	}
	if err := protocol.WritePacket(conn, protocol.NewJoinRequestPacket("tester", token)); err != nil {
		t.Fatal(err)
	}
	pkt := readUntil(t, conn, func(p *protocol.Packet) bool { return p.Type == protocol.MessageTypeJoinResponse })
	resp, err := protocol.ParseJoinResponse(pkt)
	if err != nil {
		t.Fatal(err)
	}
	return conn, resp
}

func TestServerAcknowledgesInput(t *testing.T) {
	srv := startTestServer(t)
	conn, resp := join(t, srv.Addr().String(), "")
	defer conn.Close()

	if !resp.Success || resp.PlayerID == 0 || resp.SessionToken == "" || resp.HistoryTicks != 64 {
		t.Fatalf("join response %+v", resp)
	}

	sample := core.InputSample{Sequence: 1, PointerX: 10, PointerY: 10, Sensitivity: core.DefaultSensitivity}
	if err := protocol.WritePacket(conn, protocol.NewMouseUpdatePacket(protocol.CoreSampleToMouseUpdate(sample))); err != nil {
		t.Fatal(err)
	}
	readUntil(t, conn, func(p *protocol.Packet) bool {
		if p.Type != protocol.MessageTypeGameUpdate {
			return false
		}
		gu, err := protocol.ParseGameUpdate(p)
		return err == nil && gu.LastProcessedInputSequence == 1
	})

	if err := protocol.WritePacket(conn, protocol.NewPingPacket(1234)); err != nil {
		t.Fatal(err)
	}
	pkt := readUntil(t, conn, func(p *protocol.Packet) bool { return p.Type == protocol.MessageTypePong })
	pong, err := protocol.ParsePong(pkt)
	if err != nil || pong.ClientTime != 1234 || pong.ServerTick == 0 {
		t.Fatalf("pong %+v %v", pong, err)
	}
}

func TestServerResumesSession(t *testing.T) {
	srv := startTestServer(t)
	addr := srv.Addr().String()

	first, resp := join(t, addr, "")
	first.Close()

	// The room frees the seat once it notices the disconnect.
	var resumed *protocol.JoinResponse
	for i := 0; i < 50; i++ {
		conn, r := join(t, addr, resp.SessionToken)
		if r.Success {
			resumed = r
			defer conn.Close()
			break
		}
		conn.Close()
		time.Sleep(20 * time.Millisecond)
	}
	if resumed == nil {
		t.Fatal("session never resumed")
	}
	if resumed.PlayerID != resp.PlayerID {
		t.Fatalf("resumed as player %d, want %d", resumed.PlayerID, resp.PlayerID)
	}
	if len(srv.Rooms().Stats()) != 1 {
		t.Fatalf("rooms %v, want the original range only", srv.Rooms().Stats())
	}
}
