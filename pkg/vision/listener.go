package vision

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"net"
	"sync"
	"time"

	"github.com/astraios/go-aocs/internal/log"
)

// Wire format from the vision collaborator: little-endian
// float32 angle_error, float32 distance, uint8 detected.
const frameSize = 9

// ackByte is sent back after every accepted frame.
const ackByte = 0x01

// Listener accepts a connection from the vision process and publishes
// decoded observations into a Feed. One marker pipeline connects at a
// time; a dropped connection is waited out and replaced.
type Listener struct {
	addr string
	feed *Feed

	mu    sync.Mutex
	bound net.Addr
}

// NewListener creates a listener bound to addr (e.g. ":8888").
func NewListener(addr string, feed *Feed) *Listener {
	return &Listener{addr: addr, feed: feed}
}

// Addr returns the bound address once Run has started listening, or nil.
func (l *Listener) Addr() net.Addr {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.bound
}

// Run accepts and serves vision connections until the context is
// cancelled. Blocks; call in a goroutine.
func (l *Listener) Run(ctx context.Context) error {
	lc := net.ListenConfig{}
	ln, err := lc.Listen(ctx, "tcp", l.addr)
	if err != nil {
		return fmt.Errorf("vision listen on %s: %w", l.addr, err)
	}
	defer ln.Close()

	l.mu.Lock()
	l.bound = ln.Addr()
	l.mu.Unlock()

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	log.Info("vision listener started", "addr", l.addr)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Warn("vision accept failed", "err", err)
			time.Sleep(time.Second)
			continue
		}
		log.Info("vision system connected", "remote", conn.RemoteAddr().String())
		l.serve(ctx, conn)
	}
}

// serve reads frames from one connection until it drops.
func (l *Listener) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, frameSize)
	for {
		if ctx.Err() != nil {
			return
		}
		if _, err := io.ReadFull(conn, buf); err != nil {
			if err != io.EOF {
				log.Warn("vision read failed", "err", err)
			}
			log.Info("vision system disconnected")
			return
		}

		angleError, distance, detected := decodeFrame(buf)
		l.feed.Publish(angleError, distance, detected)

		if _, err := conn.Write([]byte{ackByte}); err != nil {
			log.Warn("vision ack failed", "err", err)
			return
		}
	}
}

// decodeFrame unpacks one 9-byte observation frame.
func decodeFrame(buf []byte) (angleError, distance float64, detected bool) {
	angleError = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[0:4])))
	distance = float64(math.Float32frombits(binary.LittleEndian.Uint32(buf[4:8])))
	detected = buf[8] != 0
	return angleError, distance, detected
}
