// Package connection is a client side websocket to a relay, with
// permessage-deflate when the relay offers it.
//
// Reading is done by a single goroutine. Writing is safe from any number of
// goroutines: data frames, pings, close frames and the replies to control
// frames the reader receives are all written under one mutex so frames never
// interleave on the socket.
package connection

import (
	"bufio"
	"bytes"
	"compress/flate"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/Hubmakerlabs/cyan/pkg/context"
	"github.com/Hubmakerlabs/cyan/pkg/slog"
	"github.com/gobwas/httphead"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsflate"
	"github.com/gobwas/ws/wsutil"
)

var log, chk = slog.New(os.Stderr)

// MaxMessageSize is the write buffer size, larger messages are fragmented.
const MaxMessageSize = 512000

type C struct {
	Conn              net.Conn
	enableCompression bool
	flateReader       *wsflate.Reader
	reader            *wsutil.Reader
	readState         *wsflate.MessageState
	flateWriter       *wsflate.Writer
	writer            *wsutil.Writer
	writeState        *wsflate.MessageState
	mx                sync.Mutex
}

// handshakeTail reads whatever the handshake left buffered before reading
// from the socket again. The buffer goes back to the pool once drained.
type handshakeTail struct {
	br   *bufio.Reader
	conn net.Conn
}

func (h *handshakeTail) Read(p []byte) (n int, err error) {
	if h.br != nil {
		if h.br.Buffered() > 0 {
			return h.br.Read(p)
		}
		ws.PutReader(h.br)
		h.br = nil
	}
	return h.conn.Read(p)
}

// New dials url and completes the websocket handshake. The dial is bounded
// by c.
func New(c context.T, url string, requestHeader http.Header) (
	connection *C, err error) {

	dialer := ws.Dialer{
		Header: ws.HandshakeHeaderHTTP(requestHeader),
		Extensions: []httphead.Option{
			wsflate.DefaultParameters.Option(),
		},
	}
	conn, br, hs, err := dialer.Dial(c, url)
	if chk.D(err) {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}
	enableCompression := false
	state := ws.StateClientSide
	for _, extension := range hs.Extensions {
		if string(extension.Name) == wsflate.ExtensionName {
			enableCompression = true
			state |= ws.StateExtended
			break
		}
	}
	connection = &C{Conn: conn, enableCompression: enableCompression}
	// reader, the frame headers it reads set its state
	var source io.Reader = conn
	if br != nil {
		source = &handshakeTail{br: br, conn: conn}
	}
	connection.readState = &wsflate.MessageState{}
	if enableCompression {
		connection.flateReader = wsflate.NewReader(nil,
			func(r io.Reader) wsflate.Decompressor {
				return flate.NewReader(r)
			})
	}
	connection.reader = &wsutil.Reader{
		Source:         source,
		State:          state,
		OnIntermediate: connection.handleControl,
		CheckUTF8:      false,
		Extensions: []wsutil.RecvExtension{
			connection.readState,
		},
	}
	// writer, every outbound message is compressed once negotiated
	connection.writeState = &wsflate.MessageState{}
	if enableCompression {
		connection.writeState.SetCompressed(true)
		connection.flateWriter = wsflate.NewWriter(nil,
			func(w io.Writer) wsflate.Compressor {
				fw, err := flate.NewWriter(w, 4)
				if chk.E(err) {
					log.E.F("failed to create flate writer: %v", err)
				}
				return fw
			})
	}
	connection.writer = wsutil.NewWriterSize(conn, state, ws.OpText,
		MaxMessageSize)
	connection.writer.SetExtensions(connection.writeState)
	return
}

// handleControl answers ping and close frames. The reply is rendered into a
// buffer first so it can be written in one piece under the write lock.
func (c *C) handleControl(h ws.Header, r io.Reader) (err error) {
	var buf bytes.Buffer
	err = wsutil.ControlFrameHandler(&buf, ws.StateClientSide)(h, r)
	if buf.Len() > 0 {
		c.mx.Lock()
		_, werr := c.Conn.Write(buf.Bytes())
		c.mx.Unlock()
		if werr != nil && err == nil {
			err = werr
		}
	}
	return
}

// WriteMessage writes data as one text message.
func (c *C) WriteMessage(data []byte) (err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if c.writeState.IsCompressed() {
		c.flateWriter.Reset(c.writer)
		if _, err = io.Copy(c.flateWriter, bytes.NewReader(data)); chk.D(err) {
			return fmt.Errorf("failed to write message: %w", err)
		}
		if err = c.flateWriter.Close(); chk.D(err) {
			return fmt.Errorf("failed to close flate writer: %w", err)
		}
	} else {
		if _, err = io.Copy(c.writer, bytes.NewReader(data)); chk.D(err) {
			return fmt.Errorf("failed to write message: %w", err)
		}
	}
	if err = c.writer.Flush(); chk.D(err) {
		return fmt.Errorf("failed to flush writer: %w", err)
	}
	return nil
}

// Ping sends a ping control frame.
func (c *C) Ping() (err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	return wsutil.WriteClientMessage(c.Conn, ws.OpPing, nil)
}

// WriteClose sends a normal closure frame. It does not close the socket.
func (c *C) WriteClose() (err error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	return wsutil.WriteClientMessage(c.Conn, ws.OpClose,
		ws.NewCloseFrameBody(ws.StatusNormalClosure, ""))
}

// ReadMessage copies the next text or binary message into buf, answering
// control frames that arrive before it.
func (c *C) ReadMessage(cx context.T, buf io.Writer) (err error) {
	for {
		select {
		case <-cx.Done():
			return cx.Err()
		default:
		}
		var h ws.Header
		if h, err = c.reader.NextFrame(); err != nil {
			return fmt.Errorf("failed to advance frame: %w", err)
		}
		if h.OpCode.IsControl() {
			if err = c.handleControl(h, c.reader); err != nil {
				return fmt.Errorf("failed to handle control frame: %w", err)
			}
			continue
		}
		if h.OpCode == ws.OpBinary || h.OpCode == ws.OpText {
			break
		}
		if err = c.reader.Discard(); chk.E(err) {
			return fmt.Errorf("failed to discard: %w", err)
		}
	}
	if c.readState.IsCompressed() && c.enableCompression {
		c.flateReader.Reset(c.reader)
		if _, err = io.Copy(buf, c.flateReader); chk.D(err) {
			return fmt.Errorf("failed to read message: %w", err)
		}
	} else {
		if _, err = io.Copy(buf, c.reader); chk.D(err) {
			return fmt.Errorf("failed to read message: %w", err)
		}
	}
	return nil
}

func (c *C) Close() (err error) {
	return c.Conn.Close()
}
