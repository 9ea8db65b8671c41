// Package bridge serves a locally connected instrument to remote TCP
// clients. A bridge typically runs on the machine that owns the serial or
// GPIB link; remote drivers then connect to it as if it were a
// socket-exposed instrument.
package bridge

import (
	"bufio"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/quenchlab/scpikit/internal/observability"
	"github.com/quenchlab/scpikit/pipeline"
)

// Config for a bridge server.
type Config struct {
	Addr        string
	Termination string // client-side line termination, default "\n"
}

// Server relays SCPI text between remote clients and one local instrument
// connection. The instrument admits a single in-flight command, so relayed
// commands are serialized across all clients.
type Server struct {
	cfg  Config
	conn *pipeline.Conn
	log  zerolog.Logger

	mu        sync.Mutex // serializes instrument access
	ln        net.Listener
	done      chan struct{}
	closeOnce sync.Once
}

func NewServer(cfg Config, conn *pipeline.Conn, log zerolog.Logger) *Server {
	if cfg.Termination == "" {
		cfg.Termination = "\n"
	}
	return &Server{
		cfg:  cfg,
		conn: conn,
		log:  log,
		done: make(chan struct{}),
	}
}

// ListenAndServe listens on the configured address and accepts clients
// until Close.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts clients on ln until Close.
func (s *Server) Serve(ln net.Listener) error {
	s.ln = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("bridge listening")
	for {
		client, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
				return err
			}
		}
		observability.RecordClientSession(ln.Addr().String())
		go s.handle(client)
	}
}

// Close stops accepting clients and unblocks Serve. Safe to call more than
// once. Established client sessions end when their connections do.
func (s *Server) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		if s.ln != nil {
			err = s.ln.Close()
		}
	})
	return err
}

func (s *Server) handle(client net.Conn) {
	defer client.Close()
	log := s.log.With().Str("client", client.RemoteAddr().String()).Logger()
	log.Info().Msg("client connected")

	r := bufio.NewReader(client)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			log.Info().Msg("client disconnected")
			return
		}
		cmd := strings.TrimRight(line, "\r\n")
		if cmd == "" {
			continue
		}

		log.Debug().Str("cmd", cmd).Msg("client -> inst")
		start := time.Now()
		resp, relayErr := s.relay(cmd)
		observability.RecordRelay(relayKind(cmd), relayErr == nil, time.Since(start))

		if relayErr != nil {
			var ie *pipeline.InstrumentError
			if errors.As(relayErr, &ie) {
				// Instrument faults belong to the client, not the session.
				log.Warn().Int("code", ie.Code).Str("message", ie.Message).Msg("instrument error drained")
				if _, err := client.Write([]byte(ie.Error() + s.cfg.Termination)); err != nil {
					return
				}
				continue
			}
			log.Error().Err(relayErr).Str("cmd", cmd).Msg("relay failed; dropping client")
			return
		}

		if isQuery(cmd) {
			log.Debug().Str("resp", resp).Msg("client <- inst")
			if _, err := client.Write([]byte(resp + s.cfg.Termination)); err != nil {
				return
			}
		}
	}
}

// relay forwards one command to the instrument. Commands ending in '?' are
// queried; everything else is sent without awaiting a response.
func (s *Server) relay(cmd string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if isQuery(cmd) {
		return s.conn.Query(cmd)
	}
	return "", s.conn.Send(cmd)
}

func isQuery(cmd string) bool { return strings.HasSuffix(cmd, "?") }

func relayKind(cmd string) string {
	if isQuery(cmd) {
		return "query"
	}
	return "send"
}
