package protocol

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/RichardKnop/nacho/internal/nacho"
	"github.com/RichardKnop/nacho/internal/pkg/util"
)

const maxMessageSize = 64 * 1024

type Database interface {
	ExecuteStatement(context.Context, nacho.Statement) (nacho.StatementResult, error)
	Stats() nacho.Stats
}

type Parser interface {
	Parse(context.Context, string) (nacho.Statement, error)
}

type Server struct {
	listener net.Listener
	database Database
	parser   Parser
	quit     chan struct{}
	wg       sync.WaitGroup
	logger   *zap.Logger

	// the engine and the parser are single threaded, all statements go through dbMu
	dbMu  sync.Mutex
	fatal chan error

	connections map[uuid.UUID]net.Conn
	connMu      sync.Mutex
}

func NewServer(db Database, aParser Parser, logger *zap.Logger, addr string) (*Server, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	logger.Info("listening", zap.String("addr", listener.Addr().String()))

	srv := &Server{
		database:    db,
		parser:      aParser,
		quit:        make(chan struct{}),
		fatal:       make(chan error, 1),
		connections: make(map[uuid.UUID]net.Conn),
		logger:      logger,
		listener:    listener,
	}

	return srv, nil
}

func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Fatal receives the first fault reported by the database. The server keeps
// answering requests with the fault until it is stopped.
func (s *Server) Fatal() <-chan error {
	return s.fatal
}

func (s *Server) Serve(ctx context.Context) {
	s.wg.Add(1)

	go func() {
		defer s.wg.Done()

		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.quit:
					return
				default:
					s.logger.Error("accept error", zap.Error(err))
					continue
				}
			}

			s.wg.Add(1)
			go func(tcpConn net.Conn) {
				defer s.wg.Done()

				connID := uuid.New()
				if !s.track(connID, tcpConn) {
					tcpConn.Close()
					return
				}

				s.logger.Debug("new connection", zap.Stringer("id", connID))

				s.handleConnection(ctx, connID, tcpConn)

				s.untrack(connID)

				s.logger.Debug("connection closed", zap.Stringer("id", connID))
			}(conn)
		}
	}()
}

func (s *Server) track(connID uuid.UUID, conn net.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	select {
	case <-s.quit:
		return false
	default:
	}
	s.connections[connID] = conn
	return true
}

func (s *Server) untrack(connID uuid.UUID) {
	s.connMu.Lock()
	delete(s.connections, connID)
	s.connMu.Unlock()
}

// Stop closes the listener and every open connection and waits for
// connection handlers to return.
func (s *Server) Stop() {
	s.connMu.Lock()
	close(s.quit)
	for _, conn := range s.connections {
		conn.Close()
	}
	s.connMu.Unlock()

	s.listener.Close()
	s.wg.Wait()
}

func (s *Server) handleConnection(ctx context.Context, connID uuid.UUID, conn net.Conn) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxMessageSize)

	for scanner.Scan() {
		if err := s.handleMessage(ctx, conn, scanner.Bytes()); err != nil {
			s.logger.Error("error handling message", zap.Stringer("id", connID), zap.Error(err))
			return
		}
	}

	if err := scanner.Err(); err != nil {
		select {
		case <-s.quit:
		default:
			s.logger.Error("read error", zap.Stringer("id", connID), zap.Error(err))
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, conn net.Conn, msg []byte) error {
	s.logger.Debug("received message", zap.ByteString("message", msg))

	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return s.sendResponse(conn, Response{
			Success: false,
			Error:   fmt.Sprintf("Invalid JSON: %v", err),
		})
	}

	switch req.Type {
	case RequestPing:
		return s.sendResponse(conn, Response{
			Success: true,
			Message: "pong",
		})
	case RequestStats:
		s.dbMu.Lock()
		stats := s.database.Stats()
		s.dbMu.Unlock()
		return s.sendResponse(conn, Response{
			Success: true,
			Stats:   &stats,
			Message: util.FormatStats(stats),
		})
	case RequestSQL:
		return s.sendResponse(conn, s.handleSQL(ctx, req.SQL))
	default:
		return s.sendResponse(conn, Response{
			Success: false,
			Error:   fmt.Sprintf("Unknown request type: %s", req.Type),
		})
	}
}

func (s *Server) handleSQL(ctx context.Context, sql string) Response {
	// the parser keeps state between calls, it is shared by all connections
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	stmt, err := s.parser.Parse(ctx, sql)
	if err != nil {
		return Response{
			Success: false,
			Error:   fmt.Sprintf("Parse error: %v", err),
		}
	}

	aResult, err := s.database.ExecuteStatement(ctx, stmt)
	if err != nil {
		return s.errorResponse(stmt, err)
	}

	aResponse := Response{
		Kind:         stmt.Kind.String(),
		Success:      true,
		RowsAffected: aResult.RowsAffected,
		Message:      "Executed.",
	}

	if aResult.Rows != nil {
		rows, err := nacho.CollectRows(ctx, aResult.Rows)
		if err != nil {
			return s.errorResponse(stmt, err)
		}
		aResponse.Rows = rows
		aResponse.Message = fmt.Sprintf("Found %d records", len(rows))
	}

	return aResponse
}

func (s *Server) errorResponse(stmt nacho.Statement, err error) Response {
	aResponse := Response{
		Kind:    stmt.Kind.String(),
		Success: false,
		Error:   err.Error(),
	}

	if nacho.IsFatal(err) {
		aResponse.Fatal = true
		select {
		case s.fatal <- err:
		default:
		}
	}

	return aResponse
}

func (s *Server) sendResponse(conn net.Conn, resp Response) error {
	jsonData, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("error marshalling response: %w", err)
	}
	_, err = conn.Write(append(jsonData, '\n'))
	if err != nil {
		return fmt.Errorf("error writing response: %w", err)
	}
	return nil
}
