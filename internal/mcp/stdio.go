// ABOUTME: Stdio transport: one JSON-RPC message per line on stdin, responses on stdout.
// ABOUTME: Requests are served one at a time; logs must go to stderr to keep stdout clean.

package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// StdioServer serves MCP over standard input and output. This is the
// transport local clients (Claude Desktop and similar) spawn directly.
type StdioServer struct {
	dispatcher *Dispatcher
	logger     *slog.Logger
	in         io.Reader
	out        io.Writer
}

// NewStdioServer creates a stdio transport bound to the process's
// stdin and stdout.
func NewStdioServer(dispatcher *Dispatcher, logger *slog.Logger) *StdioServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &StdioServer{
		dispatcher: dispatcher,
		logger:     logger,
		in:         os.Stdin,
		out:        os.Stdout,
	}
}

// Run reads messages until EOF or context cancellation. Each request is
// handled before the next line is read; responses are single-line JSON.
func (s *StdioServer) Run(ctx context.Context) error {
	s.logger.Info("stdio transport ready", "tools", s.dispatcher.ToolCount())

	scanner := bufio.NewScanner(s.in)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxRequestBodySize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		resp := s.dispatcher.Dispatch(ctx, line)
		if resp == nil {
			continue
		}
		if err := s.write(resp); err != nil {
			return err
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}
	s.logger.Info("stdin closed, stdio transport stopping")
	return nil
}

func (s *StdioServer) write(resp *JSONRPCResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	if _, err := fmt.Fprintf(s.out, "%s\n", data); err != nil {
		return fmt.Errorf("writing response: %w", err)
	}
	return nil
}
