// Package stream implements the newline-delimited stdio transport: one
// JSON-RPC request per line on stdin, one JSON-RPC response per line on
// stdout. Logging never touches stdout, so it can't corrupt the stream.
package stream

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/nexuslabs/nexus/internal/logging"
	"github.com/nexuslabs/nexus/internal/protocol"
	"github.com/nexuslabs/nexus/internal/router"
	"github.com/nexuslabs/nexus/internal/runtime"
)

// Stdio reads newline-delimited JSON-RPC requests from r and writes
// responses to w, one per line.
type Stdio struct {
	reader *bufio.Reader
	writer io.Writer
	logger *logging.Logger
}

// NewStdio builds a Stdio transport over the given reader/writer.
func NewStdio(r io.Reader, w io.Writer, logger *logging.Logger) *Stdio {
	return &Stdio{reader: bufio.NewReader(r), writer: w, logger: logger}
}

// errRead marks a failure of the underlying reader, as opposed to a
// malformed line.
var errRead = errors.New("stdio read")

// ReadRequest reads the next non-empty line and parses it as a JSON-RPC
// request. It returns (nil, nil) on EOF, and skips blank lines rather than
// treating them as malformed input.
func (s *Stdio) ReadRequest() (*protocol.Request, error) {
	for {
		line, err := s.reader.ReadString('\n')
		trimmed := strings.TrimSpace(line)

		if trimmed != "" {
			req, parseErr := protocol.ParseRequest([]byte(trimmed))
			if parseErr != nil {
				return nil, parseErr
			}
			if validateErr := req.Validate(); validateErr != nil {
				return nil, validateErr
			}
			return req, nil
		}

		if err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("%w: %w", errRead, err)
		}
	}
}

// WriteResponse serializes resp as compact JSON followed by a newline and
// flushes it immediately so the client sees it promptly.
func (s *Stdio) WriteResponse(resp *protocol.Response) error {
	j, err := resp.ToJSON()
	if err != nil {
		return err
	}
	if _, err := io.WriteString(s.writer, j); err != nil {
		return err
	}
	_, err = io.WriteString(s.writer, "\n")
	return err
}

// Serve runs the read-dispatch-write loop until EOF or ctx is cancelled.
// Malformed requests get a JSON-RPC parse-error response rather than
// terminating the loop; only a read/write I/O failure or EOF stops it.
func (s *Stdio) Serve(ctx context.Context, rt *router.Router, state *runtime.State) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		req, err := s.ReadRequest()
		if err != nil {
			if errors.Is(err, errRead) {
				return err
			}
			resp := protocol.Failure(protocol.NullID, protocol.ParseError(err.Error()))
			if writeErr := s.WriteResponse(resp); writeErr != nil {
				return writeErr
			}
			continue
		}
		if req == nil {
			if s.logger != nil {
				s.logger.Debug(ctx, "stdio transport reached EOF")
			}
			return nil
		}

		resp := rt.Handle(ctx, req, state)
		if err := s.WriteResponse(resp); err != nil {
			return err
		}

		if s.logger != nil {
			s.logger.Debug(ctx, "handled request", zap.String("method", req.Method))
		}
	}
}
