package server

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/cayleygraph/tsengine/errs"
)

// readRequest implements spec §4.6 item 1's manual HTTP framing: read
// headers line-by-line until the blank CRLF-CRLF line, parse
// Content-Length case-insensitively, then read exactly that many body
// bytes into a fixed-size buffer, rejecting anything that would overflow
// it. There is deliberately no net/http.Server on this path (spec §9's
// "SPMC ring as raw pointers" note re-architects the whole accept/serve
// loop away from the standard server, not just the ring).
type request struct {
	method string
	path   string
	body   string
}

func readRequest(br *bufio.Reader, maxBody int) (*request, *errs.Error) {
	reqLine, err := br.ReadString('\n')
	if err != nil {
		return nil, errs.ProtocolErr("server: failed to read request line: %v", err)
	}
	fields := strings.Fields(reqLine)
	req := &request{}
	if len(fields) >= 2 {
		req.method, req.path = fields[0], fields[1]
	}

	contentLength := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			return nil, errs.ProtocolErr("server: failed to read header line: %v", err)
		}
		trimmed := strings.TrimRight(line, "\r\n")
		if trimmed == "" {
			break // blank line: end of headers
		}
		name, value, ok := strings.Cut(trimmed, ":")
		if !ok {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, convErr := strconv.Atoi(strings.TrimSpace(value))
			if convErr != nil || n < 0 {
				return nil, errs.ProtocolErr("server: malformed Content-Length %q", value)
			}
			contentLength = n
		}
	}

	if contentLength > maxBody {
		return nil, errs.ProtocolErr("server: body of %d bytes exceeds the %d byte limit", contentLength, maxBody)
	}

	buf := make([]byte, contentLength)
	if n, err := readFull(br, buf); err != nil || n != contentLength {
		return nil, errs.ProtocolErr("server: short body read (%d of %d bytes): %v", n, contentLength, err)
	}
	req.body = string(buf)
	return req, nil
}

func readFull(br *bufio.Reader, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := br.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// firstLine returns the body's single command line (spec §4.6 item 2:
// "the command is a single line"), trimming a trailing CR/LF if present.
func firstLine(body string) string {
	if i := strings.IndexAny(body, "\r\n"); i >= 0 {
		return body[:i]
	}
	return body
}
