package server

import (
	"bufio"
	"fmt"
	"net"
	"time"

	"github.com/cayleygraph/tsengine/clog"
	"github.com/cayleygraph/tsengine/command"
	"github.com/cayleygraph/tsengine/errs"
	"github.com/cayleygraph/tsengine/store"
)

// Handler owns the store (already frozen, spec §5) and the worker pool's
// per-connection entry point.
type Handler struct {
	st      *store.Store
	maxBody int
}

func NewHandler(st *store.Store, maxBody int) *Handler {
	if !st.ReadOnly() {
		panic("server: Handler requires a frozen (read-only) store")
	}
	return &Handler{st: st, maxBody: maxBody}
}

// Serve handles one accepted connection to completion and closes it on
// every exit path (spec §5: "connection file... is scoped to a worker
// handler and closed on all exit paths").
func (h *Handler) Serve(conn net.Conn) {
	defer conn.Close()
	br := bufio.NewReader(conn)

	req, err := readRequest(br, h.maxBody)
	if err != nil {
		writeErrorResponse(conn, statusFor(err), err.Error())
		return
	}

	line := firstLine(req.body)
	tokens, terr := command.Tokenize(line)
	if terr != nil {
		writeErrorResponse(conn, 400, terr.Error())
		return
	}

	ctx := command.NewContext(h.st)
	h.dispatchAndRespond(conn, ctx, tokens)
}

func (h *Handler) dispatchAndRespond(conn net.Conn, ctx *command.Context, tokens []string) {
	bw := bufio.NewWriter(conn)
	defer bw.Flush()

	var rows []string
	res, cerr := ctx.Dispatch(tokens, func(cells []command.Cell) bool {
		rows = append(rows, Row(h.st, cells))
		return false
	})
	if cerr != nil {
		writeErrorHeader(bw, statusFor(cerr), cerr.Error())
		return
	}

	if res.IsCount {
		writeStatusHeader(bw, 200, "text/plain; charset=utf-8")
		fmt.Fprintf(bw, "%d\r\n", res.Count)
		return
	}

	writeStatusHeader(bw, 200, "text/tab-separated-values; charset=utf-8")
	if res.Vars != nil {
		bw.WriteString(Header(res.Vars))
		bw.WriteString("\r\n")
	}
	for _, row := range rows {
		bw.WriteString(row)
		bw.WriteString("\r\n")
	}
}

// statusFor maps an error's Kind to the HTTP status spec §6 names: 400 for
// every request-level problem, 500 only for allocation/resource failure.
func statusFor(err *errs.Error) int {
	if err.Kind == errs.Resource {
		return 500
	}
	return 400
}

func writeErrorResponse(conn net.Conn, code int, msg string) {
	bw := bufio.NewWriter(conn)
	writeErrorHeader(bw, code, msg)
	bw.Flush()
}

func writeErrorHeader(bw *bufio.Writer, code int, msg string) {
	writeStatusHeader(bw, code, "text/plain; charset=utf-8")
	bw.WriteString(msg)
	bw.WriteString("\r\n")
}

// writeStatusHeader writes the response status line and headers (spec §6:
// `Server:` header is `MemoryTripleStore`; `Date:` is RFC1123-style).
func writeStatusHeader(bw *bufio.Writer, code int, contentType string) {
	fmt.Fprintf(bw, "HTTP/1.1 %d %s\r\n", code, statusText(code))
	fmt.Fprintf(bw, "Content-Type: %s\r\n", contentType)
	fmt.Fprintf(bw, "Date: %s\r\n", time.Now().UTC().Format(time.RFC1123))
	bw.WriteString("Server: MemoryTripleStore\r\n")
	bw.WriteString("\r\n")
}

func statusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 400:
		return "Bad Request"
	case 500:
		return "Internal Server Error"
	default:
		return "Unknown"
	}
}

// LogRequest is a thin wrapper used by the accept loop for per-connection
// diagnostics, grounded in internal/http/http.go's LogRequest, but logging
// through clog rather than wrapping an http.Handler.
func LogRequest(remoteAddr string) {
	if clog.V(2) {
		clog.Infof("server: handling connection from %s", remoteAddr)
	}
}
