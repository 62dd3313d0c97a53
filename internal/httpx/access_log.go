package httpx

import (
	"fmt"
	"io"
	"net"

	"github.com/gorilla/handlers"
)

// AccessLog is a handlers.LogFormatter that writes the combined log format
// with the request id after the client address.
func AccessLog(w io.Writer, p handlers.LogFormatterParams) {
	r := p.Request
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	id := RequestIDFromContext(r.Context())
	if id == "" {
		id = "-"
	}
	uri := r.RequestURI
	if uri == "" {
		uri = p.URL.RequestURI()
	}
	fmt.Fprintf(w, "%s %s [%s] %q %d %d %q %q\n",
		host, id, p.TimeStamp.Format("02/Jan/2006:15:04:05 -0700"),
		r.Method+" "+uri+" "+r.Proto, p.StatusCode, p.Size, r.Referer(), r.UserAgent())
}
