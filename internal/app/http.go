package app

import (
    "net"
    "net/http"
    "time"
)

// connectTimeout caps the dial and TLS handshake phases when a timeout is set.
const connectTimeout = 10 * time.Second

// newHTTPClient returns the client shared by the page fetch and the robots.txt
// lookup. It has no overall timeout; deadlines come from Config.Timeout through
// the request context. A zero timeout leaves the connect phase unbounded too.
func newHTTPClient(timeout time.Duration) *http.Client {
    var connect time.Duration
    if timeout > 0 {
        connect = min(timeout, connectTimeout)
    }
    transport := &http.Transport{
        Proxy: http.ProxyFromEnvironment,
        DialContext: (&net.Dialer{
            Timeout:   connect,
            KeepAlive: 30 * time.Second,
        }).DialContext,
        ForceAttemptHTTP2:     true,
        MaxIdleConns:          4,
        MaxIdleConnsPerHost:   2,
        IdleConnTimeout:       30 * time.Second,
        TLSHandshakeTimeout:   connect,
        ExpectContinueTimeout: 1 * time.Second,
    }
    return &http.Client{Transport: transport}
}
