// Package proxy builds HTTP clients that tunnel through a SOCKS5
// proxy, for deployments where the speech and lookup APIs are only
// reachable that way.
package proxy

import (
	"context"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/proxy"
)

// Client returns an HTTP client that dials through the SOCKS5 proxy at
// socksAddr. An empty address yields a plain client with the same
// timeout.
func Client(socksAddr string, timeout time.Duration) (*http.Client, error) {
	if socksAddr == "" {
		return &http.Client{Timeout: timeout}, nil
	}

	dialer, err := proxy.SOCKS5("tcp", socksAddr, nil, proxy.Direct)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			return dialer.Dial(network, addr)
		},
	}
	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}
