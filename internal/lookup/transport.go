package lookup

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	xproxy "golang.org/x/net/proxy"
)

func newTransport(proxyURL string, timeout time.Duration) (*http.Transport, error) {
	base := http.DefaultTransport.(*http.Transport).Clone()
	proxyURL = strings.TrimSpace(proxyURL)
	if proxyURL == "" {
		base.Proxy = http.ProxyFromEnvironment
		return base, nil
	}

	u, err := url.Parse(proxyURL)
	if err != nil {
		return nil, fmt.Errorf("parse proxy: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		base.Proxy = http.ProxyURL(u)
		return base, nil
	case "socks5", "socks5h":
		d, err := newSOCKS5Dialer(u, timeout)
		if err != nil {
			return nil, err
		}
		base.Proxy = nil
		base.DialContext = d
		return base, nil
	default:
		return nil, fmt.Errorf("unsupported proxy scheme %q", u.Scheme)
	}
}

type dialContextFunc func(ctx context.Context, network, addr string) (net.Conn, error)

func newSOCKS5Dialer(u *url.URL, timeout time.Duration) (dialContextFunc, error) {
	forward := &net.Dialer{Timeout: timeout}
	d, err := xproxy.FromURL(u, forward)
	if err != nil {
		return nil, fmt.Errorf("socks5 proxy: %w", err)
	}
	if cd, ok := d.(xproxy.ContextDialer); ok {
		return cd.DialContext, nil
	}
	return func(_ context.Context, network, addr string) (net.Conn, error) {
		return d.Dial(network, addr)
	}, nil
}
