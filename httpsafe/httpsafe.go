// Package httpsafe holds small guards for outbound HTTP: URL validation for
// user-supplied endpoints and bounded reads of response bodies.
package httpsafe

import (
	"errors"
	"fmt"
	"io"
	"net"
	"net/url"
	"strings"
)

// MaxSnippet is the default cap for response body excerpts kept in errors.
const MaxSnippet int64 = 512

// ErrUnsafeScheme is returned when a URL uses a non-HTTP(S) scheme.
var ErrUnsafeScheme = errors.New("httpsafe: only http and https schemes are allowed")

// ErrNoHost is returned when a URL has no host.
var ErrNoHost = errors.New("httpsafe: URL has no host")

// ErrPrivate is returned by CheckPublicURL for loopback, link-local and
// private addresses.
var ErrPrivate = errors.New("httpsafe: URL targets a private or loopback address")

// CheckURL checks that rawURL is an absolute http or https URL with a host.
func CheckURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("httpsafe: invalid URL: %w", err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return ErrUnsafeScheme
	}
	if u.Hostname() == "" {
		return ErrNoHost
	}
	return nil
}

// CheckPublicURL is CheckURL plus a rejection of literal private IPs.
// Host names are not resolved.
func CheckPublicURL(rawURL string) error {
	if err := CheckURL(rawURL); err != nil {
		return err
	}
	u, _ := url.Parse(rawURL)
	host := u.Hostname()
	if strings.EqualFold(host, "localhost") {
		return ErrPrivate
	}
	if ip := net.ParseIP(host); ip != nil && IsPrivateIP(ip) {
		return ErrPrivate
	}
	return nil
}

// IsPrivateIP reports whether ip is loopback, link-local, or in a private
// range (RFC 1918, RFC 4193).
func IsPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() ||
		ip.IsPrivate() || ip.IsUnspecified()
}

// Snippet reads at most max bytes of r and returns them trimmed, with "..."
// appended when the body was longer. max <= 0 means MaxSnippet.
func Snippet(r io.Reader, max int64) string {
	if max <= 0 {
		max = MaxSnippet
	}
	data, _ := io.ReadAll(io.LimitReader(r, max+1))
	truncated := int64(len(data)) > max
	if truncated {
		data = data[:max]
	}
	s := strings.TrimSpace(string(data))
	if truncated {
		s += "..."
	}
	return s
}
