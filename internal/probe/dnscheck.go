package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

type DNSClass string

const (
	DNSResolves       DNSClass = "RESOLVES"
	DNSNXDomain       DNSClass = "NXDOMAIN"
	DNSNoARecord      DNSClass = "NO_A_RECORD"
	DNSServfailOrTime DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName    DNSClass = "INVALID_NAME"
)

type DNSStatus struct {
	Domain        string
	IPs           []net.IP
	Nameservers   []string
	Class         DNSClass
	ResolverError string
}

const defaultDNSTimeout = 3 * time.Second

// CheckDNS classifies why a host does or does not resolve. A nil resolver
// means the OS resolver.
func CheckDNS(ctx context.Context, r *net.Resolver, domain string, timeout time.Duration) DNSStatus {
	s := DNSStatus{Domain: strings.TrimSpace(domain)}
	if s.Domain == "" || strings.Contains(s.Domain, "://") || strings.ContainsAny(s.Domain, "/ ") {
		s.Class = DNSInvalidName
		return s
	}
	if r == nil {
		r = net.DefaultResolver
	}
	if timeout <= 0 {
		timeout = defaultDNSTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ips, err := r.LookupIP(ctx, "ip", s.Domain)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
		return s
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) {
			if de.IsNotFound {
				s.Class = DNSNXDomain
			} else if de.IsTemporary || de.Timeout() {
				s.Class = DNSServfailOrTime
			}
		}
	}

	// a zone with nameservers but no address records is misconfigured, not missing
	if ns, err := r.LookupNS(ctx, s.Domain); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		if s.Class == DNSNXDomain || s.Class == "" {
			s.Class = DNSNoARecord
		}
	}

	if s.Class == "" {
		if s.ResolverError != "" {
			s.Class = DNSServfailOrTime
		} else {
			s.Class = DNSNXDomain
		}
	}
	return s
}
