package wgconf

import (
	"net/netip"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// ParsePrefix parses an IPv4 CIDR such as "10.0.0.1/24". Host bits are kept.
func ParsePrefix(s string) (netip.Prefix, error) {
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, errors.NewAddressError(errors.ErrCodeInvalidCIDR, s, err)
	}
	if err := validatePrefix(p); err != nil {
		return netip.Prefix{}, err
	}
	return p, nil
}

// MustParsePrefix is like ParsePrefix but panics on error. It is meant for
// literals in tests and examples.
func MustParsePrefix(s string) netip.Prefix {
	p, err := ParsePrefix(s)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePrefixes parses every entry, stopping at the first failure.
func ParsePrefixes(values []string) ([]netip.Prefix, error) {
	prefixes := make([]netip.Prefix, 0, len(values))
	for _, v := range values {
		p, err := ParsePrefix(v)
		if err != nil {
			return nil, err
		}
		prefixes = append(prefixes, p)
	}
	return prefixes, nil
}

func validatePrefix(p netip.Prefix) error {
	if !p.IsValid() || !p.Addr().Is4() {
		return errors.NewAddressError(errors.ErrCodeInvalidCIDR, p.String(), nil)
	}
	return nil
}
