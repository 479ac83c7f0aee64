// Package obfuscation holds the AmneziaWG junk-packet and header obfuscation
// parameters and their validation rules.
package obfuscation

import (
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/chiquitav2/wireguard-conf/pkg/errors"
)

// Limits from the AmneziaWG kernel module documentation.
const (
	MaxJunkCount      = 128
	MaxJunkSize       = 1280
	MaxPaddingSize    = 1280
	handshakeOverhead = 56
)

// Field names as written in config files and reported by validation errors.
const (
	FieldJc      = "Jc"
	FieldJmin    = "Jmin"
	FieldJmax    = "Jmax"
	FieldS1      = "S1"
	FieldS2      = "S2"
	FieldHeaders = "H1/H2/H3/H4"
)

// Settings are the nine AmneziaWG obfuscation values. A Settings built with
// a struct literal may be invalid; New and Validate enforce the rules.
type Settings struct {
	// Jc is the junk packet count, 1..128.
	Jc uint `mapstructure:"jc" yaml:"jc" json:"jc"`
	// Jmin and Jmax bound junk packet sizes, Jmin < Jmax <= 1280.
	Jmin uint `mapstructure:"jmin" yaml:"jmin" json:"jmin"`
	Jmax uint `mapstructure:"jmax" yaml:"jmax" json:"jmax"`
	// S1 and S2 pad the init and response handshake messages.
	// S1 < 1280, S2 < 1280 and S1+56 != S2.
	S1 uint `mapstructure:"s1" yaml:"s1" json:"s1"`
	S2 uint `mapstructure:"s2" yaml:"s2" json:"s2"`
	// H1..H4 replace the message type headers and must be pairwise distinct.
	H1 uint `mapstructure:"h1" yaml:"h1" json:"h1"`
	H2 uint `mapstructure:"h2" yaml:"h2" json:"h2"`
	H3 uint `mapstructure:"h3" yaml:"h3" json:"h3"`
	H4 uint `mapstructure:"h4" yaml:"h4" json:"h4"`
}

// New creates validated Settings.
func New(jc, jmin, jmax, s1, s2, h1, h2, h3, h4 uint) (*Settings, error) {
	s := &Settings{
		Jc:   jc,
		Jmin: jmin,
		Jmax: jmax,
		S1:   s1,
		S2:   s2,
		H1:   h1,
		H2:   h2,
		H3:   h3,
		H4:   h4,
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the rules in a fixed order and reports only the first
// violation.
func (s Settings) Validate() error {
	if s.Jc < 1 || s.Jc > MaxJunkCount {
		return errors.NewObfuscationError(FieldJc)
	}
	if s.Jmin >= s.Jmax {
		return errors.NewObfuscationError(FieldJmin)
	}
	if s.Jmax > MaxJunkSize {
		return errors.NewObfuscationError(FieldJmax)
	}
	if s.S1 >= MaxPaddingSize || s.S1+handshakeOverhead == s.S2 {
		return errors.NewObfuscationError(FieldS1)
	}
	if s.S2 >= MaxPaddingSize {
		return errors.NewObfuscationError(FieldS2)
	}
	if !distinct(s.H1, s.H2, s.H3, s.H4) {
		return errors.NewObfuscationError(FieldHeaders)
	}
	return nil
}

// Random draws settings from the recommended ranges. Header values are
// redrawn until pairwise distinct, so the result always validates.
func Random() Settings {
	s := Settings{
		Jc:   between(3, 10),
		Jmin: between(40, 60),
	}
	s.Jmax = between(s.Jmin+10, 90)
	s.S1 = between(15, 150)
	s.S2 = s.S1 + handshakeOverhead
	for s.S2 == s.S1+handshakeOverhead {
		s.S2 = between(1, 150)
	}

	for {
		s.H1 = between(10, 2147483640)
		s.H2 = between(10, 2147483640)
		s.H3 = between(10, 2147483640)
		s.H4 = between(10, 2147483640)
		if distinct(s.H1, s.H2, s.H3, s.H4) {
			return s
		}
	}
}

// Clone returns a copy of s, or nil for nil.
func (s *Settings) Clone() *Settings {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// String renders the settings as config lines, one per field.
func (s Settings) String() string {
	var b strings.Builder
	for _, f := range s.fields() {
		fmt.Fprintf(&b, "%s = %d\n", f.name, f.value)
	}
	return b.String()
}

type field struct {
	name  string
	value uint
}

func (s Settings) fields() []field {
	return []field{
		{"Jc", s.Jc},
		{"Jmin", s.Jmin},
		{"Jmax", s.Jmax},
		{"S1", s.S1},
		{"S2", s.S2},
		{"H1", s.H1},
		{"H2", s.H2},
		{"H3", s.H3},
		{"H4", s.H4},
	}
}

func distinct(values ...uint) bool {
	seen := make(map[uint]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return false
		}
		seen[v] = struct{}{}
	}
	return true
}

// between returns a uniformly random value in [lo, hi].
func between(lo, hi uint) uint {
	return lo + rand.UintN(hi-lo+1)
}
