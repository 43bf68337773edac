package main

import (
	"regexp"
	"strconv"
	"strings"
)

// Canonicalizer normalizes cell addresses: column letter(s) followed by a 1-based row number
type Canonicalizer struct {
	cellAddressRegex *regexp.Regexp
}

func NewCanonicalizer() *Canonicalizer {
	return &Canonicalizer{
		cellAddressRegex: regexp.MustCompile(`^([A-Za-z]+)([0-9]+)$`),
	}
}

func (c *Canonicalizer) Canonicalize(address string) string {
	return strings.ToUpper(strings.TrimSpace(address))
}

func (c *Canonicalizer) IsCellAddress(address string) bool {
	return c.cellAddressRegex.MatchString(address)
}

// Split returns the canonical column letters and the row number of an address
func (c *Canonicalizer) Split(address string) (column string, row int, ok bool) {
	matches := c.cellAddressRegex.FindStringSubmatch(c.Canonicalize(address))
	if matches == nil {
		return "", 0, false
	}

	row, err := strconv.Atoi(matches[2])
	if err != nil || row < 1 {
		return "", 0, false
	}

	return matches[1], row, true
}
