package main

import (
	"collabSheet/contracts"
	"math"
	"strconv"
	"strings"
)

type CellReferenceResolver struct {
	canonicalizer *Canonicalizer
}

func NewCellReferenceResolver(canonicalizer *Canonicalizer) *CellReferenceResolver {
	return &CellReferenceResolver{canonicalizer: canonicalizer}
}

// Resolve returns the numeric value of a referenced cell. Missing, blank and
// non-numeric cells contribute 0.
func (r *CellReferenceResolver) Resolve(address string, snapshot contracts.SpreadsheetState) float64 {
	cell, ok := snapshot[r.canonicalizer.Canonicalize(address)]
	if !ok {
		return 0
	}

	if cell.ComputedValue.IsNumber() {
		return cell.ComputedValue.Number()
	}

	text := strings.TrimSpace(cell.ComputedValue.Text())
	if text == "" {
		return 0
	}

	value, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}

	return value
}
