package utils

import (
	"strings"
)

// JKSuffix is appended to IDX ticker codes to form the symbol used as the
// primary key throughout the dataset (Yahoo Finance convention).
const JKSuffix = ".JK"

// ToSymbol converts a bare IDX ticker code ("BBCA") to the canonical symbol
// form ("BBCA.JK"). Codes that already carry a suffix are left alone.
func ToSymbol(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return ""
	}
	if strings.Contains(code, ".") {
		return code
	}
	return code + JKSuffix
}

// ToCode strips the exchange suffix from a symbol: "BBCA.JK" -> "BBCA".
func ToCode(symbol string) string {
	symbol = strings.TrimSpace(symbol)
	if i := strings.IndexByte(symbol, '.'); i >= 0 {
		return symbol[:i]
	}
	return symbol
}
