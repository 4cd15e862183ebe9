package ingest

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ============================================================================
// UPLOAD DECODING — Charset Sniffing + Delimiter Detection
// ============================================================================
// Exports from spreadsheet tools arrive as UTF-8 (sometimes with a BOM) or a
// legacy single-byte codepage. The sniffing here is deliberately small: valid
// UTF-8 passes through, anything else is scored between Windows-1251 and
// Windows-1252, which cover the Russian and Western exports we see.
// ============================================================================

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// decodeUpload converts raw upload bytes to a UTF-8 string.
func decodeUpload(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	// Legacy codepage. Decode both candidates and keep the one whose
	// high-byte characters land on letters rather than symbols.
	win1251, err1251 := charmap.Windows1251.NewDecoder().Bytes(data)
	win1252, err1252 := charmap.Windows1252.NewDecoder().Bytes(data)

	switch {
	case err1251 != nil && err1252 != nil:
		// Both failed — replace invalid bytes and move on.
		return strings.ToValidUTF8(string(data), "�")
	case err1251 != nil:
		return string(win1252)
	case err1252 != nil:
		return string(win1251)
	}

	if letterScore(win1251) >= letterScore(win1252) {
		return string(win1251)
	}
	return string(win1252)
}

// letterScore counts non-ASCII runes that decoded to letters. A wrong
// codepage guess turns Cyrillic text into box-drawing and punctuation runes,
// which this score penalizes.
func letterScore(data []byte) int {
	score := 0
	for _, r := range string(data) {
		if r < 0x80 {
			continue
		}
		if isLetterRune(r) {
			score++
		} else {
			score--
		}
	}
	return score
}

func isLetterRune(r rune) bool {
	switch {
	case r >= 'а' && r <= 'я', r >= 'А' && r <= 'Я', r == 'ё', r == 'Ё':
		return true
	case r >= 0xC0 && r <= 0xFF: // Latin-1 letters
		return true
	}
	return false
}

// detectDelimiter picks the field separator by scoring candidate delimiters
// over the first sample lines. A candidate wins when it appears a consistent,
// non-zero number of times per line.
func detectDelimiter(content string) rune {
	candidates := []rune{',', ';', '\t'}

	lines := sampleLines(content, 10)
	if len(lines) == 0 {
		return ','
	}

	best := ','
	bestScore := -1
	for _, cand := range candidates {
		counts := make([]int, 0, len(lines))
		for _, line := range lines {
			counts = append(counts, countOutsideQuotes(line, cand))
		}

		// Score: occurrences on the first line, zeroed when lines disagree.
		score := counts[0]
		for _, c := range counts[1:] {
			if c != counts[0] {
				score = 0
				break
			}
		}
		if score > bestScore {
			best = cand
			bestScore = score
		}
	}
	return best
}

func sampleLines(content string, max int) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
		if len(lines) >= max {
			break
		}
	}
	return lines
}

func countOutsideQuotes(line string, delim rune) int {
	count := 0
	inQuotes := false
	for _, r := range line {
		switch {
		case r == '"':
			inQuotes = !inQuotes
		case r == delim && !inQuotes:
			count++
		}
	}
	return count
}
