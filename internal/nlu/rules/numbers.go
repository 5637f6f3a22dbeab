package rules

import (
	"fmt"
	"strconv"
	"strings"
)

// Spoken-number parsing for quantities and prices ("fifty", "one thousand
// five hundred", "2 lakh"). No maintained Go port of word2number exists, so
// the small grammar is implemented here, including Indian scale words.

var numberUnits = map[string]int{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var numberTens = map[string]int{
	"twenty": 20, "thirty": 30, "forty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var numberScales = map[string]int{
	"hundred":  100,
	"thousand": 1000,
	"lakh":     100000,
	"lakhs":    100000,
	"crore":    10000000,
	"crores":   10000000,
}

// wordsToNumber converts a digit string or spelled-out number to an int.
func wordsToNumber(text string) (int, error) {
	text = strings.TrimSpace(strings.ToLower(text))
	if text == "" {
		return 0, fmt.Errorf("empty number")
	}

	if n, err := strconv.Atoi(strings.ReplaceAll(text, ",", "")); err == nil {
		return n, nil
	}

	total, current := 0, 0
	seen := false
	for _, word := range strings.Fields(strings.ReplaceAll(text, "-", " ")) {
		if word == "and" {
			continue
		}
		if n, err := strconv.Atoi(word); err == nil {
			current += n
			seen = true
			continue
		}
		if u, ok := numberUnits[word]; ok {
			current += u
			seen = true
			continue
		}
		if t, ok := numberTens[word]; ok {
			current += t
			seen = true
			continue
		}
		if s, ok := numberScales[word]; ok {
			if current == 0 {
				current = 1
			}
			if s == 100 {
				current *= s
			} else {
				total += current * s
				current = 0
			}
			seen = true
			continue
		}
		return 0, fmt.Errorf("not a number word: %q", word)
	}

	if !seen {
		return 0, fmt.Errorf("no number in %q", text)
	}
	return total + current, nil
}
