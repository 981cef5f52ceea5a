package matching

import "strings"

// thesaurus is the fixed synonym table for the matcher: a hit in
// either direction between description and label counts as a synonym
// match (score 0.95).
var thesaurus = map[string][]string{
	"muro":      {"tabique", "wall", "partition"},
	"tabique":   {"muro", "wall", "partition"},
	"losa":      {"radier", "slab", "pavimento", "piso"},
	"radier":    {"losa", "slab", "pavimento"},
	"piso":      {"pavimento", "floor", "losa"},
	"pavimento": {"piso", "floor", "losa", "radier"},
	"cielo":     {"ceiling", "raso", "cielorraso"},
	"ceiling":   {"cielo", "raso"},
	"puerta":    {"door"},
	"ventana":   {"window"},
}

// synonymHit reports whether a and b are linked by the thesaurus word
// by word: both have the same number of words, and every word pair that
// differs is a thesaurus link in either direction ("tabique interior"
// and "muro interior" are synonyms).
func synonymHit(a, b string) bool {
	wordsA, wordsB := strings.Fields(a), strings.Fields(b)
	if len(wordsA) != len(wordsB) {
		return false
	}
	links := 0
	for i := range wordsA {
		if wordsA[i] == wordsB[i] {
			continue
		}
		if !wordsLinked(wordsA[i], wordsB[i]) {
			return false
		}
		links++
	}
	return links > 0
}

// wordsLinked reports whether a and b are linked by the thesaurus, in
// either direction.
func wordsLinked(a, b string) bool {
	for _, syn := range thesaurus[a] {
		if syn == b {
			return true
		}
	}
	for _, syn := range thesaurus[b] {
		if syn == a {
			return true
		}
	}
	return false
}
