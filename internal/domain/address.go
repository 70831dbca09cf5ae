package domain

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Substitution rewrites every match of Pattern with Replacement.
type Substitution struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// FormalTerms maps formal locality-prefix words to their standard
// abbreviations. Whitespace after the word is consumed so "ตำบล บางนา"
// becomes "ต.บางนา". Order matters: entries are applied top to bottom.
var FormalTerms = []Substitution{
	{Pattern: regexp.MustCompile(`ตำบล\s*`), Replacement: "ต."},
	{Pattern: regexp.MustCompile(`แขวง\s*`), Replacement: "ข."},
	{Pattern: regexp.MustCompile(`อำเภอ\s*`), Replacement: "อ."},
	{Pattern: regexp.MustCompile(`จังหวัด\s*`), Replacement: "จ."},
}

// LocalityMarkers are the abbreviated sub-district, district and province prefixes.
var LocalityMarkers = []string{"ต.", "ข.", "อ.", "จ."}

const (
	roadMarker     = "ถ."
	districtMarker = "อ."
)

var (
	postalCodeRe         = regexp.MustCompile(`\d{5}`)
	trailingPostalCodeRe = regexp.MustCompile(`\s+\d{5}\s*$`)
	whitespaceRe         = regexp.MustCompile(`\s+`)

	// "123", "123/45", optionally "ถ.<road>" or "ถ. <road>".
	streetRe   = regexp.MustCompile(`^(\d+(?:/\d+)?(?:\s+` + regexp.QuoteMeta(roadMarker) + `\s*[^\s\d]\S*)?)`)
	districtRe = regexp.MustCompile(regexp.QuoteMeta(districtMarker) + `\s*([^\s\d]\S*)`)
	localityRe = regexp.MustCompile(`(?:` + markerAlternation() + `)\s*([^\s\d]\S*)`)
	markerRe   = regexp.MustCompile(`(?:` + markerAlternation() + `)\s*`)

	// Thai digits fold to ASCII; NIKHAHIT+SARA AA, a common typing variant,
	// folds to SARA AM so "ตำบล" always matches.
	thaiFold = strings.NewReplacer(
		"\u0e4d\u0e32", "\u0e33",
		"๐", "0", "๑", "1", "๒", "2", "๓", "3", "๔", "4",
		"๕", "5", "๖", "6", "๗", "7", "๘", "8", "๙", "9",
	)
)

func markerAlternation() string {
	quoted := make([]string, len(LocalityMarkers))
	for i, m := range LocalityMarkers {
		quoted[i] = regexp.QuoteMeta(m)
	}
	return strings.Join(quoted, "|")
}

// StreetDistrict is the result of ExtractStreetDistrict.
type StreetDistrict struct {
	Street   string // house number with optional road, e.g. "123 ถ.สุขุมวิท"
	District string // district name without its marker, e.g. "หาดใหญ่"
}

// Query renders the narrowed address sent to the provider.
func (sd StreetDistrict) Query() string {
	return sd.Street + " " + districtMarker + sd.District
}

// Locality is the result of ExtractLocality.
type Locality struct {
	Name      string // first locality name found after a marker
	Remainder string // rest of the address after Name, markers stripped
}

// Query renders the locality-only address sent to the provider.
func (l Locality) Query() string {
	if l.Remainder == "" {
		return l.Name
	}
	return l.Name + " " + l.Remainder
}

// NormalizeAddress trims the input, composes it to NFC, folds Thai digits and
// vowel variants, and collapses whitespace runs. The result is empty for blank input.
func NormalizeAddress(s string) string {
	s = norm.NFC.String(s)
	s = thaiFold.Replace(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// HasPostalCode reports whether a five-digit run appears anywhere in s.
func HasPostalCode(s string) bool {
	return postalCodeRe.MatchString(s)
}

// StripPostalCode removes a trailing five-digit postal code and the
// whitespace around it. Codes elsewhere in the string are left alone.
func StripPostalCode(s string) string {
	return strings.TrimSpace(trailingPostalCodeRe.ReplaceAllString(s, ""))
}

// AbbreviateFormalTerms applies FormalTerms in order and strips any trailing
// postal code. Terms that are already abbreviated are unchanged.
func AbbreviateFormalTerms(s string) string {
	for _, sub := range FormalTerms {
		s = sub.Pattern.ReplaceAllString(s, sub.Replacement)
	}
	return StripPostalCode(s)
}

// ExtractStreetDistrict pulls the leading street part and the district name
// from an abbreviated address. Both must be present.
func ExtractStreetDistrict(s string) (StreetDistrict, bool) {
	street := streetRe.FindStringSubmatch(s)
	if street == nil {
		return StreetDistrict{}, false
	}
	district := districtRe.FindStringSubmatch(s)
	if district == nil {
		return StreetDistrict{}, false
	}
	return StreetDistrict{
		Street:   strings.TrimSpace(street[1]),
		District: district[1],
	}, true
}

// ExtractLocality finds the first name following a locality marker and keeps
// everything after it, minus markers and postal code.
func ExtractLocality(s string) (Locality, bool) {
	loc := localityRe.FindStringSubmatchIndex(s)
	if loc == nil {
		return Locality{}, false
	}
	name := s[loc[2]:loc[3]]
	rest := StripPostalCode(s[loc[1]:])
	rest = markerRe.ReplaceAllString(rest, "")
	rest = postalCodeRe.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(whitespaceRe.ReplaceAllString(rest, " "))
	return Locality{Name: name, Remainder: rest}, true
}
