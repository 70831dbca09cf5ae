package domain

// Strategy names, in the order the resolver tries them.
const (
	StrategyExact           = "exact"
	StrategyStripPostalCode = "strip_postal_code"
	StrategyAbbreviateTerms = "abbreviate_terms"
	StrategyStreetDistrict  = "street_district"
	StrategyLocality        = "locality"
)

// Strategy rewrites a trimmed address into a provider query. Rewrite
// returns false when its precondition does not hold and the strategy is skipped.
// Every strategy after exact works on the normalized form.
type Strategy struct {
	Name    string
	Rewrite func(address string) (string, bool)
}

// DefaultStrategies returns the fallback chain from least to most aggressive.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: StrategyExact, Rewrite: rewriteExact},
		{Name: StrategyStripPostalCode, Rewrite: rewriteStripPostalCode},
		{Name: StrategyAbbreviateTerms, Rewrite: rewriteAbbreviateTerms},
		{Name: StrategyStreetDistrict, Rewrite: rewriteStreetDistrict},
		{Name: StrategyLocality, Rewrite: rewriteLocality},
	}
}

func rewriteExact(address string) (string, bool) {
	return address, address != ""
}

func rewriteStripPostalCode(address string) (string, bool) {
	n := NormalizeAddress(address)
	if !HasPostalCode(n) {
		return "", false
	}
	q := StripPostalCode(n)
	return q, q != "" && q != address
}

func rewriteAbbreviateTerms(address string) (string, bool) {
	q := AbbreviateFormalTerms(NormalizeAddress(address))
	return q, q != "" && q != address
}

func rewriteStreetDistrict(address string) (string, bool) {
	sd, ok := ExtractStreetDistrict(AbbreviateFormalTerms(NormalizeAddress(address)))
	if !ok {
		return "", false
	}
	return sd.Query(), true
}

func rewriteLocality(address string) (string, bool) {
	loc, ok := ExtractLocality(AbbreviateFormalTerms(NormalizeAddress(address)))
	if !ok {
		return "", false
	}
	return loc.Query(), true
}
