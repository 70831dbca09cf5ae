package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/nyaruka/phonenumbers"
)

// phoneRegion is the default region for numbers written without a country code.
const phoneRegion = "TH"

// ParseReport deserializes a RawEvent's value into a Report.
func ParseReport(raw RawEvent) (Report, error) {
	var r Report
	if err := json.Unmarshal(raw.Value, &r); err != nil {
		return Report{}, fmt.Errorf("parse report: %w", err)
	}
	if r.ID == "" && strings.TrimSpace(r.Name) == "" && strings.TrimSpace(r.Address) == "" {
		return Report{}, fmt.Errorf("parse report: no id, name or address")
	}
	return r, nil
}

// NormalizeReport cleans up fields written by humans and the extraction model:
// trims text, normalizes phone numbers, clamps urgency and defaults status.
// Reports without an ID get a deterministic one so downstream upserts are idempotent.
func NormalizeReport(r Report) Report {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Notes = strings.TrimSpace(r.Notes)
	r.Phones = normalizePhones(r.Phones)
	r.Urgency = clampUrgency(r.Urgency)
	r.Household = normalizeHousehold(r.Household)

	if r.Status == "" {
		r.Status = StatusPending
	}
	if r.ID == "" {
		r.ID = generateID(r.Name, r.Address, r.Phones)
	}
	r.ProcessedAt = clock.Now().UTC()
	return r
}

// NormalizePhone formats a Thai phone number as E.164. Unparseable or
// invalid input is returned trimmed.
func NormalizePhone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, phoneRegion)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func normalizePhones(phones []string) []string {
	if len(phones) == 0 {
		return nil
	}
	out := make([]string, 0, len(phones))
	seen := make(map[string]struct{}, len(phones))
	for _, p := range phones {
		n := NormalizePhone(p)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

func clampUrgency(u int) int {
	switch {
	case u < MinUrgency:
		return MinUrgency
	case u > MaxUrgency:
		return MaxUrgency
	default:
		return u
	}
}

// normalizeHousehold drops negative counts. Groups can overlap (a bedridden
// elder counts twice), so Total is only raised to the largest group.
func normalizeHousehold(h Household) Household {
	h.Total = max(h.Total, 0)
	h.Children = max(h.Children, 0)
	h.Elderly = max(h.Elderly, 0)
	h.Bedridden = max(h.Bedridden, 0)
	h.Total = max(h.Total, h.Children, h.Elderly, h.Bedridden)
	return h
}

// generateID hashes the identifying fields into a stable "rpt-" prefixed ID.
func generateID(name, address string, phones []string) string {
	key := name + "|" + address + "|" + strings.Join(phones, ",")
	sum := sha256.Sum256([]byte(key))
	return "rpt-" + hex.EncodeToString(sum[:8])
}
