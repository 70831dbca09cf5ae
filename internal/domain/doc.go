// Package domain models flood-victim reports and the resolution of their
// free-text Thai postal addresses into coordinates.
//
// # Address Conventions
//
// Addresses arrive as typed by field workers or extracted from social-media
// posts, so the same place is written many ways:
//
//	"123 ถ.สุขุมวิท ต.บางนา อ.เมือง จ.สมุทรปราการ 10270"
//	"123 ถนนสุขุมวิท ตำบลบางนา อำเภอเมือง จังหวัดสมุทรปราการ"
//
// Administrative levels use a formal word or its abbreviation as a prefix:
//
//	ตำบล  -> ต.   sub-district (tambon)
//	แขวง  -> ข.   sub-district in Bangkok (khwaeng)
//	อำเภอ -> อ.   district (amphoe)
//	จังหวัด -> จ.   province (changwat)
//
// Roads use ถ. (ถนน). Postal codes are five digits and usually trail the
// address. Thai digits (๐-๙) are folded to ASCII during normalization, which
// every strategy after the first applies.
//
// # Resolution
//
// The geocoding provider matches formal text poorly, so [Resolver] tries an
// ordered chain of [Strategy] rewrites, each more aggressive than the last:
//
//	exact              the trimmed address as written
//	strip_postal_code  trailing postal code removed
//	abbreviate_terms   formal words abbreviated, postal code removed
//	street_district    "<house no.> [ถ.<road>] อ.<district>"
//	locality           "<first locality name> <remaining names>", markers dropped
//
// The first strategy that returns a candidate wins. A transport failure from
// the provider aborts the chain with [ProviderError]; exhausting the chain is
// a normal not-found result.
//
// # Report IDs
//
// Reports without an ID get a deterministic SHA-256 based ID of
// name|address|phones so replays upsert the same row downstream.
package domain
