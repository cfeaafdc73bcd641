package shroud

import (
	"strconv"
	"strings"
)

// PolicyMarker pairs a type with a TextPolicy. Markers are zero-size types
// used as the policy parameter of Sensitive.
type PolicyMarker interface {
	Policy() TextPolicy
}

// Secret redacts the whole value.
type Secret struct{}

// Policy implements PolicyMarker.
func (Secret) Policy() TextPolicy { return Full() }

// Token keeps the last 4 characters.
type Token struct{}

// Policy implements PolicyMarker.
func (Token) Policy() TextPolicy { return KeepLast(4) }

// CreditCard keeps the last 4 digits.
type CreditCard struct{}

// Policy implements PolicyMarker.
func (CreditCard) Policy() TextPolicy { return KeepLast(4) }

// PhoneNumber keeps the last 4 digits.
type PhoneNumber struct{}

// Policy implements PolicyMarker.
func (PhoneNumber) Policy() TextPolicy { return KeepLast(4) }

// IPAddress keeps the last 4 characters.
type IPAddress struct{}

// Policy implements PolicyMarker.
func (IPAddress) Policy() TextPolicy { return KeepLast(4) }

// Pii keeps the last 2 characters.
type Pii struct{}

// Policy implements PolicyMarker.
func (Pii) Policy() TextPolicy { return KeepLast(2) }

// Email keeps the first 2 characters of the local part and the domain.
type Email struct{}

// Policy implements PolicyMarker.
func (Email) Policy() TextPolicy { return EmailLocal(2) }

// BlockchainAddress keeps the last 6 characters.
type BlockchainAddress struct{}

// Policy implements PolicyMarker.
func (BlockchainAddress) Policy() TextPolicy { return KeepLast(6) }

// PolicyName identifies a policy in a `redact` struct tag.
// Use these constants in struct tags: `redact:"token"`
type PolicyName string

const (
	NameSecret     PolicyName = "secret"     // [REDACTED]
	NameToken      PolicyName = "token"      // sk_live_abcd1234 -> ************1234
	NameCard       PolicyName = "card"       // 4111111111111234 -> ************1234
	NamePhone      PolicyName = "phone"      // 5551234567 -> ******4567
	NameIP         PolicyName = "ip"         // 192.168.1.100 -> *********.100
	NamePii        PolicyName = "pii"        // Alice -> ***ce
	NameEmail      PolicyName = "email"      // alice@example.com -> al***@example.com
	NameBlockchain PolicyName = "blockchain" // keeps the last 6
	NameSSN        PolicyName = "ssn"        // 123-45-6789 -> ***-**-6789
	NameUUID       PolicyName = "uuid"       // 550e8400-e29b-... -> 550e8400-****-****-****-************
	NameIBAN       PolicyName = "iban"       // GB82WEST12345698765432 -> GB82**************5432
	NamePerson     PolicyName = "name"       // John Smith -> J*** S****
	NameSHA256     PolicyName = "sha256"     // sha256:<12 hex>
	NameBlake2b    PolicyName = "blake2b"    // blake2b:<12 hex>
)

// builtinPolicies returns the default named policy table.
func builtinPolicies() map[PolicyName]TextPolicy {
	return map[PolicyName]TextPolicy{
		NameSecret:     Secret{}.Policy(),
		NameToken:      Token{}.Policy(),
		NameCard:       CreditCard{}.Policy(),
		NamePhone:      PhoneNumber{}.Policy(),
		NameIP:         IPAddress{}.Policy(),
		NamePii:        Pii{}.Policy(),
		NameEmail:      Email{}.Policy(),
		NameBlockchain: BlockchainAddress{}.Policy(),
		NameSSN:        SSNPolicy(),
		NameUUID:       UUIDPolicy(),
		NameIBAN:       IBANPolicy(),
		NamePerson:     PersonNamePolicy(),
		NameSHA256:     SHA256Policy(),
		NameBlake2b:    Blake2bPolicy(),
	}
}

// parametricPolicies maps tag prefixes such as "keep_last:4" to constructors.
var parametricPolicies = map[string]func(int) TextPolicy{
	"keep_first": KeepFirst,
	"keep_last":  KeepLast,
	"mask_first": MaskFirst,
	"mask_last":  MaskLast,
	"email":      EmailLocal,
}

// parsePolicy resolves a tag value against a named policy table.
func parsePolicy(table map[PolicyName]TextPolicy, value string) (TextPolicy, bool) {
	if p, ok := table[PolicyName(value)]; ok {
		return p, true
	}
	name, arg, found := strings.Cut(value, ":")
	if !found {
		return TextPolicy{}, false
	}
	ctor, ok := parametricPolicies[name]
	if !ok {
		return TextPolicy{}, false
	}
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return TextPolicy{}, false
	}
	return ctor(n), true
}
