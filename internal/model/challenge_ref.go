package model

import (
	"fmt"
	"strings"
)

// ChallengeKind tells generated and custom challenges apart.
type ChallengeKind int

const (
	KindGenerated ChallengeKind = iota + 1
	KindCustom
)

func (k ChallengeKind) String() string {
	switch k {
	case KindGenerated:
		return "generated"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// customKeyPrefix namespaces custom challenge ids inside a solved set.
const customKeyPrefix = "custom_"

// ChallengeRef points at exactly one challenge of either kind.
type ChallengeRef struct {
	Kind ChallengeKind
	ID   string
}

// GeneratedRef refers to the generated challenge stored in directory id.
func GeneratedRef(id string) ChallengeRef {
	return ChallengeRef{Kind: KindGenerated, ID: id}
}

// CustomRef refers to the custom challenge with the given UUID.
func CustomRef(id string) ChallengeRef {
	return ChallengeRef{Kind: KindCustom, ID: id}
}

// ParseChallengeRef builds a ref from the challenge_type/challenge_id form pair.
// An empty kind means generated.
func ParseChallengeRef(kind, id string) (ChallengeRef, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return ChallengeRef{}, fmt.Errorf("empty challenge id")
	}
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "generated":
		return GeneratedRef(id), nil
	case "custom":
		return CustomRef(id), nil
	default:
		return ChallengeRef{}, fmt.Errorf("unknown challenge type %q", kind)
	}
}

// SolvedKey is the key stored in an identity's solved set.
func (r ChallengeRef) SolvedKey() string {
	if r.Kind == KindCustom {
		return customKeyPrefix + r.ID
	}
	return r.ID
}

func (r ChallengeRef) String() string {
	return r.Kind.String() + ":" + r.ID
}
