package operators

const LikeEscape = '\\'

type likeTokenKind uint8

const (
	likeLiteral likeTokenKind = iota
	likeAnyOne
	likeAnySequence
)

type likeToken struct {
	kind likeTokenKind
	r    rune
}

func tokenizeLike(pattern string) []likeToken {
	runes := []rune(pattern)
	tokens := make([]likeToken, 0, len(runes))
	for i := 0; i < len(runes); i++ {
		switch r := runes[i]; {
		case r == LikeEscape && i+1 < len(runes):
			i++
			tokens = append(tokens, likeToken{kind: likeLiteral, r: runes[i]})
		case r == '%':
			tokens = append(tokens, likeToken{kind: likeAnySequence})
		case r == '_':
			tokens = append(tokens, likeToken{kind: likeAnyOne})
		default:
			tokens = append(tokens, likeToken{kind: likeLiteral, r: r})
		}
	}
	return tokens
}

// MatchLike reports whether value matches a SQL LIKE pattern. The match is
// case-sensitive and uses backslash as the escape character.
func MatchLike(value, pattern string) bool {
	s := []rune(value)
	p := tokenizeLike(pattern)
	si, pi := 0, 0
	starP, starS := -1, 0
	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi].kind == likeAnyOne || (p[pi].kind == likeLiteral && p[pi].r == s[si])):
			si++
			pi++
		case pi < len(p) && p[pi].kind == likeAnySequence:
			starP = pi
			starS = si
			pi++
		case starP != -1:
			pi = starP + 1
			starS++
			si = starS
		default:
			return false
		}
	}
	for pi < len(p) && p[pi].kind == likeAnySequence {
		pi++
	}
	return pi == len(p)
}
