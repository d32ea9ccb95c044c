package morse

import "unicode"

// ITU is the International Telecommunication Union Morse dialect: A-Z
// (case-folded), 0-9, and a fixed punctuation set. Unknown runes decode to
// an empty Encoding.
var ITU Dialect = itu{table: buildITUTable()}

type itu struct {
	table map[rune]Encoding
}

func (d itu) Lookup(r rune) Encoding {
	return d.table[unicode.ToUpper(r)]
}

func (d itu) Decode(enc Encoding) (rune, bool) {
	// Linear scan is fine: the table is small and this runs once per
	// completed letter, not per signal unit.
	for r, e := range d.table {
		if encodingEqual(e, enc) {
			return r, true
		}
	}
	return 0, false
}

func encodingEqual(a, b Encoding) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// parse turns a string of '.' and '-' into an Encoding.
func parse(pattern string) Encoding {
	enc := make(Encoding, 0, len(pattern))
	for _, r := range pattern {
		switch r {
		case '.':
			enc = append(enc, Dot)
		case '-':
			enc = append(enc, Dash)
		default:
			panic("morse: invalid pattern character " + string(r))
		}
	}
	return enc
}

func buildITUTable() map[rune]Encoding {
	t := map[rune]Encoding{
		'A': parse(".-"),
		'B': parse("-..."),
		'C': parse("-.-."),
		'D': parse("-.."),
		'E': parse("."),
		'F': parse("..-."),
		'G': parse("--."),
		'H': parse("...."),
		'I': parse(".."),
		'J': parse(".---"),
		'K': parse("-.-"),
		'L': parse(".-.."),
		'M': parse("--"),
		'N': parse("-."),
		'O': parse("---"),
		'P': parse(".--."),
		'Q': parse("--.-"),
		'R': parse(".-."),
		'S': parse("..."),
		'T': parse("-"),
		'U': parse("..-"),
		'V': parse("...-"),
		'W': parse(".--"),
		'X': parse("-..-"),
		'Y': parse("-.--"),
		'Z': parse("--.."),

		'0': parse("-----"),
		'1': parse(".----"),
		'2': parse("..---"),
		'3': parse("...--"),
		'4': parse("....-"),
		'5': parse("....."),
		'6': parse("-...."),
		'7': parse("--..."),
		'8': parse("---.."),
		'9': parse("----."),

		'.': parse(".-.-.-"),
		',': parse("--..--"),
		'?': parse("..--.."),
		'\'': parse(".----."),
		'!': parse("-.-.--"),
		'/': parse("-..-."),
		'(': parse("-.--."),
		')': parse("-.--.-"),
		'&': parse(".-..."),
		':': parse("---..."),
		';': parse("-.-.-."),
		'=': parse("-...-"),
		'+': parse(".-.-."),
		'-': parse("-....-"),
		'_': parse("..--.-"),
		'"': parse(".-..-."),
		'$': parse("...-..-"),
		'@': parse(".--.-."),
	}
	return t
}
