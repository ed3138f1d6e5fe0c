// Package latex personalizes an exam template.
// The template declares one \newcommand per field (for example
// \newcommand{\nombre}{\enspace}); Substitute rewrites those declarations
// with the student's values. Escape turns arbitrary display text, such as a
// student name, into LaTeX source that typesets the same characters.
package latex

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Template field names.
const (
	FieldName  = "nombre"
	FieldEmail = "email"
	FieldGroup = "grupo"
)

// Substitute replaces every `\newcommand{\<field>}...` declaration in text,
// up to the end of its line, with `\newcommand{\<field>}{<value>}`. Values
// are inserted verbatim. Fields without a declaration are ignored.
func Substitute(text string, values map[string]string) string {
	for field, value := range values {
		re := regexp.MustCompile(`\\newcommand\{\\` + regexp.QuoteMeta(field) + `\}.*`)
		text = re.ReplaceAllLiteralString(text, `\newcommand{\`+field+`}{`+value+`}`)
	}
	return text
}

var specials = map[rune]string{
	'\\': `\textbackslash{}`,
	'{':  `\{`,
	'}':  `\}`,
	'#':  `\#`,
	'$':  `\$`,
	'%':  `\%`,
	'&':  `\&`,
	'_':  `\_`,
	'~':  `\textasciitilde{}`,
	'^':  `\textasciicircum{}`,
}

// Letters with no canonical decomposition.
var letters = map[rune]string{
	'ß': `\ss{}`,
	'æ': `\ae{}`,
	'Æ': `\AE{}`,
	'œ': `\oe{}`,
	'Œ': `\OE{}`,
	'ø': `\o{}`,
	'Ø': `\O{}`,
	'ł': `\l{}`,
	'Ł': `\L{}`,
}

// Combining marks and the accent macro that typesets them.
var accents = map[rune]string{
	'\u0300': "\\`",
	'\u0301': `\'`,
	'\u0302': `\^`,
	'\u0303': `\~`,
	'\u0304': `\=`,
	'\u0306': `\u`,
	'\u0307': `\.`,
	'\u0308': `\"`,
	'\u030a': `\r`,
	'\u030b': `\H`,
	'\u030c': `\v`,
	'\u0327': `\c`,
	'\u0328': `\k`,
}

// Escape returns s as LaTeX source.
func Escape(s string) string {
	runes := []rune(norm.NFD.String(s))
	var b strings.Builder
	for i := 0; i < len(runes); {
		base := runes[i]
		j := i + 1
		for j < len(runes) && unicode.Is(unicode.Mn, runes[j]) {
			j++
		}
		b.WriteString(cluster(base, runes[i+1:j]))
		i = j
	}
	return b.String()
}

// cluster renders one base character and its combining marks.
func cluster(base rune, marks []rune) string {
	out := escapeRune(base)
	if len(marks) == 0 {
		return out
	}
	switch base {
	case 'i':
		out = `\i`
	case 'j':
		out = `\j`
	}
	for _, m := range marks {
		macro, ok := accents[m]
		if !ok {
			// No macro for this mark: keep the composed character, unless
			// the base itself needs escaping.
			if esc := escapeRune(base); esc != string(base) {
				return esc + string(marks)
			}
			return norm.NFC.String(string(base) + string(marks))
		}
		out = macro + "{" + out + "}"
	}
	return out
}

func escapeRune(r rune) string {
	if s, ok := specials[r]; ok {
		return s
	}
	if s, ok := letters[r]; ok {
		return s
	}
	return string(r)
}
