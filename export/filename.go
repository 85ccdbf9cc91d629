package export

import (
	"strings"
	"unicode"
)

const (
	FilenamePrefix   = "تعهد_"
	FilenameFallback = "مراقب"
	FilenameSuffix   = ".pdf"
)

func keepRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	case r >= 0x0600 && r <= 0x06FF:
		return true
	}
	return unicode.IsSpace(r)
}

// SanitizeName keeps ASCII letters and digits, the Arabic block and whitespace,
// then joins whitespace runs with "_". Leading and trailing runs become "_" too.
func SanitizeName(name string) string {
	var b strings.Builder
	inSpace := false
	for _, r := range name {
		if !keepRune(r) {
			continue
		}
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteByte('_')
			}
			inSpace = true
			continue
		}
		inSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// Filename derives the delivered file name from the observer name
func Filename(observerName string) string {
	clean := SanitizeName(observerName)
	if clean == "" {
		clean = FilenameFallback
	}
	return FilenamePrefix + clean + FilenameSuffix
}
