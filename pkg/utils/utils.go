// Package utils provides helpers for turning C header doc comments into Rust doc text
package utils

import (
	"bufio"
	"regexp"
	"strings"
)

// Comment markers removed from each line, in order
var commentMarkers = []*regexp.Regexp{
	regexp.MustCompile(`^/\*\*<?`), // /** or /**<
	regexp.MustCompile(`^/\*!<?`),  // /*! or /*!<
	regexp.MustCompile(`^/\*`),     // /*
	regexp.MustCompile(`^\*/`),     // */
	regexp.MustCompile(`^///<?`),   // /// or ///<
	regexp.MustCompile(`^//!<?`),   // //! or //!<
	regexp.MustCompile(`^//`),      // //
	regexp.MustCompile(`^\*`),      // *
	regexp.MustCompile(`\s*\*/$`),  // */
}

var identifierRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsComment checks if text starts with a comment marker
func IsComment(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "/*") || strings.HasPrefix(trimmed, "//")
}

// CleanComment removes comment markers. Leading and trailing blank lines are
// dropped and runs of blank lines collapse to one; indentation after the
// marker is kept so code blocks survive.
func CleanComment(comment string) string {
	if comment == "" {
		return ""
	}

	var lines []string
	blank := false
	scanner := bufio.NewScanner(strings.NewReader(comment))
	for scanner.Scan() {
		cleaned := cleanCommentLine(scanner.Text())
		if cleaned == "" {
			blank = len(lines) > 0
			continue
		}
		if blank {
			lines = append(lines, "")
			blank = false
		}
		lines = append(lines, cleaned)
	}

	return strings.Join(lines, "\n")
}

// cleanCommentLine cleans a single line of a comment
func cleanCommentLine(line string) string {
	line = strings.TrimSpace(line)
	for _, re := range commentMarkers {
		line = re.ReplaceAllString(line, "")
	}
	return strings.TrimRight(strings.TrimPrefix(line, " "), " \t")
}

// IsValidIdentifier checks if name is a C identifier
func IsValidIdentifier(name string) bool {
	return identifierRegex.MatchString(name)
}
