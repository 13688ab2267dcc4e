package bincodec

import "strconv"

// RootPath is the label used for the top-level value when a caller passes an
// empty path to Validate.
const RootPath = "val"

func rootPath(path string) string {
	if path == "" {
		return RootPath
	}
	return path
}

// FieldPath appends a member name to a path label: dotted when name is a
// plain identifier, bracketed and quoted otherwise.
func FieldPath(base, name string) string {
	if isIdentifier(name) {
		return rootPath(base) + "." + name
	}
	return rootPath(base) + "[" + strconv.Quote(name) + "]"
}

// IndexPath appends a sequence index to a path label.
func IndexPath(base string, i int) string {
	return rootPath(base) + "[" + strconv.Itoa(i) + "]"
}

// isIdentifier matches [A-Za-z_][A-Za-z0-9_]*.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_', 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case '0' <= c && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
