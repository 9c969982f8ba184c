package employee

import (
	"path"
	"strings"
)

// NameFromKey derives a first and last name from an object key such as
// "staff/John_Smith.jpg". The file extension is dropped, the first
// underscore-separated token is the first name and the remaining tokens
// form the last name.
func NameFromKey(key string) (firstName, lastName string) {
	base := path.Base(key)
	if base == "." || base == "/" {
		return "", ""
	}
	if i := strings.Index(base, "."); i >= 0 {
		base = base[:i]
	}

	parts := strings.Split(base, "_")
	firstName = parts[0]

	rest := make([]string, 0, len(parts)-1)
	for _, p := range parts[1:] {
		if p != "" {
			rest = append(rest, p)
		}
	}
	lastName = strings.Join(rest, " ")
	return firstName, lastName
}

// ExternalImageID turns an object key into an identifier accepted by the face
// collection ([a-zA-Z0-9_.\-:]+).
func ExternalImageID(key string) string {
	var sb strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			sb.WriteRune(r)
		case r == '_', r == '.', r == '-', r == ':':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	id := sb.String()
	if len(id) > 255 {
		id = id[len(id)-255:]
	}
	return id
}
