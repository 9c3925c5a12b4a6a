package types

import "strings"

const (
	DefaultSeparator = "::"
	DefaultExtension = ".pm"
)

// Namespace describes how namespaced module names are written and how they
// map onto source files.
type Namespace struct {
	Separator string `json:"separator" toml:"separator"`
	Extension string `json:"extension" toml:"extension"`
}

// DefaultNamespace is the Perl-style layout (A::B -> A/B.pm).
func DefaultNamespace() Namespace {
	return Namespace{Separator: DefaultSeparator, Extension: DefaultExtension}
}

// Normalize fills empty fields with defaults and ensures the extension
// starts with a dot.
func (n Namespace) Normalize() Namespace {
	if n.Separator == "" {
		n.Separator = DefaultSeparator
	}
	if n.Extension == "" {
		n.Extension = DefaultExtension
	}
	if !strings.HasPrefix(n.Extension, ".") {
		n.Extension = "." + n.Extension
	}
	return n
}

// Split breaks name into its non-empty segments.
func (n Namespace) Split(name string) []string {
	n = n.Normalize()
	var out []string
	for _, part := range strings.Split(name, n.Separator) {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Join concatenates segments with the separator.
func (n Namespace) Join(parts ...string) string {
	return strings.Join(parts, n.Normalize().Separator)
}

// UnknownModule names the file of a module whose name has no segments.
const UnknownModule = "Unknown"

// Layout maps a module name to its directory segments and file name,
// e.g. "App::Billing::Invoice" -> ["App" "Billing"], "Invoice.pm".
func (n Namespace) Layout(name string) (dirs []string, file string) {
	n = n.Normalize()
	parts := n.Split(name)
	if len(parts) == 0 {
		return nil, UnknownModule + n.Extension
	}
	return parts[:len(parts)-1], parts[len(parts)-1] + n.Extension
}

// RelPath is the slash-separated path Layout produces.
func (n Namespace) RelPath(name string) string {
	dirs, file := n.Layout(name)
	return strings.Join(append(append([]string(nil), dirs...), file), "/")
}
