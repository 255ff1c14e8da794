package content

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Key names a content module. The set is closed: only the constants below
// can be registered.
type Key string

const (
	KeyReadme        Key = "readme"
	KeyTerminal      Key = "terminal"
	KeyDiagram       Key = "diagram"
	KeyDashboard     Key = "dashboard"
	KeyProjMatchFive Key = "proj-match-five"
	KeyExpCadence    Key = "exp-cadence"
)

var knownKeys = []Key{
	KeyReadme,
	KeyTerminal,
	KeyDiagram,
	KeyDashboard,
	KeyProjMatchFive,
	KeyExpCadence,
}

// KnownKeys returns every key the build knows about, in menu order.
func KnownKeys() []Key {
	out := make([]Key, len(knownKeys))
	copy(out, knownKeys)
	return out
}

func (k Key) String() string { return string(k) }

func (k Key) Known() bool {
	for _, kk := range knownKeys {
		if kk == k {
			return true
		}
	}
	return false
}

// ParseKey converts wire text into a Key. Unknown text yields an
// *UnknownKeyError with suggestions drawn from KnownKeys.
func ParseKey(raw string) (Key, error) {
	k := Key(strings.TrimSpace(raw))
	if !k.Known() {
		return "", newUnknownKeyError(k, knownKeys)
	}
	return k, nil
}

var keyPrefixes = []string{"proj-", "exp-"}

// DeriveTitle builds window title text from a key, e.g.
// "proj-match-five" -> "Match Five".
func DeriveTitle(k Key) string {
	s := string(k)
	for _, p := range keyPrefixes {
		if strings.HasPrefix(s, p) && len(s) > len(p) {
			s = strings.TrimPrefix(s, p)
			break
		}
	}
	s = strings.ReplaceAll(s, "-", " ")
	return cases.Title(language.English).String(s)
}
