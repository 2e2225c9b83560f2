package header

import (
	"fmt"
	"strings"
	"testing"

	"pgregory.net/rapid"
)

const alnum = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func genLogin(t *rapid.T, label string) string {
	n := rapid.IntRange(1, 39).Draw(t, label+"-len")
	var b strings.Builder
	for b.Len() < n {
		// A hyphen may only sit between two alphanumerics.
		if b.Len() > 0 && b.Len() < n-1 && !strings.HasSuffix(b.String(), "-") &&
			rapid.IntRange(0, 5).Draw(t, label+"-hyphen") == 0 {
			b.WriteByte('-')
			continue
		}
		i := rapid.IntRange(0, len(alnum)-1).Draw(t, label+"-char")
		b.WriteByte(alnum[i])
	}
	return "@" + b.String()
}

func genName(t *rapid.T) string {
	words := rapid.SliceOfN(rapid.StringMatching(`[A-Z][a-z]{0,11}`), 1, 3).Draw(t, "name")
	return strings.Join(words, " ")
}

func genEmail(t *rapid.T) string {
	local := rapid.StringMatching(`[a-z][a-z0-9._-]{0,15}`).Draw(t, "local")
	domain := rapid.SampledFrom([]string{"csu.fullerton.edu", "fullerton.edu", "CSU.Fullerton.edu"}).Draw(t, "domain")
	return local + "@" + domain
}

func TestParseRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		name := genName(t)
		email := genEmail(t)
		github := genLogin(t, "github")
		n := rapid.IntRange(0, 3).Draw(t, "partners")
		partners := make([]string, n)
		for i := range partners {
			partners[i] = genLogin(t, fmt.Sprintf("partner%d", i))
		}
		field := strings.TrimSpace(partnersLabel + " " + strings.Join(partners, ", "))

		src := fmt.Sprintf("// %s\n// %s\n// %s\n// %s\n\nint main() { return 0; }\n", name, email, github, field)
		rec, err := Parse("gen.cc", strings.NewReader(src), CPPPrefix)
		if err != nil {
			t.Fatalf("generated header rejected: %v\n%s", err, src)
		}
		if rec.Name != name || rec.Email != email || rec.GitHub != github || rec.Partners != field {
			t.Fatalf("round trip mismatch: got %+v\nsource:\n%s", rec, src)
		}
		if got := rec.PartnerHandles(); len(got) != n {
			t.Fatalf("partner handles = %v, want %d", got, n)
		}
	})
}
