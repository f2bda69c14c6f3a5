package testsupport

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

// FixturePath returns the path of an upstream response fixture in the
// calling package's testdata directory.
func FixturePath(name string) string {
	return filepath.Join("testdata", name)
}

// LoadFixture reads the fixture name, failing the test when it is missing.
func LoadFixture(t *testing.T, name string) []byte {
	t.Helper()

	data, err := os.ReadFile(FixturePath(name))
	if err != nil {
		t.Fatalf("load fixture %s: %v", name, err)
	}
	if !json.Valid(data) {
		t.Fatalf("fixture %s is not valid JSON", name)
	}
	return data
}

// LoadFixtureJSON decodes the fixture name into dest.
func LoadFixtureJSON(t *testing.T, name string, dest any) {
	t.Helper()

	if err := json.Unmarshal(LoadFixture(t, name), dest); err != nil {
		t.Fatalf("decode fixture %s: %v", name, err)
	}
}

// Fixture serves the fixture name verbatim as the 200 response of method
// and path.
func (b *Backend) Fixture(t *testing.T, method, path, name string) {
	t.Helper()
	b.JSON(method, path, http.StatusOK, json.RawMessage(LoadFixture(t, name)))
}
