package validator

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validate(t *testing.T, doc string) ValidationResults {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.json")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	results, err := NewValidator(path).Validate()
	require.NoError(t, err)
	return results
}

func TestValidate_Canonical(t *testing.T) {
	results := validate(t, `{
    "Bolt": {"name":"Bolt","ccm":"1","color":"Red","keywords":[],"type":"Instant","text":"Deal 3 damage.","legality":["Modern"]},
    "Llanowar Elves": {"name":"Llanowar Elves","ccm":"G","color":"Green","keywords":["Mana"],"type":"Creature — Elf","text":""}
}`)
	assert.True(t, results.Valid(), results.Errors)
	assert.Empty(t, results.Warnings)
	assert.Equal(t, 2, results.Cards)
}

func TestValidate_Empty(t *testing.T) {
	results := validate(t, "  \n")
	assert.True(t, results.Valid())
	assert.Equal(t, []string{"document is empty"}, results.Warnings)

	results = validate(t, "{}")
	assert.True(t, results.Valid())
	assert.Empty(t, results.Warnings)
	assert.Zero(t, results.Cards)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not json", `nope`, "document is not valid JSON"},
		{"truncated", `{"Bolt":`, `card "Bolt": not valid JSON`},
		{"not an object", `"not a json object"`, "document must be a JSON object of cards keyed by name"},
		{"array", `[]`, "document must be a JSON object of cards keyed by name"},
		{"entry not an object", `{"Bolt": 3}`, `card "Bolt": card must be a JSON object`},
		{"wrong field type", `{"Bolt": {"ccm": 1}}`, `card "Bolt": ccm: must be a string`},
		{"bad keywords", `{"Bolt": {"keywords": [1, 2]}}`, `card "Bolt": keywords: must be an array of strings`},
		{"bad details", `{"Bolt": {"details": "x"}}`, `card "Bolt": details: card must be a JSON object`},
		{"empty name", `{"": {"ccm":"1","color":"Red","type":"Instant"}}`, "card with an empty name"},
		{"duplicate", `{"Bolt": {}, "Bolt": {}}`, `duplicate card "Bolt"`},
		{"trailing data", `{} {}`, "unexpected data after document"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := validate(t, tt.doc)
			require.False(t, results.Valid())
			found := false
			for _, e := range results.Errors {
				if strings.HasPrefix(e, tt.want) {
					found = true
				}
			}
			assert.True(t, found, "want %q in %q", tt.want, results.Errors)
		})
	}
}

func TestValidate_Warnings(t *testing.T) {
	results := validate(t, `{
    "Bolt": {
        "name": "Lightning Bolt",
        "details": {"CCM": "1", "color": "Red", "keyword": ["Burn", "Burn"], "type": "Instant", "legality": "Modern,Legacy"},
        "flavor": "The sparkmage shrieked."
    },
    "Island": {}
}`)
	assert.True(t, results.Valid(), results.Errors)
	assert.Equal(t, 2, results.Cards)

	want := []string{
		`card "Bolt": fields nested under "details"`,
		`card "Bolt": name "Lightning Bolt" differs from its key; the key is used`,
		`card "Bolt": "CCM" should be spelled "ccm"`,
		`card "Bolt": "keyword" should be spelled "keywords"`,
		`card "Bolt": "legality" should be an array of format names`,
		`card "Bolt": repeated keywords: Burn`,
		`card "Bolt": unknown field "flavor" is dropped on save`,
		`card "Island": missing ccm`,
		`card "Island": missing color`,
		`card "Island": missing type`,
	}
	for _, w := range want {
		assert.Contains(t, results.Warnings, w)
	}
	assert.Len(t, results.Warnings, len(want))
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := NewValidator(filepath.Join(t.TempDir(), "nope.json")).Validate()
	assert.ErrorContains(t, err, "card document not found")
}
