package seed

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/timesheet-reminder/backend/internal/domain"
)

func TestParseRoster(t *testing.T) {
	data := `id,name,email,is_bot,is_deleted
U1, Asha Rao ,asha@example.com,false,false
B1,Standup Bot,,true,
U2,Ravi,ravi@example.com,,1
`
	identities, err := ParseRoster(strings.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []domain.Identity{
		{ID: "U1", DisplayName: "Asha Rao", ContactAddress: "asha@example.com"},
		{ID: "B1", DisplayName: "Standup Bot", IsBot: true},
		{ID: "U2", DisplayName: "Ravi", ContactAddress: "ravi@example.com", IsDeleted: true},
	}, identities)
}

func TestParseRoster_OptionalColumns(t *testing.T) {
	identities, err := ParseRoster(strings.NewReader("email,id,name\nasha@example.com,U1,Asha\n"))
	require.NoError(t, err)
	require.Len(t, identities, 1)
	assert.Equal(t, "U1", identities[0].ID)
	assert.Equal(t, "asha@example.com", identities[0].ContactAddress)
}

func TestParseRoster_Errors(t *testing.T) {
	_, err := ParseRoster(strings.NewReader("id,name\nU1,Asha\n"))
	assert.ErrorContains(t, err, "email")

	_, err = ParseRoster(strings.NewReader("id,name,email,is_bot\nU1,Asha,a@example.com,maybe\n"))
	assert.ErrorContains(t, err, "第 2 行")

	_, err = ParseRoster(strings.NewReader(""))
	assert.Error(t, err)
}

func TestCSVRoster(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte("id,name,email\nU1,Asha,asha@example.com\n"), 0o600))

	identities, err := CSVRoster{Path: path}.ListIdentities(context.Background())
	require.NoError(t, err)
	assert.Len(t, identities, 1)

	_, err = CSVRoster{Path: filepath.Join(t.TempDir(), "missing.csv")}.ListIdentities(context.Background())
	assert.Error(t, err)
}

func TestRandomRoster(t *testing.T) {
	identities, err := RandomRoster{N: 5, EmailDomain: "example.com"}.ListIdentities(context.Background())
	require.NoError(t, err)
	assert.Len(t, identities, 5)
}
