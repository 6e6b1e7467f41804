// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/scan-for-a-prize/auth"
	"github.com/danielhkuo/scan-for-a-prize/db"
	"github.com/danielhkuo/scan-for-a-prize/models"
	"github.com/danielhkuo/scan-for-a-prize/testutil"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "scanforaprize", cmd.Use)
	assert.Contains(t, cmd.Long, "QR codes")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"serve", "migrate", "reconcile", "create-admin", "import-properties"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	portFlag := cmd.PersistentFlags().Lookup("port")
	require.NotNil(t, portFlag)
	assert.Equal(t, "p", portFlag.Shorthand)

	dbFlag := cmd.PersistentFlags().Lookup("database-url")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "d", dbFlag.Shorthand)

	envFlag := cmd.PersistentFlags().Lookup("env-file")
	require.NotNil(t, envFlag)
	assert.Equal(t, ".env", envFlag.DefValue)
}

func TestCreateAdminFlags(t *testing.T) {
	cmd := NewRootCommand()
	sub, _, err := cmd.Find([]string{"create-admin"})
	require.NoError(t, err)

	for _, name := range []string{"email", "password", "name"} {
		assert.NotNil(t, sub.Flags().Lookup(name), "flag %s", name)
	}
}

// execute runs the CLI against a temporary SQLite file.
func execute(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--env-file", "", "-t", "sqlite", "-d", "file:" + dbPath, "--log-format", "text"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestMigrateCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")

	out, err := execute(t, dbPath, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date (sqlite)")

	conn, err := db.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close(conn)
	assert.True(t, conn.Migrator().HasTable(&models.PropertyClaim{}))
}

func TestCreateAdminCommand(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "app.db")

	out, err := execute(t, dbPath, "create-admin", "--email", "Boss@Example.com", "--password", "hunter22")
	require.NoError(t, err)
	assert.Contains(t, out, "master admin created: boss@example.com")

	out, err = execute(t, dbPath, "create-admin", "--email", "boss@example.com", "--password", "newpass1")
	require.NoError(t, err)
	assert.Contains(t, out, "master admin promoted")

	conn, err := db.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close(conn)

	var users []models.User
	require.NoError(t, conn.Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleMasterAdmin, users[0].Role)
	require.NotNil(t, users[0].PasswordHash)
	assert.NoError(t, auth.CheckPassword(*users[0].PasswordHash, "newpass1"))
}

func TestCreateAdminPromotesRealtor(t *testing.T) {
	conn := testutil.SetupTestDB(t)
	realtor := testutil.CreateTestUser(t, conn, "agent@x.com", models.RoleRealtor, false)

	user, created, err := createAdmin(conn, CreateAdminOptions{Email: "agent@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, realtor.ID, user.ID)

	var stored models.User
	require.NoError(t, conn.First(&stored, "id = ?", realtor.ID).Error)
	assert.Equal(t, models.RoleMasterAdmin, stored.Role)
}

func TestCreateAdminRejectsPasswordLength(t *testing.T) {
	conn := testutil.SetupTestDB(t)

	_, _, err := createAdmin(conn, CreateAdminOptions{Email: "a@x.com", Password: "123"})
	assert.EqualError(t, err, "password must be at least 6 characters")

	_, _, err = createAdmin(conn, CreateAdminOptions{Email: "a@x.com", Password: strings.Repeat("p", 80)})
	assert.EqualError(t, err, "password must be at most 72 bytes")

	var users int64
	conn.Model(&models.User{}).Count(&users)
	assert.Zero(t, users)
}

func TestImportPropertiesCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "app.db")
	yamlPath := filepath.Join(dir, "props.yaml")
	require.NoError(t, os.WriteFile(yamlPath, []byte(`
properties:
  - address: 12 Harbor Way
    prizeTitle: $50 gift card
  - address: 9 Elm Court
`), 0o644))

	out, err := execute(t, dbPath, "--base-url", "https://scan.test", "import-properties", yamlPath)
	require.NoError(t, err)
	assert.Contains(t, out, "12 Harbor Way")
	assert.Contains(t, out, "https://scan.test/a/")

	conn, err := db.Open("sqlite", "file:"+dbPath)
	require.NoError(t, err)
	defer db.Close(conn)

	var props []models.Property
	require.NoError(t, conn.Order("address").Find(&props).Error)
	require.Len(t, props, 2)
	for _, p := range props {
		assert.Equal(t, models.StatusUnclaimed, p.Status)
		assert.True(t, p.CreatedByMaster)
		assert.Contains(t, out, p.VerificationCode, "every code is printed once")
	}
	require.NotNil(t, props[0].PrizeTitle)
	assert.Equal(t, "$50 gift card", *props[0].PrizeTitle)
	assert.Nil(t, props[1].PrizeTitle, "9 Elm Court has no prize")
}

func TestParsePropertyFile(t *testing.T) {
	testCases := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{"valid", "properties:\n  - address: 1 A St\n", ""},
		{"empty", "properties: []\n", "no properties"},
		{"missing address", "properties:\n  - prizeTitle: x\n", "property 1: address is required"},
		{"malformed", "properties: [", "invalid property file"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := parsePropertyFile([]byte(tc.yaml))
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tc.wantErr), err.Error())
		})
	}
}
