// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/scan-for-a-prize/models"
)

func TestOpenAndMigrateSQLite(t *testing.T) {
	conn, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { Close(conn) })

	require.NoError(t, Migrate(conn))
	// Idempotent
	require.NoError(t, Migrate(conn))

	for _, table := range []string{"properties", "leads", "users", "property_claims", "verification_tokens", "subscriptions", "billing_events"} {
		assert.True(t, conn.Migrator().HasTable(table), "table %s should exist", table)
	}
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open("oracle", "whatever")
	assert.Error(t, err)
}

func TestVerificationCodeIsCreateOnly(t *testing.T) {
	conn, err := Open("sqlite", "file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { Close(conn) })
	require.NoError(t, Migrate(conn))

	p := models.Property{ID: "p1", Slug: "abc123", Address: "1 Main St", VerificationCode: "XT7-82C4", Status: models.StatusUnclaimed}
	require.NoError(t, conn.Create(&p).Error)

	p.VerificationCode = "AAA-BBBBB"
	p.Address = "2 Main St"
	require.NoError(t, conn.Save(&p).Error)
	require.NoError(t, conn.Model(&p).Updates(models.Property{VerificationCode: "CCC-DDDDD"}).Error)

	var got models.Property
	require.NoError(t, conn.First(&got, "id = ?", "p1").Error)
	assert.Equal(t, "XT7-82C4", got.VerificationCode)
	assert.Equal(t, "2 Main St", got.Address)
}
