package db

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type ledgerRow struct {
	ID   int
	Note string
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), gormConfig(nil))
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&ledgerRow{}))
	return Wrap(conn)
}

func countRows(t *testing.T, c *Client) int64 {
	t.Helper()
	var count int64
	require.NoError(t, c.DB().Model(&ledgerRow{}).Count(&count).Error)
	return count
}

func TestWithTx_CommitsAndRollsBack(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, client.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Create(&ledgerRow{Note: "committed"}).Error
	}))
	assert.Equal(t, int64(1), countRows(t, client))

	err := client.WithTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Create(&ledgerRow{Note: "rolled"}).Error; err != nil {
			return err
		}
		return errors.New("boom")
	})
	require.Error(t, err)
	assert.Equal(t, int64(1), countRows(t, client))
}

func TestWithTx_RollsBackOnPanic(t *testing.T) {
	client := newTestClient(t)

	assert.Panics(t, func() {
		_ = client.WithTx(context.Background(), func(tx *gorm.DB) error {
			if err := tx.Create(&ledgerRow{Note: "doomed"}).Error; err != nil {
				return err
			}
			panic("kaboom")
		})
	})
	assert.Equal(t, int64(0), countRows(t, client))
}

func TestPing(t *testing.T) {
	client := newTestClient(t)
	require.NoError(t, client.Ping(context.Background()))
}

func TestNewSQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dev.db")
	client, err := NewSQLite(context.Background(), path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	require.NoError(t, client.Ping(context.Background()))

	_, err = NewSQLite(context.Background(), "", nil)
	require.Error(t, err)
}
