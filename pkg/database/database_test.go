package database

import (
	"testing"

	"evcharge-client/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type probe struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestInitDB_SQLiteMemory(t *testing.T) {
	db, err := InitDB(utils.CacheConfig{
		Driver: "sqlite",
		DSN:    "file:" + t.Name() + "?mode=memory&cache=shared",
	}, zap.NewNop(), &probe{})
	require.NoError(t, err)

	require.NoError(t, db.Create(&probe{ID: "1", Name: "a"}).Error)

	var got probe
	require.NoError(t, db.First(&got, "id = ?", "1").Error)
	assert.Equal(t, "a", got.Name)
}

func TestInitDB_UnknownDriver(t *testing.T) {
	_, err := InitDB(utils.CacheConfig{Driver: "mongo"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported cache driver")
}
