package database_test

import (
	"bytes"
	"fmt"
	"os"
	"testing"

	"loja/internal/config"
	"loja/internal/database"
	"loja/internal/models"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

func TestMigrateAndDrop(t *testing.T) {
	db, err := database.Dial(config.DriverSQLite, memoryDSN())
	require.NoError(t, err)
	defer database.Close(db)

	require.NoError(t, database.Migrate(db))
	for _, e := range models.Entities() {
		assert.True(t, db.Migrator().HasTable(e), "%T", e)
	}
	assert.True(t, db.Migrator().HasColumn(&models.ProductOption{}, "value_list"))

	// running twice is a no-op
	require.NoError(t, database.Migrate(db))

	require.NoError(t, database.Drop(db))
	for _, e := range models.Entities() {
		assert.False(t, db.Migrator().HasTable(e), "%T", e)
	}
}

func TestDialUnknownDriver(t *testing.T) {
	_, err := database.Dial("oracle", "x")
	assert.Error(t, err)
}

func TestQueryLogSkipsRecordNotFound(t *testing.T) {
	var buf bytes.Buffer
	logrus.SetOutput(&buf)
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	db, err := database.Dial(config.DriverSQLite, memoryDSN())
	require.NoError(t, err)
	defer database.Close(db)
	require.NoError(t, database.Migrate(db))
	buf.Reset()

	var user models.User
	assert.Error(t, db.Where("email = ?", "ninguem@loja.com").First(&user).Error)
	assert.NotContains(t, buf.String(), "record not found")

	// real failures are still logged
	assert.Error(t, db.Table("nao_existe").Count(new(int64)).Error)
	assert.Contains(t, buf.String(), "nao_existe")
}
