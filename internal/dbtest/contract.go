// Package dbtest holds the behaviour every types.Database backend must
// share, as a test suite the backend packages run against themselves.
package dbtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tpsoftworks/todo/pkg/types"
)

// Factory opens a fresh, empty backend for one subtest.
type Factory func(t *testing.T) types.Database

// RunContract runs the shared storage contract against backends built by open.
func RunContract(t *testing.T, open Factory) {
	t.Run("create read delete", func(t *testing.T) {
		db := open(t)

		id, err := db.Create(types.NewTask("buy milk"))
		require.NoError(t, err)
		assert.Equal(t, 1, id)

		tasks, err := db.Read(types.AllTasks)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "buy milk", tasks[0].Title)
		assert.Equal(t, types.StatusOpen, tasks[0].Status)

		deleted, err := db.Delete(1)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		tasks, err = db.Read(types.AllTasks)
		require.NoError(t, err)
		assert.Empty(t, tasks)

		_, err = db.Delete(1)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})

	t.Run("ids strictly increase across deletes", func(t *testing.T) {
		db := open(t)

		last := 0
		for i := 0; i < 4; i++ {
			id, err := db.Create(types.NewTask("task"))
			require.NoError(t, err)
			assert.Greater(t, id, last)
			last = id
			_, err = db.Delete(id)
			require.NoError(t, err)
		}
	})

	t.Run("read by id", func(t *testing.T) {
		db := open(t)
		for _, title := range []string{"a", "b, with comma", "c"} {
			_, err := db.Create(types.NewTask(title))
			require.NoError(t, err)
		}

		tasks, err := db.Read(2)
		require.NoError(t, err)
		require.Len(t, tasks, 1)
		assert.Equal(t, "b, with comma", tasks[0].Title)

		tasks, err = db.Read(99)
		require.NoError(t, err)
		assert.Empty(t, tasks)
	})

	t.Run("update keeps order and ignores unknown ids", func(t *testing.T) {
		db := open(t)
		for _, title := range []string{"a", "b", "c"} {
			_, err := db.Create(types.NewTask(title))
			require.NoError(t, err)
		}

		task := types.NewTask("b2")
		task.Auto = true
		stored, err := db.Update(2, task)
		require.NoError(t, err)
		assert.Equal(t, 2, stored.ID)

		_, err = db.Update(50, types.NewTask("ghost"))
		require.NoError(t, err)

		tasks, err := db.Read(types.AllTasks)
		require.NoError(t, err)
		require.Len(t, tasks, 3)
		assert.Equal(t, "a", tasks[0].Title)
		assert.Equal(t, "b2", tasks[1].Title)
		assert.True(t, tasks[1].Auto)
		assert.Equal(t, "c", tasks[2].Title)
	})

	t.Run("invalid input", func(t *testing.T) {
		db := open(t)

		_, err := db.Create(types.Task{Title: " "})
		assert.ErrorIs(t, err, types.ErrInvalidTitle)

		_, err = db.Update(-1, types.NewTask("x"))
		assert.ErrorIs(t, err, types.ErrInvalidID)
	})

	t.Run("closed", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Close())

		_, err := db.Create(types.NewTask("x"))
		assert.ErrorIs(t, err, types.ErrDatabaseClosed)
		_, err = db.Read(types.AllTasks)
		assert.ErrorIs(t, err, types.ErrDatabaseClosed)
	})
}
