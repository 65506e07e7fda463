package buffer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageGuard(t *testing.T) {
	t.Run("drop releases the pin", func(t *testing.T) {
		bufferMgr, _ := newTestPool(3)

		p0, err := bufferMgr.NewPage()
		require.NoError(t, err)
		assert.True(t, bufferMgr.UnpinPage(p0.PageID(), false))

		guard, err := bufferMgr.FetchPageRead(p0.PageID())
		require.NoError(t, err)
		assert.Equal(t, 1, p0.PinCount())

		guard.Drop()
		assert.Equal(t, 0, p0.PinCount())
	})

	t.Run("write guard marks the page dirty on drop", func(t *testing.T) {
		bufferMgr, _ := newTestPool(3)

		p0, err := bufferMgr.NewPage()
		require.NoError(t, err)
		assert.True(t, bufferMgr.UnpinPage(p0.PageID(), false))

		guard, err := bufferMgr.FetchPageWrite(p0.PageID())
		require.NoError(t, err)
		copy(guard.GetDataMut(), []byte("mutated"))
		guard.Drop()

		assert.True(t, p0.IsDirty())
	})

	t.Run("dropping twice only unpins once", func(t *testing.T) {
		bufferMgr, _ := newTestPool(3)

		p0, err := bufferMgr.NewPage()
		require.NoError(t, err)

		guard, err := bufferMgr.FetchPageRead(p0.PageID())
		require.NoError(t, err)
		assert.Equal(t, 2, p0.PinCount())

		guard.Drop()
		guard.Drop()
		assert.Equal(t, 1, p0.PinCount())
	})

	t.Run("guard exposes the page payload", func(t *testing.T) {
		bufferMgr, _ := newTestPool(3)

		p0, err := bufferMgr.NewPage()
		require.NoError(t, err)
		copy(p0.Data(), []byte("visible"))
		assert.True(t, bufferMgr.UnpinPage(p0.PageID(), false))

		guard, err := bufferMgr.FetchPageRead(p0.PageID())
		require.NoError(t, err)
		defer guard.Drop()

		assert.Equal(t, p0.PageID(), guard.PageID())
		assert.Equal(t, []byte("visible"), guard.GetData()[:7])
	})
}
