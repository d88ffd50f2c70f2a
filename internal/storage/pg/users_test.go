package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserStore_CreateAndGet(t *testing.T) {
	truncateAll(t)

	store := NewUserStore(testPool)
	err := store.Create(testCtx, &User{
		Email:     "user@example.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Password:  "$2a$10$fakehash",
	})
	require.NoError(t, err)

	u, err := store.GetByEmail(testCtx, "user@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.FirstName)
	assert.Equal(t, "$2a$10$fakehash", u.Password)
	assert.False(t, u.AllowDownloads, "downloads start disabled")
}

func TestUserStore_GetByEmail_NotFound(t *testing.T) {
	truncateAll(t)

	store := NewUserStore(testPool)
	_, err := store.GetByEmail(testCtx, "nobody@example.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	truncateAll(t)

	store := NewUserStore(testPool)
	u := &User{Email: "user@example.com", Password: "hash"}
	require.NoError(t, store.Create(testCtx, u))
	assert.Error(t, store.Create(testCtx, u))
}

func TestDownloadStore_PackageNameByHash(t *testing.T) {
	truncateAll(t)
	seedApp(t)

	store := NewDownloadStore(testPool)
	pkg, err := store.PackageNameByHash(testCtx, "abcdef0123456789")
	require.NoError(t, err)
	assert.Equal(t, "com.example.maps", pkg)

	_, err = store.PackageNameByHash(testCtx, "0000000000000000")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDownloadStore_LogDownload(t *testing.T) {
	truncateAll(t)

	store := NewDownloadStore(testPool)
	err := store.LogDownload(testCtx, &DownloadLog{
		Email:     "user@example.com",
		Hash:      "abcdef0123456789",
		UserAgent: "curl/8.0",
		IPAddress: "203.0.113.9",
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, testPool.GetConn().
		QueryRow(testCtx, `SELECT count(*) FROM download_log WHERE email = 'user@example.com'`).
		Scan(&count))
	assert.Equal(t, 1, count)
}
