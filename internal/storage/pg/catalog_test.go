package pg

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListCategories(t *testing.T) {
	truncateAll(t)
	seedApp(t)

	store := NewCatalogStore(testPool)
	categories, err := store.ListCategories(testCtx)
	require.NoError(t, err)

	// Maturity ratings share the category table but stay out of listings.
	assert.Equal(t, []string{"Navigation"}, categories)
}

func TestListCategories_Empty(t *testing.T) {
	truncateAll(t)

	store := NewCatalogStore(testPool)
	categories, err := store.ListCategories(testCtx)
	require.NoError(t, err)
	assert.NotNil(t, categories)
	assert.Empty(t, categories)
}

func TestAppDetails(t *testing.T) {
	truncateAll(t)
	appID := seedApp(t)

	store := NewCatalogStore(testPool)
	details, err := store.AppDetails(testCtx, appID)
	require.NoError(t, err)

	assert.Equal(t, "Offline maps and navigation", details.Text)
	assert.Equal(t, "Maps", details.Name, "newest name wins")
	assert.Equal(t, "com.example.maps", details.PackageName)
	assert.Equal(t, "Example Inc", details.DeveloperID)
	assert.Equal(t, []string{"Navigation"}, details.Categories)
	assert.Equal(t, []string{"Everyone"}, details.Maturity)
}

func TestAppDetails_NotFound(t *testing.T) {
	truncateAll(t)

	store := NewCatalogStore(testPool)
	_, err := store.AppDetails(testCtx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionDetails(t *testing.T) {
	truncateAll(t)
	appID := seedApp(t)

	store := NewCatalogStore(testPool)
	versions, err := store.VersionDetails(testCtx, appID)
	require.NoError(t, err)
	require.Len(t, versions, 1)

	v := versions[0]
	assert.Equal(t, "abcdef0123456789", v.Hash)
	assert.Equal(t, int64(1048576), v.Size)
	assert.Equal(t, "2.1.0", v.Version)
	assert.Equal(t, []string{"CAMERA", "INTERNET"}, v.Permissions, "both permission sources unioned")
	assert.Equal(t, int64(10), v.TotalRatings)
	// (1*1 + 2*1 + 3*2 + 4*3 + 5*3) / 10
	assert.InDelta(t, 3.6, v.Rating, 0.001)
	require.NotNil(t, v.MinSDK)
	assert.Equal(t, 21, *v.MinSDK)
	require.NotNil(t, v.TargetSDK)
	assert.Equal(t, 33, *v.TargetSDK)
}

func TestVersionDetails_NotFound(t *testing.T) {
	truncateAll(t)

	store := NewCatalogStore(testPool)
	_, err := store.VersionDetails(testCtx, 9999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVersionDetails_GarbageSDKDropped(t *testing.T) {
	truncateAll(t)
	appID := seedApp(t)

	_, err := testPool.GetConn().Exec(testCtx, `UPDATE model_sdkversion SET min_sdk_number = 10000`)
	require.NoError(t, err)

	store := NewCatalogStore(testPool)
	versions, err := store.VersionDetails(testCtx, appID)
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Nil(t, versions[0].MinSDK)
	assert.Nil(t, versions[0].TargetSDK)
}
