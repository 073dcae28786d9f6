package factory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anime-shed/erosion-inspector-go/internal/cache"
	"github.com/anime-shed/erosion-inspector-go/internal/config"
	"github.com/anime-shed/erosion-inspector-go/internal/repository"
)

func TestCreateClassifier(t *testing.T) {
	for _, name := range []ResamplerType{"", BilinearResampler, "BILINEAR", NearestResampler, BicubicResampler, Lanczos3Resampler} {
		c, err := CreateClassifier(name)
		require.NoError(t, err, name)
		assert.NotNil(t, c)
	}

	_, err := CreateClassifier("hermite")
	assert.Error(t, err)
}

func TestResamplerType_Normalize(t *testing.T) {
	assert.Equal(t, BilinearResampler, ResamplerType("").Normalize())
	assert.Equal(t, BilinearResampler, ResamplerType(" Bilinear ").Normalize())
	assert.Equal(t, Lanczos3Resampler, ResamplerType("LANCZOS3").Normalize())
}

func TestCreateImageStore_Local(t *testing.T) {
	cfg := &config.Config{StorageBackend: config.StorageBackendLocal, LocalStorageDir: t.TempDir()}
	store, err := CreateImageStore(context.Background(), cfg)
	require.NoError(t, err)

	_, err = store.Put(context.Background(), "reports/1_a.png", "image/png", []byte{1})
	assert.NoError(t, err)
}

func TestCreateImageStore_Unknown(t *testing.T) {
	_, err := CreateImageStore(context.Background(), &config.Config{StorageBackend: "ftp"})
	assert.Error(t, err)
}

func TestCreateReportRepository_InMemoryWithoutDSN(t *testing.T) {
	repo, closer, err := CreateReportRepository(context.Background(), &config.Config{})
	require.NoError(t, err)
	assert.IsType(t, &repository.MemoryReportRepository{}, repo)
	assert.NoError(t, closer.Close())
}

func TestCreateResultCache_Disabled(t *testing.T) {
	c, closer := CreateResultCache(context.Background(), &config.Config{})
	assert.IsType(t, cache.NoopCache{}, c)
	assert.NoError(t, closer.Close())
}
