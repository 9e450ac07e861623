package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/communityhub/goldledger/internal/config"
	"github.com/communityhub/goldledger/internal/domain"
)

func TestProgramCache_NilClientIsNoop(t *testing.T) {
	c := NewProgramCache(nil, time.Minute)
	ctx := context.Background()

	c.Set(ctx, domain.ProgramDetails{Program: domain.Program{ID: 1, Name: "Gold"}}, 0)
	c.Invalidate(ctx, 1)

	_, generation, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, int64(-1), generation)
}

func TestProgramCache_UnreachableServerIsMiss(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	c := NewProgramCache(client, time.Minute)
	ctx := context.Background()

	c.Set(ctx, domain.ProgramDetails{Program: domain.Program{ID: 1}}, 0)
	_, generation, ok := c.Get(ctx, 1)
	assert.False(t, ok)
	assert.Equal(t, int64(-1), generation, "a failed read must not be written back")
}

func TestNewRedisClient_EmptyAddr(t *testing.T) {
	assert.Nil(t, NewRedisClient(context.Background(), &config.RedisConfig{}))
	assert.Nil(t, NewRedisClient(context.Background(), nil))
}

func TestKey(t *testing.T) {
	assert.Equal(t, "program:42:details", key(42))
	assert.Equal(t, "program:42:generation", generationKey(42))
}

func TestParseGeneration(t *testing.T) {
	gen, err := parseGeneration(nil)
	assert.NoError(t, err)
	assert.Equal(t, int64(0), gen)

	gen, err = parseGeneration("7")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), gen)

	_, err = parseGeneration("x")
	assert.Error(t, err)
}

func testDetails() domain.ProgramDetails {
	endedAt := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	return domain.ProgramDetails{
		Program: domain.Program{ID: 1, Name: "Gold", IsActive: true},
		RecentCycles: []domain.Cycle{
			{ID: 2, ProgramID: 1, IsActive: true, StartDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 1, ProgramID: 1, StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), EndDate: &endedAt},
		},
		CycleCount: 2,
	}
}

func TestProgramCache_RoundTrip(t *testing.T) {
	c := NewProgramCache(freshClient(t), time.Minute)
	ctx := context.Background()
	want := testDetails()

	_, generation, ok := c.Get(ctx, want.ID)
	require.False(t, ok)
	require.Equal(t, int64(0), generation)

	c.Set(ctx, want, generation)

	got, generation, ok := c.Get(ctx, want.ID)
	require.True(t, ok)
	assert.Equal(t, int64(0), generation)
	assert.Equal(t, want.Name, got.Name)
	assert.Equal(t, want.CycleCount, got.CycleCount)
	require.Len(t, got.RecentCycles, 2)
	assert.True(t, want.RecentCycles[0].StartDate.Equal(got.RecentCycles[0].StartDate))
	require.NotNil(t, got.RecentCycles[1].EndDate)
	assert.True(t, want.RecentCycles[1].EndDate.Equal(*got.RecentCycles[1].EndDate))

	ttl, err := testClient.TTL(ctx, key(want.ID)).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestProgramCache_InvalidateIsMiss(t *testing.T) {
	c := NewProgramCache(freshClient(t), time.Minute)
	ctx := context.Background()
	details := testDetails()

	c.Set(ctx, details, 0)
	c.Invalidate(ctx, details.ID)

	_, generation, ok := c.Get(ctx, details.ID)
	assert.False(t, ok)
	assert.Equal(t, int64(1), generation)

	c.Set(ctx, details, generation)
	_, _, ok = c.Get(ctx, details.ID)
	assert.True(t, ok)
}

func TestProgramCache_StaleSetIsDropped(t *testing.T) {
	c := NewProgramCache(freshClient(t), time.Minute)
	ctx := context.Background()
	details := testDetails()

	_, generation, ok := c.Get(ctx, details.ID)
	require.False(t, ok)

	// A write lands while the loader is still reading Postgres.
	c.Invalidate(ctx, details.ID)
	c.Set(ctx, details, generation)

	_, _, ok = c.Get(ctx, details.ID)
	assert.False(t, ok)

	n, err := testClient.Exists(ctx, key(details.ID)).Result()
	require.NoError(t, err)
	assert.Zero(t, n)
}
