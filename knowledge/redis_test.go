package knowledge_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/effective-security/toolbox/knowledge"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	rediscon "github.com/testcontainers/testcontainers-go/modules/redis"
)

func Test_RedisCatalog(t *testing.T) {
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	redisContainer, err := rediscon.Run(ctx, "redis:7",
		testcontainers.WithConfigModifier(func(config *container.Config) {
			config.Env = []string{
				"ALLOW_EMPTY_PASSWORD=yes",
			}
		}),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, redisContainer.Terminate(ctx))
	})

	host, err := redisContainer.ConnectionString(ctx)
	require.NoError(t, err)

	options, err := redis.ParseURL(host)
	require.NoError(t, err)

	client := redis.NewClient(options)
	require.NoError(t, client.Ping(ctx).Err(), "failed to connect to Redis")

	root := fmt.Sprintf("test-%d", time.Now().Unix())
	c := knowledge.NewRedisCatalog(client, root).WithLimit(2)

	list, err := c.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.Error(t, c.AddSource(ctx, "", &knowledge.SourceInfo{}))

	require.NoError(t, c.AddSource(ctx, "3f2a9c1e-handbook", &knowledge.SourceInfo{
		Name:        "Handbook",
		Description: "Employee handbook",
	}))
	require.NoError(t, c.AddDocuments(ctx, "3f2a9c1e-handbook",
		"Vacation policy: 20 days per year",
		"Remote work policy",
		"Office hours",
	))
	require.NoError(t, c.AddDocuments(ctx, "3f2a9c1e-handbook"))

	docs, err := c.Documents(ctx, "3f2a9c1e-handbook")
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	// invalid metadata is skipped
	require.NoError(t, client.HSet(ctx, "/"+root+"/knowledge/sources", "broken", "not json").Err())

	list, err = c.ListSources(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	src := list["3f2a9c1e-handbook"]
	require.NotNil(t, src)
	assert.Equal(t, "Handbook", src.Name)
	assert.Equal(t, "Employee handbook", src.Description)
	assert.False(t, src.Retriever.IsAsync())

	res, err := src.Retriever.Retrieve(ctx, "policy")
	require.NoError(t, err)
	o, ok := res.(interface{ Data() any })
	require.True(t, ok)
	assert.Equal(t, []*knowledge.Document{
		{Content: "Vacation policy: 20 days per year", Score: 1},
		{Content: "Remote work policy", Score: 1},
	}, o.Data())

	require.NoError(t, c.RemoveSource(ctx, "3f2a9c1e-handbook"))
	list, err = c.ListSources(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	docs, err = c.Documents(ctx, "3f2a9c1e-handbook")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
