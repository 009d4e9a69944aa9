//go:build integration

package inventory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/abdul-hamid-achik/reqspec/packages/requirements"
)

func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image: "postgres:15",
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "reqspec",
			},
			ExposedPorts: []string{"5432/tcp"},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return fmt.Sprintf("postgres://test:test@%s:%s/reqspec?sslmode=disable", host, port.Port())
}

func TestStore_Postgres(t *testing.T) {
	ctx := context.Background()
	conn := startPostgres(t)

	store, err := Open(ctx, conn)
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Migrate(ctx))

	result, err := requirements.NewTxtReader(requirements.Options{}).Read(
		"requirements.txt",
		[]byte("requests[socks]>=2.0\nflask; os_name=='posix'\n"),
	)
	require.NoError(t, err)

	runID, err := store.SaveRun(ctx, []*requirements.FileResult{result})
	require.NoError(t, err)

	records, err := store.Dependencies(ctx, runID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"socks"}, records[0].Extras)
	assert.Equal(t, []string{"os_name=='posix'"}, records[1].Markers)

	found, err := store.FindByName(ctx, "Requests")
	require.NoError(t, err)
	assert.Len(t, found, 1)

	runs, err := store.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 2, runs[0].Valid)
}
