package api

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"shareit/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func dialBufconn(t *testing.T, env *testEnv) *grpc.ClientConn {
	t.Helper()
	logger := zerolog.Nop()
	srv, _, err := newGRPCServer(testAPIConfig(), env.svc, &logger)
	require.NoError(t, err)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func asUser(id int64) context.Context {
	return metadata.AppendToOutgoingContext(context.Background(), userIDMetadata, fmt.Sprint(id))
}

func TestGRPCReadAPI(t *testing.T) {
	env := newTestEnv(t, testAPIConfig())
	owner := env.createUser(t, "Owner", "owner@example.com")
	booker := env.createUser(t, "Booker", "booker@example.com")
	stranger := env.createUser(t, "Stranger", "stranger@example.com")
	drill := env.createItem(t, owner.ID, "Drill", true)
	bookingID := env.insertBooking(t, booker, drill, time.Hour, 2*time.Hour, models.StatusWaiting)

	conn := dialBufconn(t, env)
	method := func(name string) string { return "/" + grpcServiceName + "/" + name }

	t.Run("GetItem", func(t *testing.T) {
		out := new(structpb.Struct)
		err := conn.Invoke(asUser(owner.ID), method("GetItem"), wrapperspb.Int64(drill.ID), out)
		require.NoError(t, err)
		fields := out.AsMap()
		assert.Equal(t, "Drill", fields["name"])
		assert.Nil(t, fields["lastBooking"])
		next, ok := fields["nextBooking"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, float64(bookingID), next["id"])
	})

	t.Run("GetItemNotFound", func(t *testing.T) {
		err := conn.Invoke(asUser(owner.ID), method("GetItem"), wrapperspb.Int64(999), new(structpb.Struct))
		assert.Equal(t, codes.NotFound, status.Code(err))
	})

	t.Run("MissingCaller", func(t *testing.T) {
		err := conn.Invoke(context.Background(), method("GetItem"), wrapperspb.Int64(drill.ID), new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("SearchItems", func(t *testing.T) {
		out := new(structpb.Struct)
		require.NoError(t, conn.Invoke(asUser(booker.ID), method("SearchItems"), wrapperspb.String("dRiL"), out))
		items, ok := out.AsMap()["items"].([]any)
		require.True(t, ok)
		assert.Len(t, items, 1)
	})

	t.Run("GetBooking", func(t *testing.T) {
		out := new(structpb.Struct)
		require.NoError(t, conn.Invoke(asUser(booker.ID), method("GetBooking"), wrapperspb.Int64(bookingID), out))
		assert.Equal(t, models.StatusWaiting, out.AsMap()["status"])

		err := conn.Invoke(asUser(stranger.ID), method("GetBooking"), wrapperspb.Int64(bookingID), new(structpb.Struct))
		assert.Equal(t, codes.PermissionDenied, status.Code(err))
	})

	t.Run("ListBookings", func(t *testing.T) {
		out := new(structpb.Struct)
		require.NoError(t, conn.Invoke(asUser(booker.ID), method("ListBookings"), wrapperspb.String("FUTURE"), out))
		bookings, ok := out.AsMap()["bookings"].([]any)
		require.True(t, ok)
		assert.Len(t, bookings, 1)

		err := conn.Invoke(asUser(booker.ID), method("ListBookings"), wrapperspb.String("SOMEDAY"), new(structpb.Struct))
		assert.Equal(t, codes.InvalidArgument, status.Code(err))
	})

	t.Run("Health", func(t *testing.T) {
		resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: grpcServiceName})
		require.NoError(t, err)
		assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
	})
}
