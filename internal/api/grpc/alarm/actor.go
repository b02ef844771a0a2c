package alarm

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/work-alarm/internal/domain/alarm"
	"github.com/oshokin/work-alarm/internal/logger"
	"github.com/oshokin/work-alarm/internal/record"
)

// ActorMetadataKey carries "username@hostname" of the caller.
const ActorMetadataKey = "x-alarm-actor"

type actorKey struct{}

// AppendActor attaches the actor to outgoing request metadata.
func AppendActor(ctx context.Context, actor *domain.Actor) context.Context {
	if actor == nil {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor.String())
}

// ActorFromContext returns the actor stored by UnaryActorInterceptor, or nil.
func ActorFromContext(ctx context.Context) *domain.Actor {
	actor, _ := ctx.Value(actorKey{}).(*domain.Actor)

	return actor
}

// UnaryActorInterceptor reads the caller from metadata into the context and
// logs every call with its outcome.
func UnaryActorInterceptor() grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		var actor *domain.Actor

		if md, ok := metadata.FromIncomingContext(ctx); ok {
			if values := md.Get(ActorMetadataKey); len(values) > 0 && values[0] != "" {
				actor = record.ParseActor(values[0])
			}
		}

		ctx = context.WithValue(ctx, actorKey{}, actor)
		ctx = logger.WithKV(ctx, "method", info.FullMethod, "actor", actor.String())

		started := time.Now()
		resp, err := handler(ctx, req)

		if err != nil {
			logger.WarnKV(ctx, "Call failed", "code", status.Code(err).String(), "error", err)
		} else {
			logger.DebugKV(ctx, "Call finished", "elapsed", time.Since(started))
		}

		return resp, err
	}
}
