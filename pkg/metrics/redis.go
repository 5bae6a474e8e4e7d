package metrics

import (
	"context"
	"errors"
	"net"

	"github.com/redis/go-redis/v9"
)

// RedisHook counts redis commands by name and outcome. A missing key is
// not an error.
type RedisHook struct {
	m *Metrics
}

var _ redis.Hook = RedisHook{}

func (m *Metrics) RedisHook() RedisHook {
	return RedisHook{m: m}
}

func (h RedisHook) DialHook(next redis.DialHook) redis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		h.m.RedisOperations.WithLabelValues("dial", outcome(err)).Inc()
		return conn, err
	}
}

func (h RedisHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		h.m.RedisOperations.WithLabelValues(cmd.Name(), redisOutcome(err)).Inc()
		return err
	}
}

func (h RedisHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		h.m.RedisOperations.WithLabelValues("pipeline", redisOutcome(err)).Inc()
		return err
	}
}

func redisOutcome(err error) string {
	if errors.Is(err, redis.Nil) {
		return "success"
	}
	return outcome(err)
}
