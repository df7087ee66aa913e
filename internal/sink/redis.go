package sink

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/baxromumarov/gig-crawler/internal/project"
)

const DefaultRedisPrefix = "gig:projects"

// Redis stores each record as JSON in a hash per platform, keyed by
// external id. A batch is written in one MULTI/EXEC.
type Redis struct {
	client redis.Cmdable
	prefix string
}

func NewRedis(client redis.Cmdable, prefix string) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Key(p project.Platform) string {
	return r.prefix + ":" + string(p)
}

func (r *Redis) SaveMany(ctx context.Context, projects []project.Project) error {
	if len(projects) == 0 {
		return nil
	}
	encoded := make([][]byte, len(projects))
	for i, p := range projects {
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode %s: %w", p.Key(), err)
		}
		encoded[i] = data
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, p := range projects {
			k := p.Key()
			pipe.HSet(ctx, r.Key(k.Platform), k.ExternalID, encoded[i])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis save batch: %w", err)
	}
	return nil
}

// Load reads one stored record back.
func (r *Redis) Load(ctx context.Context, key project.Key) (project.Project, error) {
	data, err := r.client.HGet(ctx, r.Key(key.Platform), key.ExternalID).Bytes()
	if err != nil {
		return nil, err
	}
	return project.Unmarshal(data)
}
