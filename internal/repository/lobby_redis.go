package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rocketscienceinc/tictactoe-hub/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-hub/internal/entity"
)

const (
	lobbyKeyPrefix = "lobby:game:"
	scanBatch      = 100
)

type redisLobby struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisLobbyRepository - summaries stored as JSON, one key per game. Every save
// refreshes the ttl, so games that stop changing fall out of the lobby on their own.
func NewRedisLobbyRepository(client *redis.Client, ttl time.Duration) LobbyRepository {
	return &redisLobby{
		client: client,
		ttl:    ttl,
	}
}

func (that *redisLobby) Save(ctx context.Context, summary entity.Summary) error {
	summaryJSON, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to marshal game summary: %w", err)
	}

	if err = that.client.Set(ctx, lobbyKeyPrefix+summary.ID, summaryJSON, that.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set game summary: %w", err)
	}

	return nil
}

func (that *redisLobby) GetByID(ctx context.Context, id string) (entity.Summary, error) {
	response, err := that.client.Get(ctx, lobbyKeyPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return entity.Summary{}, fmt.Errorf("%w: %s", apperror.ErrGameNotFound, id)
	}

	if err != nil {
		return entity.Summary{}, fmt.Errorf("failed to get game summary by id: %w", err)
	}

	var summary entity.Summary
	if err = json.Unmarshal([]byte(response), &summary); err != nil {
		return entity.Summary{}, fmt.Errorf("failed to unmarshal game summary: %w", err)
	}

	return summary, nil
}

func (that *redisLobby) DeleteByID(ctx context.Context, id string) error {
	if err := that.client.Del(ctx, lobbyKeyPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete game summary by id: %w", err)
	}

	return nil
}

func (that *redisLobby) List(ctx context.Context) ([]entity.Summary, error) {
	var keys []string

	iter := that.client.Scan(ctx, 0, lobbyKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}

	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan game summaries: %w", err)
	}

	summaries := make([]entity.Summary, 0, len(keys))
	if len(keys) == 0 {
		return summaries, nil
	}

	values, err := that.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get game summaries: %w", err)
	}

	for _, value := range values {
		// expired between SCAN and MGET
		raw, ok := value.(string)
		if !ok {
			continue
		}

		var summary entity.Summary
		if err = json.Unmarshal([]byte(raw), &summary); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game summary: %w", err)
		}

		summaries = append(summaries, summary)
	}

	sortSummaries(summaries)

	return summaries, nil
}
