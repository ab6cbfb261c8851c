package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"stockyard/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// CacheService fronts the read-mostly layout master data. Cache misses and
// errors are never fatal; callers fall through to the database.
type CacheService interface {
	GetClusterConfig(ctx context.Context, warehouseID uuid.UUID, cluster string) (*models.ClusterConfig, error)
	SetClusterConfig(ctx context.Context, cfg *models.ClusterConfig, ttl time.Duration) error
	DeleteClusterConfig(ctx context.Context, warehouseID uuid.UUID, cluster string) error

	GetProductHome(ctx context.Context, warehouseID, productID uuid.UUID) (*models.ProductHome, error)
	SetProductHome(ctx context.Context, home *models.ProductHome, ttl time.Duration) error
	DeleteProductHome(ctx context.Context, warehouseID, productID uuid.UUID) error

	InvalidateWarehouse(ctx context.Context, warehouseID uuid.UUID) error
	Ping(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Printf("WARN: Redis ping failed on initialization: %v (address: %s)", pingErr, parsedAddr)
	}

	return &redisCacheService{client: client}
}

func clusterKey(warehouseID uuid.UUID, cluster string) string {
	return fmt.Sprintf("stockyard:cluster:%s:%s", warehouseID.String(), cluster)
}

func homeKey(warehouseID, productID uuid.UUID) string {
	return fmt.Sprintf("stockyard:home:%s:%s", warehouseID.String(), productID.String())
}

func (r *redisCacheService) GetClusterConfig(ctx context.Context, warehouseID uuid.UUID, cluster string) (*models.ClusterConfig, error) {
	data, err := r.client.Get(ctx, clusterKey(warehouseID, cluster)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var cfg models.ClusterConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (r *redisCacheService) SetClusterConfig(ctx context.Context, cfg *models.ClusterConfig, ttl time.Duration) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, clusterKey(cfg.WarehouseID, cfg.Cluster), data, ttl).Err()
}

func (r *redisCacheService) DeleteClusterConfig(ctx context.Context, warehouseID uuid.UUID, cluster string) error {
	return r.client.Del(ctx, clusterKey(warehouseID, cluster)).Err()
}

func (r *redisCacheService) GetProductHome(ctx context.Context, warehouseID, productID uuid.UUID) (*models.ProductHome, error) {
	data, err := r.client.Get(ctx, homeKey(warehouseID, productID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var home models.ProductHome
	if err := json.Unmarshal(data, &home); err != nil {
		return nil, err
	}
	return &home, nil
}

func (r *redisCacheService) SetProductHome(ctx context.Context, home *models.ProductHome, ttl time.Duration) error {
	data, err := json.Marshal(home)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, homeKey(home.WarehouseID, home.ProductID), data, ttl).Err()
}

func (r *redisCacheService) DeleteProductHome(ctx context.Context, warehouseID, productID uuid.UUID) error {
	return r.client.Del(ctx, homeKey(warehouseID, productID)).Err()
}

func (r *redisCacheService) InvalidateWarehouse(ctx context.Context, warehouseID uuid.UUID) error {
	patterns := []string{
		fmt.Sprintf("stockyard:cluster:%s:*", warehouseID.String()),
		fmt.Sprintf("stockyard:home:%s:*", warehouseID.String()),
	}
	for _, pattern := range patterns {
		iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
				return err
			}
		}
		if err := iter.Err(); err != nil {
			return err
		}
	}
	return nil
}

func (r *redisCacheService) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
