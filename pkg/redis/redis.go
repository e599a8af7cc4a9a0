package redis

import (
	"context"
	"fmt"
	"time"

	"skillnet/config"

	"github.com/redis/go-redis/v9"
)

// Client Redis客户端封装
type Client struct {
	rdb *redis.Client
}

// Options 根据配置构建连接参数
func Options(cfg config.RedisConfig) *redis.Options {
	return &redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
		// 连接池配置
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// NewClient 用已有的 go-redis 客户端构建
func NewClient(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// InitRedis 初始化Redis连接并测试连通性
func InitRedis(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	c := NewClient(redis.NewClient(Options(cfg)))
	if err := c.HealthCheck(ctx); err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Close 关闭Redis连接
func (c *Client) Close() error {
	if c == nil || c.rdb == nil {
		return nil
	}
	return c.rdb.Close()
}

// HealthCheck 检查Redis健康状态
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.rdb == nil {
		return fmt.Errorf("redis客户端未初始化")
	}
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis连接异常: %w", err)
	}
	return nil
}
