package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// 待处理好友请求计数相关常量
const (
	PendingCountKeyPrefix = "skillnet:friendship:pending:" // 计数key前缀
	PendingCountTTL       = 24 * time.Hour                 // 计数过期时间，避免长期不一致
)

// PendingCounter 待处理好友请求计数缓存
// 写操作只做失效，读未命中时由调用方回源数据库并回填
type PendingCounter struct {
	client *Client
}

// NewPendingCounter 创建计数缓存
func NewPendingCounter(client *Client) *PendingCounter {
	return &PendingCounter{client: client}
}

// PendingCountKey 计数key
func PendingCountKey(userID uint) string {
	return fmt.Sprintf("%s%d", PendingCountKeyPrefix, userID)
}

func (p *PendingCounter) rdb() (*redis.Client, error) {
	if p == nil || p.client == nil || p.client.rdb == nil {
		return nil, fmt.Errorf("redis客户端未初始化")
	}
	return p.client.rdb, nil
}

// Get 读取计数，key 不存在时 ok 为 false
func (p *PendingCounter) Get(ctx context.Context, userID uint) (int64, bool, error) {
	rdb, err := p.rdb()
	if err != nil {
		return 0, false, err
	}
	count, err := rdb.Get(ctx, PendingCountKey(userID)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("获取待处理请求计数失败: %w", err)
	}
	return count, true, nil
}

// Set 回填计数
func (p *PendingCounter) Set(ctx context.Context, userID uint, count int64) error {
	rdb, err := p.rdb()
	if err != nil {
		return err
	}
	if err := rdb.Set(ctx, PendingCountKey(userID), count, PendingCountTTL).Err(); err != nil {
		return fmt.Errorf("设置待处理请求计数失败: %w", err)
	}
	return nil
}

// Invalidate 使计数失效
func (p *PendingCounter) Invalidate(ctx context.Context, userID uint) error {
	rdb, err := p.rdb()
	if err != nil {
		return err
	}
	if err := rdb.Del(ctx, PendingCountKey(userID)).Err(); err != nil {
		return fmt.Errorf("清除待处理请求计数失败: %w", err)
	}
	return nil
}
