package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
)

// SessionStore 会话存储
// 设计说明：
// 1. 登录会话：{prefix}session:{account_id}（Hash，TTL = Refresh Token有效期）
// 2. Token黑名单：{prefix}blacklist:{sha256(token)}（TTL = Access Token有效期）
// 3. 黑名单key使用Token摘要，避免把完整Token写进Redis
type SessionStore struct {
	client redis.UniversalClient
	prefix string
}

// NewSessionStore 创建会话存储
func NewSessionStore(client redis.UniversalClient, prefix string) *SessionStore {
	return &SessionStore{client: client, prefix: prefix}
}

func (s *SessionStore) sessionKey(accountID uint) string {
	return fmt.Sprintf("%ssession:%d", s.prefix, accountID)
}

func (s *SessionStore) blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return s.prefix + "blacklist:" + hex.EncodeToString(sum[:])
}

// SaveSession 保存账号会话
// 学习要点：HSet + Expire放在同一个Pipeline里，一次网络往返
func (s *SessionStore) SaveSession(ctx context.Context, accountID uint, sessionData map[string]interface{}, ttl time.Duration) error {
	key := s.sessionKey(accountID)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, sessionData)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "保存会话失败")
	}
	return nil
}

// GetSession 获取账号会话，不存在时返回ErrUnauthorized
func (s *SessionStore) GetSession(ctx context.Context, accountID uint) (map[string]string, error) {
	result, err := s.client.HGetAll(ctx, s.sessionKey(accountID)).Result()
	if err != nil {
		return nil, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "获取会话失败")
	}
	if len(result) == 0 {
		return nil, apperrors.ErrUnauthorized
	}
	return result, nil
}

// DeleteSession 删除账号会话（登出）
func (s *SessionStore) DeleteSession(ctx context.Context, accountID uint) error {
	if err := s.client.Del(ctx, s.sessionKey(accountID)).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "删除会话失败")
	}
	return nil
}

// AddToBlacklist 将Token加入黑名单
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "添加Token到黑名单失败")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, s.blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "检查黑名单失败")
	}
	return exists > 0, nil
}
