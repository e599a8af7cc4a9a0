package service

import (
	"context"
	"errors"
	"fmt"

	"skillnet/internal/model"
	"skillnet/internal/repository"
	"skillnet/pkg/logger"

	"go.uber.org/zap"
)

// 好友事件类型
const (
	EventFriendshipRequested = "friendship.requested"
	EventFriendshipAccepted  = "friendship.accepted"
	EventFriendshipRemoved   = "friendship.removed"
)

// Notifier 好友事件推送（尽力而为，失败不影响业务）
type Notifier interface {
	Notify(userID uint, event string, payload map[string]interface{})
}

// PendingCounter 待处理好友请求数量缓存
type PendingCounter interface {
	Get(ctx context.Context, userID uint) (count int64, ok bool, err error)
	Set(ctx context.Context, userID uint, count int64) error
	Invalidate(ctx context.Context, userID uint) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(uint, string, map[string]interface{}) {}

type nopCounter struct{}

func (nopCounter) Get(context.Context, uint) (int64, bool, error) { return 0, false, nil }
func (nopCounter) Set(context.Context, uint, int64) error         { return nil }
func (nopCounter) Invalidate(context.Context, uint) error         { return nil }

// FriendshipService 好友关系账本
// 一段互为好友的关系由两条有向记录表示；接受与删除时主记录和镜像记录在同一事务中变更
type FriendshipService struct {
	repo     *repository.FriendshipRepository
	users    *UserService
	notifier Notifier
	counter  PendingCounter
}

// NewFriendshipService 创建FriendshipService实例，notifier/counter 可为 nil
func NewFriendshipService(repo *repository.FriendshipRepository, users *UserService, notifier Notifier, counter PendingCounter) *FriendshipService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if counter == nil {
		counter = nopCounter{}
	}
	return &FriendshipService{repo: repo, users: users, notifier: notifier, counter: counter}
}

// Request 发起好友请求，生成一条待处理记录
func (s *FriendshipService) Request(ctx context.Context, requesterID, targetID uint) (*model.Friendship, error) {
	if _, err := s.users.GetByID(ctx, requesterID); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, targetID); err != nil {
		return nil, err
	}
	if requesterID == targetID {
		return nil, invalid("cannot befriend yourself")
	}

	exists, err := s.repo.ExistsBetween(ctx, requesterID, targetID)
	if err != nil {
		return nil, fmt.Errorf("check existing friendship: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("%w: friendship already exists between these users", ErrConflict)
	}

	f := &model.Friendship{UserID: requesterID, FriendID: targetID}
	if err := s.repo.Create(ctx, f); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("%w: friendship already exists between these users", ErrConflict)
		}
		return nil, fmt.Errorf("create friendship: %w", err)
	}

	logger.Info("好友请求已创建",
		zap.Uint("friendship_id", f.ID),
		zap.Uint("requester_id", requesterID),
		zap.Uint("target_id", targetID),
	)
	s.invalidate(ctx, targetID)
	s.notifier.Notify(targetID, EventFriendshipRequested, map[string]interface{}{
		"friendship_id": f.ID,
		"from":          requesterID,
	})

	return s.FindOne(ctx, f.ID)
}

// RequestByUsername 按对方用户名（pseudo）发起好友请求
func (s *FriendshipService) RequestByUsername(ctx context.Context, requesterID uint, username string) (*model.Friendship, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	return s.Request(ctx, requesterID, target.ID)
}

// Accept 接受好友请求
// 只有被请求方可以接受；主记录置为已接受后，在同一事务内建立并接受镜像记录
func (s *FriendshipService) Accept(ctx context.Context, id, actingUserID uint) (*model.Friendship, error) {
	var (
		primary       *model.Friendship
		mirrorPending bool
	)
	err := s.repo.Transaction(ctx, func(tx *repository.FriendshipRepository) error {
		f, err := tx.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "friendship")
		}
		if f.FriendID != actingUserID {
			return fmt.Errorf("%w: only the requested user can accept", ErrForbidden)
		}
		if f.Accepted {
			return ErrAlreadyAccepted
		}

		changed, err := tx.MarkAccepted(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("accept friendship: %w", err)
		}
		if !changed {
			// 并发接受时另一请求已先完成
			return ErrAlreadyAccepted
		}

		mirror, err := tx.GetByUserAndFriend(ctx, f.FriendID, f.UserID)
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			mirror = &model.Friendship{UserID: f.FriendID, FriendID: f.UserID}
			if err := tx.Create(ctx, mirror); err != nil {
				return fmt.Errorf("create mirror friendship: %w", err)
			}
		case err != nil:
			return fmt.Errorf("load mirror friendship: %w", err)
		default:
			// 双方曾互相发起请求
			mirrorPending = !mirror.Accepted
		}
		if !mirror.Accepted {
			if _, err := tx.MarkAccepted(ctx, mirror.ID); err != nil {
				return fmt.Errorf("accept mirror friendship: %w", err)
			}
		}

		primary = f
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info("好友请求已接受",
		zap.Uint("friendship_id", primary.ID),
		zap.Uint("requester_id", primary.UserID),
		zap.Uint("target_id", primary.FriendID),
	)
	s.invalidate(ctx, primary.FriendID)
	if mirrorPending {
		s.invalidate(ctx, primary.UserID)
	}
	s.notifier.Notify(primary.UserID, EventFriendshipAccepted, map[string]interface{}{
		"friendship_id": primary.ID,
		"by":            actingUserID,
	})

	return s.FindOne(ctx, primary.ID)
}

// Remove 删除好友关系
// 任一方均可删除；已接受的关系同时删除镜像记录，镜像缺失时仍删除主记录
func (s *FriendshipService) Remove(ctx context.Context, id, actingUserID uint) error {
	var removed *model.Friendship
	err := s.repo.Transaction(ctx, func(tx *repository.FriendshipRepository) error {
		f, err := tx.GetByID(ctx, id)
		if err != nil {
			return notFound(err, "friendship")
		}
		if !f.IsParty(actingUserID) {
			return fmt.Errorf("%w: only a party of the friendship can remove it", ErrForbidden)
		}

		if f.Accepted {
			mirror, err := tx.GetByUserAndFriend(ctx, f.FriendID, f.UserID)
			switch {
			case errors.Is(err, repository.ErrRecordNotFound):
				logger.Warn("镜像好友关系缺失", zap.Uint("friendship_id", f.ID))
			case err != nil:
				return fmt.Errorf("load mirror friendship: %w", err)
			default:
				if _, err := tx.Delete(ctx, mirror.ID); err != nil {
					return fmt.Errorf("delete mirror friendship: %w", err)
				}
			}
		}

		deleted, err := tx.Delete(ctx, f.ID)
		if err != nil {
			return fmt.Errorf("delete friendship: %w", err)
		}
		if !deleted {
			return fmt.Errorf("friendship: %w", ErrNotFound)
		}
		removed = f
		return nil
	})
	if err != nil {
		return err
	}

	logger.Info("好友关系已删除",
		zap.Uint("friendship_id", removed.ID),
		zap.Uint("acting_user_id", actingUserID),
		zap.Bool("was_accepted", removed.Accepted),
	)
	if !removed.Accepted {
		s.invalidate(ctx, removed.FriendID)
	}
	s.notifier.Notify(removed.Counterpart(actingUserID), EventFriendshipRemoved, map[string]interface{}{
		"friendship_id": removed.ID,
		"by":            actingUserID,
	})
	return nil
}

// FindOne 按ID查找关系
func (s *FriendshipService) FindOne(ctx context.Context, id uint) (*model.Friendship, error) {
	f, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "friendship")
	}
	sanitizeParties(f)
	return f, nil
}

// FindByUserAndFriend 按方向查找关系（userID -> friendID）
func (s *FriendshipService) FindByUserAndFriend(ctx context.Context, userID, friendID uint) (*model.Friendship, error) {
	f, err := s.repo.GetByUserAndFriend(ctx, userID, friendID)
	if err != nil {
		return nil, notFound(err, "friendship")
	}
	return f, nil
}

// ListFriends 获取用户的好友列表
func (s *FriendshipService) ListFriends(ctx context.Context, userID uint) ([]*model.Friendship, error) {
	list, err := s.repo.ListFriends(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}
	for _, f := range list {
		sanitizeParties(f)
	}
	return list, nil
}

// ListPending 获取等待用户处理的好友请求
func (s *FriendshipService) ListPending(ctx context.Context, userID uint) ([]*model.Friendship, error) {
	list, err := s.repo.ListPending(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list pending friendships: %w", err)
	}
	for _, f := range list {
		sanitizeParties(f)
	}
	return list, nil
}

// PendingCount 获取待处理请求数量，优先读缓存，未命中时回源数据库并回填
func (s *FriendshipService) PendingCount(ctx context.Context, userID uint) (int64, error) {
	count, ok, err := s.counter.Get(ctx, userID)
	if err != nil {
		logger.Warn("读取待处理请求计数缓存失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	if err == nil && ok {
		return count, nil
	}

	count, err = s.repo.CountPending(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count pending friendships: %w", err)
	}
	if err := s.counter.Set(ctx, userID, count); err != nil {
		logger.Warn("回填待处理请求计数缓存失败", zap.Uint("user_id", userID), zap.Error(err))
	}
	return count, nil
}

func (s *FriendshipService) invalidate(ctx context.Context, userID uint) {
	if err := s.counter.Invalidate(ctx, userID); err != nil {
		logger.Warn("清除待处理请求计数缓存失败", zap.Uint("user_id", userID), zap.Error(err))
	}
}

func sanitizeParties(f *model.Friendship) {
	if f.User != nil {
		f.User = f.User.Sanitized()
	}
	if f.Friend != nil {
		f.Friend = f.Friend.Sanitized()
	}
}
