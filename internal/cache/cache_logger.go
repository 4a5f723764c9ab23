package cache

import (
	"context"
	"fmt"
	"log/slog"
)

// SafeInvalidatePattern safely invalidates cache pattern with logging
func SafeInvalidatePattern(ctx context.Context, helper *CacheHelper, pattern string) {
	if err := helper.InvalidatePattern(ctx, pattern); err != nil {
		slog.ErrorContext(ctx, "Failed to invalidate cache pattern",
			"error", err,
			"pattern", pattern)
	}
}

// SafeDelete safely deletes cache keys with logging
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "Failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}

// InvalidateUserCache invalidates all caches derived from a user row
func InvalidateUserCache(ctx context.Context, cm *CacheManager, userID uint) {
	SafeDelete(ctx, cm.User,
		fmt.Sprintf("id:%d", userID),
		fmt.Sprintf("profile:%d", userID))
	SafeInvalidatePattern(ctx, cm.User, "list:*")
	SafeInvalidatePattern(ctx, cm.Exists, fmt.Sprintf("user:%d*", userID))
}

// InvalidateSubjectCache invalidates subject and chapter listings after content writes
func InvalidateSubjectCache(ctx context.Context, cm *CacheManager, subjectID uint) {
	SafeDelete(ctx, cm.Subject, fmt.Sprintf("id:%d", subjectID))
	SafeInvalidatePattern(ctx, cm.Subject, "list:*")
	SafeInvalidatePattern(ctx, cm.Chapter, fmt.Sprintf("subject:%d*", subjectID))
}
