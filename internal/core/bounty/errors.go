// Package bounty 数据集切分悬赏登记：发布者承诺数据集与种子，提交有效切分证明即完成验证
package bounty

import (
	"errors"
	"fmt"
)

var (
	// ErrBountyNotFound 悬赏不存在
	ErrBountyNotFound = errors.New("bounty not found")

	// ErrBadDeadline 截止时间不在未来
	ErrBadDeadline = errors.New("bad deadline")

	// ErrBadAmount 金额必须大于0
	ErrBadAmount = errors.New("bad amount")

	// ErrExpired 悬赏已过期
	ErrExpired = errors.New("bounty expired")

	// ErrAlreadyVerified 悬赏已验证
	ErrAlreadyVerified = errors.New("bounty already verified")

	// ErrProofRejected 切分证明未通过验证
	ErrProofRejected = errors.New("split proof rejected")
)

// WrapBountyNotFoundError 包装悬赏不存在错误
func WrapBountyNotFoundError(id string) error {
	return fmt.Errorf("%w: id=%s", ErrBountyNotFound, id)
}
