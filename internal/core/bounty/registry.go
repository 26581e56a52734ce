package bounty

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/weisyn/splitproof/internal/core/infrastructure/clock"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	infraClock "github.com/weisyn/splitproof/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/splitproof/pkg/interfaces/infrastructure/storage"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 悬赏登记
// ============================================================================
//
// 🎯 **流程**：
//  1. Create：登记种子、原始根、比例、截止时间与金额
//  2. VerifySplit：用悬赏自身的种子、根和比例验证证明，
//     通过后记录测试集承诺并标记已验证（只可一次）
//
// ⚠️ 验证状态在事务内复查，并发提交只有一个生效
//
// ============================================================================

const bountyKeyPrefix = "bounty/"

// SplitVerifier 切分证明验证能力
type SplitVerifier interface {
	VerifyOutputs(ctx context.Context, proof []byte, originalRoot types.MerkleRoot, seed types.Seed, publicOutputs []byte, opts ...splitproof.VerifyOption) (bool, error)
}

// CreateParams 创建悬赏参数
type CreateParams struct {
	Creator      string           `json:"creator"`
	Amount       uint64           `json:"amount"`
	Seed         types.Seed       `json:"seed"`
	OriginalRoot types.MerkleRoot `json:"original_root"`
	Ratio        types.Ratio      `json:"ratio"`
	Deadline     time.Time        `json:"deadline"`
}

// Registry 悬赏登记表
type Registry struct {
	logger   log.Logger
	store    storage.BadgerStore
	verifier SplitVerifier
	bus      event.EventBus // 可为nil
	clock    infraClock.Clock
}

// New 创建悬赏登记表，clk 为nil时使用系统时钟
func New(logger log.Logger, store storage.BadgerStore, verifier SplitVerifier, bus event.EventBus, clk infraClock.Clock) *Registry {
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Registry{
		logger:   logger,
		store:    store,
		verifier: verifier,
		bus:      bus,
		clock:    clk,
	}
}

// Create 创建悬赏
func (r *Registry) Create(ctx context.Context, params CreateParams) (*types.Bounty, error) {
	now := r.clock.Now()
	if !params.Deadline.After(now) {
		return nil, fmt.Errorf("%w: deadline=%s", ErrBadDeadline, params.Deadline.Format(time.RFC3339))
	}
	if params.Amount == 0 {
		return nil, ErrBadAmount
	}
	// 根必须可以作为电路公开输入
	if _, err := commitment.RootToElement(params.OriginalRoot); err != nil {
		return nil, fmt.Errorf("%w: %w", splitproof.ErrMalformedInput, err)
	}
	ratio := params.Ratio
	if ratio == (types.Ratio{}) {
		ratio = types.DefaultRatio
	}
	if err := ratio.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", splitproof.ErrMalformedInput, err)
	}

	b := &types.Bounty{
		ID:           uuid.NewString(),
		Creator:      params.Creator,
		Amount:       params.Amount,
		OriginalRoot: params.OriginalRoot,
		Seed:         params.Seed,
		Ratio:        ratio,
		Deadline:     params.Deadline.UTC(),
		CreatedAt:    now.UTC(),
	}
	if err := r.put(ctx, b); err != nil {
		return nil, err
	}

	r.logger.Infof("悬赏已创建: id=%s, amount=%d, deadline=%s", b.ID, b.Amount, b.Deadline.Format(time.RFC3339))
	r.publish(types.EventTypeBountyCreated, b)
	return b, nil
}

// Get 获取悬赏
func (r *Registry) Get(ctx context.Context, id string) (*types.Bounty, error) {
	data, err := r.store.Get(ctx, bountyKey(id))
	if err != nil {
		return nil, fmt.Errorf("读取悬赏失败: %w", err)
	}
	if data == nil {
		return nil, WrapBountyNotFoundError(id)
	}
	return decode(data)
}

// List 列出全部悬赏（按创建时间排序）
func (r *Registry) List(ctx context.Context) ([]*types.Bounty, error) {
	entries, err := r.store.PrefixScan(ctx, []byte(bountyKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("扫描悬赏失败: %w", err)
	}
	out := make([]*types.Bounty, 0, len(entries))
	for _, data := range entries {
		b, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// VerifySplit 用悬赏的种子、根与比例验证切分证明
func (r *Registry) VerifySplit(ctx context.Context, id, verifier string, proof, publicOutputs []byte) (*types.Bounty, error) {
	b, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.checkOpen(b); err != nil {
		return nil, err
	}

	outputs, err := splitproof.ParsePublicOutputs(publicOutputs)
	if err != nil {
		return nil, err
	}
	ok, err := r.verifier.VerifyOutputs(ctx, proof, b.OriginalRoot, b.Seed, publicOutputs, splitproof.WithRatio(b.Ratio))
	if err != nil {
		return nil, err
	}
	if !ok {
		r.logger.Infof("悬赏切分证明被拒绝: id=%s", id)
		return nil, fmt.Errorf("%w: id=%s", ErrProofRejected, id)
	}

	var updated *types.Bounty
	err = r.store.RunInTransaction(ctx, func(tx storage.BadgerTransaction) error {
		data, err := tx.Get(bountyKey(id))
		if err != nil {
			return err
		}
		if data == nil {
			return WrapBountyNotFoundError(id)
		}
		current, err := decode(data)
		if err != nil {
			return err
		}
		if err := r.checkOpen(current); err != nil {
			return err
		}

		verifiedAt := r.clock.Now().UTC()
		testRoot, trainRoot := outputs.TestRoot, outputs.TrainRoot
		current.IsVerified = true
		current.Verifier = verifier
		current.TestsetCommitment = &testRoot
		current.TrainRoot = &trainRoot
		current.VerifiedAt = &verifiedAt

		encoded, err := json.Marshal(current)
		if err != nil {
			return err
		}
		updated = current
		return tx.Set(bountyKey(id), encoded)
	})
	if err != nil {
		return nil, err
	}

	r.logger.Infof("悬赏切分证明已验证: id=%s, testset=%s", id, updated.TestsetCommitment)
	r.publish(types.EventTypeBountySplitVerified, updated)
	return updated, nil
}

func (r *Registry) checkOpen(b *types.Bounty) error {
	if b.IsVerified {
		return fmt.Errorf("%w: id=%s", ErrAlreadyVerified, b.ID)
	}
	if b.Expired(r.clock.Now()) {
		return fmt.Errorf("%w: id=%s", ErrExpired, b.ID)
	}
	return nil
}

func (r *Registry) put(ctx context.Context, b *types.Bounty) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("序列化悬赏失败: %w", err)
	}
	if err := r.store.Set(ctx, bountyKey(b.ID), data); err != nil {
		return fmt.Errorf("写入悬赏失败: %w", err)
	}
	return nil
}

func (r *Registry) publish(t types.EventType, b *types.Bounty) {
	if r.bus == nil {
		return
	}
	r.bus.Publish(t, types.BountyEvent{
		BountyID:          b.ID,
		Verified:          b.IsVerified,
		TestsetCommitment: b.TestsetCommitment,
	})
}

func decode(data []byte) (*types.Bounty, error) {
	var b types.Bounty
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("解析悬赏失败: %w", err)
	}
	return &b, nil
}

func bountyKey(id string) []byte {
	return []byte(bountyKeyPrefix + id)
}
