package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/weisyn/splitproof/internal/cli/ui"
	"github.com/weisyn/splitproof/internal/core/splitproof"
	"github.com/weisyn/splitproof/internal/core/splitproof/chain"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/dataset"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 引擎命令：进程内启动证明引擎（不含HTTP）
// ============================================================================

// ErrProofInvalid 证明未通过验证（用于非零退出码）
var ErrProofInvalid = errors.New("proof invalid")

func (c *CLI) newProveCommand() *cobra.Command {
	var (
		rowsPath string
		seedHex  string
		rootHex  string
		ratioStr string
		scheme   string
		outPath  string
	)
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "对数据集生成洗牌划分证明",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := dataset.ReadRowsFile(rowsPath)
			if err != nil {
				return err
			}
			seed, err := types.ParseSeed(seedHex)
			if err != nil {
				return fmt.Errorf("解析种子失败: %w", err)
			}

			// 未给出根时按行计算（证明者自己承诺）
			var root types.MerkleRoot
			if rootHex != "" {
				if root, err = types.ParseMerkleRoot(rootHex); err != nil {
					return fmt.Errorf("解析承诺根失败: %w", err)
				}
			} else if root, err = commitment.Commit(rows); err != nil {
				return err
			}

			req := &splitproof.ProveRequest{Rows: rows, Seed: seed, OriginalRoot: root, Scheme: scheme}
			if ratioStr != "" {
				ratio, err := types.ParseRatio(ratioStr)
				if err != nil {
					return err
				}
				req.Ratio = &ratio
			}

			ctx := cmd.Context()
			a, err := c.engine(ctx)
			if err != nil {
				return err
			}
			defer a.Stop()

			stop := c.printer.Spinner(fmt.Sprintf("正在为 %d 行数据集生成证明…", len(rows)))
			res, err := a.Manager().ProveRequest(ctx, req)
			stop(err, "证明已生成")
			if err != nil {
				return err
			}

			if outPath != "" {
				if err := writeJSONFile(outPath, res); err != nil {
					return err
				}
				c.printer.Success("证明已写入 %s", outPath)
			}
			return c.printer.Result("切分证明", res, proofRows(res))
		},
	}
	f := cmd.Flags()
	f.StringVar(&rowsPath, "rows", "", "行哈希文件（- 为标准输入）")
	f.StringVar(&seedHex, "seed", "", "32字节十六进制种子")
	f.StringVar(&rootHex, "root", "", "已发布的承诺根（默认按行计算）")
	f.StringVar(&ratioStr, "ratio", "", "训练/测试比例（默认取配置）")
	f.StringVar(&scheme, "scheme", "", "证明方案 groth16|plonk（默认取配置）")
	f.StringVar(&outPath, "out", "", "证明结果输出文件（JSON）")
	_ = cmd.MarkFlagRequired("rows")
	_ = cmd.MarkFlagRequired("seed")
	return cmd
}

type verifyOutput struct {
	Valid        bool             `json:"valid"`
	OriginalRoot types.MerkleRoot `json:"original_root"`
	Seed         types.Seed       `json:"seed"`
	TrainRoot    types.MerkleRoot `json:"train_root"`
	TestRoot     types.MerkleRoot `json:"test_root"`
}

func (c *CLI) newVerifyCommand() *cobra.Command {
	var (
		proofPath string
		seedHex   string
		rootHex   string
		ratioStr  string
	)
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "以已发布的承诺根与种子验证切分证明",
		Long:  "verify 读取 prove 输出的证明文件，用命令行给出的承诺根与种子（而非文件中的值）验证证明。\n证明无效时以非零状态退出。",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := readProofFile(proofPath)
			if err != nil {
				return err
			}
			seed, err := types.ParseSeed(seedHex)
			if err != nil {
				return fmt.Errorf("解析种子失败: %w", err)
			}
			root, err := types.ParseMerkleRoot(rootHex)
			if err != nil {
				return fmt.Errorf("解析承诺根失败: %w", err)
			}
			var opts []splitproof.VerifyOption
			if ratioStr != "" {
				ratio, err := types.ParseRatio(ratioStr)
				if err != nil {
					return err
				}
				opts = append(opts, splitproof.WithRatio(ratio))
			}
			publicOutputs := res.PublicOutputs
			if len(publicOutputs) == 0 {
				publicOutputs = res.Outputs().Marshal()
			}

			ctx := cmd.Context()
			a, err := c.engine(ctx)
			if err != nil {
				return err
			}
			defer a.Stop()

			valid, err := a.Manager().VerifyOutputs(ctx, res.Proof, root, seed, publicOutputs, opts...)
			if err != nil {
				return err
			}

			out := verifyOutput{Valid: valid, OriginalRoot: root, Seed: seed, TrainRoot: res.TrainRoot, TestRoot: res.TestRoot}
			if err := c.printer.Result("验证结果", out, [][]string{
				{"结论", verdictText(valid)},
				{"承诺根", root.Hex()},
				{"种子", seed.Hex()},
				{"训练集根", res.TrainRoot.Hex()},
				{"测试集根", res.TestRoot.Hex()},
			}); err != nil {
				return err
			}
			if !valid {
				return ErrProofInvalid
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&proofPath, "proof", "", "prove 输出的证明文件（- 为标准输入）")
	f.StringVar(&seedHex, "seed", "", "已发布的种子")
	f.StringVar(&rootHex, "root", "", "已发布的承诺根")
	f.StringVar(&ratioStr, "ratio", "", "期望的训练/测试比例（默认取配置）")
	_ = cmd.MarkFlagRequired("proof")
	_ = cmd.MarkFlagRequired("seed")
	_ = cmd.MarkFlagRequired("root")
	return cmd
}

func (c *CLI) newPayloadCommand() *cobra.Command {
	var proofPath string
	cmd := &cobra.Command{
		Use:   "payload",
		Short: "将证明编码为链上提交载荷（ABI + Keccak 摘要）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := readProofFile(proofPath)
			if err != nil {
				return err
			}
			calldata, err := c.calldata(cmd.Context(), res)
			if err != nil {
				return err
			}
			payload, err := chain.FromResult(res, calldata)
			if err != nil {
				return err
			}
			rows := [][]string{
				{"摘要", payload.Digest.Hex()},
				{"载荷字节数", strconv.Itoa(len(payload.Encoded))},
				{"载荷", ui.Truncate(payload.Encoded.String(), 66)},
			}
			if len(payload.Calldata) > 0 {
				rows = append(rows, []string{"Solidity证明", ui.Truncate(payload.Calldata.String(), 66)})
			}
			return c.printer.Result("链上载荷", payload, rows)
		},
	}
	cmd.Flags().StringVar(&proofPath, "proof", "", "prove 输出的证明文件（- 为标准输入）")
	_ = cmd.MarkFlagRequired("proof")
	return cmd
}

// calldata 仅 Groth16 证明有 Solidity 调用数据形式
func (c *CLI) calldata(ctx context.Context, res *splitproof.ProofResult) ([]byte, error) {
	if res.Scheme != splitproof.SchemeGroth16 {
		return nil, nil
	}
	a, err := c.engine(ctx)
	if err != nil {
		return nil, err
	}
	defer a.Stop()
	return a.Manager().SolidityCalldata(res.Proof)
}

func (c *CLI) newExportVerifierCommand() *cobra.Command {
	var (
		n       int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "export-verifier",
		Short: "导出指定行数数据集形状的 Solidity 验证合约",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(outPath)
			if err != nil {
				return err
			}
			defer f.Close()

			ctx := cmd.Context()
			a, err := c.engine(ctx)
			if err != nil {
				return err
			}
			defer a.Stop()

			stop := c.printer.Spinner(fmt.Sprintf("正在加载 n=%d 的电路工件…", n))
			artifact, err := a.Manager().ExportVerifier(ctx, n, f)
			stop(err, "验证合约已导出")
			if err != nil {
				return err
			}

			out := struct {
				Shape         types.Shape `json:"shape"`
				VKHash        string      `json:"vk_hash"`
				NbConstraints int         `json:"nb_constraints"`
				Path          string      `json:"path"`
			}{artifact.Shape, fmt.Sprintf("0x%x", artifact.VKHash), artifact.NbConstraints, outPath}
			return c.printer.Result("Solidity 验证合约", out, [][]string{
				{"形状", fmt.Sprintf("n=%d k=%d", artifact.Shape.N, artifact.Shape.K)},
				{"VK哈希", out.VKHash},
				{"约束数", strconv.Itoa(artifact.NbConstraints)},
				{"文件", outPath},
			})
		},
	}
	cmd.Flags().IntVar(&n, "n", 0, "数据集行数")
	cmd.Flags().StringVar(&outPath, "out", "", "输出的 .sol 文件")
	_ = cmd.MarkFlagRequired("n")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func proofRows(res *splitproof.ProofResult) [][]string {
	return [][]string{
		{"方案", res.Scheme},
		{"形状", fmt.Sprintf("n=%d k=%d", res.Shape.N, res.Shape.K)},
		{"承诺根", res.OriginalRoot.Hex()},
		{"训练集根", res.TrainRoot.Hex()},
		{"测试集根", res.TestRoot.Hex()},
		{"训练集下标", ui.JoinIndices(res.TrainIndices)},
		{"VK哈希", res.VKHash.Hex()},
		{"证明字节数", strconv.Itoa(len(res.Proof))},
		{"耗时", res.ProveDuration.String()},
	}
}

func verdictText(valid bool) string {
	if valid {
		return "✅ 有效"
	}
	return "❌ 无效"
}

func readProofFile(path string) (*splitproof.ProofResult, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var res splitproof.ProofResult
	if err := json.NewDecoder(r).Decode(&res); err != nil {
		return nil, splitproof.WrapMalformedProofError(fmt.Sprintf("证明文件解析失败: %v", err))
	}
	if len(res.Proof) == 0 {
		return nil, splitproof.WrapMalformedProofError("证明文件缺少 proof")
	}
	return &res, nil
}

func writeJSONFile(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
