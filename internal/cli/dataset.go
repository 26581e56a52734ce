package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/weisyn/splitproof/internal/cli/ui"
	"github.com/weisyn/splitproof/internal/core/splitproof/commitment"
	"github.com/weisyn/splitproof/internal/core/splitproof/dataset"
	"github.com/weisyn/splitproof/internal/core/splitproof/shuffle"
	"github.com/weisyn/splitproof/pkg/types"
)

// ============================================================================
// 纯计算命令：不启动引擎
// ============================================================================

type commitOutput struct {
	Root types.MerkleRoot `json:"root"`
	N    int              `json:"n"`
}

func (c *CLI) newCommitCommand() *cobra.Command {
	var rowsPath string
	cmd := &cobra.Command{
		Use:   "commit",
		Short: "计算数据集行哈希的承诺根",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := dataset.ReadRowsFile(rowsPath)
			if err != nil {
				return err
			}
			root, err := commitment.Commit(rows)
			if err != nil {
				return err
			}
			return c.printer.Result("数据集承诺", commitOutput{Root: root, N: len(rows)}, [][]string{
				{"行数", strconv.Itoa(len(rows))},
				{"承诺根", root.Hex()},
			})
		},
	}
	cmd.Flags().StringVar(&rowsPath, "rows", "", "行哈希文件，每行一个十六进制哈希（- 为标准输入）")
	_ = cmd.MarkFlagRequired("rows")
	return cmd
}

type shuffleOutput struct {
	Seed        types.Seed        `json:"seed"`
	N           int               `json:"n"`
	Ratio       string            `json:"ratio"`
	Permutation types.Permutation `json:"permutation"`
	*types.Split
}

func (c *CLI) newShuffleCommand() *cobra.Command {
	var (
		seedHex  string
		n        int
		ratioStr string
	)
	cmd := &cobra.Command{
		Use:   "shuffle",
		Short: "按种子计算确定性洗牌与训练/测试划分",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := types.ParseSeed(seedHex)
			if err != nil {
				return fmt.Errorf("解析种子失败: %w", err)
			}
			ratio, err := types.ParseRatio(ratioStr)
			if err != nil {
				return err
			}
			perm, err := shuffle.Permute(seed, n)
			if err != nil {
				return err
			}
			split, err := shuffle.Split(perm, n, ratio)
			if err != nil {
				return err
			}

			out := shuffleOutput{Seed: seed, N: n, Ratio: ratio.String(), Permutation: perm, Split: split}
			return c.printer.Result("洗牌划分", out, [][]string{
				{"种子", seed.Hex()},
				{"行数", strconv.Itoa(n)},
				{"比例", ratio.String()},
				{"训练集大小", strconv.Itoa(split.K)},
				{"排列", ui.JoinIndices(perm)},
				{"训练集", ui.JoinIndices(split.TrainIndices)},
				{"测试集", ui.JoinIndices(split.TestIndices)},
			})
		},
	}
	cmd.Flags().StringVar(&seedHex, "seed", "", "32字节十六进制种子")
	cmd.Flags().IntVar(&n, "n", 0, "数据集行数")
	cmd.Flags().StringVar(&ratioStr, "ratio", types.DefaultRatio.String(), "训练/测试比例")
	_ = cmd.MarkFlagRequired("seed")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}

func (c *CLI) newExampleRowsCommand() *cobra.Command {
	var (
		n       int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "example-rows",
		Short: "生成示例数据集行哈希（第i行为 i 的4字节小端编码后补零）",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if n <= 0 {
				return fmt.Errorf("--n 必须为正数")
			}
			rows := dataset.ExampleRows(n)

			w := c.out
			if outPath != "" && outPath != "-" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := dataset.WriteRows(w, rows); err != nil {
				return err
			}

			root, err := commitment.Commit(rows)
			if err != nil {
				return err
			}
			c.printer.Info("已生成 %d 行，承诺根 %s", n, root.Hex())
			return nil
		},
	}
	cmd.Flags().IntVar(&n, "n", 0, "行数")
	cmd.Flags().StringVar(&outPath, "out", "", "输出文件（默认标准输出）")
	_ = cmd.MarkFlagRequired("n")
	return cmd
}
