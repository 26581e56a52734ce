// splitproof 可验证数据集洗牌划分的命令行入口
package main

import "github.com/weisyn/splitproof/internal/cli"

func main() {
	cli.Execute()
}
