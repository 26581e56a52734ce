// Package dataset 行摘要文件的读写与示例数据集生成
//
// 📋 **文件格式**：每行一个32字节十六进制摘要（可带0x前缀），空行与 # 开头的行忽略
package dataset

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/weisyn/splitproof/pkg/types"
)

// ExampleRows 生成示例数据集：第 i 行为 le32(i) 后补零
func ExampleRows(n int) []types.RowHash {
	rows := make([]types.RowHash, n)
	for i := range rows {
		binary.LittleEndian.PutUint32(rows[i][:4], uint32(i))
	}
	return rows
}

// ReadRows 从读取器解析行摘要
func ReadRows(r io.Reader) ([]types.RowHash, error) {
	var rows []types.RowHash
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		h, err := types.ParseRowHash(text)
		if err != nil {
			return nil, fmt.Errorf("第%d行: %w", line, err)
		}
		rows = append(rows, h)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("读取行摘要失败: %w", err)
	}
	return rows, nil
}

// ReadRowsFile 从文件解析行摘要，path 为 "-" 时读取标准输入
func ReadRowsFile(path string) ([]types.RowHash, error) {
	if path == "-" {
		return ReadRows(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("打开行摘要文件失败: %w", err)
	}
	defer f.Close()
	return ReadRows(f)
}

// WriteRows 按文件格式写出行摘要
func WriteRows(w io.Writer, rows []types.RowHash) error {
	bw := bufio.NewWriter(w)
	for _, h := range rows {
		if _, err := bw.WriteString(h.Hex() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}
